package scoresheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xGihyun/mmu-tabulation-backend/internal/domain/entity"
)

// FlatHeader — фиксированная шапка плоского экспорта
var FlatHeader = []string{
	"Event",
	"Category",
	"Criteria",
	"Candidate First Name",
	"Candidate Middle Name",
	"Candidate Last Name",
	"Judge",
	"Score",
	"Max",
	"Weight",
}

// FlatRecord — одна оценка в денормализованном виде
type FlatRecord struct {
	EventName           string
	CategoryName        string
	CriterionName       string
	CandidateFirstName  string
	CandidateMiddleName string
	CandidateLastName   string
	JudgeName           string
	Score               int
	Max                 int
	Weight              float64
}

// NewFlatRecord собирает запись из категории и критерия цикла экспорта и строки хранилища
func NewFlatRecord(category entity.Category, criterion entity.Criterion, row entity.FlatScore) FlatRecord {
	return FlatRecord{
		EventName:           row.EventName,
		CategoryName:        category.Name,
		CriterionName:       criterion.Name,
		CandidateFirstName:  row.CandidateFirstName,
		CandidateMiddleName: row.CandidateMiddleName,
		CandidateLastName:   row.CandidateLastName,
		JudgeName:           row.JudgeName,
		Score:               row.Score,
		Max:                 row.Max,
		Weight:              row.Weight,
	}
}

// Fields возвращает значения записи в порядке FlatHeader
func (r FlatRecord) Fields() []string {
	return []string{
		SanitizeCell(r.EventName),
		SanitizeCell(r.CategoryName),
		SanitizeCell(r.CriterionName),
		SanitizeCell(r.CandidateFirstName),
		SanitizeCell(r.CandidateMiddleName),
		SanitizeCell(r.CandidateLastName),
		SanitizeCell(r.JudgeName),
		strconv.Itoa(r.Score),
		strconv.Itoa(r.Max),
		strconv.FormatFloat(r.Weight, 'f', -1, 64),
	}
}

// WriteFlatCSV пишет шапку и все записи в w.
// encoding/csv сам экранирует запятые и кавычки в именах.
func WriteFlatCSV(w io.Writer, records []FlatRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(FlatHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range records {
		if err := writer.Write(r.Fields()); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// SanitizeCell экранирует данные для защиты от formula injection в Excel/CSV
func SanitizeCell(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
