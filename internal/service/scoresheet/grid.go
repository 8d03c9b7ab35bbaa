package scoresheet

import (
	"fmt"
	"math"
	"strconv"

	"github.com/xGihyun/mmu-tabulation-backend/internal/domain/entity"
)

// Константы раскладки отчета. Ширины колонок фиксированы и не зависят от содержимого.
const (
	// BlockGap — число строк между концом одного блока категории и началом следующего
	BlockGap = 5
	// HeaderLastCol — последняя колонка объединенного заголовка категории (A:G)
	HeaderLastCol = 6

	CandidateNumberWidth = 15
	NameWidth            = 30
	JudgeWidth           = 30
	AverageWidth         = 20
	WeightWidth          = 15

	HeadingFontSize = 13.5
)

// Подписи, которые появляются в отчете
const (
	CandidateNumberHeader = "Candidate #"
	NameHeader            = "Name"
	AverageHeader         = "Average Score"
	MaleMarker            = "MALE"
	FemaleMarker          = "FEMALE"
)

// CellStyle — стиль ячейки, который writer переводит в стиль xlsx
type CellStyle int

const (
	StylePlain CellStyle = iota
	StyleHeading
	StyleBold
)

// Cell — значение в координатах сетки (строки и колонки с нуля)
type Cell struct {
	Row   int
	Col   int
	Value interface{}
	Style CellStyle
}

// Merge — объединение ячеек в пределах одной строки
type Merge struct {
	Row      int
	FirstCol int
	LastCol  int
}

// Grid — двумерная раскладка отчета, не зависящая от формата файла
type Grid struct {
	Cells        []Cell
	Merges       []Merge
	ColumnWidths map[int]float64
	// Rows — количество строк от нулевой до последней занятой включительно
	Rows int
}

// Value возвращает значение ячейки, если она была записана
func (g *Grid) Value(row, col int) (interface{}, bool) {
	for _, c := range g.Cells {
		if c.Row == row && c.Col == col {
			return c.Value, true
		}
	}
	return nil, false
}

// CandidateLine — кандидат и суммы его оценок по каждому судье (в порядке судей блока)
type CandidateLine struct {
	Candidate   entity.Candidate
	JudgeTotals []int
}

// Block — данные одной категории отчета
type Block struct {
	Category entity.Category
	Judges   []entity.Judge
	Males    []CandidateLine
	Females  []CandidateLine
}

// BlockHeight возвращает смещение последней строки блока относительно строки заголовка
func BlockHeight(males, females int) int {
	return males + females + 3
}

// FormatWeightPercent форматирует вес категории как процент: 0.6 -> "60%", 0.125 -> "12.5%"
func FormatWeightPercent(weight float64) string {
	percent := math.Round(weight*100*1e4) / 1e4
	return strconv.FormatFloat(percent, 'f', -1, 64) + "%"
}

// JudgeAverage возвращает среднюю сумму по судьям и ее взвешенное значение.
// ok == false, если судей нет: в этом случае производные ячейки остаются пустыми.
func JudgeAverage(totals []int, weight float64) (average, weighted float64, ok bool) {
	if len(totals) == 0 {
		return 0, 0, false
	}
	sum := 0
	for _, t := range totals {
		sum += t
	}
	average = float64(sum) / float64(len(totals))
	return average, average * weight, true
}

// LayoutGrid раскладывает блоки категорий сверху вниз.
// Названия категорий, имена судей и кандидатов экранируются через SanitizeCell.
//
// Строка 0 блока — объединенный заголовок с названием категории, строка 1 — шапка колонок,
// строка 2 — маркер MALE, далее мужчины, маркер FEMALE и женщины. Следующий блок
// начинается через BlockGap строк после последней строки текущего.
func LayoutGrid(blocks []Block) *Grid {
	grid := &Grid{ColumnWidths: map[int]float64{
		0: CandidateNumberWidth,
		1: NameWidth,
	}}

	offset := 0
	for _, block := range blocks {
		layoutBlock(grid, block, offset)
		last := offset + BlockHeight(len(block.Males), len(block.Females))
		grid.Rows = last + 1
		offset = last + BlockGap
	}

	return grid
}

func layoutBlock(grid *Grid, block Block, offset int) {
	judgeCount := len(block.Judges)
	averageCol := 2 + judgeCount
	weightCol := 3 + judgeCount

	grid.Merges = append(grid.Merges, Merge{Row: offset, FirstCol: 0, LastCol: HeaderLastCol})
	grid.put(offset, 0, SanitizeCell(block.Category.Name), StyleHeading)

	header := offset + 1
	grid.put(header, 0, CandidateNumberHeader, StyleBold)
	grid.put(header, 1, NameHeader, StyleBold)
	for i, judge := range block.Judges {
		grid.put(header, 2+i, SanitizeCell(judge.Name), StyleBold)
		grid.ColumnWidths[2+i] = JudgeWidth
	}
	grid.put(header, averageCol, AverageHeader, StyleBold)
	grid.put(header, weightCol, FormatWeightPercent(block.Category.Weight), StyleBold)
	grid.ColumnWidths[averageCol] = AverageWidth
	grid.ColumnWidths[weightCol] = WeightWidth

	maleMarker := offset + 2
	grid.put(maleMarker, 0, MaleMarker, StylePlain)
	for i, line := range block.Males {
		grid.putLine(maleMarker+1+i, line, block.Category.Weight)
	}

	femaleMarker := maleMarker + 1 + len(block.Males)
	grid.put(femaleMarker, 0, FemaleMarker, StylePlain)
	for i, line := range block.Females {
		grid.putLine(femaleMarker+1+i, line, block.Category.Weight)
	}
}

func (g *Grid) putLine(row int, line CandidateLine, weight float64) {
	g.put(row, 0, line.Candidate.CandidateNumber, StylePlain)
	g.put(row, 1, SanitizeCell(line.Candidate.DisplayName()), StylePlain)
	for i, total := range line.JudgeTotals {
		g.put(row, 2+i, total, StylePlain)
	}

	average, weighted, ok := JudgeAverage(line.JudgeTotals, weight)
	if !ok {
		return
	}
	judgeCount := len(line.JudgeTotals)
	g.put(row, 2+judgeCount, fmt.Sprintf("%.2f", average), StylePlain)
	g.put(row, 3+judgeCount, fmt.Sprintf("%.2f", weighted), StylePlain)
}

func (g *Grid) put(row, col int, value interface{}, style CellStyle) {
	g.Cells = append(g.Cells, Cell{Row: row, Col: col, Value: value, Style: style})
}
