package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Score представляет одну оценку судьи по одному критерию для одного кандидата.
// После создания меняются только Score и TimeOfScoring (при переоценке).
type Score struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Score         int       `gorm:"not null" json:"score"`
	Max           int       `gorm:"not null" json:"max"`
	TimeOfScoring time.Time `gorm:"not null;default:now()" json:"time_of_scoring"`
	CandidateID   uuid.UUID `gorm:"type:uuid;not null;index" json:"candidate_id"`
	CriteriaID    uuid.UUID `gorm:"column:criteria_id;type:uuid;not null;index" json:"criteria_id"`
	CategoryID    uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	JudgeID       uuid.UUID `gorm:"type:uuid;not null;index" json:"judge_id"`
}

// TableName определяет имя таблицы для GORM
func (Score) TableName() string {
	return "scores"
}

// Validate проверяет инвариант 0 <= score <= max
func (s *Score) Validate() error {
	if s.Max < 0 {
		return fmt.Errorf("score %s: negative max %d", s.ID, s.Max)
	}
	if s.Score < 0 || s.Score > s.Max {
		return fmt.Errorf("score %s: value %d out of range [0, %d]", s.ID, s.Score, s.Max)
	}
	return nil
}

// CandidateCategoryTotal — агрегат оценок кандидата по одной категории,
// посчитанный на стороне БД вместе с весом категории.
// Поля категории равны nil, если категория не найдена в мероприятии судьи.
type CandidateCategoryTotal struct {
	CandidateID     uuid.UUID
	FirstName       string
	MiddleName      string
	LastName        string
	ScoreCategoryID uuid.UUID
	CategoryID      *uuid.UUID
	Weight          *float64
	TotalScore      int64
	TotalMax        int64
	WeightedScore   *float64
	WeightedMax     *float64
}

// FlatScore — строка оценки, соединенная с именами судьи, кандидата,
// весом категории и названием мероприятия. Используется плоским экспортом.
type FlatScore struct {
	Score               int
	Max                 int
	JudgeName           string
	CandidateFirstName  string
	CandidateMiddleName string
	CandidateLastName   string
	Weight              float64
	EventName           string
}
