package entity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Gender определяет блок отчета, в который попадает кандидат
type Gender int

// Значения пола кандидата в том виде, в котором они хранятся в БД
const (
	GenderMale   Gender = 1
	GenderFemale Gender = 2
)

// Candidate представляет участника. Кандидаты глобальны и не привязаны к мероприятию.
type Candidate struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FirstName       string    `gorm:"size:100;not null" json:"first_name"`
	MiddleName      string    `gorm:"size:100;not null;default:''" json:"middle_name"`
	LastName        string    `gorm:"size:100;not null" json:"last_name"`
	CandidateNumber int       `gorm:"not null;index" json:"candidate_number"`
	Gender          Gender    `gorm:"not null" json:"gender"`
}

// TableName определяет имя таблицы для GORM
func (Candidate) TableName() string {
	return "candidates"
}

// IsMale проверяет, попадает ли кандидат в мужской блок отчета.
// Любое значение, кроме GenderMale, относится к женскому блоку.
func (c *Candidate) IsMale() bool {
	return c.Gender == GenderMale
}

// DisplayName возвращает имя в формате "Фамилия, Имя Отчество"
func (c *Candidate) DisplayName() string {
	return FormatDisplayName(c.FirstName, c.MiddleName, c.LastName)
}

// FormatDisplayName собирает "{last}, {first} {middle}" и обрезает пробелы по краям,
// поэтому пустое отчество не оставляет хвостового пробела.
func FormatDisplayName(first, middle, last string) string {
	return strings.TrimSpace(fmt.Sprintf("%s, %s %s", last, first, middle))
}
