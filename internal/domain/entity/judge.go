package entity

import (
	"time"

	"github.com/google/uuid"
)

// Judge представляет судью мероприятия.
// Учетные данные хранятся в той же таблице, но ядром не используются.
type Judge struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name     string    `gorm:"size:255;not null" json:"name"`
	Username string    `gorm:"size:100;not null;uniqueIndex" json:"username"`
	Password string    `gorm:"size:255;not null" json:"-"`
	// ScoreExclusion исключает оценки судьи из рейтинга и из колонок отчета
	ScoreExclusion bool      `gorm:"not null;default:false" json:"score_exclusion"`
	EventID        uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Judge) TableName() string {
	return "judges"
}

// IsScoring проверяет, учитываются ли оценки судьи
func (j *Judge) IsScoring() bool {
	return !j.ScoreExclusion
}
