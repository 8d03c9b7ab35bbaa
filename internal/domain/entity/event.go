package entity

import (
	"time"

	"github.com/google/uuid"
)

// Event представляет одно оцениваемое мероприятие (конкурс).
// Мероприятию принадлежат категории и судьи.
type Event struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Event) TableName() string {
	return "events"
}
