package entity

import (
	"time"

	"github.com/google/uuid"
)

// Category представляет взвешенную группу критериев внутри мероприятия.
// Weight — безразмерный множитель; сумма весов категорий мероприятия
// не проверяется и не нормализуется.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Weight    float64   `gorm:"not null" json:"weight"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Category) TableName() string {
	return "categories"
}

// Criterion представляет отдельный пункт оценивания внутри категории.
type Criterion struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	MaxScore   int       `gorm:"not null" json:"max_score"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Criterion) TableName() string {
	return "criterias"
}
