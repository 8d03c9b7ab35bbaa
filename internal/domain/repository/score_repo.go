package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/xGihyun/mmu-tabulation-backend/internal/domain/entity"
)

// ScoreReader определяет запросы чтения, на которых построены рейтинг, сетка отчета и плоский экспорт
type ScoreReader interface {
	GetEvent(ctx context.Context, eventID uuid.UUID) (*entity.Event, error)
	ListEvents(ctx context.Context) ([]entity.Event, error)
	ListCategories(ctx context.Context, eventID uuid.UUID) ([]entity.Category, error)
	ListCriteria(ctx context.Context, categoryID uuid.UUID) ([]entity.Criterion, error)
	// ListJudges возвращает судей мероприятия; activeOnly отбрасывает судей с ScoreExclusion
	ListJudges(ctx context.Context, eventID uuid.UUID, activeOnly bool) ([]entity.Judge, error)
	// ListCandidates возвращает всех кандидатов: сначала мужчины, затем женщины, внутри — по номеру
	ListCandidates(ctx context.Context) ([]entity.Candidate, error)
	// SumScoresByCandidateCategory возвращает суммы score/max по парам (кандидат, категория) мероприятия
	SumScoresByCandidateCategory(ctx context.Context, eventID uuid.UUID) ([]entity.CandidateCategoryTotal, error)
	ListScores(ctx context.Context, candidateID, categoryID, judgeID uuid.UUID) ([]entity.Score, error)
	ListFlatScores(ctx context.Context, categoryID, criterionID uuid.UUID) ([]entity.FlatScore, error)
}

// ScoreStore — ScoreReader, способный выполнить набор чтений на одном снимке данных
type ScoreStore interface {
	ScoreReader
	// ReadSnapshot выполняет fn в одной read-only транзакции.
	// Ошибка fn прерывает транзакцию и возвращается без изменений.
	ReadSnapshot(ctx context.Context, fn func(reader ScoreReader) error) error
}
