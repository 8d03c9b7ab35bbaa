package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/xGihyun/mmu-tabulation-backend/internal/domain/entity"
	"github.com/xGihyun/mmu-tabulation-backend/internal/domain/repository"
	apperrors "github.com/xGihyun/mmu-tabulation-backend/internal/pkg/errors"
)

// Код SQLSTATE, который Postgres возвращает при отмене запроса (statement_timeout, отмена контекста)
const queryCanceledCode = "57014"

// ScoreRepo реализует repository.ScoreStore
type ScoreRepo struct {
	db *gorm.DB
}

var _ repository.ScoreStore = (*ScoreRepo)(nil)

// NewScoreRepo создает новый репозиторий оценок
func NewScoreRepo(db *gorm.DB) *ScoreRepo {
	return &ScoreRepo{db: db}
}

// ReadSnapshot выполняет fn внутри read-only транзакции REPEATABLE READ,
// чтобы все чтения одного отчета видели один и тот же снимок данных.
func (r *ScoreRepo) ReadSnapshot(ctx context.Context, fn func(reader repository.ScoreReader) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ScoreRepo{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}

// GetEvent возвращает мероприятие по ID
func (r *ScoreRepo) GetEvent(ctx context.Context, eventID uuid.UUID) (*entity.Event, error) {
	var event entity.Event
	err := r.db.WithContext(ctx).Where("id = ?", eventID).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, wrapQueryError("get event", err)
	}
	return &event, nil
}

// ListEvents возвращает все мероприятия в порядке создания
func (r *ScoreRepo) ListEvents(ctx context.Context) ([]entity.Event, error) {
	var events []entity.Event
	err := r.db.WithContext(ctx).Order("created_at, id").Find(&events).Error
	if err != nil {
		return nil, wrapQueryError("list events", err)
	}
	return events, nil
}

// ListCategories возвращает категории мероприятия в порядке создания
func (r *ScoreRepo) ListCategories(ctx context.Context, eventID uuid.UUID) ([]entity.Category, error) {
	var categories []entity.Category
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at, id").
		Find(&categories).Error
	if err != nil {
		return nil, wrapQueryError("list categories", err)
	}
	return categories, nil
}

// ListCriteria возвращает критерии категории в порядке создания
func (r *ScoreRepo) ListCriteria(ctx context.Context, categoryID uuid.UUID) ([]entity.Criterion, error) {
	var criteria []entity.Criterion
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("created_at, id").
		Find(&criteria).Error
	if err != nil {
		return nil, wrapQueryError("list criteria", err)
	}
	return criteria, nil
}

// ListJudges возвращает судей мероприятия. Порядок возврата определяет порядок колонок отчета.
func (r *ScoreRepo) ListJudges(ctx context.Context, eventID uuid.UUID, activeOnly bool) ([]entity.Judge, error) {
	var judges []entity.Judge
	if err := r.judgesQuery(ctx, eventID, activeOnly).Find(&judges).Error; err != nil {
		return nil, wrapQueryError("list judges", err)
	}
	return judges, nil
}

func (r *ScoreRepo) judgesQuery(ctx context.Context, eventID uuid.UUID, activeOnly bool) *gorm.DB {
	query := r.db.WithContext(ctx).Where("event_id = ?", eventID)
	if activeOnly {
		query = query.Where("score_exclusion = ?", false)
	}
	return query.Order("created_at, id")
}

// ListCandidates возвращает весь пул кандидатов: мужчины первыми, затем по номеру
func (r *ScoreRepo) ListCandidates(ctx context.Context) ([]entity.Candidate, error) {
	var candidates []entity.Candidate
	err := r.db.WithContext(ctx).
		Order(fmt.Sprintf("CASE WHEN gender = %d THEN 1 ELSE 2 END, candidate_number, id", entity.GenderMale)).
		Find(&candidates).Error
	if err != nil {
		return nil, wrapQueryError("list candidates", err)
	}
	return candidates, nil
}

// candidateCategoryTotalsSQL группирует оценки по паре (кандидат, категория оценки).
// Строка попадает в выборку, если мероприятию принадлежит категория или судья.
// Если категории нет или она из другого мероприятия, чем судья, category_id и weight
// возвращаются как NULL, и сервис рейтинга отбрасывает кандидата как нарушение целостности.
const candidateCategoryTotalsSQL = `
	SELECT
	    c.id AS candidate_id,
	    c.first_name,
	    c.middle_name,
	    c.last_name,
	    s.category_id AS score_category_id,
	    CASE WHEN cat.event_id = j.event_id THEN cat.id END AS category_id,
	    CASE WHEN cat.event_id = j.event_id THEN cat.weight END AS weight,
	    COALESCE(SUM(s.score), 0) AS total_score,
	    COALESCE(SUM(s.max), 0) AS total_max,
	    COALESCE(SUM(s.score), 0) * cat.weight AS weighted_score,
	    COALESCE(SUM(s.max), 0) * cat.weight AS weighted_max
	FROM scores s
	JOIN candidates c ON c.id = s.candidate_id
	JOIN judges j ON j.id = s.judge_id AND j.score_exclusion = FALSE
	LEFT JOIN categories cat ON cat.id = s.category_id
	WHERE cat.event_id = ? OR j.event_id = ?
	GROUP BY
	    c.id, c.first_name, c.middle_name, c.last_name, c.candidate_number, c.gender,
	    s.category_id, cat.id, cat.weight, cat.event_id, j.event_id
	ORDER BY
	    c.candidate_number, c.gender, s.category_id`

// SumScoresByCandidateCategory считает суммы оценок по парам (кандидат, категория) на стороне БД.
// Оценки отстраненных судей не учитываются.
func (r *ScoreRepo) SumScoresByCandidateCategory(ctx context.Context, eventID uuid.UUID) ([]entity.CandidateCategoryTotal, error) {
	var totals []entity.CandidateCategoryTotal
	if err := r.candidateCategoryTotalsQuery(ctx, eventID).Scan(&totals).Error; err != nil {
		return nil, wrapQueryError("sum scores by candidate category", err)
	}
	return totals, nil
}

func (r *ScoreRepo) candidateCategoryTotalsQuery(ctx context.Context, eventID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Raw(candidateCategoryTotalsSQL, eventID, eventID)
}

// ListScores возвращает оценки одного судьи для кандидата в категории
func (r *ScoreRepo) ListScores(ctx context.Context, candidateID, categoryID, judgeID uuid.UUID) ([]entity.Score, error) {
	var scores []entity.Score
	err := r.db.WithContext(ctx).
		Where("candidate_id = ? AND category_id = ? AND judge_id = ?", candidateID, categoryID, judgeID).
		Find(&scores).Error
	if err != nil {
		return nil, wrapQueryError("list scores", err)
	}
	return scores, nil
}

const flatScoresSQL = `
	SELECT
	    s.score,
	    s.max,
	    j.name AS judge_name,
	    can.first_name AS candidate_first_name,
	    can.middle_name AS candidate_middle_name,
	    can.last_name AS candidate_last_name,
	    cat.weight AS weight,
	    e.name AS event_name
	FROM scores s
	JOIN judges j ON j.id = s.judge_id
	JOIN candidates can ON can.id = s.candidate_id
	JOIN categories cat ON cat.id = s.category_id
	JOIN events e ON e.id = cat.event_id
	WHERE s.category_id = ? AND s.criteria_id = ?
	ORDER BY s.time_of_scoring, s.id`

// ListFlatScores возвращает оценки критерия вместе с именами судьи и кандидата,
// весом категории и названием мероприятия
func (r *ScoreRepo) ListFlatScores(ctx context.Context, categoryID, criterionID uuid.UUID) ([]entity.FlatScore, error) {
	var rows []entity.FlatScore
	if err := r.flatScoresQuery(ctx, categoryID, criterionID).Scan(&rows).Error; err != nil {
		return nil, wrapQueryError("list flat scores", err)
	}
	return rows, nil
}

func (r *ScoreRepo) flatScoresQuery(ctx context.Context, categoryID, criterionID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Raw(flatScoresSQL, categoryID, criterionID)
}

// wrapQueryError добавляет имя запроса к ошибке и помечает отмененные запросы как context.Canceled
func wrapQueryError(op string, err error) error {
	if isQueryCanceled(err) && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %w", op, context.Canceled, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isQueryCanceled проверяет Postgres query_canceled (57014) для pgconn и lib/pq драйверов
func isQueryCanceled(err error) bool {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == queryCanceledCode {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == queryCanceledCode {
		return true
	}
	return false
}
