package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xGihyun/mmu-tabulation-backend/internal/domain/entity"
	"github.com/xGihyun/mmu-tabulation-backend/internal/domain/repository"
	apperrors "github.com/xGihyun/mmu-tabulation-backend/internal/pkg/errors"
	"github.com/xGihyun/mmu-tabulation-backend/internal/service/scoresheet"
	"github.com/xGihyun/mmu-tabulation-backend/pkg/metrics"
)

// TabulationService считает итоговый рейтинг и строит отчеты по оценкам судей.
// Каждая операция читает данные в одном снимке хранилища и ничего не записывает.
type TabulationService struct {
	store     repository.ScoreStore
	metrics   *metrics.Recorder
	tracer    trace.Tracer
	sheetName string
}

// NewTabulationService создает новый сервис табуляции
func NewTabulationService(store repository.ScoreStore, recorder *metrics.Recorder, sheetName string) *TabulationService {
	return &TabulationService{
		store:     store,
		metrics:   recorder,
		tracer:    otel.Tracer("tabulation-service"),
		sheetName: sheetName,
	}
}

// ComputeFinalScores возвращает итоговый процент каждого кандидата, у которого есть
// хотя бы одна учитываемая оценка в мероприятии. Порядок результатов не гарантируется
// сервисом: вызывающая сторона сортирует их сама.
//
// Если хотя бы один кандидат исключен из подсчета (нет веса категории, M == 0),
// вся операция отклоняется с ошибкой ErrDataIntegrity, перечисляющей кандидатов.
func (s *TabulationService) ComputeFinalScores(ctx context.Context, eventID uuid.UUID) ([]scoresheet.FinalScore, error) {
	ctx, span := s.tracer.Start(ctx, "TabulationService.ComputeFinalScores",
		trace.WithAttributes(attribute.String("event.id", eventID.String())))
	defer span.End()
	started := time.Now()

	var results []scoresheet.FinalScore
	err := s.store.ReadSnapshot(ctx, func(reader repository.ScoreReader) error {
		if _, err := reader.GetEvent(ctx, eventID); err != nil {
			return retrievalError("get event "+eventID.String(), err)
		}

		rows, err := reader.SumScoresByCandidateCategory(ctx, eventID)
		if err != nil {
			return retrievalError("sum scores by candidate category", err)
		}
		span.SetAttributes(attribute.Int("score.category_rows", len(rows)))

		computed, err := scoresheet.Aggregate(rows)
		if err != nil {
			return err
		}
		results = computed
		return nil
	})
	if err != nil {
		err = snapshotError(err)
		s.finish(span, metrics.OperationFinalScores, started, 0, err)
		return nil, err
	}

	s.finish(span, metrics.OperationFinalScores, started, len(results), nil)
	return results, nil
}

// RenderReportGrid строит xlsx-отчет мероприятия: по блоку на каждую категорию,
// колонки — активные судьи. Кандидаты берутся из общего пула, а не только из мероприятия.
func (s *TabulationService) RenderReportGrid(ctx context.Context, eventID uuid.UUID) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "TabulationService.RenderReportGrid",
		trace.WithAttributes(attribute.String("event.id", eventID.String())))
	defer span.End()
	started := time.Now()

	var grid *scoresheet.Grid
	err := s.store.ReadSnapshot(ctx, func(reader repository.ScoreReader) error {
		if _, err := reader.GetEvent(ctx, eventID); err != nil {
			return retrievalError("get event "+eventID.String(), err)
		}

		categories, err := reader.ListCategories(ctx, eventID)
		if err != nil {
			return retrievalError("list categories", err)
		}
		judges, err := reader.ListJudges(ctx, eventID, true)
		if err != nil {
			return retrievalError("list judges", err)
		}
		for _, judge := range judges {
			if !judge.IsScoring() {
				return fmt.Errorf("%w: judge %s is excluded from scoring but listed as active", apperrors.ErrDataIntegrity, judge.ID)
			}
		}
		candidates, err := reader.ListCandidates(ctx)
		if err != nil {
			return retrievalError("list candidates", err)
		}
		males, females := partitionByGender(candidates)

		blocks := make([]scoresheet.Block, 0, len(categories))
		for _, category := range categories {
			block := scoresheet.Block{Category: category, Judges: judges}
			if block.Males, err = collectLines(ctx, reader, category, judges, males); err != nil {
				return err
			}
			if block.Females, err = collectLines(ctx, reader, category, judges, females); err != nil {
				return err
			}
			blocks = append(blocks, block)
		}

		span.SetAttributes(
			attribute.Int("report.categories", len(categories)),
			attribute.Int("report.judges", len(judges)),
			attribute.Int("report.candidates", len(candidates)),
		)
		grid = scoresheet.LayoutGrid(blocks)
		return nil
	})
	if err != nil {
		err = snapshotError(err)
		s.finish(span, metrics.OperationReportGrid, started, 0, err)
		return nil, err
	}

	buf, err := scoresheet.WriteWorkbook(grid, s.sheetName)
	if err != nil {
		err = fmt.Errorf("%w: %w", apperrors.ErrRender, err)
		s.finish(span, metrics.OperationReportGrid, started, 0, err)
		return nil, err
	}

	s.finish(span, metrics.OperationReportGrid, started, grid.Rows, nil)
	return buf, nil
}

// ExportFlat выгружает все оценки выбранных мероприятий в CSV: мероприятия в порядке запроса,
// внутри — категории, критерии и оценки в порядке хранилища.
// Без eventIDs выгружаются все мероприятия. Повторяющиеся ID учитываются один раз.
func (s *TabulationService) ExportFlat(ctx context.Context, eventIDs ...uuid.UUID) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "TabulationService.ExportFlat",
		trace.WithAttributes(attribute.Int("export.requested_events", len(eventIDs))))
	defer span.End()
	started := time.Now()

	var records []scoresheet.FlatRecord
	err := s.store.ReadSnapshot(ctx, func(reader repository.ScoreReader) error {
		events, err := resolveEvents(ctx, reader, eventIDs)
		if err != nil {
			return err
		}

		for _, event := range events {
			categories, err := reader.ListCategories(ctx, event.ID)
			if err != nil {
				return retrievalError("list categories of event "+event.ID.String(), err)
			}
			for _, category := range categories {
				criteria, err := reader.ListCriteria(ctx, category.ID)
				if err != nil {
					return retrievalError("list criteria of category "+category.ID.String(), err)
				}
				for _, criterion := range criteria {
					rows, err := reader.ListFlatScores(ctx, category.ID, criterion.ID)
					if err != nil {
						return retrievalError("list flat scores of criterion "+criterion.ID.String(), err)
					}
					for _, row := range rows {
						records = append(records, scoresheet.NewFlatRecord(category, criterion, row))
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		err = snapshotError(err)
		s.finish(span, metrics.OperationFlatExport, started, 0, err)
		return nil, err
	}

	var buf bytes.Buffer
	if err := scoresheet.WriteFlatCSV(&buf, records); err != nil {
		err = fmt.Errorf("%w: %w", apperrors.ErrRender, err)
		s.finish(span, metrics.OperationFlatExport, started, 0, err)
		return nil, err
	}

	s.finish(span, metrics.OperationFlatExport, started, len(records), nil)
	return buf.Bytes(), nil
}

// finish закрывает span, пишет метрики и логирует неудачные операции
func (s *TabulationService) finish(span trace.Span, operation string, started time.Time, rows int, err error) {
	status := statusOf(err)
	if s.metrics != nil {
		s.metrics.ObserveOperation(operation, status, started, rows)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		log.Printf("[TabulationService] %s failed after %s: %v", operation, time.Since(started), err)
		return
	}
	span.SetAttributes(attribute.Int("result.rows", rows))
	span.SetStatus(codes.Ok, "")
}

// collectLines считает сумму оценок каждого судьи для каждого кандидата в категории.
// Сумма считается на стороне сервиса по строкам ListScores, отдельно для каждого судьи.
// Оценка вне диапазона [0, max] прерывает отчет с ErrDataIntegrity.
func collectLines(
	ctx context.Context,
	reader repository.ScoreReader,
	category entity.Category,
	judges []entity.Judge,
	candidates []entity.Candidate,
) ([]scoresheet.CandidateLine, error) {
	lines := make([]scoresheet.CandidateLine, 0, len(candidates))
	for _, candidate := range candidates {
		totals := make([]int, len(judges))
		for i, judge := range judges {
			scores, err := reader.ListScores(ctx, candidate.ID, category.ID, judge.ID)
			if err != nil {
				return nil, retrievalError(fmt.Sprintf("list scores of candidate %s by judge %s", candidate.ID, judge.ID), err)
			}
			for _, score := range scores {
				if err := score.Validate(); err != nil {
					return nil, fmt.Errorf("%w: candidate %s, judge %s: %w", apperrors.ErrDataIntegrity, candidate.ID, judge.ID, err)
				}
				totals[i] += score.Score
			}
		}
		lines = append(lines, scoresheet.CandidateLine{Candidate: candidate, JudgeTotals: totals})
	}
	return lines, nil
}

// partitionByGender делит кандидатов на мужской и женский блоки, каждый по номеру кандидата
func partitionByGender(candidates []entity.Candidate) (males, females []entity.Candidate) {
	for _, candidate := range candidates {
		if candidate.IsMale() {
			males = append(males, candidate)
		} else {
			females = append(females, candidate)
		}
	}
	sort.SliceStable(males, func(i, j int) bool { return males[i].CandidateNumber < males[j].CandidateNumber })
	sort.SliceStable(females, func(i, j int) bool { return females[i].CandidateNumber < females[j].CandidateNumber })
	return males, females
}

// resolveEvents возвращает запрошенные мероприятия без повторов или все мероприятия, если ID не переданы
func resolveEvents(ctx context.Context, reader repository.ScoreReader, eventIDs []uuid.UUID) ([]entity.Event, error) {
	for _, id := range eventIDs {
		if id == uuid.Nil {
			return nil, fmt.Errorf("%w: event id must not be nil", apperrors.ErrValidation)
		}
	}
	if len(eventIDs) == 0 {
		events, err := reader.ListEvents(ctx)
		if err != nil {
			return nil, retrievalError("list events", err)
		}
		return events, nil
	}

	seen := make(map[uuid.UUID]struct{}, len(eventIDs))
	events := make([]entity.Event, 0, len(eventIDs))
	for _, id := range eventIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		event, err := reader.GetEvent(ctx, id)
		if err != nil {
			return nil, retrievalError("get event "+id.String(), err)
		}
		events = append(events, *event)
	}
	return events, nil
}

// retrievalError помечает ошибку хранилища как ErrRetrieval с именем вызова.
// ErrNotFound пробрасывается как есть, чтобы вызывающая сторона могла вернуть 404.
func retrievalError(call string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%s: %w", call, err)
	}
	return fmt.Errorf("%w: %s: %w", apperrors.ErrRetrieval, call, err)
}

// snapshotError классифицирует ошибку, вернувшуюся из ReadSnapshot.
// Ошибки начала/фиксации транзакции не проходят через retrievalError и помечаются здесь.
func snapshotError(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrRetrieval),
		errors.Is(err, apperrors.ErrDataIntegrity),
		errors.Is(err, apperrors.ErrRender):
		return err
	default:
		return fmt.Errorf("%w: read snapshot: %w", apperrors.ErrRetrieval, err)
	}
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return metrics.StatusOK
	case errors.Is(err, apperrors.ErrNotFound):
		return metrics.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation):
		return metrics.StatusInvalid
	case errors.Is(err, apperrors.ErrRetrieval):
		return metrics.StatusRetrievalError
	case errors.Is(err, apperrors.ErrDataIntegrity):
		return metrics.StatusIntegrityError
	case errors.Is(err, apperrors.ErrRender):
		return metrics.StatusRenderError
	default:
		return metrics.StatusError
	}
}
