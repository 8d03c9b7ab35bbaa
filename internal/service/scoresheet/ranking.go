// Package scoresheet содержит чистую логику подсчета рейтинга и раскладки отчетов.
// Пакет не обращается к хранилищу: сервис передает сюда уже прочитанные строки.
package scoresheet

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/xGihyun/mmu-tabulation-backend/internal/domain/entity"
	apperrors "github.com/xGihyun/mmu-tabulation-backend/internal/pkg/errors"
)

// FinalScore — итоговый результат кандидата по мероприятию
type FinalScore struct {
	CandidateID uuid.UUID
	DisplayName string
	// WeightedScore и WeightedMax — накопленные суммы S и M после округления каждой категории
	WeightedScore float64
	WeightedMax   float64
	// FinalScore = S / M * 100
	FinalScore float64
}

// CandidateFailure описывает кандидата, исключенного из рейтинга
type CandidateFailure struct {
	CandidateID uuid.UUID
	DisplayName string
	Reason      string
}

// AggregationError перечисляет всех исключенных кандидатов.
// errors.Is(err, apperrors.ErrDataIntegrity) для нее истинно.
type AggregationError struct {
	Failures []CandidateFailure
}

func (e *AggregationError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s (%s): %s", f.DisplayName, f.CandidateID, f.Reason))
	}
	return fmt.Sprintf("%s: %d candidate(s) excluded from aggregation: %s",
		apperrors.ErrDataIntegrity, len(e.Failures), strings.Join(parts, "; "))
}

func (e *AggregationError) Unwrap() error {
	return apperrors.ErrDataIntegrity
}

// RoundToTwoDecimals округляет до сотых (половина — от нуля).
// Применяется к взвешенным суммам каждой категории до их накопления.
func RoundToTwoDecimals(v float64) float64 {
	return math.Round(v*100) / 100
}

type candidateTally struct {
	id          uuid.UUID
	displayName string
	score       float64
	max         float64
	failure     string
}

// Aggregate сворачивает суммы по категориям в итоговый процент каждого кандидата.
//
// Для каждой строки (кандидат, категория) взвешенные score и max округляются до сотых
// и накапливаются в S и M; итог равен S / M * 100. Кандидаты возвращаются в порядке
// первого появления во входных строках, каждый ровно один раз.
//
// Кандидат с отсутствующей категорией или весом, с нечисловой суммой или с M == 0
// исключается из результата; такие кандидаты перечисляются в *AggregationError,
// который возвращается вместе с результатами остальных кандидатов.
func Aggregate(rows []entity.CandidateCategoryTotal) ([]FinalScore, error) {
	tallies := make(map[uuid.UUID]*candidateTally)
	order := make([]uuid.UUID, 0)

	for _, row := range rows {
		tally, ok := tallies[row.CandidateID]
		if !ok {
			tally = &candidateTally{
				id:          row.CandidateID,
				displayName: entity.FormatDisplayName(row.FirstName, row.MiddleName, row.LastName),
			}
			tallies[row.CandidateID] = tally
			order = append(order, row.CandidateID)
		}
		if tally.failure != "" {
			continue
		}

		switch {
		case row.CategoryID == nil:
			tally.failure = fmt.Sprintf("category %s is missing or belongs to another event", row.ScoreCategoryID)
		case row.Weight == nil || row.WeightedScore == nil || row.WeightedMax == nil:
			tally.failure = fmt.Sprintf("category %s has no weight", row.ScoreCategoryID)
		case !isFinite(*row.WeightedScore) || !isFinite(*row.WeightedMax):
			tally.failure = fmt.Sprintf("category %s produced a non-finite weighted total", row.ScoreCategoryID)
		default:
			tally.score += RoundToTwoDecimals(*row.WeightedScore)
			tally.max += RoundToTwoDecimals(*row.WeightedMax)
		}
	}

	results := make([]FinalScore, 0, len(order))
	var failures []CandidateFailure
	for _, id := range order {
		tally := tallies[id]
		if tally.failure == "" && tally.max == 0 {
			tally.failure = "weighted max sum is zero"
		}

		var final float64
		if tally.failure == "" {
			final = tally.score / tally.max * 100
			if !isFinite(final) {
				tally.failure = "final score is not a finite number"
			}
		}

		if tally.failure != "" {
			failures = append(failures, CandidateFailure{
				CandidateID: tally.id,
				DisplayName: tally.displayName,
				Reason:      tally.failure,
			})
			continue
		}

		results = append(results, FinalScore{
			CandidateID:   tally.id,
			DisplayName:   tally.displayName,
			WeightedScore: tally.score,
			WeightedMax:   tally.max,
			FinalScore:    final,
		})
	}

	if len(failures) > 0 {
		return results, &AggregationError{Failures: failures}
	}
	return results, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
