package dto

import (
	"sort"

	"github.com/google/uuid"

	"github.com/xGihyun/mmu-tabulation-backend/internal/service/scoresheet"
)

// FinalScoreResponse представляет итоговый результат кандидата в формате для ответа клиенту
type FinalScoreResponse struct {
	Rank          int       `json:"rank"`
	CandidateID   uuid.UUID `json:"candidate_id"`
	CandidateName string    `json:"candidate_name"`
	FinalScore    float64   `json:"final_score"`
}

// FinalScoreListResponse представляет рейтинг мероприятия
type FinalScoreListResponse struct {
	EventID uuid.UUID             `json:"event_id"`
	Results []*FinalScoreResponse `json:"results"`
}

// NewFinalScoreListResponse сортирует результаты по убыванию итогового балла и нумерует места.
// При равенстве баллов порядок определяется именем, затем ID кандидата.
func NewFinalScoreListResponse(eventID uuid.UUID, scores []scoresheet.FinalScore) *FinalScoreListResponse {
	sorted := make([]scoresheet.FinalScore, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].FinalScore != sorted[j].FinalScore {
			return sorted[i].FinalScore > sorted[j].FinalScore
		}
		if sorted[i].DisplayName != sorted[j].DisplayName {
			return sorted[i].DisplayName < sorted[j].DisplayName
		}
		return sorted[i].CandidateID.String() < sorted[j].CandidateID.String()
	})

	results := make([]*FinalScoreResponse, 0, len(sorted))
	for i, s := range sorted {
		results = append(results, &FinalScoreResponse{
			Rank:          i + 1,
			CandidateID:   s.CandidateID,
			CandidateName: s.DisplayName,
			FinalScore:    s.FinalScore,
		})
	}

	return &FinalScoreListResponse{EventID: eventID, Results: results}
}
