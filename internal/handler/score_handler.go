package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xGihyun/mmu-tabulation-backend/internal/handler/dto"
	apperrors "github.com/xGihyun/mmu-tabulation-backend/internal/pkg/errors"
	"github.com/xGihyun/mmu-tabulation-backend/internal/service/scoresheet"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv; charset=utf-8"
)

// utf8BOM помогает Excel корректно открыть CSV с не-ASCII именами
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TabulationProvider — операции подсчета, которые нужны обработчику
type TabulationProvider interface {
	ComputeFinalScores(ctx context.Context, eventID uuid.UUID) ([]scoresheet.FinalScore, error)
	RenderReportGrid(ctx context.Context, eventID uuid.UUID) ([]byte, error)
	ExportFlat(ctx context.Context, eventIDs ...uuid.UUID) ([]byte, error)
}

// ScoreHandler обрабатывает запросы рейтинга и отчетов
type ScoreHandler struct {
	tabulation TabulationProvider
	csvBOM     bool
}

// NewScoreHandler создает новый обработчик рейтинга и отчетов
func NewScoreHandler(tabulation TabulationProvider, csvBOM bool) *ScoreHandler {
	return &ScoreHandler{
		tabulation: tabulation,
		csvBOM:     csvBOM,
	}
}

// GetFinalScores возвращает итоговый рейтинг мероприятия, отсортированный по убыванию
func (h *ScoreHandler) GetFinalScores(c *gin.Context) {
	eventID := c.MustGet("eventID").(uuid.UUID)

	scores, err := h.tabulation.ComputeFinalScores(c.Request.Context(), eventID)
	if err != nil {
		h.handleScoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewFinalScoreListResponse(eventID, scores))
}

// DownloadReport отдает xlsx-отчет мероприятия
func (h *ScoreHandler) DownloadReport(c *gin.Context) {
	eventID := c.MustGet("eventID").(uuid.UUID)

	buf, err := h.tabulation.RenderReportGrid(c.Request.Context(), eventID)
	if err != nil {
		h.handleScoreError(c, err)
		return
	}

	filename := fmt.Sprintf("scores_%s_%s.xlsx", eventID, time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf)
}

// ExportScores отдает плоский CSV со всеми оценками.
// Параметр event_id можно повторять; без него выгружаются все мероприятия.
func (h *ScoreHandler) ExportScores(c *gin.Context) {
	rawIDs := c.QueryArray("event_id")
	eventIDs := make([]uuid.UUID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid event_id %q", raw)})
			return
		}
		eventIDs = append(eventIDs, id)
	}

	buf, err := h.tabulation.ExportFlat(c.Request.Context(), eventIDs...)
	if err != nil {
		h.handleScoreError(c, err)
		return
	}

	if h.csvBOM {
		buf = append(append(make([]byte, 0, len(utf8BOM)+len(buf)), utf8BOM...), buf...)
	}

	filename := fmt.Sprintf("scores_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, csvContentType, buf)
}

// handleScoreError обрабатывает ошибки сервиса табуляции
func (h *ScoreHandler) handleScoreError(c *gin.Context, err error) {
	var aggErr *scoresheet.AggregationError
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.As(err, &aggErr) {
		failures := make([]gin.H, 0, len(aggErr.Failures))
		for _, f := range aggErr.Failures {
			failures = append(failures, gin.H{
				"candidate_id":   f.CandidateID,
				"candidate_name": f.DisplayName,
				"reason":         f.Reason,
			})
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      apperrors.ErrDataIntegrity.Error(),
			"error_type": "data_integrity",
			"candidates": failures,
		})
	} else if errors.Is(err, apperrors.ErrDataIntegrity) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "error_type": "data_integrity"})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	} else if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		log.Printf("[ScoreHandler] Request aborted: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Request cancelled"})
	} else {
		log.Printf("ERROR: Internal server error in ScoreHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
