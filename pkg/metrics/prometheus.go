// Package metrics содержит Prometheus-метрики операций подсчета и отчетов.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Имена операций, используемые как значение label "operation"
const (
	OperationFinalScores = "final_scores"
	OperationReportGrid  = "report_grid"
	OperationFlatExport  = "flat_export"
)

// Значения label "status"
const (
	StatusOK             = "ok"
	StatusNotFound       = "not_found"
	StatusInvalid        = "invalid"
	StatusRetrievalError = "retrieval_error"
	StatusIntegrityError = "integrity_error"
	StatusRenderError    = "render_error"
	StatusError          = "error"
)

// Recorder хранит метрики сервиса табуляции
type Recorder struct {
	operationDuration *prometheus.HistogramVec
	operationRows     *prometheus.CounterVec
}

// NewRecorder регистрирует метрики в переданном Registerer.
// В тестах передается отдельный prometheus.NewRegistry(), чтобы избежать повторной регистрации.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tabulation",
				Name:      "operation_duration_seconds",
				Help:      "Duration of ranking and report operations",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation", "status"},
		),
		operationRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tabulation",
				Name:      "operation_rows_total",
				Help:      "Rows produced by ranking and report operations",
			},
			[]string{"operation"},
		),
	}
}

// ObserveOperation записывает длительность операции и количество выданных строк
func (r *Recorder) ObserveOperation(operation, status string, started time.Time, rows int) {
	r.operationDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
	if rows > 0 {
		r.operationRows.WithLabelValues(operation).Add(float64(rows))
	}
}
