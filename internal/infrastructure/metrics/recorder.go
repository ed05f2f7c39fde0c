// Package metrics expone el resultado de las operaciones del motor de inventario en Prometheus.
package metrics

import (
	"time"

	"github.com/jhoicas/retail-backoffice/internal/application/ports"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

var _ ports.MetricsRecorder = (*Recorder)(nil)

// Nombres de las métricas.
const (
	MetricOperationsTotal          = "backoffice_operations_total"
	MetricOperationDurationSeconds = "backoffice_operation_duration_seconds"
)

// Recorder cuenta operaciones por resultado (ok o el tipo de error) y mide su duración.
type Recorder struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewRecorder registra las métricas en reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricOperationsTotal,
			Help: "Operaciones del back-office por resultado",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricOperationDurationSeconds,
			Help:    "Duración de las operaciones del back-office",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),
	}
	reg.MustRegister(r.operations, r.duration)
	return r
}

// Outcome etiqueta de resultado: "ok" o la categoría del error.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(domain.KindOf(err))
}

func (r *Recorder) ObserveOperation(operation string, err error, elapsed time.Duration) {
	r.operations.WithLabelValues(operation, Outcome(err)).Inc()
	r.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
