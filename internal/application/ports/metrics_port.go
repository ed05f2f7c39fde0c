package ports

import "time"

// MetricsRecorder registra el resultado de cada operación del motor de inventario.
type MetricsRecorder interface {
	ObserveOperation(operation string, err error, elapsed time.Duration)
}

// NopMetrics no registra nada.
type NopMetrics struct{}

func (NopMetrics) ObserveOperation(string, error, time.Duration) {}
