package ports

import (
	"context"
	"time"
)

// Tipos de evento de dominio publicados tras el commit.
const (
	EventSaleCreated        = "sale.created"
	EventSaleAnnulled       = "sale.annulled"
	EventReceptionProcessed = "reception.processed"
	EventStockLow           = "stock.low"
)

// Event evento de dominio. AggregateID se usa como clave de partición.
type Event struct {
	ID          string
	Type        string
	AggregateID string
	OccurredAt  time.Time
	Payload     any
}

// EventPublisher define el puerto de salida para publicar eventos de dominio.
// Se invoca después del commit: un fallo al publicar nunca deshace la operación.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopEventPublisher descarta los eventos (sin broker configurado).
type NopEventPublisher struct{}

// Publish no hace nada.
func (NopEventPublisher) Publish(context.Context, Event) error { return nil }
