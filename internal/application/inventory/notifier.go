package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/retail-backoffice/internal/application/ports"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
)

// LowStockPayload contenido del evento stock.low.
type LowStockPayload struct {
	ProductID    string `json:"product_id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	CurrentStock string `json:"current_stock"`
	MinimumStock string `json:"minimum_stock"`
}

// EffectsNotifier aplica los efectos posteriores al commit: invalida la caché de stock
// de los productos tocados y publica eventos. Ningún fallo aquí deshace la operación.
type EffectsNotifier struct {
	cache     ports.StockCache
	publisher ports.EventPublisher
	log       *logger.Logger
}

// NewEffectsNotifier construye el notificador; dependencias nil se reemplazan por no-op.
func NewEffectsNotifier(cache ports.StockCache, publisher ports.EventPublisher, log *logger.Logger) *EffectsNotifier {
	if cache == nil {
		cache = ports.NopStockCache{}
	}
	if publisher == nil {
		publisher = ports.NopEventPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &EffectsNotifier{cache: cache, publisher: publisher, log: log}
}

// AfterCommit invalida la caché de los productos modificados y emite stock.low
// para los que quedaron en o bajo su mínimo tras una salida.
func (n *EffectsNotifier) AfterCommit(ctx context.Context, results []*StockResult) {
	if n == nil || len(results) == 0 {
		return
	}
	ids := make([]string, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		if seen[r.Product.ID] {
			continue
		}
		seen[r.Product.ID] = true
		ids = append(ids, r.Product.ID)
	}
	if err := n.cache.Invalidate(ctx, ids...); err != nil {
		n.log.WithContext(ctx).Warn().Err(err).Strs("product_ids", ids).Msg("no se pudo invalidar la caché de stock")
	}

	for _, r := range results {
		if r.Movement.Direction != entity.DirectionOut || !r.Product.IsLowStock() {
			continue
		}
		n.Publish(ctx, ports.EventStockLow, r.Product.ID, LowStockPayload{
			ProductID:    r.Product.ID,
			Code:         r.Product.Code,
			Name:         r.Product.Name,
			CurrentStock: r.Product.CurrentStock.String(),
			MinimumStock: r.Product.MinimumStock.String(),
		})
	}
}

// Publish publica un evento de dominio registrando (sin propagar) cualquier fallo.
func (n *EffectsNotifier) Publish(ctx context.Context, eventType, aggregateID string, payload any) {
	if n == nil {
		return
	}
	ev := ports.Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Payload:     payload,
	}
	if err := n.publisher.Publish(ctx, ev); err != nil {
		n.log.WithContext(ctx).Error().Err(err).
			Str("event", eventType).
			Str("aggregate_id", aggregateID).
			Msg("fallo al publicar evento")
	}
}
