package receptions

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice/internal/application/ports"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	domaininv "github.com/jhoicas/retail-backoffice/internal/domain/inventory"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
	"github.com/jhoicas/retail-backoffice/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// ProcessReceptionUseCase aplica una recepción pendiente: suma stock por línea, actualiza
// costos y la marca como procesada, todo en una transacción.
type ProcessReceptionUseCase struct {
	txRunner ReceptionTxRunner
	accessor *inventory.StockAccessor
	effects  *inventory.EffectsNotifier
	metrics  ports.MetricsRecorder
	log      *logger.Logger
	now      func() time.Time
}

// NewProcessReceptionUseCase construye el caso de uso.
func NewProcessReceptionUseCase(
	txRunner ReceptionTxRunner,
	accessor *inventory.StockAccessor,
	effects *inventory.EffectsNotifier,
	metrics ports.MetricsRecorder,
	log *logger.Logger,
) *ProcessReceptionUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ProcessReceptionUseCase{
		txRunner: txRunner,
		accessor: accessor,
		effects:  effects,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
}

// ProcessReception transición pending -> processed.
// Por cada línea (en orden de product id) suma stock, recalcula el costo promedio ponderado
// y, si se pide, toma el precio unitario de la línea como nuevo precio de venta.
// Si la recepción no existe o no está pendiente devuelve domain.ErrNotFoundOrAlreadyProcessed.
func (uc *ProcessReceptionUseCase) ProcessReception(ctx context.Context, userID, receptionID string, in dto.ProcessReceptionRequest) (_ *dto.ReceptionResponse, err error) {
	ctx, span := tracing.Start(ctx, "receptions.ProcessReception",
		attribute.String("reception_id", receptionID),
		attribute.Bool("update_sale_prices", in.UpdateSalePrices),
	)
	start := time.Now()
	defer func() {
		uc.metrics.ObserveOperation("process_reception", err, time.Since(start))
		tracing.End(span, err)
	}()

	var (
		reception *entity.Reception
		results   []*inventory.StockResult
	)
	err = uc.txRunner.RunReception(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		receptionRepo repository.ReceptionRepository,
	) error {
		r, err := receptionRepo.GetForUpdate(ctx, receptionID)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFoundOrAlreadyProcessed
		}
		if err := r.MarkProcessed(uc.now(), userID); err != nil {
			return err
		}

		items := make([]entity.ReceptionLineItem, len(r.Items))
		copy(items, r.Items)
		sort.SliceStable(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

		for _, it := range items {
			res, err := uc.accessor.Increment(ctx, movRepo, productRepo, inventory.StockChange{
				ProductID:     it.ProductID,
				Quantity:      it.Quantity,
				ReferenceType: entity.ReferenceReception,
				ReferenceID:   r.ID,
				UserID:        userID,
				Note:          "recepción factura " + r.InvoiceNumber,
			})
			if err != nil {
				return err
			}
			p := res.Product
			p.PurchasePrice = domaininv.WeightedAverageCost(res.Movement.StockBefore, p.PurchasePrice, it.Quantity, it.UnitPrice)
			if in.UpdateSalePrices {
				p.SalePrice = it.UnitPrice
			}
			if err := productRepo.UpdatePrices(ctx, p.ID, p.SalePrice, p.PurchasePrice); err != nil {
				return err
			}
			results = append(results, res)
		}

		if err := receptionRepo.UpdateStatus(ctx, r); err != nil {
			return err
		}
		reception = r
		return nil
	})
	if err != nil {
		uc.log.WithContext(ctx).Warn().Err(err).
			Str("reception_id", receptionID).
			Bool("retryable", domain.IsRetryable(err)).
			Msg("procesamiento de recepción rechazado")
		return nil, err
	}

	uc.effects.AfterCommit(ctx, results)
	uc.effects.Publish(ctx, ports.EventReceptionProcessed, reception.ID, ProcessedPayload{
		ReceptionID:   reception.ID,
		InvoiceNumber: reception.InvoiceNumber,
		SupplierID:    reception.SupplierID,
		Total:         reception.Total.StringFixed(2),
		Lines:         len(reception.Items),
		ProcessedBy:   userID,
	})
	uc.log.WithContext(ctx).Info().
		Str("reception_id", reception.ID).
		Str("invoice_number", reception.InvoiceNumber).
		Int("lines", len(reception.Items)).
		Msg("recepción procesada")
	return ToReceptionResponse(reception), nil
}
