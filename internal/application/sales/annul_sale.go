package sales

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice/internal/application/ports"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
	"github.com/jhoicas/retail-backoffice/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// AnnulSaleUseCase anula una venta activa dentro de la ventana permitida y restituye el stock.
type AnnulSaleUseCase struct {
	txRunner SaleTxRunner
	accessor *inventory.StockAccessor
	effects  *inventory.EffectsNotifier
	metrics  ports.MetricsRecorder
	log      *logger.Logger
	rules    Rules
	now      func() time.Time
}

// NewAnnulSaleUseCase construye el caso de uso.
func NewAnnulSaleUseCase(
	txRunner SaleTxRunner,
	accessor *inventory.StockAccessor,
	effects *inventory.EffectsNotifier,
	metrics ports.MetricsRecorder,
	log *logger.Logger,
	rules Rules,
) *AnnulSaleUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if rules.AnnulmentWindow <= 0 {
		rules.AnnulmentWindow = DefaultRules().AnnulmentWindow
	}
	return &AnnulSaleUseCase{
		txRunner: txRunner,
		accessor: accessor,
		effects:  effects,
		metrics:  metrics,
		log:      log,
		rules:    rules,
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *AnnulSaleUseCase) WithClock(now func() time.Time) *AnnulSaleUseCase {
	uc.now = now
	return uc
}

// AnnulSale bloquea la venta, verifica estado y ventana, devuelve al stock la cantidad
// original de cada línea y marca la venta como anulada. Las líneas se conservan.
func (uc *AnnulSaleUseCase) AnnulSale(ctx context.Context, userID, saleID string, in dto.AnnulSaleRequest) (_ *dto.AnnulSaleResponse, err error) {
	ctx, span := tracing.Start(ctx, "sales.AnnulSale", attribute.String("sale_id", saleID))
	start := time.Now()
	defer func() {
		uc.metrics.ObserveOperation("annul_sale", err, time.Since(start))
		tracing.End(span, err)
	}()

	reason := strings.TrimSpace(in.Reason)
	if utf8.RuneCountInString(reason) < uc.rules.MinAnnulReasonLength {
		return nil, fmt.Errorf("%w: mínimo %d caracteres", domain.ErrAnnulReasonTooShort, uc.rules.MinAnnulReasonLength)
	}
	if saleID == "" {
		return nil, domain.ErrSaleNotFound
	}

	var (
		sale    *entity.Sale
		results []*inventory.StockResult
	)
	err = uc.txRunner.RunSale(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		s, err := saleRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrSaleNotFound
		}
		if err := s.Annul(uc.now(), userID, reason, uc.rules.AnnulmentWindow); err != nil {
			return err
		}

		changes := make([]inventory.StockChange, 0, len(s.Items))
		for _, it := range s.Items {
			changes = append(changes, inventory.StockChange{
				ProductID:     it.ProductID,
				Quantity:      it.Quantity,
				ReferenceType: entity.ReferenceSale,
				ReferenceID:   s.ID,
				UserID:        userID,
				Note:          "anulación venta " + s.SaleNumber,
			})
		}
		results, err = uc.accessor.ApplyInOrder(ctx, movRepo, productRepo, entity.DirectionIn, changes)
		if err != nil {
			return err
		}
		if err := saleRepo.MarkAnnulled(ctx, s); err != nil {
			return err
		}
		sale = s
		return nil
	})
	if err != nil {
		uc.log.WithContext(ctx).Warn().Err(err).
			Str("sale_id", saleID).
			Bool("retryable", domain.IsRetryable(err)).
			Msg("anulación rechazada")
		return nil, err
	}

	uc.effects.AfterCommit(ctx, results)
	uc.effects.Publish(ctx, ports.EventSaleAnnulled, sale.ID, eventPayload(sale))
	uc.log.WithContext(ctx).Info().
		Str("sale_id", sale.ID).
		Str("sale_number", sale.SaleNumber).
		Str("annulled_by", userID).
		Msg("venta anulada")

	return &dto.AnnulSaleResponse{SaleNumber: sale.SaleNumber}, nil
}
