package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice/internal/application/ports"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
	"github.com/jhoicas/retail-backoffice/pkg/tracing"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// CreateSaleUseCase registra una venta: cabecera, líneas y descuento de stock en una sola transacción.
type CreateSaleUseCase struct {
	txRunner SaleTxRunner
	accessor *inventory.StockAccessor
	effects  *inventory.EffectsNotifier
	metrics  ports.MetricsRecorder
	log      *logger.Logger
	now      func() time.Time
}

// NewCreateSaleUseCase construye el caso de uso inyectando todas sus dependencias.
func NewCreateSaleUseCase(
	txRunner SaleTxRunner,
	accessor *inventory.StockAccessor,
	effects *inventory.EffectsNotifier,
	metrics ports.MetricsRecorder,
	log *logger.Logger,
) *CreateSaleUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CreateSaleUseCase{
		txRunner: txRunner,
		accessor: accessor,
		effects:  effects,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *CreateSaleUseCase) WithClock(now func() time.Time) *CreateSaleUseCase {
	uc.now = now
	return uc
}

type saleLine struct {
	ref       entity.ProductRef
	quantity  decimal.Decimal
	unitPrice *decimal.Decimal
}

// CreateSale valida la solicitud, resuelve cada producto y, dentro de una transacción,
// inserta la venta con sus líneas y descuenta el stock en orden de product id.
//
// Retorna:
//   - domain.ErrInvalidProductRef       si una línea no identifica el producto por exactamente un atributo.
//   - domain.ErrProductNotFound         si un producto no existe.
//   - domain.ErrProductInactive         si un producto está inactivo.
//   - domain.ErrDuplicateLineIdentifier si el mismo producto aparece en dos líneas.
//   - *domain.InsufficientStockError    si el stock no alcanza al momento del commit.
//   - domain.ErrConcurrencyConflict     si se agotó la espera de bloqueo (reintentable).
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, userID string, in dto.CreateSaleRequest) (_ *dto.CreateSaleResponse, err error) {
	ctx, span := tracing.Start(ctx, "sales.CreateSale", attribute.Int("lines", len(in.Items)))
	start := time.Now()
	defer func() {
		uc.metrics.ObserveOperation("create_sale", err, time.Since(start))
		tracing.End(span, err)
	}()

	// ── 1. Validación de forma (fuera de la transacción) ──────────────────────
	paymentMethod := in.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = entity.PaymentCash
	}
	if !entity.ValidPaymentMethod(paymentMethod) {
		return nil, fmt.Errorf("%w: medio de pago %q", domain.ErrInvalidInput, paymentMethod)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la venta requiere al menos una línea", domain.ErrInvalidInput)
	}
	lines := make([]saleLine, 0, len(in.Items))
	for i, it := range in.Items {
		ref, err := entity.NewProductRef(it.ProductID, it.Code, it.Name)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
		if !it.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: línea %d: la cantidad debe ser mayor a cero", domain.ErrInvalidInput, i+1)
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: línea %d: precio unitario negativo", domain.ErrInvalidInput, i+1)
		}
		lines = append(lines, saleLine{ref: ref, quantity: it.Quantity, unitPrice: it.UnitPrice})
	}

	now := uc.now()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		UserID:        userID,
		PaymentMethod: paymentMethod,
		Status:        entity.SaleStatusActive,
		CreatedAt:     now,
	}

	// ── 2. Transacción: resolver, insertar y descontar ────────────────────────
	var results []*inventory.StockResult
	err = uc.txRunner.RunSale(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		seen := make(map[string]bool, len(lines))
		items := make([]entity.SaleLineItem, 0, len(lines))
		changes := make([]inventory.StockChange, 0, len(lines))
		total := decimal.Zero

		for _, l := range lines {
			product, err := inventory.ResolveProduct(ctx, productRepo, l.ref)
			if err != nil {
				return err
			}
			if seen[product.ID] {
				return fmt.Errorf("%w: %s", domain.ErrDuplicateLineIdentifier, product.ID)
			}
			seen[product.ID] = true
			if !product.AcceptsQuantity(l.quantity) {
				return fmt.Errorf("%w: %s", domain.ErrFractionalQuantity, product.Code)
			}

			unitPrice := product.SalePrice
			if l.unitPrice != nil {
				unitPrice = *l.unitPrice
			}
			subtotal := entity.LineSubtotal(l.quantity, unitPrice)
			total = total.Add(subtotal)
			items = append(items, entity.SaleLineItem{
				ID:        uuid.New().String(),
				SaleID:    sale.ID,
				ProductID: product.ID,
				Quantity:  l.quantity,
				UnitPrice: unitPrice,
				Subtotal:  subtotal,
			})
			changes = append(changes, inventory.StockChange{
				ProductID:     product.ID,
				Quantity:      l.quantity,
				ReferenceType: entity.ReferenceSale,
				ReferenceID:   sale.ID,
				UserID:        userID,
				RequireActive: true,
			})
		}

		number, err := saleRepo.NextNumber(ctx, now)
		if err != nil {
			return err
		}
		sale.SaleNumber = number
		sale.Total = total
		sale.Items = items

		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}
		if err := saleRepo.CreateItems(ctx, items); err != nil {
			return err
		}
		for i := range changes {
			changes[i].Note = "venta " + number
		}
		results, err = uc.accessor.ApplyInOrder(ctx, movRepo, productRepo, entity.DirectionOut, changes)
		return err
	})
	if err != nil {
		uc.log.WithContext(ctx).Warn().Err(err).
			Bool("retryable", domain.IsRetryable(err)).
			Msg("venta rechazada")
		return nil, err
	}

	// ── 3. Efectos posteriores al commit ──────────────────────────────────────
	uc.effects.AfterCommit(ctx, results)
	uc.effects.Publish(ctx, ports.EventSaleCreated, sale.ID, eventPayload(sale))
	uc.log.WithContext(ctx).Info().
		Str("sale_id", sale.ID).
		Str("sale_number", sale.SaleNumber).
		Str("total", sale.Total.StringFixed(2)).
		Int("lines", len(sale.Items)).
		Msg("venta registrada")

	return &dto.CreateSaleResponse{
		SaleID:     sale.ID,
		SaleNumber: sale.SaleNumber,
		Total:      sale.Total,
	}, nil
}
