package receptions

import (
	"context"
	"fmt"
	"strings"
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

// CreateReceptionUseCase registra una recepción pendiente. No toca stock ni libro.
type CreateReceptionUseCase struct {
	txRunner     ReceptionTxRunner
	supplierRepo repository.SupplierRepository
	metrics      ports.MetricsRecorder
	log          *logger.Logger
	now          func() time.Time
}

// NewCreateReceptionUseCase construye el caso de uso.
func NewCreateReceptionUseCase(
	txRunner ReceptionTxRunner,
	supplierRepo repository.SupplierRepository,
	metrics ports.MetricsRecorder,
	log *logger.Logger,
) *CreateReceptionUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CreateReceptionUseCase{
		txRunner:     txRunner,
		supplierRepo: supplierRepo,
		metrics:      metrics,
		log:          log,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *CreateReceptionUseCase) WithClock(now func() time.Time) *CreateReceptionUseCase {
	uc.now = now
	return uc
}

type receptionLine struct {
	ref       entity.ProductRef
	quantity  decimal.Decimal
	unitPrice decimal.Decimal
}

// CreateReception valida proveedor, fecha y líneas y persiste la recepción en estado pending.
//
// Retorna:
//   - domain.ErrSupplierNotFound / domain.ErrSupplierInactive
//   - domain.ErrFutureReceptionDate si la fecha es posterior a hoy.
//   - domain.ErrDuplicateInvoice    si la factura ya existe para el proveedor.
//   - domain.ErrProductNotFound / domain.ErrProductInactive por línea.
func (uc *CreateReceptionUseCase) CreateReception(ctx context.Context, userID string, in dto.CreateReceptionRequest) (_ *dto.CreateReceptionResponse, err error) {
	ctx, span := tracing.Start(ctx, "receptions.CreateReception",
		attribute.String("supplier_id", in.SupplierID),
		attribute.Int("lines", len(in.Items)),
	)
	start := time.Now()
	defer func() {
		uc.metrics.ObserveOperation("create_reception", err, time.Since(start))
		tracing.End(span, err)
	}()

	// ── 1. Validación de forma ────────────────────────────────────────────────
	invoice := strings.TrimSpace(in.InvoiceNumber)
	if invoice == "" || in.SupplierID == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la recepción requiere al menos una línea", domain.ErrInvalidInput)
	}
	now := uc.now()
	date, err := time.ParseInLocation("2006-01-02", in.ReceptionDate, now.Location())
	if err != nil {
		return nil, fmt.Errorf("%w: fecha de recepción %q", domain.ErrInvalidInput, in.ReceptionDate)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.After(today) {
		return nil, domain.ErrFutureReceptionDate
	}
	lines := make([]receptionLine, 0, len(in.Items))
	for i, it := range in.Items {
		ref, err := entity.NewProductRef(it.ProductID, it.Code, it.Name)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
		if !it.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: línea %d: la cantidad debe ser mayor a cero", domain.ErrInvalidInput, i+1)
		}
		if it.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: línea %d: precio unitario negativo", domain.ErrInvalidInput, i+1)
		}
		lines = append(lines, receptionLine{ref: ref, quantity: it.Quantity, unitPrice: it.UnitPrice})
	}

	// ── 2. Proveedor existente y activo ───────────────────────────────────────
	supplier, err := uc.supplierRepo.GetByID(ctx, in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrSupplierNotFound
	}
	if !supplier.Active {
		return nil, domain.ErrSupplierInactive
	}

	reception := &entity.Reception{
		ID:            uuid.New().String(),
		InvoiceNumber: invoice,
		SupplierID:    supplier.ID,
		UserID:        userID,
		ReceptionDate: date,
		Notes:         strings.TrimSpace(in.Notes),
		Status:        entity.ReceptionPending,
		CreatedAt:     now,
	}

	// ── 3. Transacción: unicidad de factura, productos y persistencia ─────────
	err = uc.txRunner.RunReception(ctx, func(
		_ repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		receptionRepo repository.ReceptionRepository,
	) error {
		exists, err := receptionRepo.ExistsInvoice(ctx, supplier.ID, invoice)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateInvoice, invoice)
		}

		items := make([]entity.ReceptionLineItem, 0, len(lines))
		total := decimal.Zero
		for _, l := range lines {
			product, err := inventory.ResolveProduct(ctx, productRepo, l.ref)
			if err != nil {
				return err
			}
			if !product.AcceptsQuantity(l.quantity) {
				return fmt.Errorf("%w: %s", domain.ErrFractionalQuantity, product.Code)
			}
			subtotal := entity.LineSubtotal(l.quantity, l.unitPrice)
			total = total.Add(subtotal)
			items = append(items, entity.ReceptionLineItem{
				ID:          uuid.New().String(),
				ReceptionID: reception.ID,
				ProductID:   product.ID,
				Quantity:    l.quantity,
				UnitPrice:   l.unitPrice,
				Subtotal:    subtotal,
			})
		}
		reception.Total = total
		reception.Items = items

		if err := receptionRepo.Create(ctx, reception); err != nil {
			return err
		}
		return receptionRepo.CreateItems(ctx, items)
	})
	if err != nil {
		uc.log.WithContext(ctx).Warn().Err(err).
			Str("invoice_number", invoice).
			Str("supplier_id", in.SupplierID).
			Msg("recepción rechazada")
		return nil, err
	}

	uc.log.WithContext(ctx).Info().
		Str("reception_id", reception.ID).
		Str("invoice_number", reception.InvoiceNumber).
		Str("total", reception.Total.StringFixed(2)).
		Msg("recepción registrada como pendiente")
	return &dto.CreateReceptionResponse{
		ReceptionID:   reception.ID,
		InvoiceNumber: reception.InvoiceNumber,
		Total:         reception.Total,
	}, nil
}
