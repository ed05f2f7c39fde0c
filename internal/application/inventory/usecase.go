package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/application/ports"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
	"github.com/jhoicas/retail-backoffice/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// AdjustStockUseCase registra ajustes manuales de inventario (conteo físico, merma, devolución a proveedor)
// de forma transaccional, con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type AdjustStockUseCase struct {
	txRunner TxRunner
	accessor *StockAccessor
	effects  *EffectsNotifier
	metrics  ports.MetricsRecorder
	log      *logger.Logger
}

// NewAdjustStockUseCase construye el caso de uso.
func NewAdjustStockUseCase(
	txRunner TxRunner,
	accessor *StockAccessor,
	effects *EffectsNotifier,
	metrics ports.MetricsRecorder,
	log *logger.Logger,
) *AdjustStockUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AdjustStockUseCase{
		txRunner: txRunner,
		accessor: accessor,
		effects:  effects,
		metrics:  metrics,
		log:      log,
	}
}

// AdjustStock aplica un ajuste de entrada o salida. Una salida puede fallar con stock insuficiente.
func (uc *AdjustStockUseCase) AdjustStock(ctx context.Context, userID string, in dto.AdjustStockRequest) (_ *dto.StockMovementResponse, err error) {
	ctx, span := tracing.Start(ctx, "inventory.AdjustStock",
		attribute.String("product_id", in.ProductID),
		attribute.String("direction", in.Direction),
	)
	start := time.Now()
	defer func() {
		uc.metrics.ObserveOperation("adjust_stock", err, time.Since(start))
		tracing.End(span, err)
	}()

	if in.ProductID == "" || !entity.ValidDirection(in.Direction) || !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	note := strings.TrimSpace(in.Note)
	if note == "" {
		return nil, fmt.Errorf("%w: el ajuste requiere una nota", domain.ErrInvalidInput)
	}

	adjustmentID := uuid.New().String()
	var result *StockResult
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, in.ProductID)
		}
		if !product.AcceptsQuantity(in.Quantity) {
			return fmt.Errorf("%w: %s", domain.ErrFractionalQuantity, product.Code)
		}
		ch := StockChange{
			ProductID:     product.ID,
			Quantity:      in.Quantity,
			ReferenceType: entity.ReferenceAdjustment,
			ReferenceID:   adjustmentID,
			UserID:        userID,
			Note:          note,
		}
		if in.Direction == entity.DirectionOut {
			result, err = uc.accessor.Decrement(ctx, movRepo, productRepo, ch)
		} else {
			result, err = uc.accessor.Increment(ctx, movRepo, productRepo, ch)
		}
		return err
	})
	if err != nil {
		uc.log.WithContext(ctx).Warn().Err(err).
			Str("product_id", in.ProductID).
			Bool("retryable", domain.IsRetryable(err)).
			Msg("ajuste de inventario rechazado")
		return nil, err
	}

	uc.effects.AfterCommit(ctx, []*StockResult{result})
	uc.log.WithContext(ctx).Info().
		Str("product_id", result.Product.ID).
		Str("direction", in.Direction).
		Str("quantity", in.Quantity.String()).
		Str("stock_after", result.Movement.StockAfter.String()).
		Msg("ajuste de inventario registrado")
	return ToMovementResponse(result.Movement), nil
}

// ToMovementResponse mapea un movimiento del libro a su DTO.
func ToMovementResponse(m *entity.StockMovement) *dto.StockMovementResponse {
	return &dto.StockMovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Direction:     m.Direction,
		Quantity:      m.Quantity,
		StockBefore:   m.StockBefore,
		StockAfter:    m.StockAfter,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		UserID:        m.UserID,
		Note:          m.Note,
		CreatedAt:     m.CreatedAt,
	}
}
