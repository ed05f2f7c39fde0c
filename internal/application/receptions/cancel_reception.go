package receptions

import (
	"context"
	"time"

	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/application/ports"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
)

// CancelReceptionUseCase transición pending -> cancelled, sin efecto en stock.
type CancelReceptionUseCase struct {
	txRunner ReceptionTxRunner
	metrics  ports.MetricsRecorder
	log      *logger.Logger
	now      func() time.Time
}

// NewCancelReceptionUseCase construye el caso de uso.
func NewCancelReceptionUseCase(txRunner ReceptionTxRunner, metrics ports.MetricsRecorder, log *logger.Logger) *CancelReceptionUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CancelReceptionUseCase{txRunner: txRunner, metrics: metrics, log: log, now: time.Now}
}

// CancelReception cancela una recepción pendiente.
// Retorna domain.ErrReceptionNotFound o domain.ErrReceptionNotPending.
func (uc *CancelReceptionUseCase) CancelReception(ctx context.Context, userID, receptionID string) (_ *dto.ReceptionResponse, err error) {
	start := time.Now()
	defer func() { uc.metrics.ObserveOperation("cancel_reception", err, time.Since(start)) }()

	var resp *dto.ReceptionResponse
	err = uc.txRunner.RunReception(ctx, func(
		_ repository.StockMovementRepository,
		_ repository.ProductRepository,
		receptionRepo repository.ReceptionRepository,
	) error {
		r, err := receptionRepo.GetForUpdate(ctx, receptionID)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrReceptionNotFound
		}
		if err := r.MarkCancelled(uc.now(), userID); err != nil {
			return err
		}
		if err := receptionRepo.UpdateStatus(ctx, r); err != nil {
			return err
		}
		resp = ToReceptionResponse(r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.WithContext(ctx).Info().Str("reception_id", receptionID).Msg("recepción cancelada")
	return resp, nil
}
