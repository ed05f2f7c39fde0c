package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// LedgerEntry datos de un movimiento a registrar. StockBefore es el stock leído bajo bloqueo.
type LedgerEntry struct {
	ProductID     string
	Direction     string
	Quantity      decimal.Decimal
	StockBefore   decimal.Decimal
	ReferenceType string
	ReferenceID   string
	UserID        string
	Note          string
}

// Ledger escribe entradas del libro de movimientos. Siempre se invoca con los repositorios
// de la transacción que modifica el stock.
type Ledger struct {
	now func() time.Time
}

// NewLedger construye el libro con el reloj del sistema.
func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

// Record valida y persiste el movimiento calculando StockAfter a partir de StockBefore.
func (l *Ledger) Record(ctx context.Context, movRepo repository.StockMovementRepository, e LedgerEntry) (*entity.StockMovement, error) {
	if !entity.ValidDirection(e.Direction) || !entity.ValidReferenceType(e.ReferenceType) {
		return nil, fmt.Errorf("%w: dirección %q o referencia %q desconocida", domain.ErrInvalidInput, e.Direction, e.ReferenceType)
	}
	if !e.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad del movimiento debe ser positiva", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(e.ReferenceID) == "" {
		return nil, fmt.Errorf("%w: el movimiento requiere una referencia", domain.ErrInvalidInput)
	}

	after := e.StockBefore.Add(e.Quantity)
	if e.Direction == entity.DirectionOut {
		after = e.StockBefore.Sub(e.Quantity)
	}
	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		ProductID:     e.ProductID,
		Direction:     e.Direction,
		Quantity:      e.Quantity,
		StockBefore:   e.StockBefore,
		StockAfter:    after,
		ReferenceType: e.ReferenceType,
		ReferenceID:   e.ReferenceID,
		UserID:        e.UserID,
		Note:          e.Note,
		CreatedAt:     l.now(),
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}
