package repository

import (
	"context"
	"time"

	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
)

// MovementFilter filtros para consultar el libro de movimientos.
type MovementFilter struct {
	ProductID     string
	ReferenceType string
	From, To      *time.Time
	Limit         int
	Offset        int
}

// StockMovementRepository puerto del libro de movimientos. Solo inserta y consulta:
// no existen operaciones de actualización ni borrado.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error)
}
