package memory

import (
	"context"

	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos en memoria (solo se agrega al final).
type MovementRepo struct {
	s    *Store
	inTx bool
}

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	defer r.s.wlock(r.inTx)()
	r.s.data.movements = append(r.s.data.movements, *m)
	return nil
}

// List devuelve los más recientes primero.
func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	defer r.s.rlock(r.inTx)()
	var list []*entity.StockMovement
	for i := len(r.s.data.movements) - 1; i >= 0; i-- {
		m := r.s.data.movements[i]
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.ReferenceType != "" && m.ReferenceType != f.ReferenceType {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		list = append(list, &m)
	}
	return page(list, f.Limit, f.Offset), nil
}

// ListByReference devuelve en orden de escritura.
func (r *MovementRepo) ListByReference(_ context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	defer r.s.rlock(r.inTx)()
	var list []*entity.StockMovement
	for _, m := range r.s.data.movements {
		if m.ReferenceType == referenceType && m.ReferenceID == referenceID {
			m := m
			list = append(list, &m)
		}
	}
	return list, nil
}
