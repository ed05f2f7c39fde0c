package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

var _ repository.ReceptionRepository = (*ReceptionRepo)(nil)

// ReceptionRepo recepciones en memoria.
type ReceptionRepo struct {
	s    *Store
	inTx bool
}

func (r *ReceptionRepo) Create(_ context.Context, rec *entity.Reception) error {
	defer r.s.wlock(r.inTx)()
	for _, other := range r.s.data.receptions {
		if other.SupplierID == rec.SupplierID && other.InvoiceNumber == rec.InvoiceNumber {
			return domain.ErrDuplicateInvoice
		}
	}
	stored := copyReception(*rec)
	stored.Items = nil
	r.s.data.receptions[rec.ID] = stored
	return nil
}

func (r *ReceptionRepo) CreateItems(_ context.Context, items []entity.ReceptionLineItem) error {
	defer r.s.wlock(r.inTx)()
	for _, it := range items {
		rec, ok := r.s.data.receptions[it.ReceptionID]
		if !ok {
			return fmt.Errorf("create reception items: %w", domain.ErrReceptionNotFound)
		}
		rec.Items = append(rec.Items, it)
		r.s.data.receptions[it.ReceptionID] = rec
	}
	return nil
}

func (r *ReceptionRepo) ExistsInvoice(_ context.Context, supplierID, invoiceNumber string) (bool, error) {
	defer r.s.rlock(r.inTx)()
	for _, rec := range r.s.data.receptions {
		if rec.SupplierID == supplierID && rec.InvoiceNumber == invoiceNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *ReceptionRepo) GetByID(_ context.Context, id string) (*entity.Reception, error) {
	defer r.s.rlock(r.inTx)()
	rec, ok := r.s.data.receptions[id]
	if !ok {
		return nil, nil
	}
	c := copyReception(rec)
	return &c, nil
}

func (r *ReceptionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Reception, error) {
	return r.GetByID(ctx, id)
}

func (r *ReceptionRepo) UpdateStatus(_ context.Context, rec *entity.Reception) error {
	defer r.s.wlock(r.inTx)()
	cur, ok := r.s.data.receptions[rec.ID]
	if !ok {
		return domain.ErrReceptionNotFound
	}
	if cur.Status != entity.ReceptionPending {
		return domain.ErrConflict
	}
	cur.Status = rec.Status
	cur.ProcessedAt, cur.ProcessedBy = rec.ProcessedAt, rec.ProcessedBy
	cur.CancelledAt, cur.CancelledBy = rec.CancelledAt, rec.CancelledBy
	r.s.data.receptions[rec.ID] = copyReception(cur)
	return nil
}

func (r *ReceptionRepo) List(_ context.Context, f repository.ReceptionFilter) ([]*entity.Reception, int, error) {
	defer r.s.rlock(r.inTx)()
	var list []*entity.Reception
	for _, rec := range r.s.data.receptions {
		if f.Status != "" && rec.Status != f.Status {
			continue
		}
		if f.SupplierID != "" && rec.SupplierID != f.SupplierID {
			continue
		}
		if f.From != nil && rec.ReceptionDate.Before(*f.From) {
			continue
		}
		if f.To != nil && rec.ReceptionDate.After(*f.To) {
			continue
		}
		c := copyReception(rec)
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, f.Limit, f.Offset), len(list), nil
}
