package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas en memoria.
type SaleRepo struct {
	s    *Store
	inTx bool
}

// NextNumber usa un contador global, como la secuencia de PostgreSQL.
func (r *SaleRepo) NextNumber(_ context.Context, day time.Time) (string, error) {
	defer r.s.wlock(r.inTx)()
	r.s.data.saleSeq++
	return fmt.Sprintf("V-%s-%06d", day.Format("20060102"), r.s.data.saleSeq), nil
}

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	defer r.s.wlock(r.inTx)()
	for _, other := range r.s.data.sales {
		if other.SaleNumber == sale.SaleNumber {
			return domain.ErrDuplicate
		}
	}
	stored := copySale(*sale)
	stored.Items = nil
	r.s.data.sales[sale.ID] = stored
	return nil
}

func (r *SaleRepo) CreateItems(_ context.Context, items []entity.SaleLineItem) error {
	defer r.s.wlock(r.inTx)()
	for _, it := range items {
		sale, ok := r.s.data.sales[it.SaleID]
		if !ok {
			return fmt.Errorf("create sale items: %w", domain.ErrSaleNotFound)
		}
		sale.Items = append(sale.Items, it)
		r.s.data.sales[it.SaleID] = sale
	}
	return nil
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	defer r.s.rlock(r.inTx)()
	sale, ok := r.s.data.sales[id]
	if !ok {
		return nil, nil
	}
	c := copySale(sale)
	return &c, nil
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleRepo) MarkAnnulled(_ context.Context, sale *entity.Sale) error {
	defer r.s.wlock(r.inTx)()
	cur, ok := r.s.data.sales[sale.ID]
	if !ok {
		return domain.ErrSaleNotFound
	}
	if cur.Status != entity.SaleStatusActive {
		return domain.ErrAlreadyAnnulled
	}
	cur.Status = entity.SaleStatusAnnulled
	cur.AnnulledAt = sale.AnnulledAt
	cur.AnnulledBy = sale.AnnulledBy
	cur.AnnulReason = sale.AnnulReason
	r.s.data.sales[sale.ID] = copySale(cur)
	return nil
}

func (r *SaleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, int, error) {
	defer r.s.rlock(r.inTx)()
	var list []*entity.Sale
	for _, sale := range r.s.data.sales {
		if f.Status != "" && sale.Status != f.Status {
			continue
		}
		if f.PaymentMethod != "" && sale.PaymentMethod != f.PaymentMethod {
			continue
		}
		if f.UserID != "" && sale.UserID != f.UserID {
			continue
		}
		if f.From != nil && sale.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && sale.CreatedAt.After(*f.To) {
			continue
		}
		c := copySale(sale)
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].SaleNumber > list[j].SaleNumber
	})
	return page(list, f.Limit, f.Offset), len(list), nil
}
