package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria.
type ProductRepo struct {
	s    *Store
	inTx bool
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.s.wlock(r.inTx)()
	for _, other := range r.s.data.products {
		if other.Code == p.Code || other.Name == p.Name {
			return domain.ErrDuplicate
		}
	}
	r.s.data.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.s.rlock(r.inTx)()
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	defer r.s.rlock(r.inTx)()
	for _, p := range r.s.data.products {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) GetByName(_ context.Context, name string) (*entity.Product, error) {
	defer r.s.rlock(r.inTx)()
	for _, p := range r.s.data.products {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, nil
}

// GetForUpdate dentro de una tx el mutex global ya es exclusivo.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	defer r.s.wlock(r.inTx)()
	cur, ok := r.s.data.products[p.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	for id, other := range r.s.data.products {
		if id != p.ID && (other.Code == p.Code || other.Name == p.Name) {
			return domain.ErrDuplicate
		}
	}
	next := *p
	next.CurrentStock = cur.CurrentStock
	r.s.data.products[p.ID] = next
	return nil
}

func (r *ProductRepo) UpdateStock(_ context.Context, id string, stock decimal.Decimal) error {
	defer r.s.wlock(r.inTx)()
	p, ok := r.s.data.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.CurrentStock = stock
	p.UpdatedAt = time.Now()
	r.s.data.products[id] = p
	return nil
}

func (r *ProductRepo) UpdatePrices(_ context.Context, id string, salePrice, purchasePrice decimal.Decimal) error {
	defer r.s.wlock(r.inTx)()
	p, ok := r.s.data.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.SalePrice = salePrice
	p.PurchasePrice = purchasePrice
	p.UpdatedAt = time.Now()
	r.s.data.products[id] = p
	return nil
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	defer r.s.rlock(r.inTx)()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var list []*entity.Product
	for _, p := range r.s.data.products {
		if f.OnlyActive && !p.Active {
			continue
		}
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Code), search) {
			continue
		}
		p := p
		list = append(list, &p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, f.Limit, f.Offset), len(list), nil
}

func (r *ProductRepo) ListLowStock(_ context.Context, limit int) ([]*entity.Product, error) {
	defer r.s.rlock(r.inTx)()
	var list []*entity.Product
	for _, p := range r.s.data.products {
		if p.Active && p.IsLowStock() {
			p := p
			list = append(list, &p)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		di := list[i].MinimumStock.Sub(list[i].CurrentStock)
		dj := list[j].MinimumStock.Sub(list[j].CurrentStock)
		if !di.Equal(dj) {
			return di.GreaterThan(dj)
		}
		return list[i].Code < list[j].Code
	})
	return page(list, limit, 0), nil
}
