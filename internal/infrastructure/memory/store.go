// Package memory implementa todos los repositorios y los TxRunner en memoria.
// Un único mutex serializa las transacciones; si el callback falla, el estado se
// restaura desde la copia tomada al iniciar la transacción (también si entra en pánico).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/retail-backoffice/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice/internal/application/receptions"
	"github.com/jhoicas/retail-backoffice/internal/application/sales"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

var (
	_ inventory.TxRunner           = (*Store)(nil)
	_ sales.SaleTxRunner           = (*Store)(nil)
	_ receptions.ReceptionTxRunner = (*Store)(nil)
)

type dataset struct {
	products   map[string]entity.Product
	movements  []entity.StockMovement
	sales      map[string]entity.Sale
	receptions map[string]entity.Reception
	suppliers  map[string]entity.Supplier
	categories map[string]entity.Category
	users      map[string]entity.User
	saleSeq    int64
}

func newDataset() *dataset {
	return &dataset{
		products:   make(map[string]entity.Product),
		sales:      make(map[string]entity.Sale),
		receptions: make(map[string]entity.Reception),
		suppliers:  make(map[string]entity.Supplier),
		categories: make(map[string]entity.Category),
		users:      make(map[string]entity.User),
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.products {
		c.products[k] = v
	}
	c.movements = make([]entity.StockMovement, len(d.movements))
	copy(c.movements, d.movements)
	for k, v := range d.sales {
		c.sales[k] = copySale(v)
	}
	for k, v := range d.receptions {
		c.receptions[k] = copyReception(v)
	}
	for k, v := range d.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range d.categories {
		c.categories[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	c.saleSeq = d.saleSeq
	return c
}

// Store almacenamiento en memoria (desarrollo y tests).
type Store struct {
	mu   sync.RWMutex
	data *dataset
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// rlock toma el bloqueo de lectura salvo dentro de una transacción, que ya tiene el exclusivo.
func (s *Store) rlock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) wlock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) withTx(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	committed := false
	defer func() {
		if !committed {
			s.data = snapshot
		}
	}()
	if err := fn(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return s.withTx(ctx, func() error {
		return fn(&MovementRepo{s: s, inTx: true}, &ProductRepo{s: s, inTx: true})
	})
}

// RunSale implementa sales.SaleTxRunner.
func (s *Store) RunSale(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return s.withTx(ctx, func() error {
		return fn(&MovementRepo{s: s, inTx: true}, &ProductRepo{s: s, inTx: true}, &SaleRepo{s: s, inTx: true})
	})
}

// RunReception implementa receptions.ReceptionTxRunner.
func (s *Store) RunReception(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	receptionRepo repository.ReceptionRepository,
) error) error {
	return s.withTx(ctx, func() error {
		return fn(&MovementRepo{s: s, inTx: true}, &ProductRepo{s: s, inTx: true}, &ReceptionRepo{s: s, inTx: true})
	})
}

// Repositorios fuera de transacción.

func (s *Store) Products() *ProductRepo     { return &ProductRepo{s: s} }
func (s *Store) Movements() *MovementRepo   { return &MovementRepo{s: s} }
func (s *Store) Sales() *SaleRepo           { return &SaleRepo{s: s} }
func (s *Store) Receptions() *ReceptionRepo { return &ReceptionRepo{s: s} }
func (s *Store) Suppliers() *SupplierRepo   { return &SupplierRepo{s: s} }
func (s *Store) Categories() *CategoryRepo  { return &CategoryRepo{s: s} }
func (s *Store) Users() *UserRepo           { return &UserRepo{s: s} }
func (s *Store) Reports() *ReportRepo       { return &ReportRepo{s: s} }

func copySale(v entity.Sale) entity.Sale {
	items := make([]entity.SaleLineItem, len(v.Items))
	copy(items, v.Items)
	v.Items = items
	if v.AnnulledAt != nil {
		t := *v.AnnulledAt
		v.AnnulledAt = &t
	}
	return v
}

func copyReception(v entity.Reception) entity.Reception {
	items := make([]entity.ReceptionLineItem, len(v.Items))
	copy(items, v.Items)
	v.Items = items
	if v.ProcessedAt != nil {
		t := *v.ProcessedAt
		v.ProcessedAt = &t
	}
	if v.CancelledAt != nil {
		t := *v.CancelledAt
		v.CancelledAt = &t
	}
	return v
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
