package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

var (
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)

// SupplierRepo proveedores en memoria.
type SupplierRepo struct {
	s *Store
}

func (r *SupplierRepo) Create(_ context.Context, sup *entity.Supplier) error {
	defer r.s.wlock(false)()
	for _, other := range r.s.data.suppliers {
		if other.TaxID == sup.TaxID {
			return domain.ErrDuplicate
		}
	}
	r.s.data.suppliers[sup.ID] = *sup
	return nil
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	defer r.s.rlock(false)()
	sup, ok := r.s.data.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &sup, nil
}

func (r *SupplierRepo) GetByTaxID(_ context.Context, taxID string) (*entity.Supplier, error) {
	defer r.s.rlock(false)()
	for _, sup := range r.s.data.suppliers {
		if sup.TaxID == taxID {
			return &sup, nil
		}
	}
	return nil, nil
}

func (r *SupplierRepo) Update(_ context.Context, sup *entity.Supplier) error {
	defer r.s.wlock(false)()
	if _, ok := r.s.data.suppliers[sup.ID]; !ok {
		return domain.ErrSupplierNotFound
	}
	r.s.data.suppliers[sup.ID] = *sup
	return nil
}

func (r *SupplierRepo) List(_ context.Context, onlyActive bool, limit, offset int) ([]*entity.Supplier, error) {
	defer r.s.rlock(false)()
	var list []*entity.Supplier
	for _, sup := range r.s.data.suppliers {
		if onlyActive && !sup.Active {
			continue
		}
		sup := sup
		list = append(list, &sup)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

// CategoryRepo categorías en memoria.
type CategoryRepo struct {
	s *Store
}

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	defer r.s.wlock(false)()
	for _, other := range r.s.data.categories {
		if other.Name == c.Name {
			return domain.ErrDuplicate
		}
	}
	r.s.data.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	defer r.s.rlock(false)()
	c, ok := r.s.data.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CategoryRepo) GetByName(_ context.Context, name string) (*entity.Category, error) {
	defer r.s.rlock(false)()
	for _, c := range r.s.data.categories {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *CategoryRepo) Update(_ context.Context, c *entity.Category) error {
	defer r.s.wlock(false)()
	if _, ok := r.s.data.categories[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.data.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepo) List(_ context.Context, limit, offset int) ([]*entity.Category, error) {
	defer r.s.rlock(false)()
	var list []*entity.Category
	for _, c := range r.s.data.categories {
		c := c
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

// UserRepo usuarios en memoria.
type UserRepo struct {
	s *Store
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	defer r.s.wlock(false)()
	for _, other := range r.s.data.users {
		if other.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.data.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	defer r.s.rlock(false)()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	defer r.s.rlock(false)()
	for _, u := range r.s.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	defer r.s.wlock(false)()
	if _, ok := r.s.data.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.s.data.users[u.ID] = *u
	return nil
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	defer r.s.rlock(false)()
	var list []*entity.User
	for _, u := range r.s.data.users {
		u := u
		list = append(list, &u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Email < list[j].Email })
	return page(list, limit, offset), nil
}
