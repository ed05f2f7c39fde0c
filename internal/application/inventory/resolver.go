package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

// ResolveProduct resuelve una referencia a un producto concreto y activo.
func ResolveProduct(ctx context.Context, productRepo repository.ProductRepository, ref entity.ProductRef) (*entity.Product, error) {
	if !ref.Valid() {
		return nil, domain.ErrInvalidProductRef
	}
	var (
		p   *entity.Product
		err error
	)
	switch ref.Kind {
	case entity.RefByID:
		p, err = productRepo.GetByID(ctx, ref.Value)
	case entity.RefByCode:
		p, err = productRepo.GetByCode(ctx, ref.Value)
	case entity.RefByName:
		p, err = productRepo.GetByName(ctx, ref.Value)
	}
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, ref)
	}
	if !p.Active {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductInactive, p.Code)
	}
	return p, nil
}
