package repository

import (
	"context"
	"time"

	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
)

// SaleFilter filtros para el listado de ventas.
type SaleFilter struct {
	Status        string
	PaymentMethod string
	UserID        string
	From, To      *time.Time
	Limit         int
	Offset        int
}

// SaleRepository define el puerto de persistencia para Sale y sus líneas.
type SaleRepository interface {
	// NextNumber genera un número de venta único: prefijo de fecha + sufijo monótono.
	NextNumber(ctx context.Context, day time.Time) (string, error)
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItems(ctx context.Context, items []entity.SaleLineItem) error
	// GetByID devuelve la venta con sus líneas o (nil, nil).
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate igual que GetByID bloqueando la cabecera.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	// MarkAnnulled persiste la transición active -> annulled.
	MarkAnnulled(ctx context.Context, sale *entity.Sale) error
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, int, error)
}
