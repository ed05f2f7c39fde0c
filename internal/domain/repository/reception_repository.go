package repository

import (
	"context"
	"time"

	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
)

// ReceptionFilter filtros para el listado de recepciones.
type ReceptionFilter struct {
	Status     string
	SupplierID string
	From, To   *time.Time
	Limit      int
	Offset     int
}

// ReceptionRepository define el puerto de persistencia para Reception y sus líneas.
type ReceptionRepository interface {
	Create(ctx context.Context, reception *entity.Reception) error
	CreateItems(ctx context.Context, items []entity.ReceptionLineItem) error
	ExistsInvoice(ctx context.Context, supplierID, invoiceNumber string) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.Reception, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Reception, error)
	// UpdateStatus persiste la transición desde pending; devuelve ErrConflict si ya no estaba pendiente.
	UpdateStatus(ctx context.Context, reception *entity.Reception) error
	List(ctx context.Context, filter ReceptionFilter) ([]*entity.Reception, int, error)
}
