package inventory

import (
	"context"

	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

// TxRunner ajustes manuales de stock: el libro y el producto comparten la misma transacción.
// Un error devuelto por fn descarta todo, incluidas las filas bloqueadas.
type TxRunner interface {
	Run(ctx context.Context, fn func(repository.StockMovementRepository, repository.ProductRepository) error) error
}
