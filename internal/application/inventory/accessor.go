package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// StockChange cambio de stock solicitado sobre un producto.
// RequireActive rechaza productos inactivos (ventas); las reversiones no lo exigen.
type StockChange struct {
	ProductID     string
	Quantity      decimal.Decimal
	ReferenceType string
	ReferenceID   string
	UserID        string
	Note          string
	RequireActive bool
}

// StockResult producto tras el cambio y el movimiento registrado.
type StockResult struct {
	Product  *entity.Product
	Movement *entity.StockMovement
}

// StockAccessor es el único punto que modifica current_stock. Cada cambio bloquea la fila
// del producto (SELECT FOR UPDATE), actualiza el stock y registra el movimiento en el libro,
// todo con los repositorios de la transacción en curso.
type StockAccessor struct {
	ledger *Ledger
}

// NewStockAccessor construye el accesor.
func NewStockAccessor(ledger *Ledger) *StockAccessor {
	if ledger == nil {
		ledger = NewLedger()
	}
	return &StockAccessor{ledger: ledger}
}

// Decrement descuenta stock. Nunca recorta: si no alcanza devuelve *domain.InsufficientStockError.
func (a *StockAccessor) Decrement(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	ch StockChange,
) (*StockResult, error) {
	return a.apply(ctx, movRepo, productRepo, entity.DirectionOut, ch)
}

// Increment suma stock.
func (a *StockAccessor) Increment(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	ch StockChange,
) (*StockResult, error) {
	return a.apply(ctx, movRepo, productRepo, entity.DirectionIn, ch)
}

// ApplyInOrder aplica los cambios en orden ascendente de product id, de modo que dos
// operaciones concurrentes adquieran los bloqueos en el mismo orden.
// Los resultados se devuelven en ese mismo orden.
func (a *StockAccessor) ApplyInOrder(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	direction string,
	changes []StockChange,
) ([]*StockResult, error) {
	ordered := SortByProduct(changes)
	results := make([]*StockResult, 0, len(ordered))
	for _, ch := range ordered {
		res, err := a.apply(ctx, movRepo, productRepo, direction, ch)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// SortByProduct devuelve una copia de los cambios ordenada por product id ascendente.
func SortByProduct(changes []StockChange) []StockChange {
	ordered := make([]StockChange, len(changes))
	copy(ordered, changes)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })
	return ordered
}

func (a *StockAccessor) apply(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	direction string,
	ch StockChange,
) (*StockResult, error) {
	if !ch.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: cantidad %s no positiva", domain.ErrInvalidInput, ch.Quantity.String())
	}

	// Bloquea la fila del producto hasta el fin de la transacción
	product, err := productRepo.GetForUpdate(ctx, ch.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, ch.ProductID)
	}
	if ch.RequireActive && !product.Active {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductInactive, product.Code)
	}

	before := product.CurrentStock
	var after decimal.Decimal
	switch direction {
	case entity.DirectionOut:
		if before.LessThan(ch.Quantity) {
			return nil, &domain.InsufficientStockError{
				ProductID: product.ID,
				Available: before,
				Requested: ch.Quantity,
			}
		}
		after = before.Sub(ch.Quantity)
	case entity.DirectionIn:
		after = before.Add(ch.Quantity)
	default:
		return nil, fmt.Errorf("%w: dirección %q", domain.ErrInvalidInput, direction)
	}

	if err := productRepo.UpdateStock(ctx, product.ID, after); err != nil {
		return nil, err
	}
	mov, err := a.ledger.Record(ctx, movRepo, LedgerEntry{
		ProductID:     product.ID,
		Direction:     direction,
		Quantity:      ch.Quantity,
		StockBefore:   before,
		ReferenceType: ch.ReferenceType,
		ReferenceID:   ch.ReferenceID,
		UserID:        ch.UserID,
		Note:          ch.Note,
	})
	if err != nil {
		return nil, err
	}
	product.CurrentStock = after
	return &StockResult{Product: product, Movement: mov}, nil
}
