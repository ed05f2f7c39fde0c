package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice/internal/application/ports"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice/internal/infrastructure/memory"
)

const (
	prodA  = "aaaaaaaa-0000-0000-0000-000000000001"
	prodB  = "bbbbbbbb-0000-0000-0000-000000000002"
	userID = "cccccccc-0000-0000-0000-000000000003"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes de los puertos de efectos
// ──────────────────────────────────────────────────────────────────────────────

type recordingCache struct {
	ports.NopStockCache
	mu          sync.Mutex
	invalidated []string
}

func (c *recordingCache) Invalidate(_ context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, ids...)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.Event
	fail   bool
}

func (p *recordingPublisher) Publish(_ context.Context, ev ports.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker caído")
	}
	p.events = append(p.events, ev)
	return nil
}

type engine struct {
	store     *memory.Store
	accessor  *inventory.StockAccessor
	adjust    *inventory.AdjustStockUseCase
	ledger    *inventory.LedgerQueryUseCase
	cache     *recordingCache
	publisher *recordingPublisher
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	for _, p := range []entity.Product{
		{ID: prodA, Code: "A-1", Name: "Aceite 1L", MinimumStock: decimal.NewFromInt(3)},
		{ID: prodB, Code: "B-1", Name: "Banano", MeasurementType: entity.MeasurementWeight},
	} {
		if p.MeasurementType == "" {
			p.MeasurementType = entity.MeasurementUnit
		}
		p.Active = true
		require.NoError(t, store.Products().Create(ctx, &p))
	}

	cache := &recordingCache{}
	publisher := &recordingPublisher{}
	accessor := inventory.NewStockAccessor(inventory.NewLedger())
	effects := inventory.NewEffectsNotifier(cache, publisher, nil)
	return &engine{
		store:     store,
		accessor:  accessor,
		adjust:    inventory.NewAdjustStockUseCase(store, accessor, effects, nil, nil),
		ledger:    inventory.NewLedgerQueryUseCase(store.Movements(), store.Reports()),
		cache:     cache,
		publisher: publisher,
	}
}

func (e *engine) stock(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	p, err := e.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.CurrentStock
}

func adjustment(productID, direction, qty string) dto.AdjustStockRequest {
	return dto.AdjustStockRequest{
		ProductID: productID,
		Direction: direction,
		Quantity:  decimal.RequireFromString(qty),
		Note:      "conteo físico",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Accesor de stock
// ──────────────────────────────────────────────────────────────────────────────

func TestSortByProduct_OrdenAscendenteSinMutarEntrada(t *testing.T) {
	in := []inventory.StockChange{{ProductID: "c"}, {ProductID: "a"}, {ProductID: "b"}}
	out := inventory.SortByProduct(in)

	assert.Equal(t, []string{"a", "b", "c"}, []string{out[0].ProductID, out[1].ProductID, out[2].ProductID})
	assert.Equal(t, "c", in[0].ProductID)
}

func TestApplyInOrder_RegistraAntesYDespues(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	var results []*inventory.StockResult
	err := e.store.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		var err error
		results, err = e.accessor.ApplyInOrder(ctx, movRepo, productRepo, entity.DirectionIn, []inventory.StockChange{
			{ProductID: prodB, Quantity: decimal.RequireFromString("2.5"), ReferenceType: entity.ReferenceAdjustment, ReferenceID: "ref-1", UserID: userID},
			{ProductID: prodA, Quantity: decimal.NewFromInt(4), ReferenceType: entity.ReferenceAdjustment, ReferenceID: "ref-1", UserID: userID},
		})
		return err
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, prodA, results[0].Product.ID)
	assert.True(t, results[0].Movement.StockBefore.IsZero())
	assert.True(t, results[0].Movement.StockAfter.Equal(decimal.NewFromInt(4)))
	assert.True(t, results[1].Movement.StockAfter.Equal(decimal.RequireFromString("2.5")))
}

func TestDecrement_NuncaRecorta(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	_, err := e.adjust.AdjustStock(ctx, userID, adjustment(prodA, entity.DirectionIn, "2"))
	require.NoError(t, err)

	err = e.store.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		_, err := e.accessor.Decrement(ctx, movRepo, productRepo, inventory.StockChange{
			ProductID: prodA, Quantity: decimal.NewFromInt(3),
			ReferenceType: entity.ReferenceAdjustment, ReferenceID: "ref-2",
		})
		return err
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.Equal(decimal.NewFromInt(2)))
	assert.True(t, e.stock(t, prodA).Equal(decimal.NewFromInt(2)))
}

func TestAccessor_ProductoInexistenteEInactivo(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	change := inventory.StockChange{Quantity: decimal.NewFromInt(1), ReferenceType: entity.ReferenceSale, ReferenceID: "s-1", RequireActive: true}

	err := e.store.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		ch := change
		ch.ProductID = "no-existe"
		_, err := e.accessor.Increment(ctx, movRepo, productRepo, ch)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	require.NoError(t, e.store.Products().Update(ctx, &entity.Product{ID: prodA, Code: "A-1", Name: "Aceite 1L", MeasurementType: entity.MeasurementUnit}))
	err = e.store.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		ch := change
		ch.ProductID = prodA
		_, err := e.accessor.Increment(ctx, movRepo, productRepo, ch)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrProductInactive)
}

// ──────────────────────────────────────────────────────────────────────────────
// Libro
// ──────────────────────────────────────────────────────────────────────────────

func TestLedgerRecord_Validaciones(t *testing.T) {
	e := newEngine(t)
	ledger := inventory.NewLedger()
	movRepo := e.store.Movements()
	base := inventory.LedgerEntry{
		ProductID: prodA, Direction: entity.DirectionIn, Quantity: decimal.NewFromInt(1),
		ReferenceType: entity.ReferenceAdjustment, ReferenceID: "ref",
	}

	cases := map[string]func(*inventory.LedgerEntry){
		"dirección desconocida":  func(le *inventory.LedgerEntry) { le.Direction = "sideways" },
		"referencia desconocida": func(le *inventory.LedgerEntry) { le.ReferenceType = "gift" },
		"cantidad cero":          func(le *inventory.LedgerEntry) { le.Quantity = decimal.Zero },
		"sin referencia":         func(le *inventory.LedgerEntry) { le.ReferenceID = " " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			le := base
			mutate(&le)
			_, err := ledger.Record(context.Background(), movRepo, le)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	out := base
	out.Direction = entity.DirectionOut
	out.StockBefore = decimal.NewFromInt(5)
	mov, err := ledger.Record(context.Background(), movRepo, out)
	require.NoError(t, err)
	assert.True(t, mov.StockAfter.Equal(decimal.NewFromInt(4)))
	assert.NotEmpty(t, mov.ID)
	assert.WithinDuration(t, time.Now(), mov.CreatedAt, time.Minute)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes manuales
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustStock_EntradaYSalida(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	in, err := e.adjust.AdjustStock(ctx, userID, adjustment(prodA, entity.DirectionIn, "10"))
	require.NoError(t, err)
	assert.True(t, in.StockAfter.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, entity.ReferenceAdjustment, in.ReferenceType)

	out, err := e.adjust.AdjustStock(ctx, userID, adjustment(prodA, entity.DirectionOut, "8"))
	require.NoError(t, err)
	assert.True(t, out.StockBefore.Equal(decimal.NewFromInt(10)))
	assert.True(t, out.StockAfter.Equal(decimal.NewFromInt(2)))
	assert.NotEqual(t, in.ReferenceID, out.ReferenceID)

	assert.Contains(t, e.cache.invalidated, prodA)
	// Quedó en 2 con mínimo 3: se publica stock.low
	require.Len(t, e.publisher.events, 1)
	assert.Equal(t, ports.EventStockLow, e.publisher.events[0].Type)
	assert.Equal(t, prodA, e.publisher.events[0].AggregateID)

	rec, err := e.ledger.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
}

func TestAdjustStock_Rechazos(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.adjust.AdjustStock(ctx, userID, adjustment(prodA, entity.DirectionOut, "1"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = e.adjust.AdjustStock(ctx, userID, adjustment(prodA, entity.DirectionIn, "1.5"))
	assert.ErrorIs(t, err, domain.ErrFractionalQuantity)

	_, err = e.adjust.AdjustStock(ctx, userID, adjustment(prodB, entity.DirectionIn, "1.5"))
	assert.NoError(t, err, "los productos por peso admiten fracciones")

	_, err = e.adjust.AdjustStock(ctx, userID, adjustment("no-existe", entity.DirectionIn, "1"))
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	noNote := adjustment(prodA, entity.DirectionIn, "1")
	noNote.Note = "  "
	_, err = e.adjust.AdjustStock(ctx, userID, noNote)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEffects_FalloDelBrokerNoDeshaceElAjuste(t *testing.T) {
	e := newEngine(t)
	e.publisher.fail = true
	ctx := context.Background()

	_, err := e.adjust.AdjustStock(ctx, userID, adjustment(prodA, entity.DirectionIn, "1"))
	require.NoError(t, err)
	_, err = e.adjust.AdjustStock(ctx, userID, adjustment(prodA, entity.DirectionOut, "1"))
	require.NoError(t, err)
	assert.True(t, e.stock(t, prodA).IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas y conciliación
// ──────────────────────────────────────────────────────────────────────────────

func TestLedgerQuery_ListadoYReferencia(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	first, err := e.adjust.AdjustStock(ctx, userID, adjustment(prodA, entity.DirectionIn, "5"))
	require.NoError(t, err)
	_, err = e.adjust.AdjustStock(ctx, userID, adjustment(prodB, entity.DirectionIn, "2"))
	require.NoError(t, err)

	list, err := e.ledger.ListMovements(ctx, repository.MovementFilter{ProductID: prodA})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 50, list.Page.Limit)

	byRef, err := e.ledger.ListByReference(ctx, entity.ReferenceAdjustment, first.ReferenceID)
	require.NoError(t, err)
	require.Len(t, byRef, 1)
	assert.Equal(t, first.ID, byRef[0].ID)

	_, err = e.ledger.ListMovements(ctx, repository.MovementFilter{ReferenceType: "gift"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.ledger.ListByReference(ctx, entity.ReferenceSale, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReconcile_DetectaStockSinRespaldo(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	_, err := e.adjust.AdjustStock(ctx, userID, adjustment(prodA, entity.DirectionIn, "5"))
	require.NoError(t, err)

	// Escritura directa fuera del accesor: el libro ya no explica el stock
	require.NoError(t, e.store.Products().UpdateStock(ctx, prodA, decimal.NewFromInt(7)))

	rec, err := e.ledger.Reconcile(ctx)
	require.NoError(t, err)
	assert.False(t, rec.Consistent)
	require.Len(t, rec.Drifts, 1)
	assert.Equal(t, prodA, rec.Drifts[0].ProductID)
	assert.True(t, rec.Drifts[0].LedgerStock.Equal(decimal.NewFromInt(5)))
	assert.True(t, rec.Drifts[0].Drift.Equal(decimal.NewFromInt(2)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolución de referencias
// ──────────────────────────────────────────────────────────────────────────────

func TestResolveProduct(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	repo := e.store.Products()

	for _, ref := range []entity.ProductRef{entity.ByID(prodA), entity.ByCode("A-1"), entity.ByName("Aceite 1L")} {
		p, err := inventory.ResolveProduct(ctx, repo, ref)
		require.NoError(t, err, ref.String())
		assert.Equal(t, prodA, p.ID)
	}

	_, err := inventory.ResolveProduct(ctx, repo, entity.ByName("aceite 1l"))
	assert.ErrorIs(t, err, domain.ErrProductNotFound, "el nombre debe coincidir exactamente")

	_, err = inventory.ResolveProduct(ctx, repo, entity.ProductRef{})
	assert.ErrorIs(t, err, domain.ErrInvalidProductRef)
}
