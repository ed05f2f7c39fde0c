package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice/internal/application/ports"
	"github.com/jhoicas/retail-backoffice/internal/application/usecase"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice/internal/infrastructure/memory"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
	"github.com/jhoicas/retail-backoffice/pkg/taxid"
)

// mapCache caché en memoria que cuenta aciertos.
type mapCache struct {
	items map[string]ports.StockSnapshot
	hits  int
}

func newMapCache() *mapCache { return &mapCache{items: map[string]ports.StockSnapshot{}} }

func (c *mapCache) Get(_ context.Context, id string) (*ports.StockSnapshot, error) {
	s, ok := c.items[id]
	if !ok {
		return nil, nil
	}
	c.hits++
	return &s, nil
}

func (c *mapCache) Set(_ context.Context, s ports.StockSnapshot) error {
	c.items[s.ProductID] = s
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, ids ...string) error {
	for _, id := range ids {
		delete(c.items, id)
	}
	return nil
}

type catalog struct {
	store      *memory.Store
	cache      *mapCache
	products   *usecase.ProductUseCase
	categories *usecase.CategoryUseCase
	suppliers  *usecase.SupplierUseCase
	ledger     *inventory.LedgerQueryUseCase
	adjust     *inventory.AdjustStockUseCase
}

func newCatalog() *catalog {
	store := memory.NewStore()
	cache := newMapCache()
	accessor := inventory.NewStockAccessor(nil)
	effects := inventory.NewEffectsNotifier(cache, nil, nil)
	return &catalog{
		store:      store,
		cache:      cache,
		products:   usecase.NewProductUseCase(store.Products(), store.Categories(), store, accessor, effects, cache, nil),
		categories: usecase.NewCategoryUseCase(store.Categories()),
		suppliers:  usecase.NewSupplierUseCase(store.Suppliers()),
		ledger:     inventory.NewLedgerQueryUseCase(store.Movements(), store.Reports()),
		adjust:     inventory.NewAdjustStockUseCase(store, accessor, effects, nil, nil),
	}
}

func productRequest(code, name string) dto.CreateProductRequest {
	return dto.CreateProductRequest{
		Code:          code,
		Name:          name,
		SalePrice:     decimal.NewFromInt(2500),
		PurchasePrice: decimal.NewFromInt(1800),
		MinimumStock:  decimal.NewFromInt(5),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProductCreate_StockInicialPasaPorElLibro(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()

	in := productRequest("7701", "Leche entera")
	in.InitialStock = decimal.NewFromInt(12)
	p, err := c.products.Create(ctx, "u-1", in)
	require.NoError(t, err)
	assert.True(t, p.CurrentStock.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, entity.MeasurementUnit, p.MeasurementType)
	assert.True(t, p.Active)

	movs, err := c.ledger.ListByReference(ctx, entity.ReferenceAdjustment, p.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "stock inicial", movs[0].Note)

	rec, err := c.ledger.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
}

func TestProductCreate_Rechazos(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()
	_, err := c.products.Create(ctx, "u-1", productRequest("7701", "Leche entera"))
	require.NoError(t, err)

	_, err = c.products.Create(ctx, "u-1", productRequest("7701", "Otra leche"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = c.products.Create(ctx, "u-1", productRequest("7702", "Leche entera"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	frac := productRequest("7703", "Pan")
	frac.InitialStock = decimal.RequireFromString("1.5")
	_, err = c.products.Create(ctx, "u-1", frac)
	assert.ErrorIs(t, err, domain.ErrFractionalQuantity)

	neg := productRequest("7704", "Huevos")
	neg.SalePrice = decimal.NewFromInt(-1)
	_, err = c.products.Create(ctx, "u-1", neg)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	cat := productRequest("7705", "Queso")
	cat.CategoryID = "00000000-0000-0000-0000-00000000cafe"
	_, err = c.products.Create(ctx, "u-1", cat)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUpdate_NoTocaElStock(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()
	in := productRequest("7701", "Leche entera")
	in.InitialStock = decimal.NewFromInt(4)
	p, err := c.products.Create(ctx, "u-1", in)
	require.NoError(t, err)

	price := decimal.NewFromInt(2700)
	updated, err := c.products.Update(ctx, p.ID, dto.UpdateProductRequest{SalePrice: &price})
	require.NoError(t, err)
	assert.True(t, updated.SalePrice.Equal(price))

	got, err := c.products.GetByCode(ctx, " 7701 ")
	require.NoError(t, err)
	assert.True(t, got.CurrentStock.Equal(decimal.NewFromInt(4)))
	assert.True(t, got.LowStock)

	require.NoError(t, c.products.Deactivate(ctx, p.ID))
	got, err = c.products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = c.products.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

// hookedTx delega en el store; before corre antes de abrir la transacción y products
// permite envolver el repositorio de productos que recibe el callback.
type hookedTx struct {
	store    *memory.Store
	before   func()
	products func(repository.ProductRepository) repository.ProductRepository
}

func (h hookedTx) Run(ctx context.Context, fn func(repository.StockMovementRepository, repository.ProductRepository) error) error {
	if h.before != nil {
		h.before()
	}
	return h.store.Run(ctx, func(mov repository.StockMovementRepository, prod repository.ProductRepository) error {
		if h.products != nil {
			prod = h.products(prod)
		}
		return fn(mov, prod)
	})
}

var errLookup = errors.New("conexión perdida")

type brokenLookups struct {
	repository.ProductRepository
}

func (brokenLookups) GetByCode(context.Context, string) (*entity.Product, error) { return nil, errLookup }
func (brokenLookups) GetByName(context.Context, string) (*entity.Product, error) { return nil, errLookup }

type brokenCache struct{ mapCache }

func (*brokenCache) Invalidate(context.Context, ...string) error { return errors.New("redis caído") }

func TestProductUpdate_NoPisaPreciosDeUnaRecepcionConfirmada(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()
	p, err := c.products.Create(ctx, "u-1", productRequest("7701", "Leche entera"))
	require.NoError(t, err)

	// Una recepción confirma nuevo costo y precio justo antes de que la edición tome la fila.
	tx := hookedTx{store: c.store, before: func() {
		require.NoError(t, c.store.Products().UpdatePrices(ctx, p.ID, decimal.NewFromInt(3000), decimal.NewFromInt(2100)))
	}}
	uc := usecase.NewProductUseCase(c.store.Products(), c.store.Categories(), tx, inventory.NewStockAccessor(nil), nil, c.cache, nil)

	minimum := decimal.NewFromInt(8)
	out, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{MinimumStock: &minimum})
	require.NoError(t, err)
	assert.True(t, out.MinimumStock.Equal(minimum))
	assert.True(t, out.SalePrice.Equal(decimal.NewFromInt(3000)))
	assert.True(t, out.PurchasePrice.Equal(decimal.NewFromInt(2100)))

	got, err := c.store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.SalePrice.Equal(decimal.NewFromInt(3000)))
	assert.True(t, got.PurchasePrice.Equal(decimal.NewFromInt(2100)))
}

func TestProductUpdate_PesoAUnidadConStockFraccionario(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()
	in := productRequest("7710", "Queso campesino")
	in.MeasurementType = entity.MeasurementWeight
	in.InitialStock = decimal.RequireFromString("2.5")
	p, err := c.products.Create(ctx, "u-1", in)
	require.NoError(t, err)

	unit := entity.MeasurementUnit
	_, err = c.products.Update(ctx, p.ID, dto.UpdateProductRequest{MeasurementType: &unit})
	assert.ErrorIs(t, err, domain.ErrFractionalQuantity)
	got, err := c.products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MeasurementWeight, got.MeasurementType)

	// Con saldo entero el cambio sí procede.
	_, err = c.adjust.AdjustStock(ctx, "u-1", dto.AdjustStockRequest{
		ProductID: p.ID, Direction: entity.DirectionIn, Quantity: decimal.RequireFromString("0.5"), Note: "ajuste",
	})
	require.NoError(t, err)
	out, err := c.products.Update(ctx, p.ID, dto.UpdateProductRequest{MeasurementType: &unit})
	require.NoError(t, err)
	assert.Equal(t, entity.MeasurementUnit, out.MeasurementType)
	assert.True(t, out.CurrentStock.Equal(decimal.NewFromInt(3)))
}

func TestProductUpdate_ErroresDeConsultaSePropagan(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()
	p, err := c.products.Create(ctx, "u-1", productRequest("7701", "Leche entera"))
	require.NoError(t, err)

	tx := hookedTx{store: c.store, products: func(r repository.ProductRepository) repository.ProductRepository {
		return brokenLookups{r}
	}}
	uc := usecase.NewProductUseCase(c.store.Products(), c.store.Categories(), tx, inventory.NewStockAccessor(nil), nil, c.cache, nil)

	code, name := "7799", "Leche deslactosada"
	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{Code: &code})
	assert.ErrorIs(t, err, errLookup)
	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, errLookup)

	got, err := c.products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "7701", got.Code)
	assert.Equal(t, "Leche entera", got.Name)
}

func TestProductUpdate_FalloDeCacheSeRegistra(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()
	p, err := c.products.Create(ctx, "u-1", productRequest("7701", "Leche entera"))
	require.NoError(t, err)

	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "test", Output: &buf})
	uc := usecase.NewProductUseCase(c.store.Products(), c.store.Categories(), c.store,
		inventory.NewStockAccessor(nil), nil, &brokenCache{mapCache: *newMapCache()}, log)

	minimum := decimal.NewFromInt(9)
	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{MinimumStock: &minimum})
	require.NoError(t, err, "la caché no bloquea la edición")
	assert.Contains(t, buf.String(), "no se pudo invalidar la caché de stock")
	assert.Contains(t, buf.String(), p.ID)
}

func TestProductGetStock_CacheSeInvalidaTrasMovimiento(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()
	in := productRequest("7701", "Leche entera")
	in.InitialStock = decimal.NewFromInt(10)
	p, err := c.products.Create(ctx, "u-1", in)
	require.NoError(t, err)

	first, err := c.products.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := c.products.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, c.cache.hits)

	_, err = c.adjust.AdjustStock(ctx, "u-1", dto.AdjustStockRequest{
		ProductID: p.ID, Direction: entity.DirectionOut, Quantity: decimal.NewFromInt(7), Note: "merma",
	})
	require.NoError(t, err)

	third, err := c.products.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.True(t, third.CurrentStock.Equal(decimal.NewFromInt(3)))
	assert.True(t, third.LowStock)
}

func TestProductList_FiltrosYBajoStock(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()
	for _, r := range []struct {
		code, name string
		stock      int64
	}{{"A1", "Arroz", 20}, {"A2", "Atún", 2}, {"B1", "Borojó", 0}} {
		in := productRequest(r.code, r.name)
		in.InitialStock = decimal.NewFromInt(r.stock)
		_, err := c.products.Create(ctx, "u-1", in)
		require.NoError(t, err)
	}

	list, err := c.products.List(ctx, repository.ProductFilter{Search: "a"})
	require.NoError(t, err)
	assert.Equal(t, 20, list.Page.Limit)
	assert.Equal(t, 2, list.Page.Total)

	low, err := c.products.ListLowStock(ctx, 0)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "B1", low[0].Code, "primero el de mayor déficit")
}

// ──────────────────────────────────────────────────────────────────────────────
// Categorías y proveedores
// ──────────────────────────────────────────────────────────────────────────────

func TestCategory_CrearYRenombrar(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()

	lacteos, err := c.categories.Create(ctx, dto.CreateCategoryRequest{Name: " Lácteos "})
	require.NoError(t, err)
	assert.Equal(t, "Lácteos", lacteos.Name)
	granos, err := c.categories.Create(ctx, dto.CreateCategoryRequest{Name: "Granos"})
	require.NoError(t, err)

	_, err = c.categories.Create(ctx, dto.CreateCategoryRequest{Name: "Lácteos"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	name := "Lácteos"
	_, err = c.categories.Update(ctx, granos.ID, dto.UpdateCategoryRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = c.categories.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSupplier_NormalizaIdentificacion(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()
	base := "900123456"
	dv := string(taxid.CheckDigit(base))

	s, err := c.suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "Lácteos del Valle", TaxID: "900.123.456-" + dv})
	require.NoError(t, err)
	assert.Equal(t, base+"-"+dv, s.TaxID)
	assert.True(t, s.Active)

	_, err = c.suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "Duplicado", TaxID: base + dv})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = c.suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "Malo", TaxID: "12AB"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	inactive := false
	updated, err := c.suppliers.Update(ctx, s.ID, dto.UpdateSupplierRequest{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	active, err := c.suppliers.List(ctx, true, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, active)
}
