package sales_test

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
	"github.com/jhoicas/retail-backoffice/internal/application/sales"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice/internal/infrastructure/memory"
	"github.com/jhoicas/retail-backoffice/internal/infrastructure/pdf"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: arroz (unidad, stock 10, $1.000) y queso (peso, stock 5.5, $8.000)
// ──────────────────────────────────────────────────────────────────────────────

const (
	arrozID  = "aaaaaaaa-0000-0000-0000-000000000001"
	quesoID  = "bbbbbbbb-0000-0000-0000-000000000002"
	sellerID = "cccccccc-0000-0000-0000-000000000003"
	adminID  = "dddddddd-0000-0000-0000-000000000004"
)

type fixture struct {
	store    *memory.Store
	accessor *inventory.StockAccessor
	create   *sales.CreateSaleUseCase
	annul    *sales.AnnulSaleUseCase
	query    *sales.QueryUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	accessor := inventory.NewStockAccessor(inventory.NewLedger())
	effects := inventory.NewEffectsNotifier(nil, nil, nil)

	seedProduct(t, store, accessor, arrozID, "7701", "Arroz 500g", entity.MeasurementUnit, "1000", "10")
	seedProduct(t, store, accessor, quesoID, "7702", "Queso campesino", entity.MeasurementWeight, "8000", "5.5")

	return &fixture{
		store:    store,
		accessor: accessor,
		create:   sales.NewCreateSaleUseCase(store, accessor, effects, nil, nil),
		annul:    sales.NewAnnulSaleUseCase(store, accessor, effects, nil, nil, sales.DefaultRules()),
		query:    sales.NewQueryUseCase(store.Sales()),
	}
}

// seedProduct crea el producto con stock 0 y registra el stock inicial como ajuste,
// de modo que el libro explique siempre current_stock.
func seedProduct(t *testing.T, store *memory.Store, accessor *inventory.StockAccessor, id, code, name, measurement, price, stock string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID:              id,
		Code:            code,
		Name:            name,
		SalePrice:       decimal.RequireFromString(price),
		MeasurementType: measurement,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}))
	require.NoError(t, store.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		_, err := accessor.Increment(ctx, movRepo, productRepo, inventory.StockChange{
			ProductID:     id,
			Quantity:      decimal.RequireFromString(stock),
			ReferenceType: entity.ReferenceAdjustment,
			ReferenceID:   id,
			Note:          "stock inicial",
		})
		return err
	}))
}

func (f *fixture) stock(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.CurrentStock
}

// assertLedgerConsistent: current_stock = Σentradas - Σsalidas para todos los productos.
func (f *fixture) assertLedgerConsistent(t *testing.T) {
	t.Helper()
	drifts, err := f.store.Reports().StockDrift(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drifts, "el stock materializado debe coincidir con el libro")
}

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Registro de venta
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_DescuentaStockYRegistraLibro(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.create.CreateSale(ctx, sellerID, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCard,
		Items: []dto.SaleLineRequest{
			{Code: "7701", Quantity: qty("2")},
			{Name: "Queso campesino", Quantity: qty("1.25")},
		},
	})
	require.NoError(t, err)
	assert.True(t, out.Total.Equal(qty("12000")), "2×1000 + 1.25×8000")
	assert.NotEmpty(t, out.SaleNumber)

	assert.True(t, f.stock(t, arrozID).Equal(qty("8")))
	assert.True(t, f.stock(t, quesoID).Equal(qty("4.25")))

	movs, err := f.store.Movements().ListByReference(ctx, entity.ReferenceSale, out.SaleID)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	// Orden ascendente de product id
	assert.Equal(t, arrozID, movs[0].ProductID)
	assert.True(t, movs[0].StockBefore.Equal(qty("10")))
	assert.True(t, movs[0].StockAfter.Equal(qty("8")))
	assert.Equal(t, entity.DirectionOut, movs[0].Direction)
	assert.Equal(t, sellerID, movs[0].UserID)
	assert.Equal(t, quesoID, movs[1].ProductID)

	sale, err := f.query.GetByID(ctx, out.SaleID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusActive, sale.Status)
	assert.Len(t, sale.Items, 2)

	f.assertLedgerConsistent(t)
}

func TestCreateSale_PrecioExplicitoYMedioPorDefecto(t *testing.T) {
	f := newFixture(t)
	price := qty("900")

	out, err := f.create.CreateSale(context.Background(), sellerID, dto.CreateSaleRequest{
		Items: []dto.SaleLineRequest{{ProductID: arrozID, Quantity: qty("3"), UnitPrice: &price}},
	})
	require.NoError(t, err)
	assert.True(t, out.Total.Equal(qty("2700")))

	sale, err := f.query.GetByID(context.Background(), out.SaleID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentCash, sale.PaymentMethod)
}

func TestCreateSale_StockInsuficienteNoModificaNada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.create.CreateSale(ctx, sellerID, dto.CreateSaleRequest{
		Items: []dto.SaleLineRequest{
			{ProductID: arrozID, Quantity: qty("2")},
			{ProductID: quesoID, Quantity: qty("6")},
		},
	})
	require.Error(t, err)
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, quesoID, stockErr.ProductID)
	assert.True(t, stockErr.Available.Equal(qty("5.5")))
	assert.True(t, stockErr.Requested.Equal(qty("6")))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// La línea de arroz ya descontada dentro de la transacción se revierte
	assert.True(t, f.stock(t, arrozID).Equal(qty("10")))
	assert.True(t, f.stock(t, quesoID).Equal(qty("5.5")))

	list, err := f.query.List(ctx, repository.SaleFilter{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	f.assertLedgerConsistent(t)
}

func TestCreateSale_Rechazos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Products().Update(ctx, &entity.Product{
		ID: quesoID, Code: "7702", Name: "Queso campesino", SalePrice: qty("8000"),
		MeasurementType: entity.MeasurementWeight, Active: false,
	}))

	cases := []struct {
		name  string
		items []dto.SaleLineRequest
		want  error
	}{
		{"sin identificador", []dto.SaleLineRequest{{Quantity: qty("1")}}, domain.ErrInvalidProductRef},
		{"dos identificadores", []dto.SaleLineRequest{{ProductID: arrozID, Code: "7701", Quantity: qty("1")}}, domain.ErrInvalidProductRef},
		{"producto inexistente", []dto.SaleLineRequest{{Code: "0000", Quantity: qty("1")}}, domain.ErrProductNotFound},
		{"producto inactivo", []dto.SaleLineRequest{{ProductID: quesoID, Quantity: qty("1")}}, domain.ErrProductInactive},
		{"línea duplicada por id y código", []dto.SaleLineRequest{
			{ProductID: arrozID, Quantity: qty("1")},
			{Code: "7701", Quantity: qty("1")},
		}, domain.ErrDuplicateLineIdentifier},
		{"fracción en producto por unidad", []dto.SaleLineRequest{{ProductID: arrozID, Quantity: qty("1.5")}}, domain.ErrFractionalQuantity},
		{"cantidad cero", []dto.SaleLineRequest{{ProductID: arrozID, Quantity: qty("0")}}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.create.CreateSale(ctx, sellerID, dto.CreateSaleRequest{Items: tc.items})
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.True(t, f.stock(t, arrozID).Equal(qty("10")))

	_, err := f.create.CreateSale(ctx, sellerID, dto.CreateSaleRequest{
		PaymentMethod: "crypto",
		Items:         []dto.SaleLineRequest{{ProductID: arrozID, Quantity: qty("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateSale_ConcurrenciaNoSobrevende(t *testing.T) {
	f := newFixture(t)
	const buyers = 25

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.create.CreateSale(context.Background(), sellerID, dto.CreateSaleRequest{
				Items: []dto.SaleLineRequest{{ProductID: arrozID, Quantity: qty("1")}},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, buyers-10, rejected)
	assert.True(t, f.stock(t, arrozID).IsZero())
	f.assertLedgerConsistent(t)
}

func TestCreateSale_NumerosUnicos(t *testing.T) {
	f := newFixture(t)
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		out, err := f.create.CreateSale(context.Background(), sellerID, dto.CreateSaleRequest{
			Items: []dto.SaleLineRequest{{ProductID: arrozID, Quantity: qty("1")}},
		})
		require.NoError(t, err)
		assert.False(t, seen[out.SaleNumber], "número repetido %s", out.SaleNumber)
		seen[out.SaleNumber] = true
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Anulación
// ──────────────────────────────────────────────────────────────────────────────

func (f *fixture) sell(t *testing.T) *dto.CreateSaleResponse {
	t.Helper()
	out, err := f.create.CreateSale(context.Background(), sellerID, dto.CreateSaleRequest{
		Items: []dto.SaleLineRequest{
			{ProductID: arrozID, Quantity: qty("4")},
			{ProductID: quesoID, Quantity: qty("0.75")},
		},
	})
	require.NoError(t, err)
	return out
}

func TestAnnulSale_RestituyeStockYConservaLineas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sold := f.sell(t)
	require.True(t, f.stock(t, arrozID).Equal(qty("6")))

	out, err := f.annul.AnnulSale(ctx, adminID, sold.SaleID, dto.AnnulSaleRequest{Reason: "  error de digitación  "})
	require.NoError(t, err)
	assert.Equal(t, sold.SaleNumber, out.SaleNumber)

	assert.True(t, f.stock(t, arrozID).Equal(qty("10")))
	assert.True(t, f.stock(t, quesoID).Equal(qty("5.5")))

	sale, err := f.query.GetByID(ctx, sold.SaleID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusAnnulled, sale.Status)
	assert.Equal(t, adminID, sale.AnnulledBy)
	assert.Equal(t, "error de digitación", sale.AnnulReason)
	assert.NotNil(t, sale.AnnulledAt)
	assert.Len(t, sale.Items, 2)

	movs, err := f.store.Movements().ListByReference(ctx, entity.ReferenceSale, sold.SaleID)
	require.NoError(t, err)
	require.Len(t, movs, 4)
	assert.Equal(t, entity.DirectionIn, movs[2].Direction)
	assert.Equal(t, entity.DirectionIn, movs[3].Direction)
	f.assertLedgerConsistent(t)
}

func TestAnnulSale_DobleAnulacion(t *testing.T) {
	f := newFixture(t)
	sold := f.sell(t)
	req := dto.AnnulSaleRequest{Reason: "cliente desistió"}

	_, err := f.annul.AnnulSale(context.Background(), adminID, sold.SaleID, req)
	require.NoError(t, err)
	_, err = f.annul.AnnulSale(context.Background(), adminID, sold.SaleID, req)
	assert.ErrorIs(t, err, domain.ErrAlreadyAnnulled)
	assert.True(t, f.stock(t, arrozID).Equal(qty("10")), "la segunda anulación no repone dos veces")
}

func TestAnnulSale_VentanaVencida(t *testing.T) {
	f := newFixture(t)
	sold := f.sell(t)

	f.annul.WithClock(func() time.Time { return time.Now().Add(24*time.Hour + time.Minute) })
	_, err := f.annul.AnnulSale(context.Background(), adminID, sold.SaleID, dto.AnnulSaleRequest{Reason: "cliente desistió"})
	assert.ErrorIs(t, err, domain.ErrAnnulmentWindowExpired)
	assert.True(t, f.stock(t, arrozID).Equal(qty("6")))

	f.annul.WithClock(func() time.Time { return time.Now().Add(23 * time.Hour) })
	_, err = f.annul.AnnulSale(context.Background(), adminID, sold.SaleID, dto.AnnulSaleRequest{Reason: "cliente desistió"})
	assert.NoError(t, err)
}

func TestAnnulSale_MotivoCortoEInexistente(t *testing.T) {
	f := newFixture(t)
	sold := f.sell(t)

	_, err := f.annul.AnnulSale(context.Background(), adminID, sold.SaleID, dto.AnnulSaleRequest{Reason: "   corto   "})
	assert.ErrorIs(t, err, domain.ErrAnnulReasonTooShort)

	_, err = f.annul.AnnulSale(context.Background(), adminID, "no-existe", dto.AnnulSaleRequest{Reason: "motivo suficientemente largo"})
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas y comprobante
// ──────────────────────────────────────────────────────────────────────────────

func TestQuery_ListFiltraPorEstado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.sell(t)
	f.sell(t)
	_, err := f.annul.AnnulSale(ctx, adminID, first.SaleID, dto.AnnulSaleRequest{Reason: "cliente desistió"})
	require.NoError(t, err)

	active, err := f.query.List(ctx, repository.SaleFilter{Status: entity.SaleStatusActive, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, active.Items, 1)

	annulled, err := f.query.List(ctx, repository.SaleFilter{Status: entity.SaleStatusAnnulled, Limit: 10})
	require.NoError(t, err)
	require.Len(t, annulled.Items, 1)
	assert.Equal(t, first.SaleID, annulled.Items[0].ID)

	_, err = f.query.List(ctx, repository.SaleFilter{Status: "borrada"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReceipt_GeneraPDF(t *testing.T) {
	f := newFixture(t)
	sold := f.sell(t)
	uc := sales.NewReceiptUseCase(f.store.Sales(), f.store.Products(), pdf.NewReceiptGenerator("Tienda de prueba"))

	data, filename, err := uc.DownloadReceipt(context.Background(), sold.SaleID)
	require.NoError(t, err)
	assert.Contains(t, filename, sold.SaleNumber)
	require.Greater(t, len(data), 4)
	assert.Equal(t, "%PDF", string(data[:4]))

	_, _, err = uc.DownloadReceipt(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)
}
