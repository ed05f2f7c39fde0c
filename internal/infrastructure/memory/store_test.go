package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

func seed(t *testing.T, s *Store) {
	t.Helper()
	require.NoError(t, s.Products().Create(context.Background(), &entity.Product{
		ID: "p1", Code: "C1", Name: "Café", CurrentStock: decimal.NewFromInt(5),
		MeasurementType: entity.MeasurementUnit, Active: true,
	}))
}

func TestWithTx_RestauraElEstadoSiFalla(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunSale(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository, saleRepo repository.SaleRepository) error {
		require.NoError(t, productRepo.UpdateStock(ctx, "p1", decimal.NewFromInt(1)))
		require.NoError(t, movRepo.Create(ctx, &entity.StockMovement{ID: "m1", ProductID: "p1"}))
		_, err := saleRepo.NextNumber(ctx, time.Now())
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.CurrentStock.Equal(decimal.NewFromInt(5)))
	movs, err := s.Movements().List(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movs)
	assert.Equal(t, int64(0), s.data.saleSeq, "la secuencia también se revierte")
}

func TestWithTx_RestauraElEstadoSiEntraEnPanico(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	assert.PanicsWithValue(t, "boom", func() {
		_ = s.RunSale(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository, saleRepo repository.SaleRepository) error {
			require.NoError(t, productRepo.UpdateStock(ctx, "p1", decimal.NewFromInt(1)))
			require.NoError(t, movRepo.Create(ctx, &entity.StockMovement{ID: "m1", ProductID: "p1"}))
			_, err := saleRepo.NextNumber(ctx, time.Now())
			require.NoError(t, err)
			panic("boom")
		})
	})

	p, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.CurrentStock.Equal(decimal.NewFromInt(5)))
	movs, err := s.Movements().List(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movs)
	assert.Equal(t, int64(0), s.data.saleSeq)

	// El mutex quedó libre: la siguiente transacción corre.
	require.NoError(t, s.Run(ctx, func(_ repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		return productRepo.UpdateStock(ctx, "p1", decimal.NewFromInt(7))
	}))
	p, err = s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.CurrentStock.Equal(decimal.NewFromInt(7)))
}

func TestWithTx_ContextoCancelado(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Run(ctx, func(repository.StockMovementRepository, repository.ProductRepository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestProductRepo_UpdateConservaElStock(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.Products().Update(ctx, &entity.Product{ID: "p1", Code: "C1", Name: "Café molido"}))
	p, err := s.Products().GetByCode(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, "Café molido", p.Name)
	assert.True(t, p.CurrentStock.Equal(decimal.NewFromInt(5)))

	assert.ErrorIs(t, s.Products().Update(ctx, &entity.Product{ID: "nope"}), domain.ErrProductNotFound)
}

func TestSaleRepo_ItemsYNumeracion(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repo := s.Sales()
	day := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	n1, err := repo.NextNumber(ctx, day)
	require.NoError(t, err)
	n2, err := repo.NextNumber(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, "V-20261018-000001", n1)
	assert.NotEqual(t, n1, n2)

	require.NoError(t, repo.Create(ctx, &entity.Sale{ID: "s1", SaleNumber: n1, Status: entity.SaleStatusActive}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.Sale{ID: "s2", SaleNumber: n1}), domain.ErrDuplicate)
	require.NoError(t, repo.CreateItems(ctx, []entity.SaleLineItem{{SaleID: "s1", ProductID: "p1"}, {SaleID: "s1", ProductID: "p2"}}))
	assert.ErrorIs(t, repo.CreateItems(ctx, []entity.SaleLineItem{{SaleID: "x"}}), domain.ErrSaleNotFound)

	sale, err := repo.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, sale.Items, 2)

	missing, err := repo.GetByID(ctx, "s9")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPage(t *testing.T) {
	list := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, page(list, 2, 2))
	assert.Equal(t, []int{}, page(list, 2, 9))
	assert.Equal(t, list, page(list, 0, 0))
}
