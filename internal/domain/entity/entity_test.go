package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNewProductRef(t *testing.T) {
	ref, err := entity.NewProductRef("", " 7701 ", "")
	require.NoError(t, err)
	assert.Equal(t, entity.RefByCode, ref.Kind)
	assert.Equal(t, "7701", ref.Value)
	assert.Equal(t, "code:7701", ref.String())

	_, err = entity.NewProductRef("", "", "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidProductRef)

	_, err = entity.NewProductRef("id-1", "7701", "")
	assert.ErrorIs(t, err, domain.ErrInvalidProductRef)

	assert.False(t, entity.ProductRef{Kind: 9, Value: "x"}.Valid())
	assert.False(t, entity.ByName("").Valid())
}

func TestProduct_AcceptsQuantity(t *testing.T) {
	unit := &entity.Product{MeasurementType: entity.MeasurementUnit}
	weight := &entity.Product{MeasurementType: entity.MeasurementWeight}

	assert.True(t, unit.AcceptsQuantity(d("3")))
	assert.False(t, unit.AcceptsQuantity(d("0.5")))
	assert.False(t, unit.AcceptsQuantity(d("0")))
	assert.True(t, weight.AcceptsQuantity(d("0.125")))
	assert.False(t, weight.AcceptsQuantity(d("0.1255")))
	assert.False(t, weight.AcceptsQuantity(d("-1")))
}

func TestProduct_IsLowStock(t *testing.T) {
	p := &entity.Product{CurrentStock: d("3"), MinimumStock: d("3")}
	assert.True(t, p.IsLowStock())
	p.CurrentStock = d("4")
	assert.False(t, p.IsLowStock())
	p.MinimumStock = decimal.Zero
	p.CurrentStock = decimal.Zero
	assert.False(t, p.IsLowStock(), "sin mínimo configurado no hay alerta")
}

func TestSale_CanAnnulYAnnul(t *testing.T) {
	created := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	s := &entity.Sale{Status: entity.SaleStatusActive, CreatedAt: created}

	assert.NoError(t, s.CanAnnul(created.Add(24*time.Hour), 24*time.Hour), "el límite es inclusivo")
	assert.ErrorIs(t, s.CanAnnul(created.Add(24*time.Hour+time.Second), 24*time.Hour), domain.ErrAnnulmentWindowExpired)

	now := created.Add(time.Hour)
	require.NoError(t, s.Annul(now, "u-1", "cliente desistió de la compra", 24*time.Hour))
	assert.Equal(t, entity.SaleStatusAnnulled, s.Status)
	assert.Equal(t, "u-1", s.AnnulledBy)
	require.NotNil(t, s.AnnulledAt)
	assert.Equal(t, now, *s.AnnulledAt)

	assert.ErrorIs(t, s.Annul(now, "u-1", "otra vez", 24*time.Hour), domain.ErrAlreadyAnnulled)
}

func TestLineSubtotal_RedondeaADosDecimales(t *testing.T) {
	assert.True(t, entity.LineSubtotal(d("0.333"), d("1000")).Equal(d("333")))
	assert.True(t, entity.LineSubtotal(d("1.005"), d("3.33")).Equal(d("3.35")))
}

func TestReception_Transiciones(t *testing.T) {
	now := time.Now()

	r := &entity.Reception{Status: entity.ReceptionPending}
	require.NoError(t, r.MarkProcessed(now, "u-1"))
	assert.Equal(t, entity.ReceptionProcessed, r.Status)
	assert.ErrorIs(t, r.MarkProcessed(now, "u-1"), domain.ErrNotFoundOrAlreadyProcessed)
	assert.ErrorIs(t, r.MarkCancelled(now, "u-1"), domain.ErrReceptionNotPending)

	c := &entity.Reception{Status: entity.ReceptionPending}
	require.NoError(t, c.MarkCancelled(now, "u-2"))
	assert.Equal(t, entity.ReceptionCancelled, c.Status)
	assert.Equal(t, "u-2", c.CancelledBy)
	assert.ErrorIs(t, c.MarkProcessed(now, "u-1"), domain.ErrNotFoundOrAlreadyProcessed)
}

func TestStockMovement_SignedQuantity(t *testing.T) {
	out := &entity.StockMovement{Direction: entity.DirectionOut, Quantity: d("2")}
	in := &entity.StockMovement{Direction: entity.DirectionIn, Quantity: d("2")}
	assert.True(t, out.SignedQuantity().Equal(d("-2")))
	assert.True(t, in.SignedQuantity().Equal(d("2")))
	assert.False(t, entity.ValidReferenceType("transfer"))
}
