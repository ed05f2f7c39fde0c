package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/retail-backoffice/internal/domain"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want domain.ErrorKind
	}{
		{nil, domain.KindNone},
		{fmt.Errorf("tx: %w", domain.ErrConcurrencyConflict), domain.KindConflict},
		{fmt.Errorf("%w: abc", domain.ErrProductNotFound), domain.KindNotFound},
		{&domain.InsufficientStockError{ProductID: "p"}, domain.KindBusinessRule},
		{domain.ErrNotFoundOrAlreadyProcessed, domain.KindBusinessRule},
		{domain.ErrAnnulReasonTooShort, domain.KindInvalidInput},
		{errors.New("conexión rechazada"), domain.KindInfrastructure},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, domain.KindOf(tc.err), "%v", tc.err)
	}
}

func TestIsRetryable_SoloConflictos(t *testing.T) {
	assert.True(t, domain.IsRetryable(fmt.Errorf("wrap: %w", domain.ErrConcurrencyConflict)))
	assert.False(t, domain.IsRetryable(domain.ErrInsufficientStock))
	assert.False(t, domain.IsRetryable(errors.New("timeout de red")))
}

func TestInsufficientStockError(t *testing.T) {
	var err error = fmt.Errorf("venta: %w", &domain.InsufficientStockError{
		ProductID: "p-1", Available: decimal.NewFromInt(2), Requested: decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var detail *domain.InsufficientStockError
	assert.ErrorAs(t, err, &detail)
	assert.Contains(t, err.Error(), "disponible 2, solicitado 5")
}
