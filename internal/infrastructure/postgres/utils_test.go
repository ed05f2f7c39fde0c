package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestWrapErr_ConflictosDeBloqueo(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03"} {
		err := wrapErr("get product for update", &pgconn.PgError{Code: code})
		assert.ErrorIs(t, err, domain.ErrConcurrencyConflict, code)
		assert.True(t, domain.IsRetryable(err), code)
	}
}

func TestWrapErr_OtrosErroresNoSonReintentables(t *testing.T) {
	err := wrapErr("insert sale", &pgconn.PgError{Code: "23503"})
	assert.False(t, domain.IsRetryable(err))
	assert.Nil(t, wrapErr("noop", nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("x: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestFilterBuilder(t *testing.T) {
	var b filterBuilder
	b.add("status = $%d", "active")
	b.add("created_at >= $%d", "2024-01-01")
	page := b.page(0, 10)

	assert.Equal(t, " WHERE status = $1 AND created_at >= $2", b.where())
	assert.Equal(t, " LIMIT $3 OFFSET $4", page)
	assert.Equal(t, []any{"active", "2024-01-01", 50, 10}, b.args)
}

func TestPgx5URL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", pgx5URL("postgres://u:p@h:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://u@h/db", pgx5URL("postgresql://u@h/db"))
	assert.Equal(t, "pgx5://already", pgx5URL("pgx5://already"))
}

func TestIsNoRows_IDMalFormado(t *testing.T) {
	assert.True(t, isNoRows(pgx.ErrNoRows))
	assert.True(t, isNoRows(fmt.Errorf("get sale: %w", &pgconn.PgError{Code: "22P02"})))
	assert.False(t, isNoRows(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isNoRows(nil))
}

// Un id que no es UUID nunca llega a Postgres: los getters responden (nil, nil)
// sin usar el Querier, igual que para una fila inexistente.
func TestGetters_IDNoUUIDEsNoEncontrado(t *testing.T) {
	ctx := context.Background()

	sale, err := NewSaleRepository(nil).GetForUpdate(ctx, "no-existe")
	assert.NoError(t, err)
	assert.Nil(t, sale)

	rec, err := NewReceptionRepository(nil).GetForUpdate(ctx, "no-existe")
	assert.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = NewReceptionRepository(nil).GetByID(ctx, "123")
	assert.NoError(t, err)
	assert.Nil(t, rec)

	prod, err := NewProductRepository(nil).GetForUpdate(ctx, "7701")
	assert.NoError(t, err)
	assert.Nil(t, prod)

	user, err := NewUserRepository(nil).GetByID(ctx, "x")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestFilterBuilder_AddIDMalFormado(t *testing.T) {
	var b filterBuilder
	b.addID("product_id", "no-es-uuid")
	b.addID("user_id", "00000000-0000-0000-0000-000000000001")

	assert.Equal(t, " WHERE FALSE AND user_id = $1", b.where())
	assert.Equal(t, []any{"00000000-0000-0000-0000-000000000001"}, b.args)
}
