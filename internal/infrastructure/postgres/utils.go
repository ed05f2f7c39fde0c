package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/retail-backoffice/internal/domain"
)

// Querier es el subconjunto común de *pgxpool.Pool y pgx.Tx que usan los repositorios.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeInvalidTextRepr      = "22P02"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUUID las columnas id son UUID: un id con otro formato no puede existir y
// enviarlo a Postgres falla con 22P02 (y aborta la transacción en curso).
func isUUID(id string) bool {
	return uuid.Validate(id) == nil
}

// isNoRows fila inexistente, incluido un id con formato inválido que llegó a la consulta.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || pgCode(err) == codeInvalidTextRepr
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if code := pgCode(err); code != "" {
		return code == codeUniqueViolation
	}
	return err != nil && strings.Contains(err.Error(), codeUniqueViolation)
}

// isConcurrencyConflict: fallo de serialización, deadlock o lock_timeout agotado.
func isConcurrencyConflict(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// wrapErr envuelve un error de infraestructura; los conflictos de bloqueo pasan a ErrConcurrencyConflict.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isConcurrencyConflict(err) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConcurrencyConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// nullable convierte "" en NULL para columnas uuid opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// filterBuilder acumula condiciones WHERE con placeholders posicionales.
type filterBuilder struct {
	conds []string
	args  []any
}

func (b *filterBuilder) add(cond string, arg any) {
	b.args = append(b.args, arg)
	b.conds = append(b.conds, fmt.Sprintf(cond, len(b.args)))
}

// addID filtro por columna UUID; un id mal formado no coincide con ninguna fila.
func (b *filterBuilder) addID(column, id string) {
	if !isUUID(id) {
		b.conds = append(b.conds, "FALSE")
		return
	}
	b.add(column+" = $%d", id)
}

func (b *filterBuilder) where() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// page agrega LIMIT/OFFSET como los dos siguientes parámetros.
func (b *filterBuilder) page(limit, offset int) string {
	if limit <= 0 {
		limit = 50
	}
	b.args = append(b.args, limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(b.args)-1, len(b.args))
}
