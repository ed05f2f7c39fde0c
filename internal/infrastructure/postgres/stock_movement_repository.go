package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx). Solo INSERT y SELECT.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, product_id, direction, quantity, stock_before, stock_after,
	reference_type, reference_id, user_id, note, created_at`

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.Direction, m.Quantity, m.StockBefore, m.StockAfter,
		m.ReferenceType, m.ReferenceID, nullable(m.UserID), m.Note, m.CreatedAt,
	)
	if err != nil {
		return wrapErr("create stock movement", err)
	}
	return nil
}

// List más recientes primero.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var b filterBuilder
	if f.ProductID != "" {
		b.addID("product_id", f.ProductID)
	}
	if f.ReferenceType != "" {
		b.add("reference_type = $%d", f.ReferenceType)
	}
	if f.From != nil {
		b.add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		b.add("created_at <= $%d", *f.To)
	}
	query := `SELECT ` + movementColumns + ` FROM stock_movements` + b.where() + ` ORDER BY created_at DESC, seq DESC`
	query += b.page(f.Limit, f.Offset)
	return r.queryList(ctx, "list stock movements", query, b.args...)
}

// ListByReference en orden de escritura.
func (r *StockMovementRepo) ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements
		WHERE reference_type = $1 AND reference_id = $2 ORDER BY seq`
	return r.queryList(ctx, "list movements by reference", query, referenceType, referenceID)
}

func (r *StockMovementRepo) queryList(ctx context.Context, op, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var userID *string
	if err := row.Scan(&m.ID, &m.ProductID, &m.Direction, &m.Quantity, &m.StockBefore, &m.StockAfter,
		&m.ReferenceType, &m.ReferenceID, &userID, &m.Note, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.UserID = deref(userID)
	return &m, nil
}
