package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas y sus líneas sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, sale_number, user_id, total, payment_method, status, created_at,
	annulled_at, annulled_by, annul_reason`

// NextNumber V-YYYYMMDD-NNNNNN con sufijo de la secuencia sale_number_seq.
func (r *SaleRepo) NextNumber(ctx context.Context, day time.Time) (string, error) {
	var seq int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('sale_number_seq')`).Scan(&seq); err != nil {
		return "", wrapErr("next sale number", err)
	}
	return fmt.Sprintf("V-%s-%06d", day.Format("20060102"), seq), nil
}

func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, sale_number, user_id, total, payment_method, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.SaleNumber, nullable(s.UserID), s.Total, s.PaymentMethod, s.Status, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert sale", err)
	}
	return nil
}

// CreateItems inserta las líneas en un solo batch.
func (r *SaleRepo) CreateItems(ctx context.Context, items []entity.SaleLineItem) error {
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`
			INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, it.SaleID, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal)
	}
	return execBatch(ctx, r.q, batch, len(items), "insert sale item")
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera de la venta.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleRepo) get(ctx context.Context, query, id string) (*entity.Sale, error) {
	if !isUUID(id) {
		return nil, nil
	}
	s, err := scanSale(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get sale", err)
	}
	items, err := r.items(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return s, nil
}

func (r *SaleRepo) items(ctx context.Context, saleID string) ([]entity.SaleLineItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, quantity, unit_price, subtotal
		FROM sale_items WHERE sale_id = $1 ORDER BY product_id`, saleID)
	if err != nil {
		return nil, wrapErr("list sale items", err)
	}
	defer rows.Close()
	var items []entity.SaleLineItem
	for rows.Next() {
		var it entity.SaleLineItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// MarkAnnulled solo actualiza ventas activas.
func (r *SaleRepo) MarkAnnulled(ctx context.Context, s *entity.Sale) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE sales SET status = 'annulled', annulled_at = $2, annulled_by = $3, annul_reason = $4
		WHERE id = $1 AND status = 'active'`,
		s.ID, s.AnnulledAt, nullable(s.AnnulledBy), s.AnnulReason)
	if err != nil {
		return wrapErr("annul sale", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadyAnnulled
	}
	return nil
}

// List cabeceras sin líneas, más recientes primero.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, int, error) {
	var b filterBuilder
	if f.Status != "" {
		b.add("status = $%d", f.Status)
	}
	if f.PaymentMethod != "" {
		b.add("payment_method = $%d", f.PaymentMethod)
	}
	if f.UserID != "" {
		b.addID("user_id", f.UserID)
	}
	if f.From != nil {
		b.add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		b.add("created_at <= $%d", *f.To)
	}
	where := b.where()

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sales`+where, b.args...).Scan(&total); err != nil {
		return nil, 0, wrapErr("count sales", err)
	}

	query := `SELECT ` + saleColumns + ` FROM sales` + where + ` ORDER BY created_at DESC, sale_number DESC`
	query += b.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, b.args...)
	if err != nil {
		return nil, 0, wrapErr("list sales", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var userID, annulledBy *string
	if err := row.Scan(&s.ID, &s.SaleNumber, &userID, &s.Total, &s.PaymentMethod, &s.Status, &s.CreatedAt,
		&s.AnnulledAt, &annulledBy, &s.AnnulReason); err != nil {
		return nil, err
	}
	s.UserID = deref(userID)
	s.AnnulledBy = deref(annulledBy)
	return &s, nil
}

// execBatch envía el batch y verifica cada sentencia.
func execBatch(ctx context.Context, q Querier, batch *pgx.Batch, n int, op string) error {
	if n == 0 {
		return nil
	}
	sender, ok := q.(interface {
		SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	})
	if !ok {
		return fmt.Errorf("%s: el querier no soporta batch", op)
	}
	br := sender.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			return wrapErr(op, err)
		}
	}
	return nil
}
