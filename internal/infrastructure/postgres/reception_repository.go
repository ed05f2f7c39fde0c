package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

var _ repository.ReceptionRepository = (*ReceptionRepo)(nil)

// ReceptionRepo recepciones de mercancía sobre PostgreSQL (usable con pool o tx).
type ReceptionRepo struct {
	q Querier
}

// NewReceptionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceptionRepository(q Querier) *ReceptionRepo {
	return &ReceptionRepo{q: q}
}

const receptionColumns = `id, invoice_number, supplier_id, user_id, reception_date, total, notes, status,
	created_at, processed_at, processed_by, cancelled_at, cancelled_by`

// Create falla con ErrDuplicateInvoice si (supplier_id, invoice_number) ya existe.
func (r *ReceptionRepo) Create(ctx context.Context, rec *entity.Reception) error {
	query := `
		INSERT INTO receptions (id, invoice_number, supplier_id, user_id, reception_date, total, notes, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.InvoiceNumber, rec.SupplierID, nullable(rec.UserID), rec.ReceptionDate,
		rec.Total, rec.Notes, rec.Status, rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateInvoice
		}
		return wrapErr("insert reception", err)
	}
	return nil
}

func (r *ReceptionRepo) CreateItems(ctx context.Context, items []entity.ReceptionLineItem) error {
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`
			INSERT INTO reception_items (id, reception_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, it.ReceptionID, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal)
	}
	return execBatch(ctx, r.q, batch, len(items), "insert reception item")
}

func (r *ReceptionRepo) ExistsInvoice(ctx context.Context, supplierID, invoiceNumber string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM receptions WHERE supplier_id = $1 AND invoice_number = $2)`,
		supplierID, invoiceNumber).Scan(&exists)
	if err != nil {
		return false, wrapErr("exists invoice", err)
	}
	return exists, nil
}

func (r *ReceptionRepo) GetByID(ctx context.Context, id string) (*entity.Reception, error) {
	return r.get(ctx, `SELECT `+receptionColumns+` FROM receptions WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera: dos procesamientos concurrentes se serializan aquí.
func (r *ReceptionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Reception, error) {
	return r.get(ctx, `SELECT `+receptionColumns+` FROM receptions WHERE id = $1 FOR UPDATE`, id)
}

func (r *ReceptionRepo) get(ctx context.Context, query, id string) (*entity.Reception, error) {
	if !isUUID(id) {
		return nil, nil
	}
	rec, err := scanReception(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get reception", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, reception_id, product_id, quantity, unit_price, subtotal
		FROM reception_items WHERE reception_id = $1 ORDER BY product_id`, rec.ID)
	if err != nil {
		return nil, wrapErr("list reception items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.ReceptionLineItem
		if err := rows.Scan(&it.ID, &it.ReceptionID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan reception item: %w", err)
		}
		rec.Items = append(rec.Items, it)
	}
	return rec, rows.Err()
}

// UpdateStatus solo transiciona desde pending.
func (r *ReceptionRepo) UpdateStatus(ctx context.Context, rec *entity.Reception) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE receptions SET status = $2, processed_at = $3, processed_by = $4, cancelled_at = $5, cancelled_by = $6
		WHERE id = $1 AND status = 'pending'`,
		rec.ID, rec.Status, rec.ProcessedAt, nullable(rec.ProcessedBy), rec.CancelledAt, nullable(rec.CancelledBy))
	if err != nil {
		return wrapErr("update reception status", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *ReceptionRepo) List(ctx context.Context, f repository.ReceptionFilter) ([]*entity.Reception, int, error) {
	var b filterBuilder
	if f.Status != "" {
		b.add("status = $%d", f.Status)
	}
	if f.SupplierID != "" {
		b.addID("supplier_id", f.SupplierID)
	}
	if f.From != nil {
		b.add("reception_date >= $%d", *f.From)
	}
	if f.To != nil {
		b.add("reception_date <= $%d", *f.To)
	}
	where := b.where()

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM receptions`+where, b.args...).Scan(&total); err != nil {
		return nil, 0, wrapErr("count receptions", err)
	}
	query := `SELECT ` + receptionColumns + ` FROM receptions` + where + ` ORDER BY created_at DESC`
	query += b.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, b.args...)
	if err != nil {
		return nil, 0, wrapErr("list receptions", err)
	}
	defer rows.Close()
	var list []*entity.Reception
	for rows.Next() {
		rec, err := scanReception(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan reception: %w", err)
		}
		list = append(list, rec)
	}
	return list, total, rows.Err()
}

func scanReception(row pgx.Row) (*entity.Reception, error) {
	var rec entity.Reception
	var userID, processedBy, cancelledBy *string
	if err := row.Scan(&rec.ID, &rec.InvoiceNumber, &rec.SupplierID, &userID, &rec.ReceptionDate, &rec.Total,
		&rec.Notes, &rec.Status, &rec.CreatedAt, &rec.ProcessedAt, &processedBy, &rec.CancelledAt, &cancelledBy); err != nil {
		return nil, err
	}
	rec.UserID = deref(userID)
	rec.ProcessedBy = deref(processedBy)
	rec.CancelledBy = deref(cancelledBy)
	return &rec, nil
}
