package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para reportes y conciliación.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// SalesSummary las ventas anuladas solo suman en annulled_count.
func (r *ReportRepo) SalesSummary(ctx context.Context, from, to time.Time) (repository.SalesSummaryResult, error) {
	const query = `
	SELECT
	    COUNT(*) FILTER (WHERE status = 'active')                  AS sales_count,
	    COUNT(*) FILTER (WHERE status = 'annulled')                AS annulled_count,
	    COALESCE(SUM(total) FILTER (WHERE status = 'active'), 0)   AS total
	FROM sales
	WHERE created_at BETWEEN $1 AND $2`

	var res repository.SalesSummaryResult
	if err := r.q.QueryRow(ctx, query, from, to).Scan(&res.SalesCount, &res.AnnulledCount, &res.Total); err != nil {
		return res, wrapErr("reports.SalesSummary", err)
	}
	return res, nil
}

func (r *ReportRepo) SalesByPaymentMethod(ctx context.Context, from, to time.Time) ([]repository.PaymentMethodResult, error) {
	const query = `
	SELECT payment_method, COUNT(*), COALESCE(SUM(total), 0) AS total
	FROM sales
	WHERE status = 'active' AND created_at BETWEEN $1 AND $2
	GROUP BY payment_method
	ORDER BY total DESC, payment_method`

	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, wrapErr("reports.SalesByPaymentMethod", err)
	}
	defer rows.Close()
	var out []repository.PaymentMethodResult
	for rows.Next() {
		var row repository.PaymentMethodResult
		if err := rows.Scan(&row.PaymentMethod, &row.SalesCount, &row.Total); err != nil {
			return nil, fmt.Errorf("reports.SalesByPaymentMethod scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *ReportRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]repository.TopProductResult, error) {
	const query = `
	SELECT
	    p.id, p.code, p.name,
	    SUM(i.quantity) AS units_sold,
	    SUM(i.subtotal) AS revenue
	FROM sales s
	JOIN sale_items i ON i.sale_id = s.id
	JOIN products   p ON p.id      = i.product_id
	WHERE s.status = 'active' AND s.created_at BETWEEN $1 AND $2
	GROUP BY p.id, p.code, p.name
	ORDER BY units_sold DESC, revenue DESC, p.code
	LIMIT $3`

	if limit <= 0 {
		limit = 10
	}
	rows, err := r.q.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, wrapErr("reports.TopProducts", err)
	}
	defer rows.Close()
	var out []repository.TopProductResult
	for rows.Next() {
		var row repository.TopProductResult
		if err := rows.Scan(&row.ProductID, &row.Code, &row.ProductName, &row.UnitsSold, &row.Revenue); err != nil {
			return nil, fmt.Errorf("reports.TopProducts scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// StockDrift compara current_stock con Σin - Σout del libro.
func (r *ReportRepo) StockDrift(ctx context.Context) ([]repository.StockDriftResult, error) {
	const query = `
	SELECT
	    p.id, p.code, p.name, p.current_stock,
	    COALESCE(SUM(m.quantity) FILTER (WHERE m.direction = 'in'),  0) AS ledger_in,
	    COALESCE(SUM(m.quantity) FILTER (WHERE m.direction = 'out'), 0) AS ledger_out
	FROM products p
	LEFT JOIN stock_movements m ON m.product_id = p.id
	GROUP BY p.id, p.code, p.name, p.current_stock
	HAVING p.current_stock <> COALESCE(SUM(CASE WHEN m.direction = 'in' THEN m.quantity ELSE -m.quantity END), 0)
	ORDER BY p.code`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, wrapErr("reports.StockDrift", err)
	}
	defer rows.Close()
	var out []repository.StockDriftResult
	for rows.Next() {
		var row repository.StockDriftResult
		if err := rows.Scan(&row.ProductID, &row.Code, &row.ProductName, &row.CurrentStock,
			&row.LedgerIn, &row.LedgerOut); err != nil {
			return nil, fmt.Errorf("reports.StockDrift scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
