package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, category_id, code, name, description, sale_price, purchase_price,
	current_stock, minimum_stock, measurement_type, active, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var categoryID *string
	err := row.Scan(&p.ID, &categoryID, &p.Code, &p.Name, &p.Description, &p.SalePrice, &p.PurchasePrice,
		&p.CurrentStock, &p.MinimumStock, &p.MeasurementType, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.CategoryID = deref(categoryID)
	return &p, nil
}

func (r *ProductRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return p, nil
}

// Create persiste un nuevo producto con su stock inicial en cero.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		p.ID, nullable(p.CategoryID), p.Code, p.Name, p.Description, p.SalePrice, p.PurchasePrice,
		p.CurrentStock, p.MinimumStock, p.MeasurementType, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert product", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "get product", `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by code", `SELECT `+productColumns+` FROM products WHERE code = $1`, code)
}

func (r *ProductRepo) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by name", `SELECT `+productColumns+` FROM products WHERE name = $1`, name)
}

// GetForUpdate bloquea la fila del producto hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "get product for update",
		`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

// Update actualiza atributos de catálogo. No toca current_stock (se maneja vía movimientos).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET category_id = $2, code = $3, name = $4, description = $5, sale_price = $6,
			purchase_price = $7, minimum_stock = $8, measurement_type = $9, active = $10, updated_at = $11
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, nullable(p.CategoryID), p.Code, p.Name, p.Description, p.SalePrice,
		p.PurchasePrice, p.MinimumStock, p.MeasurementType, p.Active, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepo) UpdateStock(ctx context.Context, id string, stock decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET current_stock = $2, updated_at = now() WHERE id = $1`, id, stock)
	if err != nil {
		return wrapErr("update product stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepo) UpdatePrices(ctx context.Context, id string, salePrice, purchasePrice decimal.Decimal) error {
	_, err := r.q.Exec(ctx,
		`UPDATE products SET sale_price = $2, purchase_price = $3, updated_at = now() WHERE id = $1`,
		id, salePrice, purchasePrice,
	)
	if err != nil {
		return wrapErr("update product prices", err)
	}
	return nil
}

// List filtra por categoría, texto y estado; devuelve además el total sin paginar.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	var b filterBuilder
	if f.CategoryID != "" {
		b.addID("category_id", f.CategoryID)
	}
	if f.OnlyActive {
		b.add("active = $%d", true)
	}
	if f.Search != "" {
		b.add("(name ILIKE $%[1]d OR code ILIKE $%[1]d)", "%"+f.Search+"%")
	}
	where := b.where()

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, b.args...).Scan(&total); err != nil {
		return nil, 0, wrapErr("count products", err)
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY name`
	query += b.page(f.Limit, f.Offset)
	list, err := r.queryList(ctx, "list products", query, b.args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListLowStock productos activos en o bajo el mínimo, mayor déficit primero.
func (r *ProductRepo) ListLowStock(ctx context.Context, limit int) ([]*entity.Product, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + productColumns + ` FROM products
		WHERE active AND minimum_stock > 0 AND current_stock <= minimum_stock
		ORDER BY (minimum_stock - current_stock) DESC, code
		LIMIT $1`
	return r.queryList(ctx, "list low stock", query, limit)
}

func (r *ProductRepo) queryList(ctx context.Context, op, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
