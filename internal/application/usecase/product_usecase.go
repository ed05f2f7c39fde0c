package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice/internal/application/ports"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
	"github.com/shopspring/decimal"
)

// ProductUseCase casos de uso CRUD para productos. El stock solo cambia vía movimientos:
// el stock inicial se registra como ajuste de entrada en el libro.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	txRunner     inventory.TxRunner
	accessor     *inventory.StockAccessor
	effects      *inventory.EffectsNotifier
	cache        ports.StockCache
	log          *logger.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	txRunner inventory.TxRunner,
	accessor *inventory.StockAccessor,
	effects *inventory.EffectsNotifier,
	cache ports.StockCache,
	log *logger.Logger,
) *ProductUseCase {
	if cache == nil {
		cache = ports.NopStockCache{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{
		repo:         repo,
		categoryRepo: categoryRepo,
		txRunner:     txRunner,
		accessor:     accessor,
		effects:      effects,
		cache:        cache,
		log:          log,
	}
}

// Create crea un nuevo producto activo. Código y nombre son únicos.
func (uc *ProductUseCase) Create(ctx context.Context, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.MeasurementType == "" {
		in.MeasurementType = entity.MeasurementUnit
	}
	if !entity.ValidMeasurementType(in.MeasurementType) {
		return nil, domain.ErrInvalidInput
	}
	if in.SalePrice.IsNegative() || in.PurchasePrice.IsNegative() ||
		in.InitialStock.IsNegative() || in.MinimumStock.IsNegative() {
		return nil, fmt.Errorf("%w: precios y cantidades no pueden ser negativos", domain.ErrInvalidInput)
	}
	if err := uc.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &entity.Product{
		ID:              uuid.New().String(),
		CategoryID:      in.CategoryID,
		Code:            code,
		Name:            name,
		Description:     in.Description,
		SalePrice:       in.SalePrice,
		PurchasePrice:   in.PurchasePrice,
		CurrentStock:    decimal.Zero,
		MinimumStock:    in.MinimumStock,
		MeasurementType: in.MeasurementType,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.InitialStock.IsPositive() && !product.AcceptsQuantity(in.InitialStock) {
		return nil, fmt.Errorf("%w: %s", domain.ErrFractionalQuantity, code)
	}

	var results []*inventory.StockResult
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		if p, err := productRepo.GetByCode(ctx, code); err != nil {
			return err
		} else if p != nil {
			return fmt.Errorf("%w: código %s", domain.ErrDuplicate, code)
		}
		if p, err := productRepo.GetByName(ctx, name); err != nil {
			return err
		} else if p != nil {
			return fmt.Errorf("%w: nombre %s", domain.ErrDuplicate, name)
		}
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		if !in.InitialStock.IsPositive() {
			return nil
		}
		res, err := uc.accessor.Increment(ctx, movRepo, productRepo, inventory.StockChange{
			ProductID:     product.ID,
			Quantity:      in.InitialStock,
			ReferenceType: entity.ReferenceAdjustment,
			ReferenceID:   product.ID,
			UserID:        userID,
			Note:          "stock inicial",
		})
		if err != nil {
			return err
		}
		product.CurrentStock = res.Product.CurrentStock
		results = append(results, res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.effects.AfterCommit(ctx, results)
	uc.log.WithContext(ctx).Info().
		Str("product_id", product.ID).
		Str("code", product.Code).
		Str("initial_stock", product.CurrentStock.String()).
		Msg("producto creado")
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return ToProductResponse(product), nil
}

// GetByCode obtiene un producto por código (lector de código de barras).
func (uc *ProductUseCase) GetByCode(ctx context.Context, code string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return ToProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar el stock (se maneja vía movimientos).
// La fila se lee con bloqueo dentro de la transacción para no pisar precios que una
// recepción concurrente acabe de confirmar.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if in.MeasurementType != nil && !entity.ValidMeasurementType(*in.MeasurementType) {
		return nil, domain.ErrInvalidInput
	}
	for _, v := range []*decimal.Decimal{in.SalePrice, in.PurchasePrice, in.MinimumStock} {
		if v != nil && v.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
	}
	if in.CategoryID != nil {
		if err := uc.checkCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	var product *entity.Product
	err := uc.txRunner.Run(ctx, func(_ repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		p, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrProductNotFound
		}
		if in.Code != nil {
			code := strings.TrimSpace(*in.Code)
			other, err := productRepo.GetByCode(ctx, code)
			if err != nil {
				return err
			}
			if other != nil && other.ID != p.ID {
				return fmt.Errorf("%w: código %s", domain.ErrDuplicate, code)
			}
			p.Code = code
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			other, err := productRepo.GetByName(ctx, name)
			if err != nil {
				return err
			}
			if other != nil && other.ID != p.ID {
				return fmt.Errorf("%w: nombre %s", domain.ErrDuplicate, name)
			}
			p.Name = name
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if in.CategoryID != nil {
			p.CategoryID = *in.CategoryID
		}
		if in.SalePrice != nil {
			p.SalePrice = *in.SalePrice
		}
		if in.PurchasePrice != nil {
			p.PurchasePrice = *in.PurchasePrice
		}
		if in.MinimumStock != nil {
			p.MinimumStock = *in.MinimumStock
		}
		if in.MeasurementType != nil {
			// Pasar a unidades con stock fraccionario dejaría un saldo imposible de vender.
			if *in.MeasurementType == entity.MeasurementUnit && !p.CurrentStock.IsInteger() {
				return fmt.Errorf("%w: %s tiene stock %s", domain.ErrFractionalQuantity, p.Code, p.CurrentStock)
			}
			p.MeasurementType = *in.MeasurementType
		}
		if in.Active != nil {
			p.Active = *in.Active
		}
		p.UpdatedAt = time.Now()
		if err := productRepo.Update(ctx, p); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	// El mínimo pudo cambiar: la lectura cacheada ya no es válida.
	if err := uc.cache.Invalidate(ctx, product.ID); err != nil {
		uc.log.WithContext(ctx).Warn().Err(err).Str("product_id", product.ID).Msg("no se pudo invalidar la caché de stock")
	}
	return ToProductResponse(product), nil
}

// Deactivate marca el producto como inactivo. Nunca se borra: el libro lo referencia.
func (uc *ProductUseCase) Deactivate(ctx context.Context, id string) error {
	active := false
	_, err := uc.Update(ctx, id, dto.UpdateProductRequest{Active: &active})
	return err
}

// List lista productos con filtros y paginación.
func (uc *ProductUseCase) List(ctx context.Context, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	list, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// GetStock devuelve el stock actual. Lee de la caché si está y, si no, de la BD poblando la caché.
// La caché se invalida tras cada escritura del libro, nunca se usa para decidir descuentos.
func (uc *ProductUseCase) GetStock(ctx context.Context, id string) (*dto.StockResponse, error) {
	if snap, err := uc.cache.Get(ctx, id); err == nil && snap != nil {
		return &dto.StockResponse{
			ProductID:    snap.ProductID,
			CurrentStock: snap.CurrentStock,
			MinimumStock: snap.MinimumStock,
			LowStock:     snap.LowStock,
			Cached:       true,
			ReadAt:       snap.ReadAt,
		}, nil
	} else if err != nil {
		uc.log.WithContext(ctx).Warn().Err(err).Str("product_id", id).Msg("caché de stock no disponible")
	}

	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	snap := ports.StockSnapshot{
		ProductID:    product.ID,
		CurrentStock: product.CurrentStock,
		MinimumStock: product.MinimumStock,
		LowStock:     product.IsLowStock(),
		ReadAt:       time.Now().UTC(),
	}
	if err := uc.cache.Set(ctx, snap); err != nil {
		uc.log.WithContext(ctx).Warn().Err(err).Str("product_id", id).Msg("no se pudo cachear el stock")
	}
	return &dto.StockResponse{
		ProductID:    snap.ProductID,
		CurrentStock: snap.CurrentStock,
		MinimumStock: snap.MinimumStock,
		LowStock:     snap.LowStock,
		ReadAt:       snap.ReadAt,
	}, nil
}

// ListLowStock productos en o bajo su stock mínimo.
func (uc *ProductUseCase) ListLowStock(ctx context.Context, limit int) ([]dto.ProductResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	list, err := uc.repo.ListLowStock(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *ToProductResponse(p))
	}
	return out, nil
}

func (uc *ProductUseCase) checkCategory(ctx context.Context, categoryID string) error {
	if categoryID == "" || uc.categoryRepo == nil {
		return nil
	}
	c, err := uc.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: categoría %s", domain.ErrNotFound, categoryID)
	}
	return nil
}

// ToProductResponse mapea la entidad a su DTO.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:              p.ID,
		CategoryID:      p.CategoryID,
		Code:            p.Code,
		Name:            p.Name,
		Description:     p.Description,
		SalePrice:       p.SalePrice,
		PurchasePrice:   p.PurchasePrice,
		CurrentStock:    p.CurrentStock,
		MinimumStock:    p.MinimumStock,
		MeasurementType: p.MeasurementType,
		Active:          p.Active,
		LowStock:        p.IsLowStock(),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
