package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/retail-backoffice/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice/internal/application/receptions"
	"github.com/jhoicas/retail-backoffice/internal/application/sales"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice/internal/infrastructure/memory"
	"github.com/jhoicas/retail-backoffice/internal/infrastructure/postgres"
	"github.com/jhoicas/retail-backoffice/pkg/config"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
)

// txRunner une los tres TxRunner; postgres.TxRunner y memory.Store implementan los tres.
type txRunner interface {
	inventory.TxRunner
	sales.SaleTxRunner
	receptions.ReceptionTxRunner
}

// storage repositorios fuera de transacción más el TxRunner del driver elegido.
type storage struct {
	tx         txRunner
	products   repository.ProductRepository
	movements  repository.StockMovementRepository
	sales      repository.SaleRepository
	receptions repository.ReceptionRepository
	suppliers  repository.SupplierRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
	reports    repository.ReportRepository
	close      func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == "memory" {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &storage{
			tx:         s,
			products:   s.Products(),
			movements:  s.Movements(),
			sales:      s.Sales(),
			receptions: s.Receptions(),
			suppliers:  s.Suppliers(),
			categories: s.Categories(),
			users:      s.Users(),
			reports:    s.Reports(),
			close:      func() {},
		}, nil
	}

	migrator, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		return nil, fmt.Errorf("migraciones: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return nil, fmt.Errorf("aplicar migraciones: %w", err)
	}
	_ = migrator.Close()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return postgresStorage(pool, cfg.DB), nil
}

func postgresStorage(pool *pgxpool.Pool, cfg config.DBConfig) *storage {
	return &storage{
		tx:         postgres.NewTxRunner(pool, cfg.LockTimeout),
		products:   postgres.NewProductRepository(pool),
		movements:  postgres.NewStockMovementRepository(pool),
		sales:      postgres.NewSaleRepository(pool),
		receptions: postgres.NewReceptionRepository(pool),
		suppliers:  postgres.NewSupplierRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		users:      postgres.NewUserRepository(pool),
		reports:    postgres.NewReportRepository(pool),
		close:      pool.Close,
	}
}
