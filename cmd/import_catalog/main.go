// import_catalog carga productos desde un CSV. El stock inicial de cada fila queda
// registrado en el libro como ajuste de entrada.
//
// Uso: go run ./cmd/import_catalog [-delimiter ';'] [-latin1] [-user admin@tienda.co] productos.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice/internal/application/usecase"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice/internal/infrastructure/postgres"
	"github.com/jhoicas/retail-backoffice/pkg/config"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
)

func main() {
	delimiter := flag.String("delimiter", ",", "separador de columnas")
	latin1 := flag.Bool("latin1", false, "el archivo está en ISO-8859-1")
	userEmail := flag.String("user", "", "email del usuario al que se atribuyen los movimientos de stock inicial")
	flag.Parse()
	if flag.NArg() != 1 || len([]rune(*delimiter)) != 1 {
		fmt.Fprintln(os.Stderr, "uso: import_catalog [-delimiter ';'] [-latin1] [-user email] archivo.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	rows, rowErrs, err := parseCatalog(f, []rune(*delimiter)[0], *latin1)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	categoryRepo := postgres.NewCategoryRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	productUC := usecase.NewProductUseCase(
		postgres.NewProductRepository(pool),
		categoryRepo,
		postgres.NewTxRunner(pool, cfg.DB.LockTimeout),
		inventory.NewStockAccessor(inventory.NewLedger()),
		inventory.NewEffectsNotifier(nil, nil, log),
		nil,
		log,
	)

	var userID string
	if *userEmail != "" {
		u, err := userRepo.GetByEmail(ctx, strings.ToLower(*userEmail))
		if err != nil || u == nil {
			log.Fatal().Err(err).Str("email", *userEmail).Msg("usuario no encontrado")
		}
		userID = u.ID
	}

	imported := 0
	categories := make(map[string]string)
	for _, row := range rows {
		in := row.Product
		if row.Category != "" {
			id, err := categoryID(ctx, categoryRepo, categories, row.Category)
			if err != nil {
				rowErrs = append(rowErrs, rowError{Line: row.Line, Err: err})
				continue
			}
			in.CategoryID = id
		}
		if _, err := productUC.Create(ctx, userID, in); err != nil {
			rowErrs = append(rowErrs, rowError{Line: row.Line, Err: err})
			continue
		}
		imported++
	}

	for _, e := range rowErrs {
		log.Warn().Int("line", e.Line).Err(e.Err).Msg("fila omitida")
	}
	fmt.Printf("Importados %d productos, %d filas con error\n", imported, len(rowErrs))
	if len(rowErrs) > 0 {
		os.Exit(1)
	}
}

// categoryID resuelve la categoría por nombre y la crea si no existe.
func categoryID(ctx context.Context, repo repository.CategoryRepository, cache map[string]string, name string) (string, error) {
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id, nil
	}
	existing, err := repo.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	if existing != nil {
		cache[key] = existing.ID
		return existing.ID, nil
	}
	created, err := usecase.NewCategoryUseCase(repo).Create(ctx, dto.CreateCategoryRequest{Name: name})
	if err != nil {
		return "", err
	}
	cache[key] = created.ID
	return created.ID, nil
}
