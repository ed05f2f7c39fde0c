// migrate aplica o revierte las migraciones embebidas.
//
// Uso: go run ./cmd/migrate [up|down|version]
// Lee la conexión de DATABASE_URL o DB_HOST, DB_PORT, etc.
package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/retail-backoffice/internal/infrastructure/postgres"
	"github.com/jhoicas/retail-backoffice/pkg/config"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
)

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("crear migrador")
	}
	defer m.Close()

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		v, dirty, verr := m.Version()
		if verr == nil {
			fmt.Printf("versión %d (dirty=%t)\n", v, dirty)
		}
		err = verr
	default:
		fmt.Fprintf(os.Stderr, "comando desconocido %q (up|down|version)\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Str("cmd", cmd).Msg("migración fallida")
		os.Exit(1)
	}
}
