package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/yourusername/redweb-api/internal/config"
	"github.com/yourusername/redweb-api/pkg/database"
	"github.com/yourusername/redweb-api/pkg/logger"
)

// Утилита ручного управления схемой: up, down N, force V (снимает dirty-состояние), version.
func main() {
	configPath := flag.String("config", "config/config.yaml", "путь к файлу конфигурации")
	steps := flag.Int("steps", 1, "количество шагов для down")
	forceVersion := flag.Int("version", -1, "версия для force")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	log, err := logger.New("info", true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(*configPath, command, *steps, *forceVersion, log); err != nil {
		log.Fatal("migration failed", zap.String("command", command), zap.Error(err))
	}
}

func run(configPath, command string, steps, forceVersion int, log *zap.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations require the postgres driver, got %q", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(database.MigrationsSourceURL(cfg.Database.MigrationsPath), "postgres", driver)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-steps)
	case "force":
		if forceVersion < 0 {
			return errors.New("force requires -version")
		}
		log.Info("forcing migration version to clean dirty state", zap.Int("version", forceVersion))
		err = m.Force(forceVersion)
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			return verr
		}
		log.Info("current schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	default:
		return fmt.Errorf("unknown command %q (want up, down, force or version)", command)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("no change")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("done", zap.String("command", command))
	return nil
}
