// Package application wires configuration, the database and the import
// pipeline together for the server and CLI binaries.
package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/propimport/internal/config"
	"github.com/JonMunkholm/propimport/internal/core"
	"github.com/JonMunkholm/propimport/internal/i18n"
	"github.com/JonMunkholm/propimport/internal/store/postgres"
)

// App holds the long-lived components shared by a process.
type App struct {
	Config   *config.Config
	Pool     *pgxpool.Pool
	Store    *postgres.Store
	Importer *core.Importer
	Limiter  *core.ImportLimiter
}

// New connects to the database and builds the importer. Close releases the
// pool.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	pool, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	store := postgres.New(pool)
	importer, err := NewImporter(store, cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}

	slog.Info("application ready",
		"locale", importer.Locale().Tag().String(),
		"batch_size", cfg.Import.BatchSize,
		"max_concurrent", cfg.Import.MaxConcurrent,
	)

	return &App{
		Config:   cfg,
		Pool:     pool,
		Store:    store,
		Importer: importer,
		Limiter:  core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
	}, nil
}

// NewImporter builds an importer for store from the import settings. The
// locale selects both the message language and the category labels.
func NewImporter(store core.Store, cfg *config.Config) (*core.Importer, error) {
	locale, err := i18n.Parse(cfg.App.Locale)
	if err != nil {
		return nil, err
	}

	categories, err := core.NewCategoryMap(core.CategoriesFor(locale))
	if err != nil {
		return nil, fmt.Errorf("build category map: %w", err)
	}

	return core.NewImporter(store, categories, locale, core.Options{
		BatchSize:          cfg.Import.BatchSize,
		MaxDisplayedErrors: cfg.Import.MaxDisplayedErrors,
		Encoding:           cfg.Import.SourceEncoding,
		StrictHouseRoom:    cfg.Import.StrictHouseRoom,
		Diagnostic:         cfg.Diagnostic(),
	}), nil
}

// Close releases the database pool.
func (a *App) Close() {
	a.Pool.Close()
}
