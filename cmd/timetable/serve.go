package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/example/school-timetable/internal/application"
	"github.com/example/school-timetable/internal/config"
	"github.com/example/school-timetable/internal/export"
	httptransport "github.com/example/school-timetable/internal/http"
	"github.com/example/school-timetable/internal/metrics"
	"github.com/example/school-timetable/internal/persistence/sqlite"
	"github.com/example/school-timetable/internal/persistence/sqlite/migration"
	"github.com/example/school-timetable/internal/validation"
)

func openStorage(cfg config.Config, logger *slog.Logger) (*sqlite.Storage, error) {
	sqliteConfig := migration.DefaultSQLiteConfig(cfg.SQLiteDSN)
	if cfg.SQLiteDSN == migration.InMemoryDSN {
		sqliteConfig = migration.InMemoryTestSQLiteConfig()
	}
	storage, err := sqlite.OpenWithConfig(sqliteConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return storage, nil
}

func newID() string {
	return uuid.NewString()
}

// buildHandler wires storage, services and handlers into the HTTP API.
func buildHandler(cfg config.Config, storage *sqlite.Storage, logger *slog.Logger) (http.Handler, error) {
	defaults, err := config.LoadTemplate(cfg.TemplateFile)
	if err != nil {
		return nil, err
	}

	recorder := metrics.New()
	validator := validation.New()
	opts := []application.TimetableServiceOption{
		application.WithMetrics(recorder),
		application.WithWorkbookWriter(export.NewWorkbookWriter()),
		application.WithTemplateDefaults(defaults),
		application.WithValidator(validator),
	}
	if cfg.GridCacheSize > 0 {
		opts = append(opts, application.WithGridCache(application.NewGridCache(cfg.GridCacheSize, cfg.GridCacheTTL)))
	}

	timetableService := application.NewTimetableServiceWithLogger(newTimetableRepositoryAdapter(storage), newID, time.Now, logger, opts...)
	selectionService := application.NewSelectionServiceWithLogger(newSelectionRepositoryAdapter(storage), time.Now, logger, validator)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Templates:  httptransport.NewTemplateHandler(timetableService, logger),
		Timetables: httptransport.NewTimetableHandler(timetableService, logger),
		Selections: httptransport.NewSelectionHandler(selectionService, logger),
		Metrics:    recorder.Handler(),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			recorder.Middleware,
		},
		Logger: logger,
	}), nil
}

func (a *app) runServe(ctx context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	logger := a.newLogger(cfg.LogLevel)

	storage, err := openStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	handler, err := buildHandler(cfg, storage, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("timetable API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
