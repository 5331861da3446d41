package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/garyjia/erp-forms/internal/application/service"
	"github.com/garyjia/erp-forms/internal/config"
	"github.com/garyjia/erp-forms/internal/export"
	"github.com/garyjia/erp-forms/internal/forms"
	"github.com/garyjia/erp-forms/internal/infrastructure/persistence/repository"
	"github.com/garyjia/erp-forms/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/erp-forms/internal/infrastructure/worker"
	httpserver "github.com/garyjia/erp-forms/internal/interfaces/http"
	"github.com/garyjia/erp-forms/internal/money"
	"github.com/garyjia/erp-forms/migrations"
	"github.com/garyjia/erp-forms/pkg/database"
	"github.com/garyjia/erp-forms/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	envFile := flag.String("env", ".env", "optional dotenv file loaded before the configuration")
	flag.Parse()

	// Variables already set in the environment win over the file
	if err := gotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
		Service:    "erp-forms",
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Server exited successfully")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting ERP forms service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port),
		zap.Float64("tax_rate", cfg.Forms.TaxRate))

	db, err := database.New(ctx, database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		BusyTimeout:     cfg.Database.BusyTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := database.NewMigrator(db, logger).Run(ctx, migrations.FS); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	formatter, err := money.NewFormatter(cfg.Currency.Code, cfg.Currency.Locale)
	if err != nil {
		return err
	}

	// Repositories and services
	kvLogger := utils.NewKVLogger(logger)
	recordRepo := repository.NewRecordRepository(db.DB, logger)
	referenceRepo := repository.NewReferenceRepository(db.DB, logger)
	txManager := sqlite.NewTxManager(db)

	registry := forms.NewRegistry(forms.Settings{
		TaxRate:             cfg.Forms.TaxRate,
		StandardWorkDay:     cfg.Forms.StandardWorkHours,
		DefaultPaymentTerms: cfg.Forms.DefaultPaymentTerms,
	})
	formService := service.NewFormService(registry, recordRepo, txManager, kvLogger)
	referenceService := service.NewReferenceService(referenceRepo, kvLogger)
	draftService := service.NewDraftService(formService, referenceService, cfg.Drafts.TTL, logger)

	// Background workers
	sweeper, err := worker.NewDraftSweeper(draftService, cfg.Drafts.SweepSchedule, logger)
	if err != nil {
		return err
	}
	workers := worker.NewManager(logger)
	workers.Register(sweeper)
	if err := workers.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	defer workers.StopAll()

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		Mode:            cfg.Server.Mode,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, httpserver.Services{
		Database:   db,
		Forms:      formService,
		Drafts:     draftService,
		References: referenceService,
		Exporter:   export.NewInvoiceExporter(cfg.Export.OutputDir, formatter, logger),
	}, kvLogger)

	return server.Start(ctx)
}
