package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"TxEngine/internal/config"
	"TxEngine/internal/handler"
	"TxEngine/internal/logger"
	"TxEngine/internal/repository"
	"TxEngine/internal/service"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()

	runID := uuid.NewString()
	log := logger.L().With(zap.String("run_id", runID))

	// The input path is the only argument
	if len(os.Args) < 2 || os.Args[1] == "" {
		log.Fatal("first argument must be the input file path")
	}
	inputPath := os.Args[1]

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var statementRepo repository.StatementRepository
	if cfg.ExportEnabled() {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatal("database connection failed", zap.Error(err))
		}
		defer db.Close()

		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
		db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

		if err := db.PingContext(ctx); err != nil {
			log.Fatal("database ping failed", zap.Error(err))
		}

		pgRepo := repository.NewPostgresRepository(db, log)
		if err := pgRepo.RunMigrations(ctx); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		statementRepo = pgRepo
	}

	ledgerService := service.NewLedgerService(log)

	statementHandler := handler.NewStatementHandler(ledgerService, statementRepo, log, handler.Options{
		Format:        cfg.OutputFormat,
		ExportTimeout: cfg.DBTimeout,
	})

	if err := statementHandler.Handle(ctx, runID, inputPath, os.Stdout); err != nil {
		stop()
		log.Error("run failed", zap.String("input", inputPath), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
