package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"TxEngine/internal/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

type PostgresRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresRepository(db *sql.DB, logger *zap.Logger) *PostgresRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresRepository{db: db, logger: logger}
}

// SaveStatements writes the statements of one run in a single transaction.
// Rows are keyed by (run_id, client_id); re-saving a run is rejected by the
// primary key.
func (r *PostgresRepository) SaveStatements(ctx context.Context, runID string, accounts []model.AccountStatus) error {
	if _, err := uuid.Parse(runID); err != nil {
		return fmt.Errorf("invalid run id %q: %w", runID, err)
	}
	if len(accounts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("account_statements",
		"run_id", "client_id", "available", "held", "total", "locked"))
	if err != nil {
		return fmt.Errorf("failed to prepare copy: %w", err)
	}

	for _, a := range accounts {
		if _, err := stmt.ExecContext(ctx,
			runID,
			int32(a.ClientID),
			a.Available.String(),
			a.Held.String(),
			a.Total.String(),
			a.Locked,
		); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("failed to copy client %d: %w", a.ClientID, err)
		}
	}

	// flush the buffered COPY
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("failed to flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("failed to close copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}

	r.logger.Info("repository.statements_saved",
		zap.String("run_id", runID),
		zap.Int("clients", len(accounts)),
	)
	return nil
}

func (r *PostgresRepository) RunMigrations(ctx context.Context) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}

	for _, entry := range entries {
		migration, err := migrations.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}
		if _, err := r.db.ExecContext(ctx, string(migration)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}
