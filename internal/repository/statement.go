package repository

import (
	"context"

	"TxEngine/internal/model"
)

// StatementRepository stores the final account statements of a run.
type StatementRepository interface {
	SaveStatements(ctx context.Context, runID string, accounts []model.AccountStatus) error
}
