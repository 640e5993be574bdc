package handler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"TxEngine/internal/csvio"
	"TxEngine/internal/repository"
	"TxEngine/internal/service"
)

type Options struct {
	Format        string        // csvio.FormatCSV or csvio.FormatTable
	ExportTimeout time.Duration // bound on the statement export, zero for none
}

// StatementHandler turns an input file into account statements: it decodes
// the file, replays it through the ledger, writes the result and, when a
// repository is configured, exports it.
type StatementHandler struct {
	service service.LedgerService
	repo    repository.StatementRepository
	logger  *zap.Logger
	opts    Options
}

// NewStatementHandler wires a handler. repo may be nil to skip the export.
func NewStatementHandler(svc service.LedgerService, repo repository.StatementRepository, logger *zap.Logger, opts Options) *StatementHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatementHandler{service: svc, repo: repo, logger: logger, opts: opts}
}

// Handle processes the file at path and writes the statements to out. Every
// returned error is fatal for the run.
func (h *StatementHandler) Handle(ctx context.Context, runID, path string, out io.Writer) error {
	writer, err := csvio.NewStatementWriter(h.opts.Format, out)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer file.Close()

	reader := csvio.NewReader(bufio.NewReader(file), h.logger)

	accounts, err := h.service.Process(ctx, reader)
	if err != nil {
		return fmt.Errorf("failed to process %s: %w", path, err)
	}

	if err := writer.Write(accounts); err != nil {
		return fmt.Errorf("failed to write statements: %w", err)
	}

	if h.repo == nil {
		return nil
	}

	exportCtx := ctx
	if h.opts.ExportTimeout > 0 {
		var cancel context.CancelFunc
		exportCtx, cancel = context.WithTimeout(ctx, h.opts.ExportTimeout)
		defer cancel()
	}
	if err := h.repo.SaveStatements(exportCtx, runID, accounts); err != nil {
		h.logger.Error("handler.export_failed", zap.String("run_id", runID), zap.Error(err))
		return fmt.Errorf("failed to export statements: %w", err)
	}
	return nil
}
