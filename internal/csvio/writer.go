package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"TxEngine/internal/model"
)

const (
	FormatCSV   = "csv"
	FormatTable = "table"
)

var header = []string{"client", "available", "held", "total", "locked"}

// StatementWriter renders the final account statements.
type StatementWriter interface {
	Write(accounts []model.AccountStatus) error
}

// NewStatementWriter picks the renderer for format.
func NewStatementWriter(format string, w io.Writer) (StatementWriter, error) {
	switch format {
	case FormatCSV, "":
		return NewWriter(w), nil
	case FormatTable:
		return NewTableWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// Writer emits statements as CSV with a client,available,held,total,locked
// header. Balances are printed without trailing zeros.
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Write(accounts []model.AccountStatus) error {
	cw := csv.NewWriter(w.w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, account := range accounts {
		if err := cw.Write(row(account)); err != nil {
			return fmt.Errorf("failed to write client %d: %w", account.ClientID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// TableWriter renders statements as an aligned text table for humans.
type TableWriter struct {
	w io.Writer
}

func NewTableWriter(w io.Writer) *TableWriter {
	return &TableWriter{w: w}
}

func (w *TableWriter) Write(accounts []model.AccountStatus) error {
	table := tablewriter.NewWriter(w.w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, account := range accounts {
		table.Append(row(account))
	}
	table.Render()
	return nil
}

func row(a model.AccountStatus) []string {
	return []string{
		strconv.FormatUint(uint64(a.ClientID), 10),
		a.Available.String(),
		a.Held.String(),
		a.Total.String(),
		strconv.FormatBool(a.Locked),
	}
}
