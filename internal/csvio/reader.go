package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"TxEngine/internal/model"
)

const (
	colType   = "type"
	colClient = "client"
	colTx     = "tx"
	colAmount = "amount"
)

var requiredColumns = []string{colType, colClient, colTx}

// Reader decodes transaction rows. Header names are matched case and
// whitespace insensitively, columns may come in any order and rows may be
// ragged.
type Reader struct {
	csv     *csv.Reader
	logger  *zap.Logger
	columns map[string]int
	record  int
}

func NewReader(r io.Reader, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &Reader{csv: cr, logger: logger}
}

// Next returns the next event. Bad rows yield an error wrapping
// model.ErrMalformedRecord and the reader stays usable; io.EOF marks the
// end of input. A missing or incomplete header is fatal.
func (r *Reader) Next() (model.TransactionEvent, error) {
	if r.columns == nil {
		if err := r.readHeader(); err != nil {
			return model.TransactionEvent{}, err
		}
	}

	record, err := r.csv.Read()
	r.record++
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return model.TransactionEvent{}, fmt.Errorf("%w: %v", model.ErrMalformedRecord, parseErr)
		}
		return model.TransactionEvent{}, err
	}

	event, err := r.decode(record)
	if err != nil {
		return model.TransactionEvent{}, fmt.Errorf("%w: record %d: %v", model.ErrMalformedRecord, r.record, err)
	}
	return event, nil
}

func (r *Reader) readHeader() error {
	header, err := r.csv.Read()
	r.record++
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	// spreadsheet exports often prefix the file with a UTF-8 byte order mark
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return fmt.Errorf("header is missing column %q", name)
		}
	}
	r.columns = columns
	return nil
}

func (r *Reader) field(record []string, name string) (string, bool) {
	i, ok := r.columns[name]
	if !ok || i >= len(record) {
		return "", false
	}
	return strings.TrimSpace(record[i]), true
}

func (r *Reader) decode(record []string) (model.TransactionEvent, error) {
	var event model.TransactionEvent

	typ, _ := r.field(record, colType)
	op, err := model.ParseOperation(typ)
	if err != nil {
		return event, fmt.Errorf("type: %w", err)
	}
	event.Operation = op

	client, _ := r.field(record, colClient)
	clientID, err := strconv.ParseUint(client, 10, 16)
	if err != nil {
		return event, fmt.Errorf("client: %w", err)
	}
	event.ClientID = uint16(clientID)

	tx, _ := r.field(record, colTx)
	txID, err := strconv.ParseUint(tx, 10, 32)
	if err != nil {
		return event, fmt.Errorf("tx: %w", err)
	}
	event.TransactionID = uint32(txID)

	// An unparseable amount does not drop the row: the event flows on
	// without one and the ledger decides whether it needed it.
	if raw, ok := r.field(record, colAmount); ok && raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			r.logger.Warn("csv.amount_invalid",
				zap.Int("record", r.record),
				zap.String("amount", raw),
				zap.Error(err),
			)
		} else {
			event.Amount = decimal.NewNullDecimal(amount)
		}
	}

	return event, nil
}
