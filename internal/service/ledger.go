package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"TxEngine/internal/ledger"
	"TxEngine/internal/model"
)

// EventSource yields decoded events in arrival order. Next returns io.EOF
// once the stream is exhausted. Errors wrapping model.ErrMalformedRecord are
// skipped; any other error aborts the run.
type EventSource interface {
	Next() (model.TransactionEvent, error)
}

// LedgerService replays a stream of transactions into per-client accounts
type LedgerService interface {
	Process(ctx context.Context, src EventSource) ([]model.AccountStatus, error)
}

type ledgerService struct {
	logger *zap.Logger
}

// runStats counts what happened to the events of a single run.
type runStats struct {
	Applied   int
	Rejected  int
	Malformed int
}

// NewLedgerService creates a new implementation of LedgerService
func NewLedgerService(logger *zap.Logger) LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ledgerService{logger: logger}
}

// Process consumes src until io.EOF and returns one rounded AccountStatus
// per client seen, ordered by client id. Rule violations are logged and
// dropped; only source failures and cancellation are returned.
func (s *ledgerService) Process(ctx context.Context, src EventSource) ([]model.AccountStatus, error) {
	clients := make(map[uint16]*ledger.Client)
	var stats runStats

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		event, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, model.ErrMalformedRecord) {
				stats.Malformed++
				s.logger.Warn("ledger.record_skipped", zap.Error(err))
				continue
			}
			return nil, fmt.Errorf("failed to read transactions: %w", err)
		}

		client, ok := clients[event.ClientID]
		if !ok {
			client = ledger.NewClient(event.ClientID)
			clients[event.ClientID] = client
		}

		if event.Operation == model.Deposit || event.Operation == model.Withdrawal {
			if prev, reused := client.Transaction(event.TransactionID); reused {
				s.logReusedID(event, prev)
			}
		}

		if err := dispatch(client, event); err != nil {
			stats.Rejected++
			s.logRejection(err)
			continue
		}
		stats.Applied++
	}

	accounts := summarize(clients)

	s.logger.Info("ledger.run_complete",
		zap.Int("applied", stats.Applied),
		zap.Int("rejected", stats.Rejected),
		zap.Int("malformed", stats.Malformed),
		zap.Int("clients", len(accounts)),
	)

	return accounts, nil
}

func dispatch(client *ledger.Client, event model.TransactionEvent) error {
	switch event.Operation {
	case model.Deposit:
		return client.Deposit(event)
	case model.Withdrawal:
		return client.Withdraw(event)
	case model.Dispute:
		return client.Dispute(event)
	case model.Resolve:
		return client.Resolve(event)
	case model.Chargeback:
		return client.Chargeback(event)
	default:
		return model.Reject(event, nil, model.ErrUnsupportedOperation)
	}
}

func (s *ledgerService) logRejection(err error) {
	var rejection *model.Rejection
	if !errors.As(err, &rejection) {
		s.logger.Warn("ledger.event_rejected", zap.Error(err))
		return
	}

	event := rejection.Event
	fields := []zap.Field{
		zap.Uint16("client_id", event.ClientID),
		zap.Uint32("tx_id", event.TransactionID),
		zap.Stringer("operation", event.Operation),
		zap.String("reason", rejection.Err.Error()),
	}
	if event.Amount.Valid {
		fields = append(fields, zap.Stringer("amount", event.Amount.Decimal))
	}
	if stored := rejection.Stored; stored != nil {
		fields = append(fields,
			zap.Stringer("stored_operation", stored.Operation),
			zap.Bool("stored_disputed", stored.Disputed),
		)
		if stored.Amount.Valid {
			fields = append(fields, zap.Stringer("stored_amount", stored.Amount.Decimal))
		}
	}

	s.logger.Warn("ledger."+event.Operation.String()+"_rejected", fields...)
}

// A reused id still applies; the new event replaces the stored entry.
func (s *ledgerService) logReusedID(event model.TransactionEvent, prev model.StoredTransaction) {
	fields := []zap.Field{
		zap.Uint16("client_id", event.ClientID),
		zap.Uint32("tx_id", event.TransactionID),
		zap.Stringer("operation", event.Operation),
		zap.Stringer("stored_operation", prev.Operation),
		zap.Bool("stored_disputed", prev.Disputed),
	}
	if prev.Amount.Valid {
		fields = append(fields, zap.Stringer("stored_amount", prev.Amount.Decimal))
	}
	s.logger.Warn("ledger.transaction_id_reused", fields...)
}

func summarize(clients map[uint16]*ledger.Client) []model.AccountStatus {
	accounts := make([]model.AccountStatus, 0, len(clients))
	for _, client := range clients {
		accounts = append(accounts, client.Account().Rounded())
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ClientID < accounts[j].ClientID
	})
	return accounts
}
