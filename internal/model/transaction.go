package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Operation is the closed set of transaction kinds accepted by the ledger.
type Operation int

const (
	Deposit Operation = iota + 1
	Withdrawal
	Dispute
	Resolve
	Chargeback
)

var operationNames = map[Operation]string{
	Deposit:    "deposit",
	Withdrawal: "withdrawal",
	Dispute:    "dispute",
	Resolve:    "resolve",
	Chargeback: "chargeback",
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("operation(%d)", int(o))
}

// ParseOperation maps a case-insensitive type literal onto an Operation.
func ParseOperation(s string) (Operation, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for op, n := range operationNames {
		if n == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedOperation, s)
}

// TransactionEvent is one decoded input row.
type TransactionEvent struct {
	Operation     Operation
	ClientID      uint16
	TransactionID uint32
	Amount        decimal.NullDecimal // only set for deposits and withdrawals
}

// StoredTransaction is the part of a deposit or withdrawal kept for later
// dispute lookups.
type StoredTransaction struct {
	TransactionID uint32
	Operation     Operation
	Amount        decimal.NullDecimal
	Disputed      bool
}

// NewStoredTransaction records event as an undisputed history entry.
func NewStoredTransaction(event TransactionEvent) StoredTransaction {
	return StoredTransaction{
		TransactionID: event.TransactionID,
		Operation:     event.Operation,
		Amount:        event.Amount,
	}
}
