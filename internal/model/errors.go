package model

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAmount        = errors.New("missing amount")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrNotDisputed          = errors.New("transaction not disputed")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrMalformedRecord      = errors.New("malformed record")
)

// Rejection describes an event the ledger refused to apply. Stored is the
// previously recorded transaction the event conflicted with, if any.
type Rejection struct {
	Event  TransactionEvent
	Stored *StoredTransaction
	Err    error
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("invalid %s for client %d tx %d: %v",
		r.Event.Operation, r.Event.ClientID, r.Event.TransactionID, r.Err)
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// Reject builds a Rejection for event. stored may be nil.
func Reject(event TransactionEvent, stored *StoredTransaction, err error) error {
	var snapshot *StoredTransaction
	if stored != nil {
		cp := *stored
		snapshot = &cp
	}
	return &Rejection{Event: event, Stored: snapshot, Err: err}
}
