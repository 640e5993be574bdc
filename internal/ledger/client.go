package ledger

import (
	"github.com/shopspring/decimal"

	"TxEngine/internal/model"
)

// Client holds one client's balances and the deposits and withdrawals it
// has accepted, keyed by transaction id.
//
// Handlers never fail fatally. A rejected event returns a *model.Rejection
// and leaves the client untouched.
type Client struct {
	account      model.AccountStatus
	transactions map[uint32]*model.StoredTransaction
}

func NewClient(clientID uint16) *Client {
	return &Client{
		account:      model.NewAccountStatus(clientID),
		transactions: make(map[uint32]*model.StoredTransaction),
	}
}

// Account returns a copy of the current, unrounded balances.
func (c *Client) Account() model.AccountStatus {
	return c.account
}

// Transaction returns a copy of the stored deposit or withdrawal with id.
func (c *Client) Transaction(id uint32) (model.StoredTransaction, bool) {
	stored, ok := c.transactions[id]
	if !ok {
		return model.StoredTransaction{}, false
	}
	return *stored, true
}

// Deposit credits the amount and records the event. A reused transaction id
// replaces the earlier history entry.
func (c *Client) Deposit(event model.TransactionEvent) error {
	if !event.Amount.Valid {
		return model.Reject(event, nil, model.ErrMissingAmount)
	}

	amount := event.Amount.Decimal
	c.account.Available = c.account.Available.Add(amount)
	c.account.Total = c.account.Total.Add(amount)
	c.record(event)
	return nil
}

// Withdraw requires available funds strictly greater than the amount;
// draining the account to exactly zero is refused.
func (c *Client) Withdraw(event model.TransactionEvent) error {
	if !event.Amount.Valid {
		return model.Reject(event, nil, model.ErrMissingAmount)
	}

	amount := event.Amount.Decimal
	if !c.account.Available.GreaterThan(amount) {
		return model.Reject(event, nil, model.ErrInsufficientFunds)
	}
	c.account.Available = c.account.Available.Sub(amount)
	c.account.Total = c.account.Total.Sub(amount)
	c.record(event)
	return nil
}

func (c *Client) Dispute(event model.TransactionEvent) error {
	stored, ok := c.transactions[event.TransactionID]
	if !ok {
		return model.Reject(event, nil, model.ErrTransactionNotFound)
	}
	if !stored.Amount.Valid {
		return model.Reject(event, stored, model.ErrMissingAmount)
	}

	amount := stored.Amount.Decimal
	switch stored.Operation {
	case model.Deposit:
		c.account.Available = c.account.Available.Sub(amount)
		c.account.Held = c.account.Held.Add(amount)
	case model.Withdrawal:
		// the withdrawal already left available and total, so the disputed
		// amount comes back as held funds
		c.account.Held = c.account.Held.Add(amount)
		c.account.Total = c.account.Total.Add(amount)
	default:
		return model.Reject(event, stored, model.ErrUnsupportedOperation)
	}
	stored.Disputed = true
	return nil
}

// Resolve releases a dispute. The stored transaction stays flagged as
// disputed afterwards, so it can be resolved or charged back again.
func (c *Client) Resolve(event model.TransactionEvent) error {
	stored, amount, err := c.disputed(event)
	if err != nil {
		return err
	}

	switch stored.Operation {
	case model.Deposit:
		c.account.Available = c.account.Available.Add(amount)
		c.account.Held = c.account.Held.Sub(amount)
	case model.Withdrawal:
		c.account.Held = c.account.Held.Sub(amount)
		c.account.Total = c.account.Total.Sub(amount)
	default:
		return model.Reject(event, stored, model.ErrUnsupportedOperation)
	}
	return nil
}

// Chargeback settles a dispute against the client and locks the account.
// Nothing ever unlocks it.
func (c *Client) Chargeback(event model.TransactionEvent) error {
	stored, amount, err := c.disputed(event)
	if err != nil {
		return err
	}

	switch stored.Operation {
	case model.Deposit:
		c.account.Held = c.account.Held.Sub(amount)
		c.account.Total = c.account.Total.Sub(amount)
	case model.Withdrawal:
		c.account.Available = c.account.Available.Add(amount)
		c.account.Held = c.account.Held.Sub(amount)
	default:
		return model.Reject(event, stored, model.ErrUnsupportedOperation)
	}
	c.account.Locked = true
	return nil
}

func (c *Client) disputed(event model.TransactionEvent) (*model.StoredTransaction, decimal.Decimal, error) {
	stored, ok := c.transactions[event.TransactionID]
	if !ok {
		return nil, decimal.Zero, model.Reject(event, nil, model.ErrTransactionNotFound)
	}
	if !stored.Disputed {
		return nil, decimal.Zero, model.Reject(event, stored, model.ErrNotDisputed)
	}
	if !stored.Amount.Valid {
		return nil, decimal.Zero, model.Reject(event, stored, model.ErrMissingAmount)
	}
	return stored, stored.Amount.Decimal, nil
}

func (c *Client) record(event model.TransactionEvent) {
	stored := model.NewStoredTransaction(event)
	c.transactions[event.TransactionID] = &stored
}
