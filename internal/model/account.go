package model

import "github.com/shopspring/decimal"

// OutputPrecision is the number of fractional digits kept in reported balances.
const OutputPrecision int32 = 4

// AccountStatus is a client's balance sheet. Total always equals
// Available + Held.
type AccountStatus struct {
	ClientID  uint16
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

func NewAccountStatus(clientID uint16) AccountStatus {
	return AccountStatus{
		ClientID:  clientID,
		Available: decimal.Zero,
		Held:      decimal.Zero,
		Total:     decimal.Zero,
	}
}

// Rounded returns a copy with every balance rounded to OutputPrecision
// places, half away from zero.
func (a AccountStatus) Rounded() AccountStatus {
	a.Available = a.Available.Round(OutputPrecision)
	a.Held = a.Held.Round(OutputPrecision)
	a.Total = a.Total.Round(OutputPrecision)
	return a
}
