package domain

import "time"

// Expense is a cost entry tied to a trip. SplitBetween holds participant
// identifiers (emails or partner names) the amount is shared across.
type Expense struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Amount       float64    `json:"amount"`
	Category     string     `json:"category"`
	Date         string     `json:"date"` // ISO "2006-01-02"
	TripID       string     `json:"tripId"`
	CreatedAt    time.Time  `json:"createdAt"`
	PaidBy       string     `json:"paidBy"`
	SplitBetween []string   `json:"splitBetween"`
	Settled      bool       `json:"settled"`
	SettledAt    *time.Time `json:"settledAt,omitempty"`
	Currency     string     `json:"currency,omitempty"`
	ExchangeRate *float64   `json:"exchangeRate,omitempty"`
}

// SettlementStatus marks the direction a settlement was recorded from.
type SettlementStatus string

const (
	SettlementPaid     SettlementStatus = "paid"
	SettlementReceived SettlementStatus = "received"
)

// ExpenseSettlement is an append-only ledger entry recording that money
// changed hands between two trip participants. It is independent of the
// Expense.Settled flag, which marks the source expense as resolved.
type ExpenseSettlement struct {
	ID        string           `json:"id"`
	FromUser  string           `json:"fromUser"`
	ToUser    string           `json:"toUser"`
	Amount    float64          `json:"amount"`
	Currency  string           `json:"currency,omitempty"`
	TripID    string           `json:"tripId"`
	SettledAt time.Time        `json:"settledAt"`
	Status    SettlementStatus `json:"status"`
}
