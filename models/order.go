package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition is returned when an order is moved backwards or out of a terminal state.
var ErrInvalidTransition = errors.New("invalid order status transition")

// OrderStatus is the lifecycle state of an ExecutionOrder.
type OrderStatus int

const (
	OrderPending OrderStatus = iota + 1
	OrderExecuting
	OrderCompleted
	OrderFailed
	OrderCancelled
	OrderTimeout
)

var orderStatusNames = map[OrderStatus]string{
	OrderPending:   "PENDING",
	OrderExecuting: "EXECUTING",
	OrderCompleted: "COMPLETED",
	OrderFailed:    "FAILED",
	OrderCancelled: "CANCELLED",
	OrderTimeout:   "TIMEOUT",
}

func (s OrderStatus) String() string {
	if name, ok := orderStatusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderFailed || s == OrderCancelled || s == OrderTimeout
}

// rank orders the lifecycle: pending < executing < any terminal state.
func (s OrderStatus) rank() int {
	switch s {
	case OrderPending:
		return 0
	case OrderExecuting:
		return 1
	}
	return 2
}

// ParseOrderStatus maps the external name of a status to its value.
func ParseOrderStatus(name string) (OrderStatus, error) {
	for s, n := range orderStatusNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown order status %q", name)
}

func (s OrderStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *OrderStatus) UnmarshalText(text []byte) error {
	v, err := ParseOrderStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderExecuting, OrderCancelled, OrderTimeout},
	OrderExecuting: {OrderCompleted, OrderFailed, OrderCancelled, OrderTimeout},
}

// ExecutionOrder is a decision to act on an opportunity.
type ExecutionOrder struct {
	ID               string      `json:"id"`
	Strategy         Strategy    `json:"strategy"`
	Action           OrderAction `json:"action"`
	Title            string      `json:"title"`
	AssetID          string      `json:"asset_id"`
	PriceUSD         float64     `json:"price_usd"`
	Opportunity      Opportunity `json:"opportunity"`
	RiskLevel        RiskLevel   `json:"risk_level"`
	CreatedAt        time.Time   `json:"created_at"`
	Status           OrderStatus `json:"status"`
	Attempts         int         `json:"attempts"`
	LastAttemptAt    time.Time   `json:"last_attempt_at,omitempty"`
	CompletedAt      time.Time   `json:"completed_at,omitempty"`
	Error            string      `json:"error,omitempty"`
	ExecutedPriceUSD float64     `json:"executed_price_usd,omitempty"`
	MarketOfferID    string      `json:"market_offer_id,omitempty"`
	HeldAssetID      string      `json:"held_asset_id,omitempty"`
	LedgerRecordID   int64       `json:"ledger_record_id,omitempty"`
}

// Transition moves the order to a new status. Moving to EXECUTING counts an
// attempt; moving to a terminal status stamps the completion time.
func (o *ExecutionOrder) Transition(to OrderStatus, at time.Time) error {
	if o.Status.Terminal() || to.rank() < o.Status.rank() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	allowed := false
	for _, s := range allowedTransitions[o.Status] {
		if s == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}

	o.Status = to
	switch {
	case to == OrderExecuting:
		o.Attempts++
		o.LastAttemptAt = at
	case to.Terminal():
		o.CompletedAt = at
	}
	return nil
}

// Fail moves the order to FAILED with a reason. It is a no-op on terminal orders.
func (o *ExecutionOrder) Fail(reason string, at time.Time) {
	if err := o.Transition(OrderFailed, at); err != nil {
		return
	}
	o.Error = reason
}
