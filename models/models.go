package models

import "time"

// PurchaseRecord is what gets written to the ledger after a completed buy.
type PurchaseRecord struct {
	Title    string   `json:"title"`
	PriceUSD float64  `json:"price_usd"`
	Source   string   `json:"source"`
	Strategy Strategy `json:"strategy"`
	AssetID  string   `json:"asset_id"`
	Notes    string   `json:"notes,omitempty"`
}

// InventoryItem is one ledger row.
type InventoryItem struct {
	ID               int64           `json:"id"`
	Title            string          `json:"title"`
	AssetID          string          `json:"asset_id"`
	Source           string          `json:"source"`
	Strategy         Strategy        `json:"strategy"`
	Status           InventoryStatus `json:"status"`
	PurchasePriceUSD float64         `json:"purchase_price_usd"`
	ListPriceUSD     float64         `json:"list_price_usd,omitempty"`
	SoldPriceUSD     float64         `json:"sold_price_usd,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	PurchasedAt      time.Time       `json:"purchased_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// InventorySummary aggregates the ledger.
type InventorySummary struct {
	TotalItems        int                     `json:"total_items"`
	ByStatus          map[InventoryStatus]int `json:"by_status"`
	InvestedUSD       float64                 `json:"invested_usd"`
	HoldingValueUSD   float64                 `json:"holding_value_usd"`
	RealizedUSD       float64                 `json:"realized_usd"`
	RealizedProfitUSD float64                 `json:"realized_profit_usd"`
}

// Updatable ledger fields accepted by InventoryLedger.UpdateStatus.
const (
	LedgerFieldListPrice = "list_price_usd"
	LedgerFieldSoldPrice = "sold_price_usd"
	LedgerFieldNotes     = "notes"
)
