package models

import "context"

// MarketplaceClient is the marketplace REST API. Money crosses it in cents.
type MarketplaceClient interface {
	GetSellOffers(ctx context.Context, title string, limit int, currency string) (OffersPage, error)
	GetBuyOrders(ctx context.Context, title, gameID string, limit int, orderBy, orderDir, currency string) (BuyOrdersPage, error)
	GetFeeSchedule(ctx context.Context, gameID string) (FeeSchedule, error)
	GetBalance(ctx context.Context) (map[string]int64, error)
	SubmitBuy(ctx context.Context, assetID string, priceCents int64) (TradeResult, error)
	SubmitSell(ctx context.Context, assetID string, priceCents int64) (TradeResult, error)
	CancelOffer(ctx context.Context, offerID string) (TradeResult, error)
	GetInventory(ctx context.Context, title string) ([]InventoryAsset, error)
}

// PriceHistoryStore keeps price ticks per title. Query returns most-recent-first.
type PriceHistoryStore interface {
	Append(ctx context.Context, title string, tick PriceTick) error
	Query(ctx context.Context, title string, limit int) ([]PriceTick, error)
}

// InventoryLedger is the bookkeeping of bought items.
type InventoryLedger interface {
	RecordPurchase(ctx context.Context, rec PurchaseRecord) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status InventoryStatus, fields map[string]any) error
	Summary(ctx context.Context) (InventorySummary, error)
	ItemsByStatus(ctx context.Context, status InventoryStatus) ([]InventoryItem, error)
}

// AlertSink receives alerts. Delivery is fire-and-forget.
type AlertSink interface {
	Notify(alert Alert)
}
