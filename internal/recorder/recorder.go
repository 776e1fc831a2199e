package recorder

import (
	"context"
	"time"

	"github.com/Alias1177/skinflip/models"
)

// ScanRecord summarises one strategy scan.
type ScanRecord struct {
	StartedAt     time.Time
	FinishedAt    time.Time
	Items         int
	Opportunities models.OpportunitySet
}

// OrderRecord is a journaled order as read back from storage.
type OrderRecord struct {
	ID          string
	Strategy    models.Strategy
	Action      models.OrderAction
	Title       string
	AssetID     string
	PriceUSD    float64
	ProfitUSD   float64
	Status      models.OrderStatus
	Error       string
	CreatedAt   time.Time
	CompletedAt time.Time
}

// Recorder keeps a local journal of scans, orders and alerts.
type Recorder interface {
	RecordScan(ctx context.Context, scan ScanRecord) error
	RecordOrder(ctx context.Context, order models.ExecutionOrder) error
	RecentOrders(ctx context.Context, limit int) ([]OrderRecord, error)
	Notify(alert models.Alert)
	Close() error
}
