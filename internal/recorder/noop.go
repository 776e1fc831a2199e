package recorder

import (
	"context"

	"github.com/Alias1177/skinflip/models"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordScan(context.Context, ScanRecord) error              { return nil }
func (n *NoopRecorder) RecordOrder(context.Context, models.ExecutionOrder) error  { return nil }
func (n *NoopRecorder) RecentOrders(context.Context, int) ([]OrderRecord, error) { return nil, nil }
func (n *NoopRecorder) Notify(models.Alert)                                       {}
func (n *NoopRecorder) Close() error                                              { return nil }
