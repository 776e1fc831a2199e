package database

import (
	"math"
	"testing"
	"time"

	"github.com/Alias1177/skinflip/models"
)

func TestBuildStatusUpdate(t *testing.T) {
	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		status   models.InventoryStatus
		fields   map[string]any
		wantSet  string
		wantArgs int
		wantErr  bool
	}{
		{
			name:     "status only",
			status:   models.InventoryHolding,
			wantSet:  "status = $1, updated_at = $2",
			wantArgs: 2,
		},
		{
			name:   "sold with price and notes",
			status: models.InventorySold,
			fields: map[string]any{
				models.LedgerFieldNotes:     "stop-loss",
				models.LedgerFieldSoldPrice: 8.5,
			},
			wantSet:  "status = $1, updated_at = $2, sold_price_usd = $3, notes = $4",
			wantArgs: 4,
		},
		{
			name:    "unknown column",
			status:  models.InventoryListed,
			fields:  map[string]any{"purchase_price_usd": 1.0},
			wantErr: true,
		},
		{
			name:    "invalid status",
			status:  models.InventoryStatus(42),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, args, err := buildStatusUpdate(tt.status, tt.fields, at)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", set)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if set != tt.wantSet {
				t.Errorf("set = %q, want %q", set, tt.wantSet)
			}
			if len(args) != tt.wantArgs || args[0] != tt.status.String() {
				t.Errorf("args = %v", args)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	items := []models.InventoryItem{
		{Status: models.InventoryPurchased, PurchasePriceUSD: 10},
		{Status: models.InventoryListed, PurchasePriceUSD: 20, ListPriceUSD: 25},
		{Status: models.InventorySold, PurchasePriceUSD: 30, SoldPriceUSD: 36},
		{Status: models.InventoryCancelled, PurchasePriceUSD: 99},
	}

	got := summarize(items)

	if got.TotalItems != 4 || got.ByStatus[models.InventorySold] != 1 || got.ByStatus[models.InventoryCancelled] != 1 {
		t.Errorf("counts = %+v", got)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"invested", got.InvestedUSD, 60},
		{"holding", got.HoldingValueUSD, 35},
		{"realized", got.RealizedUSD, 36},
		{"realized profit", got.RealizedProfitUSD, 6},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestConnectionParamsDSN(t *testing.T) {
	p := ConnectionParams{Host: "db", Port: "5432", User: "bot", Password: "pw", DBName: "skins", SSLMode: "disable"}
	want := "host=db port=5432 user=bot password=pw dbname=skins sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
