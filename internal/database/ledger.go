package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Alias1177/skinflip/models"
)

var _ models.InventoryLedger = (*DB)(nil)

// ErrRecordNotFound is returned when an inventory id does not exist.
var ErrRecordNotFound = errors.New("inventory record not found")

// RecordPurchase inserts a purchased item and returns its id.
func (db *DB) RecordPurchase(ctx context.Context, rec models.PurchaseRecord) (int64, error) {
	now := db.now().UTC()

	var id int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO inventory (
			title, asset_id, source, strategy, status, purchase_price_usd, notes, purchased_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id
	`, rec.Title, rec.AssetID, rec.Source, rec.Strategy.String(), models.InventoryPurchased.String(),
		rec.PriceUSD, rec.Notes, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("recording purchase of %q: %w", rec.Title, err)
	}

	db.logger.Info().Int64("id", id).Str("title", rec.Title).Float64("price", rec.PriceUSD).Msg("Purchase recorded")
	return id, nil
}

// UpdateStatus moves a record to a new status and sets the given fields.
func (db *DB) UpdateStatus(ctx context.Context, id int64, status models.InventoryStatus, fields map[string]any) error {
	set, args, err := buildStatusUpdate(status, fields, db.now().UTC())
	if err != nil {
		return err
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE inventory SET %s WHERE id = $%d", set, len(args))
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating inventory %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %d", ErrRecordNotFound, id)
	}
	return nil
}

var updatableFields = map[string]bool{
	models.LedgerFieldListPrice: true,
	models.LedgerFieldSoldPrice: true,
	models.LedgerFieldNotes:     true,
}

// buildStatusUpdate renders the SET clause for UpdateStatus. Only known
// columns are accepted and they are emitted in a stable order.
func buildStatusUpdate(status models.InventoryStatus, fields map[string]any, at time.Time) (string, []any, error) {
	if status.String() == "unknown" {
		return "", nil, fmt.Errorf("invalid inventory status %d", status)
	}

	clauses := []string{"status = $1", "updated_at = $2"}
	args := []any{status.String(), at}
	for _, name := range []string{models.LedgerFieldListPrice, models.LedgerFieldSoldPrice, models.LedgerFieldNotes} {
		v, ok := fields[name]
		if !ok {
			continue
		}
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", name, len(args)))
	}
	for name := range fields {
		if !updatableFields[name] {
			return "", nil, fmt.Errorf("field %q cannot be updated", name)
		}
	}
	return strings.Join(clauses, ", "), args, nil
}

// ItemsByStatus lists records in one status, oldest purchase first.
func (db *DB) ItemsByStatus(ctx context.Context, status models.InventoryStatus) ([]models.InventoryItem, error) {
	return db.queryItems(ctx, "WHERE status = $1", status.String())
}

// Summary aggregates the whole ledger.
func (db *DB) Summary(ctx context.Context) (models.InventorySummary, error) {
	items, err := db.queryItems(ctx, "")
	if err != nil {
		return models.InventorySummary{}, err
	}
	return summarize(items), nil
}

func (db *DB) queryItems(ctx context.Context, where string, args ...any) ([]models.InventoryItem, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, title, asset_id, source, strategy, status, purchase_price_usd,
			list_price_usd, sold_price_usd, notes, purchased_at, updated_at
		FROM inventory `+where+`
		ORDER BY purchased_at, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying inventory: %w", err)
	}
	defer rows.Close()

	var items []models.InventoryItem
	for rows.Next() {
		var (
			it               models.InventoryItem
			strategy, status string
			listPrice, sold  sql.NullFloat64
			notes            sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.Title, &it.AssetID, &it.Source, &strategy, &status,
			&it.PurchasePriceUSD, &listPrice, &sold, &notes, &it.PurchasedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning inventory row: %w", err)
		}
		if it.Strategy, err = models.ParseStrategy(strategy); err != nil {
			db.logger.Warn().Err(err).Int64("id", it.ID).Msg("Unknown strategy in inventory")
		}
		if it.Status, err = models.ParseInventoryStatus(status); err != nil {
			return nil, fmt.Errorf("inventory %d: %w", it.ID, err)
		}
		it.ListPriceUSD = listPrice.Float64
		it.SoldPriceUSD = sold.Float64
		it.Notes = notes.String
		items = append(items, it)
	}
	return items, rows.Err()
}

// summarize folds ledger rows into totals. Holding value is the list price
// when set, the purchase price otherwise.
func summarize(items []models.InventoryItem) models.InventorySummary {
	s := models.InventorySummary{ByStatus: make(map[models.InventoryStatus]int)}
	for _, it := range items {
		s.TotalItems++
		s.ByStatus[it.Status]++
		if it.Status == models.InventoryCancelled {
			continue
		}
		s.InvestedUSD += it.PurchasePriceUSD

		switch it.Status {
		case models.InventorySold:
			s.RealizedUSD += it.SoldPriceUSD
			s.RealizedProfitUSD += it.SoldPriceUSD - it.PurchasePriceUSD
		default:
			if it.ListPriceUSD > 0 {
				s.HoldingValueUSD += it.ListPriceUSD
			} else {
				s.HoldingValueUSD += it.PurchasePriceUSD
			}
		}
	}
	return s
}
