package database

import (
	"context"
	"fmt"

	"github.com/Alias1177/skinflip/models"
)

var _ models.PriceHistoryStore = (*DB)(nil)

// Append stores one price observation.
func (db *DB) Append(ctx context.Context, title string, tick models.PriceTick) error {
	if !models.IsFinitePositive(tick.Price) {
		return fmt.Errorf("refusing to store price %v for %q", tick.Price, title)
	}
	observed := tick.Timestamp
	if observed.IsZero() {
		observed = db.now()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO price_history (title, price_usd, source, observed_at)
		VALUES ($1, $2, $3, $4)
	`, title, tick.Price, tick.Source, observed.UTC())
	if err != nil {
		return fmt.Errorf("inserting price tick: %w", err)
	}
	return nil
}

// Query returns the latest ticks of a title, most recent first.
func (db *DB) Query(ctx context.Context, title string, limit int) ([]models.PriceTick, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.QueryContext(ctx, `
		SELECT price_usd, source, observed_at
		FROM price_history
		WHERE title = $1
		ORDER BY observed_at DESC
		LIMIT $2
	`, title, limit)
	if err != nil {
		return nil, fmt.Errorf("querying price history: %w", err)
	}
	defer rows.Close()

	var ticks []models.PriceTick
	for rows.Next() {
		var t models.PriceTick
		if err := rows.Scan(&t.Price, &t.Source, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning price tick: %w", err)
		}
		ticks = append(ticks, t)
	}
	return ticks, rows.Err()
}
