package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/Alias1177/skinflip/models"
)

// SQLiteRecorder persists the journal to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

var _ Recorder = (*SQLiteRecorder)(nil)

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the control API read while the trader writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{
		db:     db,
		logger: log.With().Str("component", "sqlite_recorder").Logger(),
	}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("SQLite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scans (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at      INTEGER NOT NULL,
			finished_at     INTEGER NOT NULL,
			items           INTEGER NOT NULL,
			basic_flips     INTEGER NOT NULL,
			snipes          INTEGER NOT NULL,
			attribute_flips INTEGER NOT NULL,
			trade_lock      INTEGER NOT NULL,
			volatility      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_ts ON scans(started_at)`,

		`CREATE TABLE IF NOT EXISTS opportunities (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_id       INTEGER NOT NULL,
			strategy      TEXT NOT NULL,
			title         TEXT NOT NULL,
			buy_price     REAL,
			sell_price    REAL,
			commission    REAL,
			profit        REAL,
			profit_pct    REAL,
			confidence    TEXT,
			discovered_at INTEGER NOT NULL,
			detail        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_opportunities_scan ON opportunities(scan_id)`,

		`CREATE TABLE IF NOT EXISTS orders (
			id           TEXT PRIMARY KEY,
			strategy     TEXT NOT NULL,
			action       TEXT NOT NULL,
			title        TEXT NOT NULL,
			asset_id     TEXT,
			price        REAL,
			profit       REAL,
			status       TEXT NOT NULL,
			error        TEXT,
			attempts     INTEGER,
			created_at   INTEGER NOT NULL,
			completed_at INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			level     TEXT NOT NULL,
			type      TEXT NOT NULL,
			message   TEXT,
			data      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alerts(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordScan stores the scan counts and every opportunity found.
func (r *SQLiteRecorder) RecordScan(ctx context.Context, scan ScanRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin scan tx: %w", err)
	}
	defer tx.Rollback()

	counts := scan.Opportunities.Counts()
	res, err := tx.ExecContext(ctx, `INSERT INTO scans
		(started_at, finished_at, items, basic_flips, snipes, attribute_flips, trade_lock, volatility)
		VALUES (?,?,?,?,?,?,?,?)`,
		scan.StartedAt.Unix(), scan.FinishedAt.Unix(), scan.Items,
		counts[models.StrategyBasicFlip], counts[models.StrategySnipe], counts[models.StrategyAttributeFlip],
		counts[models.StrategyTradeLock], counts[models.StrategyVolatility])
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	scanID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("scan id: %w", err)
	}

	for _, opp := range scan.Opportunities.All() {
		detail, err := json.Marshal(opp.Detail)
		if err != nil {
			return fmt.Errorf("encode detail: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO opportunities
			(scan_id, strategy, title, buy_price, sell_price, commission, profit, profit_pct, confidence, discovered_at, detail)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			scanID, opp.Strategy.String(), opp.Title, opp.BuyPriceUSD, opp.SellPriceUSD, opp.CommissionUSD,
			opp.ProfitUSD, opp.ProfitPct, opp.Confidence.String(), opp.DiscoveredAt.Unix(), string(detail)); err != nil {
			return fmt.Errorf("insert opportunity: %w", err)
		}
	}
	return tx.Commit()
}

// RecordOrder upserts an order; the latest state wins.
func (r *SQLiteRecorder) RecordOrder(ctx context.Context, o models.ExecutionOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var completed any
	if !o.CompletedAt.IsZero() {
		completed = o.CompletedAt.Unix()
	}
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO orders
		(id, strategy, action, title, asset_id, price, profit, status, error, attempts, created_at, completed_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.ID, o.Strategy.String(), o.Action.String(), o.Title, o.AssetID, o.PriceUSD, o.Opportunity.ProfitUSD,
		o.Status.String(), o.Error, o.Attempts, o.CreatedAt.Unix(), completed)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// RecentOrders returns the latest journaled orders, newest first.
func (r *SQLiteRecorder) RecentOrders(ctx context.Context, limit int) ([]OrderRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, strategy, action, title, asset_id, price, profit, status, error, created_at, completed_at
		FROM orders ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var out []OrderRecord
	for rows.Next() {
		var (
			rec                    OrderRecord
			strategy, action, stat string
			created                int64
			completed              sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &strategy, &action, &rec.Title, &rec.AssetID, &rec.PriceUSD, &rec.ProfitUSD,
			&stat, &rec.Error, &created, &completed); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		rec.Strategy, _ = models.ParseStrategy(strategy)
		rec.Status, _ = models.ParseOrderStatus(stat)
		if action == models.ActionSell.String() {
			rec.Action = models.ActionSell
		} else {
			rec.Action = models.ActionBuy
		}
		rec.CreatedAt = time.Unix(created, 0).UTC()
		if completed.Valid {
			rec.CompletedAt = time.Unix(completed.Int64, 0).UTC()
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Notify stores an alert. Failures are logged and dropped.
func (r *SQLiteRecorder) Notify(alert models.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(alert.Data)
	if err != nil {
		data = []byte("{}")
	}
	ts := alert.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	if _, err := r.db.Exec(`INSERT INTO alerts (timestamp, level, type, message, data) VALUES (?,?,?,?,?)`,
		ts.Unix(), alert.Level.String(), alert.Type, alert.Message, string(data)); err != nil {
		r.logger.Warn().Err(err).Str("type", alert.Type).Msg("Failed to record alert")
	}
}

// AlertCount returns the number of stored alerts.
func (r *SQLiteRecorder) AlertCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts`).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
