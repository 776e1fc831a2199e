package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DB represents a database connection
type DB struct {
	*sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN renders the params as a lib/pq connection string.
func (p ConnectionParams) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
	)
}

// New creates a new database connection
func New(ctx context.Context, params ConnectionParams) (*DB, error) {
	db, err := sql.Open("postgres", params.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	// Check connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	// Create tables if they don't exist
	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &DB{
		DB:     db,
		logger: log.With().Str("component", "database").Logger(),
		now:    time.Now,
	}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_history (
			id          BIGSERIAL PRIMARY KEY,
			title       TEXT NOT NULL,
			price_usd   DOUBLE PRECISION NOT NULL,
			source      TEXT NOT NULL,
			observed_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_history_title_ts ON price_history (title, observed_at DESC)`,

		`CREATE TABLE IF NOT EXISTS inventory (
			id                 BIGSERIAL PRIMARY KEY,
			title              TEXT NOT NULL,
			asset_id           TEXT NOT NULL,
			source             TEXT NOT NULL,
			strategy           TEXT NOT NULL,
			status             TEXT NOT NULL,
			purchase_price_usd DOUBLE PRECISION NOT NULL,
			list_price_usd     DOUBLE PRECISION,
			sold_price_usd     DOUBLE PRECISION,
			notes              TEXT,
			purchased_at       TIMESTAMPTZ NOT NULL,
			updated_at         TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_inventory_status ON inventory (status)`,
	}

	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
