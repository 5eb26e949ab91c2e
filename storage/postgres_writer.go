package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"bizlistings/models"
)

// PostgresWriter persists canonical listings to PostgreSQL.
type PostgresWriter struct {
	db    *sql.DB
	runID string
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter. runID is stamped on every row written.
func NewPostgresWriter(dsn, runID string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db, runID: runID}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id             SERIAL PRIMARY KEY,
			run_id         UUID,
			source         VARCHAR(100) NOT NULL,
			name           TEXT         NOT NULL,
			description    TEXT         NOT NULL DEFAULT '',
			asking_price   BIGINT       NOT NULL DEFAULT 0 CHECK (asking_price >= 0),
			annual_revenue BIGINT       NOT NULL DEFAULT 0 CHECK (annual_revenue >= 0),
			industry       TEXT         NOT NULL DEFAULT '',
			location       TEXT         NOT NULL DEFAULT '',
			highlights     TEXT[]       NOT NULL DEFAULT '{}',
			original_url   TEXT         UNIQUE NOT NULL,
			created_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_price    ON listings(asking_price);
		CREATE INDEX IF NOT EXISTS idx_listings_revenue  ON listings(annual_revenue);
		CREATE INDEX IF NOT EXISTS idx_listings_industry ON listings(industry);
		CREATE INDEX IF NOT EXISTS idx_listings_source   ON listings(source);
	`)
	return err
}

// Write batch-upserts listings keyed on original_url.
func (pw *PostgresWriter) Write(listings []*models.Listing) error {
	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := pw.upsertBatch(listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) upsertBatch(batch []*models.Listing) error {
	const cols = 10
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	var runID interface{}
	if pw.runID != "" {
		runID = pw.runID
	}

	for idx, l := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for c := 0; c < cols; c++ {
			placeholders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		highlights := l.Highlights
		if highlights == nil {
			highlights = []string{}
		}
		valueArgs = append(valueArgs,
			runID, l.Source, l.Name, l.Description, l.AskingPrice, l.AnnualRevenue,
			l.Industry, l.Location, pq.Array(highlights), l.OriginalURL)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (run_id, source, name, description, asking_price, annual_revenue,
		                      industry, location, highlights, original_url)
		VALUES %s
		ON CONFLICT (original_url) DO UPDATE SET
			run_id         = EXCLUDED.run_id,
			source         = EXCLUDED.source,
			name           = EXCLUDED.name,
			description    = EXCLUDED.description,
			asking_price   = EXCLUDED.asking_price,
			annual_revenue = EXCLUDED.annual_revenue,
			industry       = EXCLUDED.industry,
			location       = EXCLUDED.location,
			highlights     = EXCLUDED.highlights
	`, strings.Join(valueStrings, ","))

	if _, err := pw.db.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: upsert batch: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored listings, used by the insight service.
func (pw *PostgresWriter) FetchAll() ([]*models.Listing, error) {
	rows, err := pw.db.Query(`
		SELECT id, COALESCE(run_id::text, ''), source, name, description, asking_price, annual_revenue,
		       industry, location, highlights, original_url, created_at
		FROM listings
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		if err := rows.Scan(
			&l.ID, &l.RunID, &l.Source, &l.Name, &l.Description, &l.AskingPrice, &l.AnnualRevenue,
			&l.Industry, &l.Location, pq.Array(&l.Highlights), &l.OriginalURL, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
