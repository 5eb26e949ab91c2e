package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"bizlistings/models"
)

// SQLiteWriter persists canonical listings to an embedded SQLite file.
type SQLiteWriter struct {
	db    *sql.DB
	runID string
	now   func() time.Time
}

// NewSQLiteWriter opens (or creates) the database at path and migrates it.
func NewSQLiteWriter(path, runID string) (*SQLiteWriter, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	sw := &SQLiteWriter{db: db, runID: runID, now: time.Now}
	if err := sw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return sw, nil
}

func (sw *SQLiteWriter) migrate() error {
	_, err := sw.db.Exec(`
CREATE TABLE IF NOT EXISTS listings (
  id             INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id         TEXT    NOT NULL DEFAULT '',
  source         TEXT    NOT NULL,
  name           TEXT    NOT NULL,
  description    TEXT    NOT NULL DEFAULT '',
  asking_price   INTEGER NOT NULL DEFAULT 0 CHECK (asking_price >= 0),
  annual_revenue INTEGER NOT NULL DEFAULT 0 CHECK (annual_revenue >= 0),
  industry       TEXT    NOT NULL DEFAULT '',
  location       TEXT    NOT NULL DEFAULT '',
  highlights     TEXT    NOT NULL DEFAULT '[]',
  original_url   TEXT    NOT NULL UNIQUE,
  created_at     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_listings_price    ON listings(asking_price);
CREATE INDEX IF NOT EXISTS idx_listings_industry ON listings(industry);
`)
	return err
}

// Write upserts listings keyed on original_url inside one transaction.
func (sw *SQLiteWriter) Write(listings []*models.Listing) error {
	tx, err := sw.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO listings (run_id, source, name, description, asking_price, annual_revenue,
                      industry, location, highlights, original_url, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(original_url) DO UPDATE SET
  run_id = excluded.run_id,
  source = excluded.source,
  name = excluded.name,
  description = excluded.description,
  asking_price = excluded.asking_price,
  annual_revenue = excluded.annual_revenue,
  industry = excluded.industry,
  location = excluded.location,
  highlights = excluded.highlights
`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()

	for _, l := range listings {
		highlights := l.Highlights
		if highlights == nil {
			highlights = []string{}
		}
		encoded, err := json.Marshal(highlights)
		if err != nil {
			return fmt.Errorf("sqlite: encode highlights: %w", err)
		}

		if _, err := stmt.Exec(sw.runID, l.Source, l.Name, l.Description, l.AskingPrice, l.AnnualRevenue,
			l.Industry, l.Location, string(encoded), l.OriginalURL, sw.now().UnixMilli()); err != nil {
			return fmt.Errorf("sqlite: upsert %q: %w", l.OriginalURL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// FetchAll retrieves all stored listings in insertion order.
func (sw *SQLiteWriter) FetchAll() ([]*models.Listing, error) {
	rows, err := sw.db.Query(`
SELECT id, run_id, source, name, description, asking_price, annual_revenue,
       industry, location, highlights, original_url, created_at
FROM listings
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetch all: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		var highlights string
		var createdAt int64
		if err := rows.Scan(
			&l.ID, &l.RunID, &l.Source, &l.Name, &l.Description, &l.AskingPrice, &l.AnnualRevenue,
			&l.Industry, &l.Location, &highlights, &l.OriginalURL, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(highlights), &l.Highlights); err != nil {
			return nil, fmt.Errorf("sqlite: decode highlights for %q: %w", l.OriginalURL, err)
		}
		l.CreatedAt = time.UnixMilli(createdAt).UTC()
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (sw *SQLiteWriter) Close() error {
	return sw.db.Close()
}
