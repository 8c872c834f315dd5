package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"whatsapp-reseller/models"
)

// PostgresWriter persists forward records to PostgreSQL. The table is
// an append-only reporting ledger; nothing in the pipeline reads it
// back for control decisions.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
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
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS forwards (
			id             SERIAL PRIMARY KEY,
			product_id     VARCHAR(64)   NOT NULL,
			caption        TEXT          NOT NULL,
			new_caption    TEXT          NOT NULL DEFAULT '',
			original_price NUMERIC(14,2) NOT NULL DEFAULT 0,
			new_price      NUMERIC(14,2) NOT NULL DEFAULT 0,
			profit         NUMERIC(14,2) NOT NULL DEFAULT 0,
			image_count    INT           NOT NULL DEFAULT 0,
			has_video      BOOLEAN       NOT NULL DEFAULT FALSE,
			status         VARCHAR(20)   NOT NULL,
			created_at     TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_forwards_created_at ON forwards(created_at);
		CREATE INDEX IF NOT EXISTS idx_forwards_status     ON forwards(status);
	`)
	return err
}

// LogForward inserts one forward record.
func (pw *PostgresWriter) LogForward(rec *models.ForwardRecord) error {
	_, err := pw.db.Exec(`
		INSERT INTO forwards
			(product_id, caption, new_caption, original_price, new_price,
			 profit, image_count, has_video, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		rec.ProductID, rec.Caption, rec.NewCaption, rec.OriginalPrice,
		rec.NewPrice, rec.Profit, rec.ImageCount, rec.HasVideo,
		rec.Status, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert forward: %w", err)
	}
	return nil
}

// TotalsSince returns how many products were forwarded successfully
// after the given time and the profit they represent — used by the
// daily digest.
func (pw *PostgresWriter) TotalsSince(since time.Time) (int, float64, error) {
	row := pw.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(profit), 0)
		FROM forwards
		WHERE status = 'forwarded' AND created_at >= $1
	`, since)

	var count int
	var profit float64
	if err := row.Scan(&count, &profit); err != nil {
		return 0, 0, fmt.Errorf("postgres: totals since: %w", err)
	}
	return count, profit, nil
}

// Close closes the database connection.
func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
