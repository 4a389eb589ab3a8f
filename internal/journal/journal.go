package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Entry is one append-only audit row per execution outcome. The journal is
// not an order book: nothing here tracks positions or open state.
type Entry struct {
	Symbol    string
	Side      string
	OrderType string
	Quantity  float64
	Price     float64
	Venue     string
	DryRun    bool
	OrderID   string
	Status    string
	Detail    string
	CreatedAt time.Time
}

const (
	StatusValidated = "validated"
	StatusPlaced    = "placed"
	StatusRejected  = "rejected"
)

type PostgresJournal struct {
	db *sql.DB
}

func NewPostgresJournal(connStr string) (*PostgresJournal, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	j := &PostgresJournal{db: db}
	if err := j.initTable(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	return j, nil
}

func (j *PostgresJournal) initTable() error {
	query := `
        CREATE TABLE IF NOT EXISTS order_journal (
            id SERIAL PRIMARY KEY,
            symbol TEXT NOT NULL,
            side TEXT NOT NULL,
            order_type TEXT NOT NULL,
            quantity DOUBLE PRECISION NOT NULL,
            price DOUBLE PRECISION,
            venue TEXT NOT NULL,
            dry_run BOOLEAN NOT NULL,
            order_id TEXT,
            status TEXT NOT NULL,
            detail TEXT,
            created_at TIMESTAMPTZ NOT NULL
        )
    `
	_, err := j.db.Exec(query)
	return err
}

// Record appends one execution outcome.
func (j *PostgresJournal) Record(ctx context.Context, e *Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	query := `
        INSERT INTO order_journal (
            symbol, side, order_type, quantity, price,
            venue, dry_run, order_id, status, detail, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	_, err := j.db.ExecContext(ctx, query,
		e.Symbol, e.Side, e.OrderType, e.Quantity, e.Price,
		e.Venue, e.DryRun, e.OrderID, e.Status, e.Detail, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record journal entry: %w", err)
	}
	return nil
}

func (j *PostgresJournal) Close() error {
	return j.db.Close()
}
