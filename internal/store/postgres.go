package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const defaultDocument = "mealplanner"

// PostgresBackend stores the document as one JSONB row.
type PostgresBackend struct {
	db   *sqlx.DB
	name string
}

// NewPostgresBackend connects to the database and creates the documents
// table if it does not exist.
func NewPostgresBackend(dataSourceName string) (*PostgresBackend, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		body JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	return &PostgresBackend{db: db, name: defaultDocument}, nil
}

// WithDocument returns a backend sharing the connection that reads and
// writes the named row instead of the default one.
func (p *PostgresBackend) WithDocument(name string) *PostgresBackend {
	return &PostgresBackend{db: p.db, name: name}
}

// Load returns the stored document, or an empty one if none was saved yet.
func (p *PostgresBackend) Load(ctx context.Context) (*Database, error) {
	var body []byte
	err := p.db.QueryRowContext(ctx, "SELECT body FROM documents WHERE name = $1", p.name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return emptyDatabase(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", p.name, err)
	}

	db := &Database{}
	if err := json.Unmarshal(body, db); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document %s: %w", p.name, err)
	}
	db.fill()
	return db, nil
}

// Save upserts the document row.
func (p *PostgresBackend) Save(ctx context.Context, db *Database) error {
	body, err := json.Marshal(db)
	if err != nil {
		return fmt.Errorf("failed to marshal database: %w", err)
	}

	_, err = p.db.ExecContext(ctx,
		"INSERT INTO documents (name, body, updated_at) VALUES ($1, $2, now()) ON CONFLICT (name) DO UPDATE SET body = $2, updated_at = now()",
		p.name,
		body,
	)
	if err != nil {
		return fmt.Errorf("failed to save document %s: %w", p.name, err)
	}
	return nil
}

// Close closes the database connection.
func (p *PostgresBackend) Close() error {
	return p.db.Close()
}
