package store

import "context"

// Backend loads and saves the whole document.
type Backend interface {
	Load(ctx context.Context) (*Database, error)
	Save(ctx context.Context, db *Database) error
	Close() error
}
