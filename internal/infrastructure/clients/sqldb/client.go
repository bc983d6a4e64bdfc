package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fonoclinic/backend/pkg/config"
)

const (
	// DialectPostgres is the goqu dialect name for PostgreSQL
	DialectPostgres = "postgres"
	// DialectSQLite is the goqu dialect name for SQLite
	DialectSQLite = "sqlite3"
)

// Client represents a relational database connection and the SQL
// dialect it speaks
type Client struct {
	db      *sql.DB
	dialect string
}

// New wraps an already opened database. Tests use it with sqlmock.
func New(db *sql.DB, dialect string) *Client {
	return &Client{db: db, dialect: dialect}
}

// NewClient opens the database selected by cfg.Driver
func NewClient(ctx context.Context, cfg *config.DatabaseConfig) (*Client, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return NewPostgresClient(ctx, cfg)
	case config.DriverSQLite:
		return NewSQLiteClient(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// Dialect returns the goqu dialect name
func (c *Client) Dialect() string {
	return c.dialect
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// BeginTx starts a new transaction
func (c *Client) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return c.db.BeginTx(ctx, nil)
}

// Ping verifies the connection to the database
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
