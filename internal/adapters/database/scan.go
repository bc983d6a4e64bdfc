package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/lib/pq"

	"github.com/fonoclinic/backend/internal/domain/entities"
	"github.com/fonoclinic/backend/internal/infrastructure/clients/sqldb"
)

// dateValue scans calendar dates stored as DATE (postgres) or TEXT (sqlite)
type dateValue struct {
	Time  time.Time
	Valid bool
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	entities.DateLayout,
}

func (d *dateValue) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		d.Time, d.Valid = time.Time{}, false
		return nil
	case time.Time:
		d.Time, d.Valid = v, true
		return nil
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into a date", src)
	}
}

func (d *dateValue) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time, d.Valid = t, true
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q as a date", s)
}

func (d dateValue) datePtr() *time.Time {
	if !d.Valid {
		return nil
	}
	t := entities.DateOnly(d.Time)
	return &t
}

func (d dateValue) timePtr() *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time.UTC()
	return &t
}

// formatDate renders a date for insertion; both dialects accept the literal
func formatDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(entities.DateLayout)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// insertReturningID runs the insert and returns the generated id. Postgres
// reports it through RETURNING; sqlite through the driver's LastInsertId.
func insertReturningID(ctx context.Context, q execer, dialect string, ds *goqu.InsertDataset) (int64, error) {
	if dialect == sqldb.DialectPostgres {
		query, args, err := ds.Returning("id").ToSQL()
		if err != nil {
			return 0, err
		}
		var id int64
		if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return 0, err
	}
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
