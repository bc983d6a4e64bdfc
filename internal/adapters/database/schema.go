package database

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fonoclinic/backend/internal/infrastructure/clients/sqldb"
	apperrors "github.com/fonoclinic/backend/pkg/errors"
)

//go:embed schema_postgres.sql
var postgresSchema string

//go:embed schema_sqlite.sql
var sqliteSchema string

// EnsureSchema creates the patients and sessions tables if they are
// absent. It is safe to run on every process start.
func EnsureSchema(ctx context.Context, client *sqldb.Client) error {
	var schema string
	switch client.Dialect() {
	case sqldb.DialectPostgres:
		schema = postgresSchema
	case sqldb.DialectSQLite:
		schema = sqliteSchema
	default:
		return apperrors.NewStorageError("unsupported dialect", fmt.Errorf("dialect %q", client.Dialect()))
	}

	for _, stmt := range splitStatements(schema) {
		if _, err := client.DB().ExecContext(ctx, stmt); err != nil {
			return apperrors.NewStorageError("failed to apply schema", err)
		}
	}

	log.Debug().Str("dialect", client.Dialect()).Msg("database schema ensured")
	return nil
}

func splitStatements(schema string) []string {
	var stmts []string
	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
