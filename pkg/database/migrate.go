package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"

	schema "github.com/hyperxav/clara/pkg/database/sql"
	"github.com/hyperxav/clara/pkg/logging"
)

// ApplySchema runs every embedded schema/*.sql file in name order. The files
// are written to be idempotent.
func ApplySchema(ctx context.Context, db *sql.DB, logger logging.Logger) ([]string, error) {
	names, err := fs.Glob(schema.Content, "schema/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list schema files: %w", err)
	}
	sort.Strings(names)

	applied := make([]string, 0, len(names))
	for _, name := range names {
		body, err := fs.ReadFile(schema.Content, name)
		if err != nil {
			return applied, fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return applied, fmt.Errorf("apply %s: %w", name, err)
		}
		if logger != nil {
			logger.WithField("file", name).Info("Applied schema file")
		}
		applied = append(applied, name)
	}
	return applied, nil
}
