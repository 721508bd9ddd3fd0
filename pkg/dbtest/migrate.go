// Package dbtest prepares a disposable database for integration tests.
package dbtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/jmoiron/sqlx"
)

// Migrate executes every *.sql file of dir in name order.
func Migrate(ctx context.Context, db *sqlx.DB, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("filepath.Glob: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("no migrations in %s", dir)
	}

	slices.Sort(files)

	for _, fileName := range files {
		query, err := os.ReadFile(fileName)
		if err != nil {
			return fmt.Errorf("os.ReadFile: %w", err)
		}

		if _, err = db.ExecContext(ctx, string(query)); err != nil {
			return fmt.Errorf("db.Exec %s: %w", filepath.Base(fileName), err)
		}
	}

	return nil
}
