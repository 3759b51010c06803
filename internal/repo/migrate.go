package repo

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// sqliteDialectDir holds the SQLite renditions of the schema files; the
// Postgres runner never touches it.
const sqliteDialectDir = "sqlite"

// applyMigrations executes the Postgres SQL files at the root of the
// filesystem in lexicographical order, one transaction per file.
func applyMigrations(ctx context.Context, pool *pgxpool.Pool, filesystem fs.FS, logger *slog.Logger) error {
	entries, err := fs.ReadDir(filesystem, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == sqliteDialectDir {
			continue
		}

		sqlBytes, err := fs.ReadFile(filesystem, entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if len(sqlBytes) == 0 {
			continue
		}

		err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			_, execErr := tx.Exec(ctx, string(sqlBytes))
			return execErr
		})
		if err != nil {
			return fmt.Errorf("execute migration %s: %w", entry.Name(), err)
		}
		logger.Info("applied migration", "file", entry.Name())
	}

	return nil
}
