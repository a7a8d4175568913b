package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmanzanog/leek-tracker/internal/domain"
)

// Repository stores code lists in a SQL database, one row per code.
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.Dialect.Migrate(ctx, r.db.DB)
}

func (r *Repository) Load(ctx context.Context, kind domain.ListKind) (domain.CodeList, error) {
	query := r.rebind("SELECT code FROM code_lists WHERE kind = $1 ORDER BY sort_order")

	rows, err := r.db.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s codes: %w", kind, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Warn("Failed to close rows", "error", err)
		}
	}()

	codes := domain.CodeList{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan %s code: %w", kind, err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s codes: %w", kind, err)
	}

	return codes, nil
}

// Save replaces the stored list of the given kind.
func (r *Repository) Save(ctx context.Context, kind domain.ListKind, codes domain.CodeList) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := r.rebind("DELETE FROM code_lists WHERE kind = $1")
		if _, err := tx.ExecContext(ctx, query, string(kind)); err != nil {
			return fmt.Errorf("failed to clear %s codes: %w", kind, err)
		}

		for i, code := range codes {
			if err := r.db.Dialect.UpsertCode(ctx, tx, kind, i, code); err != nil {
				slog.Error("Failed to save code", "kind", kind, "code", code, "error", err)
				return fmt.Errorf("upsert code: %w", err)
			}
		}
		return nil
	})
}

func (r *Repository) rebind(query string) string {
	if r.db.Dialect.Name() == "oracle" {
		for i := 1; i <= 10; i++ {
			query = strings.ReplaceAll(query, fmt.Sprintf("$%d", i), fmt.Sprintf(":%d", i))
		}
	}
	return query
}
