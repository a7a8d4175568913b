package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmanzanog/leek-tracker/internal/domain"
	"github.com/jmanzanog/leek-tracker/internal/infrastructure/persistence/sqldb/migrations"
	"github.com/pressly/goose/v3"
)

type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.PostgresFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "postgres"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

func (d *PostgresDialect) UpsertCode(ctx context.Context, tx *sql.Tx, kind domain.ListKind, position int, code string) error {
	query := `
		INSERT INTO code_lists (kind, code, sort_order)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind, code) DO UPDATE SET
			sort_order = EXCLUDED.sort_order
	`
	_, err := tx.ExecContext(ctx, query, string(kind), code, position)
	return err
}
