package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmanzanog/leek-tracker/internal/domain"
	"github.com/jmanzanog/leek-tracker/internal/infrastructure/persistence/sqldb/migrations"
)

type OracleDialect struct{}

func (d *OracleDialect) Name() string { return "oracle" }

// Migrate runs the embedded script statement by statement. Goose has no
// go-ora dialect, so objects that already exist are skipped instead.
func (d *OracleDialect) Migrate(ctx context.Context, db *sql.DB) error {
	content, err := migrations.OracleFS.ReadFile("oracle/20240101000000_init.sql")
	if err != nil {
		return fmt.Errorf("reading migration file: %w", err)
	}

	for _, stmt := range strings.Split(string(content), "/") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if _, err := db.ExecContext(ctx, stmt); err != nil {
			// ORA-00955: name is already used by an existing object
			if !strings.Contains(err.Error(), "ORA-00955") {
				return fmt.Errorf("migrating: %s: %w", stmt, err)
			}
		}
	}
	return nil
}

func (d *OracleDialect) UpsertCode(ctx context.Context, tx *sql.Tx, kind domain.ListKind, position int, code string) error {
	query := `MERGE INTO code_lists c
             USING (SELECT :1 as kind_val, :2 as code_val FROM dual) s
             ON (c.kind = s.kind_val AND c.code = s.code_val)
             WHEN MATCHED THEN
               UPDATE SET sort_order = :3
             WHEN NOT MATCHED THEN
               INSERT (kind, code, sort_order)
               VALUES (:4, :5, :6)`

	_, err := tx.ExecContext(ctx, query,
		string(kind), // 1
		code,         // 2
		position,     // 3 (UPDATE)
		string(kind), // 4 (INSERT)
		code,         // 5
		position,     // 6
	)
	return err
}
