package sqldb

import (
	"context"
	"database/sql"

	"github.com/jmanzanog/leek-tracker/internal/domain"
)

type Dialect interface {
	Name() string
	Migrate(ctx context.Context, db *sql.DB) error
	UpsertCode(ctx context.Context, tx *sql.Tx, kind domain.ListKind, position int, code string) error
}
