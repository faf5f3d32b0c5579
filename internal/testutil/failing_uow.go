package testutil

import (
	"context"
	"database/sql"
	"strings"

	"github.com/alexanderramin/focussync/internal/db"
)

// FailingExecUoW runs transactions through the real unit of work but makes
// the first statement containing Match fail with Err, so rollback paths can
// be tested at a chosen write. Reads are never failed.
type FailingExecUoW struct {
	DB    *sql.DB
	Match string
	Err   error
}

func (u *FailingExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return db.NewSQLiteUnitOfWork(u.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &failingExec{DBTX: tx, match: u.Match, err: u.Err})
	})
}

type failingExec struct {
	db.DBTX
	match   string
	err     error
	tripped bool
}

func (f *failingExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if !f.tripped && strings.Contains(query, f.match) {
		f.tripped = true
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
