// Package postgres is the relational destination of the synchronizer.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"budgetbook/internal/mirror"

	"github.com/jackc/pgx/v5"
)

// lockKey names the session advisory lock every budget sync takes.
const lockKey = "budgetbook.mirror"

// Destination holds one connection for the duration of a sync run.
type Destination struct {
	conn   *pgx.Conn
	locked bool
}

// Connect opens the destination. dsn accepts anything pgx.ParseConfig does.
func Connect(ctx context.Context, dsn string) (*Destination, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse destination dsn: %w", err)
	}
	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect destination: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("ping destination: %w", err)
	}
	return &Destination{conn: conn}, nil
}

// Opener adapts Connect to mirror.Opener.
func Opener(dsn string) mirror.Opener {
	return func(ctx context.Context) (mirror.Destination, error) {
		return Connect(ctx, dsn)
	}
}

const describeSQL = `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = $1
ORDER BY ordinal_position`

// Describe reads the destination columns. Table names are folded to lower
// case as unquoted identifiers are.
func (d *Destination) Describe(ctx context.Context, table string) (mirror.TableSchema, bool, error) {
	rows, err := d.conn.Query(ctx, describeSQL, strings.ToLower(table))
	if err != nil {
		return mirror.TableSchema{}, false, fmt.Errorf("describe %s: %w", table, err)
	}
	cols, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (mirror.Column, error) {
		var c mirror.Column
		err := row.Scan(&c.Name, &c.Type)
		return c, err
	})
	if err != nil {
		return mirror.TableSchema{}, false, fmt.Errorf("describe %s: %w", table, err)
	}
	if len(cols) == 0 {
		return mirror.TableSchema{Name: table}, false, nil
	}
	return mirror.TableSchema{Name: strings.ToLower(table), Columns: cols}, true, nil
}

// Begin opens the transaction a table's replacement commits in, so readers
// never observe the table empty.
func (d *Destination) Begin(ctx context.Context, table string) (mirror.TableWriter, error) {
	tx, err := d.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin %s: %w", table, err)
	}
	return &tableWriter{tx: tx, table: strings.ToLower(table)}, nil
}

// TryLock takes the session advisory lock shared by every process syncing
// into this database. It returns false without waiting when another
// session holds it.
func (d *Destination) TryLock(ctx context.Context) (bool, error) {
	var ok bool
	if err := d.conn.QueryRow(ctx, `SELECT pg_try_advisory_lock(hashtext($1))`, lockKey).Scan(&ok); err != nil {
		return false, fmt.Errorf("advisory lock: %w", err)
	}
	d.locked = ok
	return ok, nil
}

// Close releases the advisory lock, which closing the session would also do.
func (d *Destination) Close(ctx context.Context) error {
	if d.locked {
		if _, err := d.conn.Exec(ctx, `SELECT pg_advisory_unlock(hashtext($1))`, lockKey); err != nil {
			d.conn.Close(ctx)
			return fmt.Errorf("advisory unlock: %w", err)
		}
		d.locked = false
	}
	return d.conn.Close(ctx)
}

type tableWriter struct {
	tx    pgx.Tx
	table string
}

func (w *tableWriter) DeleteAll(ctx context.Context) error {
	_, err := w.tx.Exec(ctx, "DELETE FROM "+pgx.Identifier{w.table}.Sanitize())
	return err
}

// Insert runs inside a savepoint so a rejected row does not abort the
// surrounding transaction.
func (w *tableWriter) Insert(ctx context.Context, columns []string, values []any) error {
	sp, err := w.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if _, err := sp.Exec(ctx, InsertSQL(w.table, columns), values...); err != nil {
		_ = sp.Rollback(ctx)
		return err
	}
	return sp.Commit(ctx)
}

func (w *tableWriter) Commit(ctx context.Context) error {
	return w.tx.Commit(ctx)
}

func (w *tableWriter) Rollback(ctx context.Context) error {
	return w.tx.Rollback(ctx)
}

// InsertSQL builds a positional INSERT with quoted identifiers.
func InsertSQL(table string, columns []string) string {
	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{table}.Sanitize(), strings.Join(quoted, ", "), strings.Join(params, ", "))
}
