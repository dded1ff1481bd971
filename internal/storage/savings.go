package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"budgetbook/internal/core"
)

const savingColumns = "id, description, amount, date, type, created_at"

func (r *SQLiteRepository) CreateSaving(ctx context.Context, s *core.Saving) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO saving (description, amount, date, type, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.Description, toReal(s.Amount), formatTime(s.Date), string(s.Type), formatTime(s.CreatedAt))
	if err != nil {
		return fmt.Errorf("create saving: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read saving id: %w", err)
	}
	s.ID = id
	slog.InfoContext(ctx, "Saving saved to SQLite",
		"id", s.ID,
		"type", s.Type,
		"amount", s.Amount.String())
	return nil
}

func (r *SQLiteRepository) GetSaving(ctx context.Context, id int64) (core.Saving, error) {
	s, err := scanSaving(r.q.QueryRowContext(ctx, `SELECT `+savingColumns+` FROM saving WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Saving{}, fmt.Errorf("saving %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Saving{}, fmt.Errorf("get saving %d: %w", id, err)
	}
	return s, nil
}

func (r *SQLiteRepository) DeleteSaving(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM saving WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete saving %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("saving %d: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Saving deleted from SQLite", "id", id)
	return nil
}

// ListSavings returns the full savings history, newest first.
func (r *SQLiteRepository) ListSavings(ctx context.Context) ([]core.Saving, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+savingColumns+` FROM saving ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list savings: %w", err)
	}
	defer rows.Close()

	var out []core.Saving
	for rows.Next() {
		s, err := scanSaving(rows)
		if err != nil {
			return nil, fmt.Errorf("scan saving: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSaving(sc scanner) (core.Saving, error) {
	var (
		s       core.Saving
		amount  float64
		typ     string
		date    storedTime
		created storedTime
	)
	if err := sc.Scan(&s.ID, &s.Description, &amount, &date, &typ, &created); err != nil {
		return core.Saving{}, err
	}
	s.Amount = fromReal(amount)
	s.Type = core.SavingType(typ)
	s.Date = date.Time
	s.CreatedAt = created.Time
	return s, nil
}
