package mirror

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budgetbook/internal/log"

	"golang.org/x/sync/semaphore"
)

var (
	// ErrSyncInProgress rejects a run that would overlap another.
	ErrSyncInProgress = errors.New("sync already in progress")

	ErrSourceNoColumns    = errors.New("no columns found in source table")
	ErrDestinationMissing = errors.New("table not found in destination")
	ErrColumnUnmapped     = errors.New("column not found in destination table")
	ErrNoRowsInserted     = errors.New("every row failed to insert")
)

// Synchronizer copies the source store into the destination, replacing each
// destination table's rows. At most one run is in flight per Synchronizer,
// and per destination when the destination implements Locker.
type Synchronizer struct {
	source  SourceReader
	open    Opener
	mapping ColumnMapping
	lock    *semaphore.Weighted
	logger  *log.Logger
	now     func() time.Time
}

type Option func(*Synchronizer)

func WithMapping(m ColumnMapping) Option {
	return func(s *Synchronizer) { s.mapping = m }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Synchronizer) { s.logger = l }
}

func NewSynchronizer(source SourceReader, open Opener, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		source:  source,
		open:    open,
		mapping: DefaultMapping(),
		lock:    semaphore.NewWeighted(1),
		logger:  log.Default().WithComponent(log.ComponentSync),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncAll runs to completion once started: cancelling ctx does not stop it.
// Only failing to connect or to list the source tables aborts the run;
// table and row failures are recorded in the report.
func (s *Synchronizer) SyncAll(ctx context.Context) (Report, error) {
	if !s.lock.TryAcquire(1) {
		return Report{}, ErrSyncInProgress
	}
	defer s.lock.Release(1)

	ctx = context.WithoutCancel(ctx)
	rep := Report{StartedAt: s.now()}
	s.logger.InfoContext(ctx, "Starting sync", log.FieldOperation, log.OpSync)

	dst, err := s.open(ctx)
	if err != nil {
		return rep, fmt.Errorf("connect destination: %w", err)
	}
	defer func() {
		if err := dst.Close(ctx); err != nil {
			s.logger.WarnContext(ctx, "Failed to close destination", log.FieldError, err)
		}
	}()

	if l, ok := dst.(Locker); ok {
		locked, err := l.TryLock(ctx)
		if err != nil {
			return rep, fmt.Errorf("lock destination: %w", err)
		}
		if !locked {
			s.logger.WarnContext(ctx, "Destination is locked by another run", log.FieldOperation, log.OpSync)
			return rep, ErrSyncInProgress
		}
	}

	tables, err := s.source.Tables(ctx)
	if err != nil {
		return rep, fmt.Errorf("list source tables: %w", err)
	}

	for _, table := range tables {
		res := s.syncTable(ctx, dst, table)
		rep.Tables = append(rep.Tables, res)
		if res.Status == StatusFailed {
			s.logger.ErrorContext(ctx, "Table sync failed",
				log.FieldTable, table,
				log.FieldError, res.Reason)
			continue
		}
		s.logger.InfoContext(ctx, "Table synced",
			log.FieldTable, table,
			"status", res.Status,
			"attempted", res.Attempted,
			"succeeded", res.Succeeded)
	}

	rep.FinishedAt = s.now()
	s.logger.InfoContext(ctx, "Sync finished", "summary", rep.Summary())
	return rep, nil
}

// columnPlan pairs a source position with its destination column.
type columnPlan struct {
	source string
	dest   Column
}

func (s *Synchronizer) syncTable(ctx context.Context, dst Destination, table string) TableResult {
	res := TableResult{Table: table}
	fail := func(err error) TableResult {
		res.Status, res.Err, res.Reason = StatusFailed, err, err.Error()
		return res
	}

	srcSchema, err := s.source.Describe(ctx, table)
	if err != nil {
		return fail(fmt.Errorf("describe source: %w", err))
	}
	if len(srcSchema.Columns) == 0 {
		return fail(ErrSourceNoColumns)
	}
	dstSchema, exists, err := dst.Describe(ctx, table)
	if err != nil {
		return fail(fmt.Errorf("describe destination: %w", err))
	}
	if !exists || len(dstSchema.Columns) == 0 {
		return fail(ErrDestinationMissing)
	}

	plan, err := s.planColumns(srcSchema, dstSchema)
	if err != nil {
		return fail(err)
	}

	rows, err := s.source.Rows(ctx, srcSchema)
	if err != nil {
		return fail(fmt.Errorf("read source rows: %w", err))
	}
	if len(rows) == 0 {
		res.Status = StatusNoData
		return res
	}
	res.Attempted = len(rows)

	w, err := dst.Begin(ctx, table)
	if err != nil {
		return fail(fmt.Errorf("begin: %w", err))
	}
	if err := w.DeleteAll(ctx); err != nil {
		s.rollback(ctx, w, table)
		return fail(fmt.Errorf("clear destination: %w", err))
	}

	columns := make([]string, len(plan))
	for i, p := range plan {
		columns[i] = p.dest.Name
	}
	for i, row := range rows {
		values := make([]any, len(plan))
		for j, p := range plan {
			if j < len(row) {
				values[j] = convertValue(row[j], p.dest)
			}
		}
		if err := w.Insert(ctx, columns, values); err != nil {
			s.logger.WarnContext(ctx, "Failed to insert row, skipping",
				log.FieldTable, table,
				"row", i,
				log.FieldError, err)
			continue
		}
		res.Succeeded++
	}

	if res.Succeeded == 0 {
		s.rollback(ctx, w, table)
		return fail(ErrNoRowsInserted)
	}
	if err := w.Commit(ctx); err != nil {
		res.Succeeded = 0
		return fail(fmt.Errorf("commit: %w", err))
	}
	res.Status = StatusSynced
	return res
}

// planColumns resolves every source column or none of them.
func (s *Synchronizer) planColumns(src, dst TableSchema) ([]columnPlan, error) {
	plan := make([]columnPlan, 0, len(src.Columns))
	for _, c := range src.Columns {
		name := s.mapping.Resolve(src.Name, c.Name)
		dc, ok := dst.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q -> %q", ErrColumnUnmapped, c.Name, name)
		}
		plan = append(plan, columnPlan{source: c.Name, dest: dc})
	}
	return plan, nil
}

func (s *Synchronizer) rollback(ctx context.Context, w TableWriter, table string) {
	if err := w.Rollback(ctx); err != nil {
		s.logger.WarnContext(ctx, "Rollback failed", log.FieldTable, table, log.FieldError, err)
	}
}
