package services

import (
	"context"
	"errors"
	"fmt"

	"budgetbook/internal/log"
	"budgetbook/internal/mirror"
)

// ErrSyncUnavailable is returned when neither a queue nor a destination is
// configured.
var ErrSyncUnavailable = errors.New("synchronization is not configured")

type SyncRunner interface {
	SyncAll(ctx context.Context) (mirror.Report, error)
}

type SyncPublisher interface {
	PublishSyncRequest(ctx context.Context, requestedBy string) (string, error)
}

// TriggerResult is either a queued request or the report of an inline run.
type TriggerResult struct {
	Queued    bool
	RequestID string
	Report    mirror.Report
}

// Message is the user-facing outcome.
func (r TriggerResult) Message() string {
	if r.Queued {
		return "Sync requested. It will run in the background."
	}
	return r.Report.Summary()
}

// SyncTrigger hands a sync request to the worker queue when one is
// configured and otherwise runs the synchronizer in-process.
type SyncTrigger struct {
	publisher SyncPublisher
	runner    SyncRunner
	logger    *log.Logger
}

// NewSyncTrigger accepts nil for either collaborator.
func NewSyncTrigger(publisher SyncPublisher, runner SyncRunner) *SyncTrigger {
	return &SyncTrigger{publisher: publisher, runner: runner, logger: serviceLogger()}
}

func (t *SyncTrigger) Trigger(ctx context.Context, requestedBy string) (TriggerResult, error) {
	if t.publisher != nil {
		id, err := t.publisher.PublishSyncRequest(ctx, requestedBy)
		if err != nil {
			return TriggerResult{}, fmt.Errorf("enqueue sync request: %w", err)
		}
		return TriggerResult{Queued: true, RequestID: id}, nil
	}
	if t.runner == nil {
		return TriggerResult{}, ErrSyncUnavailable
	}

	rep, err := t.runner.SyncAll(ctx)
	if err != nil {
		return TriggerResult{}, err
	}
	if rep.HasFailures() {
		t.logger.WarnContext(ctx, "Sync finished with failures", "summary", rep.Summary())
	}
	return TriggerResult{Report: rep}, nil
}
