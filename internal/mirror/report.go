package mirror

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusSynced Status = "synced"
	StatusNoData Status = "no_data"
	StatusFailed Status = "failed"
)

// TableResult is the outcome of replicating one table.
type TableResult struct {
	Table     string
	Status    Status
	Attempted int
	Succeeded int
	Reason    string
	Err       error `json:"-"`
}

// Report collects every table's outcome for one run.
type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Tables     []TableResult
}

func (r Report) count(s Status) int {
	n := 0
	for _, t := range r.Tables {
		if t.Status == s {
			n++
		}
	}
	return n
}

func (r Report) Failed() int { return r.count(StatusFailed) }

// HasFailures reports whether any table failed or skipped rows.
func (r Report) HasFailures() bool {
	for _, t := range r.Tables {
		if t.Status == StatusFailed || t.Succeeded < t.Attempted {
			return true
		}
	}
	return false
}

// Rows returns the attempted and succeeded row totals.
func (r Report) Rows() (attempted, succeeded int) {
	for _, t := range r.Tables {
		attempted += t.Attempted
		succeeded += t.Succeeded
	}
	return attempted, succeeded
}

func (t TableResult) String() string {
	switch t.Status {
	case StatusSynced:
		return fmt.Sprintf("%s: %d/%d rows synced", t.Table, t.Succeeded, t.Attempted)
	case StatusNoData:
		return fmt.Sprintf("%s: no data to sync", t.Table)
	default:
		return fmt.Sprintf("%s: failed (%s)", t.Table, t.Reason)
	}
}

// Summary is the single human readable line shown to the user.
func (r Report) Summary() string {
	if len(r.Tables) == 0 {
		return "Sync complete: no tables found"
	}
	attempted, succeeded := r.Rows()
	parts := make([]string, len(r.Tables))
	for i, t := range r.Tables {
		parts[i] = t.String()
	}
	head := "Sync complete"
	if r.HasFailures() {
		head = "Sync finished with errors"
	}
	return fmt.Sprintf("%s: %d/%d rows across %d tables. %s",
		head, succeeded, attempted, len(r.Tables), strings.Join(parts, "; "))
}
