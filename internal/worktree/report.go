package worktree

import (
	"context"
	"fmt"

	"github.com/raphi011/twig/internal/errs"
	"github.com/raphi011/twig/internal/log"
)

// Status is the outcome of one batch item.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
	StatusPlanned Status = "planned" // dry run
)

// ItemResult records what happened to one input of a batch.
type ItemResult struct {
	Subject  string   `json:"subject"`
	Repo     string   `json:"repo,omitempty"`
	Branch   string   `json:"branch,omitempty"`
	Status   Status   `json:"status"`
	Detail   string   `json:"detail,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	Err error `json:"-"`
}

// warn logs a warning and attaches it to the item.
func (r *ItemResult) warn(ctx context.Context, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.FromContext(ctx).Warnf("%s: %s", r.Subject, msg)
	r.Warnings = append(r.Warnings, msg)
}

func (r *ItemResult) fail(err error) {
	r.Status = StatusFailed
	r.Err = err
	r.Detail = err.Error()
}

func (r *ItemResult) skip(reason string) {
	r.Status = StatusSkipped
	r.Detail = reason
}

// BatchReport accounts for every input of a batch operation exactly once,
// in input order.
type BatchReport struct {
	Op    string       `json:"op"`
	Items []ItemResult `json:"items"`
}

func newReport(op string) *BatchReport {
	return &BatchReport{Op: op}
}

func (b *BatchReport) add(item ItemResult) {
	b.Items = append(b.Items, item)
}

// Count returns how many items ended with status s.
func (b *BatchReport) Count(s Status) int {
	if b == nil {
		return 0
	}
	n := 0
	for _, item := range b.Items {
		if item.Status == s {
			n++
		}
	}
	return n
}

// Failed returns the failed items.
func (b *BatchReport) Failed() []ItemResult {
	if b == nil {
		return nil
	}
	var out []ItemResult
	for _, item := range b.Items {
		if item.Status == StatusFailed {
			out = append(out, item)
		}
	}
	return out
}

// Err returns a *errs.PartialBatchFailure when any item failed.
func (b *BatchReport) Err() error {
	if failed := b.Count(StatusFailed); failed > 0 {
		return &errs.PartialBatchFailure{Op: b.Op, Failed: failed, Total: len(b.Items)}
	}
	return nil
}
