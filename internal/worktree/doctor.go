package worktree

import (
	"context"

	"github.com/raphi011/twig/internal/doctor"
)

// Doctor diagnoses the worktrees root. With fix the diagnosis and the
// repairs run under the root lock.
func (m *Manager) Doctor(ctx context.Context, fix bool) (doctor.Report, []doctor.FixResult, error) {
	if !fix {
		report, err := doctor.Run(ctx, m.Root(), m.repos())
		return report, nil, err
	}

	unlock, err := m.lock(ctx)
	if err != nil {
		return doctor.Report{}, nil, err
	}
	defer unlock()

	report, err := doctor.Run(ctx, m.Root(), m.repos())
	if err != nil {
		return report, nil, err
	}
	return report, doctor.Fix(ctx, report.Issues), nil
}
