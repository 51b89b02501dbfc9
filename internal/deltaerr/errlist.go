package deltaerr

import (
	"fmt"
	"strings"
)

// List aggregates multiple invariant violations into one error, the same
// shape as the teacher's internal/validate errlist: callers call Add as
// they walk a structure, then Err once at the end.
type List struct {
	msgs []string
}

// Add records one violation. A nil receiver is a safe no-op, so callers can
// build a *List lazily (e.g. only when a -validate flag is set).
func (l *List) Add(format string, args ...any) {
	if l == nil {
		return
	}
	l.msgs = append(l.msgs, fmt.Sprintf(format, args...))
}

// Err returns nil if no violations were recorded, or a single
// InvariantViolation error joining every message with a newline.
func (l *List) Err() error {
	if l == nil || len(l.msgs) == 0 {
		return nil
	}
	return Invariant("%s", strings.Join(l.msgs, "\n"))
}
