package executor

import (
	"strings"
	"time"
)

const (
	rollupInterval   = 60 * time.Second
	rollupMaxLen     = 500
	rollupLabelLimit = 80
)

// rollup batches action labels so the broker sees one digest per interval
// instead of a line per tool call. Console output stays per-event; only the
// network relay is throttled.
type rollup struct {
	interval time.Duration
	last     time.Time
	pending  []string
	now      func() time.Time
}

func newRollup(interval time.Duration) *rollup {
	if interval <= 0 {
		interval = rollupInterval
	}
	return &rollup{interval: interval, now: time.Now}
}

func (r *rollup) Add(label string) {
	if len(label) > rollupLabelLimit {
		label = label[:rollupLabelLimit]
	}
	r.pending = append(r.pending, label)
}

// MaybeFlush returns the joined digest when the interval has elapsed and
// there is something to send.
func (r *rollup) MaybeFlush() (string, bool) {
	now := r.now()
	if len(r.pending) == 0 || now.Sub(r.last) < r.interval {
		return "", false
	}
	r.last = now
	return r.drain(), true
}

// Flush returns whatever is pending regardless of the interval.
func (r *rollup) Flush() (string, bool) {
	if len(r.pending) == 0 {
		return "", false
	}
	return r.drain(), true
}

func (r *rollup) drain() string {
	joined := strings.Join(r.pending, " → ")
	r.pending = r.pending[:0]
	if len(joined) > rollupMaxLen {
		joined = joined[:rollupMaxLen]
	}
	return joined
}
