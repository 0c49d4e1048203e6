package schedule

import (
	"bytes"
	"errors"
	"sort"
	"time"

	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/google/uuid"
)

// Common errors
var (
	// ErrInvalidWindow is returned when the requested range does not end
	// after it starts.
	ErrInvalidWindow = errors.New("schedule window must end after it starts")
)

// Slot is a derived, never-persisted proposal placing one task inside the
// requested window. Slots are produced fresh on every composition.
type Slot struct {
	TaskID uuid.UUID `json:"task_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// Result is the outcome of one composition. Truncated signals partial
// success: the window could not hold all remaining work, and Excluded lists
// the task IDs that were left out. Truncated is not an error.
type Result struct {
	Slots     []Slot      `json:"slots"`
	Truncated bool        `json:"truncated"`
	Excluded  []uuid.UUID `json:"excluded,omitempty"`
}

// interval is a half-open occupied span [start, end).
type interval struct {
	start time.Time
	end   time.Time
}

// Compose derives an ordered, non-overlapping work schedule for the given
// tasks over [from, to). Tasks already done are ignored. Each remaining task
// contributes its estimate, falling back to the sum of its closed recorded
// entries when no estimate is set. Closed time entries inside the window are
// fixed occupied spans that slots are placed around.
//
// Composition is deterministic: identical inputs yield identical results.
// Ordering is priority (lower value first, zero meaning unset and sorting
// after prioritized tasks), then creation time, then ID.
func Compose(tasks []*domain.Task, entries []*domain.TimeEntry, from, to time.Time) (*Result, error) {
	if !to.After(from) {
		return nil, ErrInvalidWindow
	}

	recorded := recordedByTask(entries)

	candidates := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == domain.TaskStatusDone {
			continue
		}
		candidates = append(candidates, t)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return less(candidates[i], candidates[j])
	})

	busy := busyIntervals(entries, from, to)

	result := &Result{Slots: make([]Slot, 0, len(candidates))}
	for _, t := range candidates {
		need := t.Estimate
		if need == 0 {
			need = recorded[t.ID]
		}
		if need == 0 {
			// Nothing to place and nothing to learn from; the task has no
			// estimate and no recorded work.
			result.Truncated = true
			result.Excluded = append(result.Excluded, t.ID)
			continue
		}

		slot, ok := place(&busy, from, to, need)
		if !ok {
			result.Truncated = true
			result.Excluded = append(result.Excluded, t.ID)
			continue
		}
		result.Slots = append(result.Slots, Slot{TaskID: t.ID, Start: slot.start, End: slot.end})
	}

	return result, nil
}

// less implements the deterministic ordering: explicit priority first
// (1 is highest), then ascending creation time, then ascending ID.
func less(a, b *domain.Task) bool {
	if a.Priority != b.Priority {
		if a.Priority == 0 {
			return false
		}
		if b.Priority == 0 {
			return true
		}
		return a.Priority < b.Priority
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// recordedByTask sums the durations of closed entries per task.
func recordedByTask(entries []*domain.TimeEntry) map[uuid.UUID]time.Duration {
	sums := make(map[uuid.UUID]time.Duration, len(entries))
	for _, e := range entries {
		if e.Open() {
			continue
		}
		sums[e.TaskID] += e.Duration()
	}
	return sums
}

// busyIntervals collects the closed entries overlapping the window, clipped
// to it, sorted and merged. Open entries occupy nothing: they have no end.
func busyIntervals(entries []*domain.TimeEntry, from, to time.Time) []interval {
	spans := make([]interval, 0, len(entries))
	for _, e := range entries {
		if e.Open() {
			continue
		}
		start, end := e.StartedAt, *e.EndedAt
		if !end.After(from) || !start.Before(to) {
			continue
		}
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		spans = append(spans, interval{start: start, end: end})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })

	merged := spans[:0]
	for _, s := range spans {
		if n := len(merged); n > 0 && !s.start.After(merged[n-1].end) {
			if s.end.After(merged[n-1].end) {
				merged[n-1].end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// place finds the earliest contiguous gap of at least need within [from, to)
// that avoids every interval in busy, claims it, and returns it. The claimed
// interval is inserted back into busy so later placements skip it.
func place(busy *[]interval, from, to time.Time, need time.Duration) (interval, bool) {
	cursor := from
	for i := 0; i <= len(*busy); i++ {
		gapEnd := to
		if i < len(*busy) {
			gapEnd = (*busy)[i].start
		}

		if gapEnd.Sub(cursor) >= need {
			claimed := interval{start: cursor, end: cursor.Add(need)}
			insert(busy, i, claimed)
			return claimed, true
		}

		if i < len(*busy) && (*busy)[i].end.After(cursor) {
			cursor = (*busy)[i].end
		}
	}
	return interval{}, false
}

// insert places span at position i, keeping busy sorted by start.
func insert(busy *[]interval, i int, span interval) {
	*busy = append(*busy, interval{})
	copy((*busy)[i+1:], (*busy)[i:])
	(*busy)[i] = span
}
