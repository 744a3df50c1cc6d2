package gallery

import "fmt"

// Tracker decides when the slideshow has been fully traversed. Two
// independent signals are checked every iteration and the first to trigger
// stops the run: the expected item count from the warmup payload, and the
// state of the next control. Repeated asset identifiers are deliberately not
// a signal; the widget can legitimately redisplay the same image during
// transition frames, so a duplicate-based stop undercounts.
type Tracker struct {
	expected  int // 0 disables the count signal
	maxSlides int
	seen      map[string]struct{}
}

func NewTracker(expected, maxSlides int) *Tracker {
	return &Tracker{
		expected:  expected,
		maxSlides: maxSlides,
		seen:      make(map[string]struct{}),
	}
}

// Observe records an asset identifier for this run and reports whether it was
// new.
func (t *Tracker) Observe(id string) bool {
	if _, ok := t.seen[id]; ok {
		return false
	}
	t.seen[id] = struct{}{}
	return true
}

// Seen is the number of distinct asset identifiers observed this run.
func (t *Tracker) Seen() int {
	return len(t.seen)
}

// ShouldStop evaluates both termination signals against the current arrow
// state. The returned reason is empty when the loop should continue.
func (t *Tracker) ShouldStop(arrow ArrowState) (bool, string) {
	if t.expected > 0 && len(t.seen) >= t.expected {
		return true, fmt.Sprintf("expected item count reached (%d)", t.expected)
	}

	switch arrow {
	case ArrowDisabled:
		return true, "next control disabled"
	case ArrowMissing:
		return true, "next control missing"
	}

	return false, ""
}

// CapExceeded bounds the loop when neither signal ever fires.
func (t *Tracker) CapExceeded(iteration int) bool {
	return iteration >= t.maxSlides
}
