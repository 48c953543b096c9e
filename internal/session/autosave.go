package session

import "time"

// DefaultAutosaveInterval is the period between automatic snapshots.
const DefaultAutosaveInterval = 30 * time.Second

// Autosaver guards the recurring snapshot. A tick that arrives while a
// snapshot is pending is dropped, and the caller schedules the next tick only
// after Done.
type Autosaver struct {
	interval time.Duration
	pending  bool
	runs     int
	skipped  int
}

// NewAutosaver creates a guard for the given period.
func NewAutosaver(interval time.Duration) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	return &Autosaver{interval: interval}
}

// Interval returns the period between snapshots.
func (a *Autosaver) Interval() time.Duration { return a.interval }

// Begin claims the next snapshot. It returns false if one is still pending.
func (a *Autosaver) Begin() bool {
	if a.pending {
		a.skipped++
		return false
	}
	a.pending = true
	return true
}

// Done releases the claim taken by Begin.
func (a *Autosaver) Done() {
	if a.pending {
		a.runs++
	}
	a.pending = false
}

// Pending reports whether a snapshot is in progress.
func (a *Autosaver) Pending() bool { return a.pending }

// Runs returns how many snapshots completed.
func (a *Autosaver) Runs() int { return a.runs }

// Skipped returns how many ticks were dropped because one was pending.
func (a *Autosaver) Skipped() int { return a.skipped }
