package logging

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultActivityCapacity is the number of entries the activity log keeps.
const DefaultActivityCapacity = 100

const activityTimeFormat = "2006-01-02 15:04:05"

// ActivityLog is a zerolog hook that keeps the most recent user-facing
// messages for display inside the editor. Events below info are ignored.
type ActivityLog struct {
	mu       sync.Mutex
	entries  []string
	capacity int
	now      func() time.Time
}

// NewActivityLog creates an activity log holding at most capacity entries.
// A non-positive capacity falls back to DefaultActivityCapacity.
func NewActivityLog(capacity int) *ActivityLog {
	if capacity <= 0 {
		capacity = DefaultActivityCapacity
	}
	return &ActivityLog{capacity: capacity, now: time.Now}
}

// Run implements zerolog.Hook.
func (a *ActivityLog) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if level < zerolog.InfoLevel || level == zerolog.NoLevel || msg == "" {
		return
	}
	a.Add(msg)
}

// Add appends a timestamped entry, dropping the oldest when full.
func (a *ActivityLog) Add(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry := "[" + a.now().Format(activityTimeFormat) + "] " + msg
	a.entries = append(a.entries, entry)
	if over := len(a.entries) - a.capacity; over > 0 {
		a.entries = append(a.entries[:0:0], a.entries[over:]...)
	}
}

// Entries returns a copy of the entries, oldest first.
func (a *ActivityLog) Entries() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, len(a.entries))
	copy(out, a.entries)
	return out
}
