package notify

import (
	"log"
	"sort"
	"sync"
	"time"
)

// staleThreshold is how far past a fire time may already be and still get
// delivered immediately instead of dropped.
const staleThreshold = 60 * time.Second

// Clock abstracts time.Now for the agent so tests can drive it.
type Clock interface {
	Now() time.Time
}

// Timer is a cancellable one-shot timer handle.
type Timer interface {
	Stop() bool
}

// TimerFactory arms a one-shot timer that invokes fn after d.
type TimerFactory func(d time.Duration, fn func()) Timer

// Displayer shows a fired reminder. userID is the reminder's owner so a
// shared display surface can route or filter per user.
type Displayer interface {
	Display(userID, id, title, body string) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// SystemTimers is a TimerFactory backed by time.AfterFunc.
func SystemTimers(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// armedTimer pairs a timer handle with the fire time it was armed for, so an
// unchanged notification can keep its timer across schedule swaps.
type armedTimer struct {
	timer Timer
	ts    int64
}

// Agent owns the armed timer table for in-process reminders. All state is
// guarded by a single mutex so Replace, Clear and timer callbacks never race.
type Agent struct {
	mu      sync.Mutex
	armed   map[string]armedTimer
	clock   Clock
	timers  TimerFactory
	display Displayer
}

// NewAgent creates a delivery agent. clock and timers may be nil, in which
// case the system clock and time.AfterFunc are used.
func NewAgent(display Displayer, clock Clock, timers TimerFactory) *Agent {
	if clock == nil {
		clock = SystemClock()
	}
	if timers == nil {
		timers = SystemTimers
	}
	return &Agent{
		armed:   make(map[string]armedTimer),
		clock:   clock,
		timers:  timers,
		display: display,
	}
}

// Replace swaps the armed set for the given notifications. Timers whose ids
// are absent from the new set are cancelled. An incoming notification whose
// id is already armed at the same fire time keeps its timer untouched, so
// identical passes cause zero churn; a changed timestamp cancels and re-arms.
// A fire time more than staleThreshold in the past is skipped; one slightly
// in the past fires immediately.
func (a *Agent) Replace(set []ScheduledNotification) {
	a.mu.Lock()
	defer a.mu.Unlock()

	incoming := make(map[string]bool, len(set))
	for _, n := range set {
		incoming[n.ID] = true
	}
	for id, at := range a.armed {
		if !incoming[id] {
			at.timer.Stop()
			delete(a.armed, id)
		}
	}

	now := a.clock.Now()
	for _, n := range set {
		if at, ok := a.armed[n.ID]; ok {
			if at.ts == n.Timestamp {
				continue
			}
			at.timer.Stop()
			delete(a.armed, n.ID)
		}
		delay := time.UnixMilli(n.Timestamp).Sub(now)
		if delay < -staleThreshold {
			continue
		}
		if delay < 0 {
			delay = 0
		}
		n := n
		a.armed[n.ID] = armedTimer{
			timer: a.timers(delay, func() { a.fire(n) }),
			ts:    n.Timestamp,
		}
	}
}

// Clear cancels every armed timer.
func (a *Agent) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, at := range a.armed {
		at.timer.Stop()
		delete(a.armed, id)
	}
}

// ArmedIDs returns the ids of currently armed timers, sorted.
func (a *Agent) ArmedIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	ids := make([]string, 0, len(a.armed))
	for id := range a.armed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Deliver shows a message immediately, bypassing the timer table. Used for
// server-initiated pushes that should also reach connected shells.
func (a *Agent) Deliver(userID, id, title, body string) {
	if a.display == nil {
		return
	}
	if err := a.display.Display(userID, id, title, body); err != nil {
		log.Printf("Failed to deliver message %s: %v", id, err)
	}
}

func (a *Agent) fire(n ScheduledNotification) {
	a.mu.Lock()
	delete(a.armed, n.ID)
	a.mu.Unlock()

	if a.display == nil {
		return
	}
	if err := a.display.Display(n.UserID, n.ID, n.Title, n.Body); err != nil {
		// Delivery failures never take the agent down.
		log.Printf("Failed to display reminder %s: %v", n.ID, err)
	}
}
