package notify

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := t.stopped
	t.stopped = true
	return !was
}

// fakeTimers records every armed timer and never fires on its own; tests
// fire timers explicitly.
type fakeTimers struct {
	created []*fakeTimer
}

func (f *fakeTimers) factory(d time.Duration, fn func()) Timer {
	t := &fakeTimer{delay: d, fn: fn}
	f.created = append(f.created, t)
	return t
}

type fakeDisplay struct {
	mu     sync.Mutex
	shown  []string
	users  []string
	refuse bool
}

func (d *fakeDisplay) Display(userID, id, title, body string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.refuse {
		return errors.New("display unavailable")
	}
	d.shown = append(d.shown, id)
	d.users = append(d.users, userID)
	return nil
}

func newTestAgent() (*Agent, *fakeClock, *fakeTimers, *fakeDisplay) {
	clock := &fakeClock{now: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)}
	timers := &fakeTimers{}
	display := &fakeDisplay{}
	return NewAgent(display, clock, timers.factory), clock, timers, display
}

func at(clock *fakeClock, offset time.Duration) int64 {
	return clock.now.Add(offset).UnixMilli()
}

func TestReplaceArmsIncomingSet(t *testing.T) {
	agent, clock, timers, _ := newTestAgent()

	agent.Replace([]ScheduledNotification{
		{ID: "med-1-08:00", Timestamp: at(clock, 30*time.Minute)},
		{ID: "med-1-16:00", Timestamp: at(clock, 8*time.Hour)},
	})

	want := []string{"med-1-08:00", "med-1-16:00"}
	if got := agent.ArmedIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("ArmedIDs() = %v, want %v", got, want)
	}
	if len(timers.created) != 2 {
		t.Errorf("created %d timers, want 2", len(timers.created))
	}
	if timers.created[0].delay != 30*time.Minute {
		t.Errorf("first timer delay = %s, want 30m", timers.created[0].delay)
	}
}

func TestReplaceIdenticalInputKeepsSameArmedSet(t *testing.T) {
	agent, clock, timers, _ := newTestAgent()
	set := []ScheduledNotification{
		{ID: "apt-9-10:00", Timestamp: at(clock, time.Hour)},
		{ID: "ex-3-12:00", Timestamp: at(clock, 4*time.Hour)},
	}

	agent.Replace(set)
	first := agent.ArmedIDs()
	agent.Replace(set)
	second := agent.ArmedIDs()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("armed set changed under identical input: %v then %v", first, second)
	}
	if len(timers.created) != 2 {
		t.Errorf("identical input created %d timers in total, want 2", len(timers.created))
	}
	for i, timer := range timers.created {
		if timer.stopped {
			t.Errorf("timer %d was cancelled by an identical pass", i)
		}
	}
}

func TestReplaceCancelsAbsentIDs(t *testing.T) {
	agent, clock, timers, _ := newTestAgent()

	agent.Replace([]ScheduledNotification{
		{ID: "care-1-09:00", Timestamp: at(clock, time.Hour)},
		{ID: "care-2-09:00", Timestamp: at(clock, time.Hour)},
	})
	agent.Replace([]ScheduledNotification{
		{ID: "care-1-09:00", Timestamp: at(clock, time.Hour)},
	})

	want := []string{"care-1-09:00"}
	if got := agent.ArmedIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("ArmedIDs() = %v, want %v", got, want)
	}
	if !timers.created[1].stopped {
		t.Error("timer for the dropped id was not cancelled")
	}
}

func TestReplaceRearmsChangedTimestamp(t *testing.T) {
	agent, clock, timers, _ := newTestAgent()

	agent.Replace([]ScheduledNotification{{ID: "med-7-20:00", Timestamp: at(clock, time.Hour)}})
	agent.Replace([]ScheduledNotification{{ID: "med-7-20:00", Timestamp: at(clock, 2*time.Hour)}})

	if !timers.created[0].stopped {
		t.Error("stale timer was not cancelled before re-arming")
	}
	if got := timers.created[1].delay; got != 2*time.Hour {
		t.Errorf("re-armed delay = %s, want 2h", got)
	}
}

func TestReplaceSkipsStaleTimestamps(t *testing.T) {
	agent, clock, timers, _ := newTestAgent()

	agent.Replace([]ScheduledNotification{
		{ID: "too-old", Timestamp: at(clock, -2*time.Minute)},
		{ID: "just-missed", Timestamp: at(clock, -30*time.Second)},
	})

	want := []string{"just-missed"}
	if got := agent.ArmedIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("ArmedIDs() = %v, want %v", got, want)
	}
	// A slightly late reminder fires immediately instead of waiting
	if got := timers.created[0].delay; got != 0 {
		t.Errorf("late reminder delay = %s, want 0", got)
	}
}

func TestClearCancelsEverything(t *testing.T) {
	agent, clock, timers, _ := newTestAgent()

	agent.Clear() // safe when empty

	agent.Replace([]ScheduledNotification{
		{ID: "a", Timestamp: at(clock, time.Hour)},
		{ID: "b", Timestamp: at(clock, time.Hour)},
	})
	agent.Clear()

	if got := agent.ArmedIDs(); len(got) != 0 {
		t.Errorf("ArmedIDs() after Clear = %v, want empty", got)
	}
	for i, timer := range timers.created {
		if !timer.stopped {
			t.Errorf("timer %d not stopped by Clear", i)
		}
	}
}

func TestFireDisplaysAndRemoves(t *testing.T) {
	agent, clock, timers, display := newTestAgent()

	agent.Replace([]ScheduledNotification{
		{ID: "med-1-08:30", UserID: "owner", Title: "💊 Medicamento de Luna", Timestamp: at(clock, 30*time.Minute)},
	})
	timers.created[0].fn()

	if got := agent.ArmedIDs(); len(got) != 0 {
		t.Errorf("fired reminder still armed: %v", got)
	}
	if !reflect.DeepEqual(display.shown, []string{"med-1-08:30"}) {
		t.Errorf("displayed = %v, want [med-1-08:30]", display.shown)
	}
	if !reflect.DeepEqual(display.users, []string{"owner"}) {
		t.Errorf("displayed for users %v, want [owner]", display.users)
	}
}

func TestFireSwallowsDisplayErrors(t *testing.T) {
	agent, clock, timers, display := newTestAgent()
	display.refuse = true

	agent.Replace([]ScheduledNotification{{ID: "x", Timestamp: at(clock, time.Minute)}})
	timers.created[0].fn() // must not panic

	if got := agent.ArmedIDs(); len(got) != 0 {
		t.Errorf("reminder still armed after failed display: %v", got)
	}
}

func TestDeliverBypassesTimerTable(t *testing.T) {
	agent, _, timers, display := newTestAgent()

	agent.Deliver("owner", "push-1", "🐾 Cita de Luna", "revisión a las 10:00")

	if len(timers.created) != 0 {
		t.Errorf("Deliver armed %d timers, want 0", len(timers.created))
	}
	if !reflect.DeepEqual(display.shown, []string{"push-1"}) {
		t.Errorf("displayed = %v, want [push-1]", display.shown)
	}
}
