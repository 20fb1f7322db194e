package notify

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pewos/backend/internal/push"
	"github.com/pewos/backend/internal/schedule"
	"github.com/pewos/backend/internal/storage"
	"github.com/pewos/backend/internal/storage/models"
)

// batchInterval is the width of the delivery window. Each run picks up the
// reminders whose fire time falls within the next interval, so every
// reminder is pushed by exactly one run.
const batchInterval = 15 * time.Minute

// PushSender sends one Web Push message to a stored subscription.
type PushSender interface {
	Send(sub *models.PushSubscription, p push.Payload) error
}

// Batch pushes upcoming reminders to subscribed browsers on a fixed cadence.
// Unlike the in-process agent it reaches devices with the app closed, and it
// fans each owner's reminders out to accepted shared-access recipients.
type Batch struct {
	reconciler    *Reconciler
	subscriptions *storage.SubscriptionRepository
	shared        *storage.SharedAccessRepository
	sender        PushSender
	clock         Clock
	loc           *time.Location
	cron          *cron.Cron
}

// NewBatch wires a batch notifier. sender may be nil, in which case runs
// compute but skip delivery (useful when VAPID keys are not configured).
func NewBatch(db *storage.DB, reconciler *Reconciler, sender PushSender, loc *time.Location, clock Clock) *Batch {
	if clock == nil {
		clock = SystemClock()
	}
	return &Batch{
		reconciler:    reconciler,
		subscriptions: storage.NewSubscriptionRepository(db),
		shared:        storage.NewSharedAccessRepository(db),
		sender:        sender,
		clock:         clock,
		loc:           loc,
		cron:          cron.New(),
	}
}

// Start begins the periodic delivery runs.
func (b *Batch) Start() error {
	_, err := b.cron.AddFunc("@every 15m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := b.Run(ctx); err != nil {
			log.Printf("Push batch run failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	b.cron.Start()
	log.Printf("Push batch notifier started (every %s)", batchInterval)
	return nil
}

// Stop halts the periodic runs.
func (b *Batch) Stop() {
	ctx := b.cron.Stop()
	<-ctx.Done()
	log.Println("Push batch notifier stopped")
}

// Run executes one delivery pass: compute today's reminders, keep those due
// within the next window, fan out to shared-access recipients, push.
func (b *Batch) Run(ctx context.Context) error {
	now := b.clock.Now()
	due, err := b.dueWithin(ctx, now, now.Add(batchInterval))
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	recipients, err := b.fanOut(ctx, due)
	if err != nil {
		return err
	}

	sent := 0
	for userID, list := range recipients {
		sub, err := b.subscriptions.GetByUser(ctx, userID)
		if err != nil {
			log.Printf("Load subscription for %s: %v", userID, err)
			continue
		}
		if sub == nil {
			continue
		}
		for _, n := range list {
			if b.sender == nil {
				continue
			}
			err := b.sender.Send(sub, push.Payload{
				Title: n.Title,
				Body:  n.Body,
				Tag:   n.ID,
				URL:   "/",
			})
			switch {
			case errors.Is(err, push.ErrSubscriptionGone):
				// The push service dropped this endpoint, stop retrying it.
				if delErr := b.subscriptions.Delete(ctx, userID); delErr != nil {
					log.Printf("Delete stale subscription for %s: %v", userID, delErr)
				}
			case err != nil:
				log.Printf("Push to %s failed: %v", userID, err)
			default:
				sent++
			}
		}
	}
	if sent > 0 {
		log.Printf("Push batch delivered %d notifications", sent)
	}
	return nil
}

// dueWithin rebuilds today's per-owner reminders and keeps those whose fire
// time falls in [from, to].
func (b *Batch) dueWithin(ctx context.Context, from, to time.Time) (map[string][]ScheduledNotification, error) {
	appointments, err := b.reconciler.appointments.ListNotifiable(ctx)
	if err != nil {
		return nil, err
	}
	medications, err := b.reconciler.medications.ListNotifiable(ctx)
	if err != nil {
		return nil, err
	}
	exercises, err := b.reconciler.exercises.ListNotifiable(ctx)
	if err != nil {
		return nil, err
	}
	cares, err := b.reconciler.cares.ListNotifiable(ctx)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string]*DaySchedule)
	sched := func(userID string) *DaySchedule {
		s, ok := byUser[userID]
		if !ok {
			s = &DaySchedule{UserID: userID}
			byUser[userID] = s
		}
		return s
	}
	for _, a := range appointments {
		sched(a.UserID).Appointments = append(sched(a.UserID).Appointments, a)
	}
	for _, m := range medications {
		sched(m.UserID).Medications = append(sched(m.UserID).Medications, m)
	}
	for _, e := range exercises {
		sched(e.UserID).Exercises = append(sched(e.UserID).Exercises, e)
	}
	for _, c := range cares {
		sched(c.UserID).Cares = append(sched(c.UserID).Cares, c)
	}

	today := schedule.DateOnly(from.In(b.loc))
	fromMs, toMs := from.UnixMilli(), to.UnixMilli()
	out := make(map[string][]ScheduledNotification)
	for userID, s := range byUser {
		dogs, err := b.reconciler.dogs.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		meals, err := b.reconciler.mealTimes.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		s.Dogs = dogs
		s.MealTimes = meals
		for _, n := range BuildForDay(*s, today, b.loc) {
			if n.Timestamp >= fromMs && n.Timestamp <= toMs {
				out[userID] = append(out[userID], n)
			}
		}
	}
	return out, nil
}

// fanOut appends each owner's due reminders to the lists of users who hold
// accepted shared access on that owner.
func (b *Batch) fanOut(ctx context.Context, due map[string][]ScheduledNotification) (map[string][]ScheduledNotification, error) {
	grants, err := b.shared.ListAccepted(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]ScheduledNotification, len(due))
	for userID, list := range due {
		out[userID] = append(out[userID], list...)
	}
	for _, g := range grants {
		if g.SharedWithID == nil {
			continue
		}
		if list, ok := due[g.OwnerID]; ok {
			out[*g.SharedWithID] = append(out[*g.SharedWithID], list...)
		}
	}
	return out, nil
}
