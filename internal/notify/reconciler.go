package notify

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pewos/backend/internal/schedule"
	"github.com/pewos/backend/internal/storage"
)

// Reconciler rebuilds the armed reminder set from the database and hands the
// fresh set to the delivery agent, which diffs it against what is already
// armed. It is triggered after every mutation that can change today's
// schedule, and once at midnight to roll the day over.
type Reconciler struct {
	dogs         *storage.DogRepository
	appointments *storage.AppointmentRepository
	medications  *storage.MedicationRepository
	exercises    *storage.ExerciseRepository
	cares        *storage.CareRepository
	mealTimes    *storage.MealTimeRepository

	agent   *Agent
	loc     *time.Location
	clock   Clock
	enabled atomic.Bool
	cron    *cron.Cron

	// OnReplace, when set, is invoked after each successful swap with the
	// user id that triggered it and the size of the full armed set.
	OnReplace func(userID string, count int)
}

// NewReconciler wires a reconciler over the given repositories and agent.
func NewReconciler(db *storage.DB, agent *Agent, loc *time.Location, clock Clock) *Reconciler {
	if clock == nil {
		clock = SystemClock()
	}
	r := &Reconciler{
		dogs:         storage.NewDogRepository(db),
		appointments: storage.NewAppointmentRepository(db),
		medications:  storage.NewMedicationRepository(db),
		exercises:    storage.NewExerciseRepository(db),
		cares:        storage.NewCareRepository(db),
		mealTimes:    storage.NewMealTimeRepository(db),
		agent:        agent,
		loc:          loc,
		clock:        clock,
		cron:         cron.New(cron.WithLocation(loc)),
	}
	r.enabled.Store(true)
	return r
}

// StartDailyRollover rebuilds the armed set at local midnight so yesterday's
// timers give way to today's schedule.
func (r *Reconciler) StartDailyRollover() error {
	_, err := r.cron.AddFunc("0 0 * * *", func() { r.ReconcileAsync("") })
	if err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// StopDailyRollover halts the midnight rebuild.
func (r *Reconciler) StopDailyRollover() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// SetEnabled turns local reminder delivery on or off. Disabling clears every
// armed timer, mirroring a revoked notification permission.
func (r *Reconciler) SetEnabled(on bool) {
	r.enabled.Store(on)
	if !on {
		r.agent.Clear()
	}
}

// Enabled reports whether local delivery is on.
func (r *Reconciler) Enabled() bool {
	return r.enabled.Load()
}

// Reconcile recomputes today's reminder set for every user with notifiable
// items and swaps it into the agent. originUserID only labels the change
// announcement; the rebuilt set always covers all users.
func (r *Reconciler) Reconcile(ctx context.Context, originUserID string) error {
	if !r.enabled.Load() {
		return nil
	}

	set, err := r.buildAll(ctx)
	if err != nil {
		return err
	}
	r.agent.Replace(set)
	if r.OnReplace != nil {
		r.OnReplace(originUserID, len(set))
	}
	return nil
}

// ReconcileAsync runs Reconcile in the background, logging failures. HTTP
// handlers call this after mutations so a schedule rebuild never delays the
// response.
func (r *Reconciler) ReconcileAsync(userID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := r.Reconcile(ctx, userID); err != nil {
			log.Printf("Reminder reconcile failed: %v", err)
		}
	}()
}

func (r *Reconciler) buildAll(ctx context.Context) ([]ScheduledNotification, error) {
	appointments, err := r.appointments.ListNotifiable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	medications, err := r.medications.ListNotifiable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	exercises, err := r.exercises.ListNotifiable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	cares, err := r.cares.ListNotifiable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cares: %w", err)
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

	today := schedule.DateOnly(r.clock.Now().In(r.loc))
	var set []ScheduledNotification
	for userID, s := range byUser {
		dogs, err := r.dogs.ListByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list dogs for %s: %w", userID, err)
		}
		meals, err := r.mealTimes.ListByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list meal times for %s: %w", userID, err)
		}
		s.Dogs = dogs
		s.MealTimes = meals
		set = append(set, BuildForDay(*s, today, r.loc)...)
	}
	return set, nil
}
