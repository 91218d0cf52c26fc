package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/stoke/internal/model"
	"github.com/dukerupert/stoke/internal/store"
	"github.com/dukerupert/stoke/internal/streak"
)

const (
	// reminderMinStreak is the streak length at which a goal is worth
	// protecting with a reminder.
	reminderMinStreak = 7

	// reminderHourUTC is the earliest hour of the day reminders go out.
	reminderHourUTC = 18
)

// Scheduler periodically checks goals with long streaks and nudges their
// owners when today has no entry yet.
type Scheduler struct {
	mu        sync.RWMutex
	service   *Service
	push      *store.PushStore
	goals     *store.GoalStore
	entries   *store.EntryStore
	templates *store.TemplateStore
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewScheduler creates a streak reminder scheduler.
func NewScheduler(svc *Service, pushStore *store.PushStore, goalStore *store.GoalStore, entryStore *store.EntryStore, templateStore *store.TemplateStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:   svc,
		push:      pushStore,
		goals:     goalStore,
		entries:   entryStore,
		templates: templateStore,
		interval:  15 * time.Minute,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick() {
	now := s.now()
	if now.Hour() < reminderHourUTC {
		return
	}

	goals, err := s.goals.ListAll()
	if err != nil {
		s.logger.Error("list goals", "error", err)
		return
	}

	for _, goal := range goals {
		s.checkGoal(goal, now)
	}
}

// checkGoal sends at most one reminder per goal per day, and only while the
// goal's streak is long enough to be worth saving.
func (s *Scheduler) checkGoal(goal model.MonthlyGoal, now time.Time) {
	today := now.Format(model.DateLayout)

	lastSent, err := s.push.LastReminderDate(goal.ID)
	if err != nil {
		s.logger.Error("reminder date", "goal_id", goal.ID, "error", err)
		return
	}
	if lastSent == today {
		return
	}

	since := now.AddDate(0, 0, -(streak.MaxLookbackDays - 1)).Format(model.DateLayout)
	entries, err := s.entries.ListForGoalSince(goal.ID, since)
	if err != nil {
		s.logger.Error("list entries", "goal_id", goal.ID, "error", err)
		return
	}

	for _, e := range entries {
		if e.TargetDate == today {
			return
		}
	}

	info := streak.Evaluate(entries, now)
	if info.CurrentStreak < reminderMinStreak {
		return
	}

	habitName := "your habit"
	if tmpl, err := s.templates.GetByID(goal.TemplateID); err == nil && tmpl != nil {
		habitName = tmpl.Name
	}

	payload := Payload{
		Title: "Streak at risk",
		Body:  fmt.Sprintf("%d-day streak on %s. Log today to keep it going.", info.CurrentStreak, habitName),
		URL:   fmt.Sprintf("/goals/%d", goal.ID),
		Tag:   fmt.Sprintf("streak-%d", goal.ID),
	}

	subs, err := s.push.ListByUser(goal.UserID)
	if err != nil {
		s.logger.Error("list subscriptions", "user_id", goal.UserID, "error", err)
		return
	}

	for i := range subs {
		if err := s.service.Send(&subs[i], payload); err != nil {
			if errors.Is(err, ErrExpired) {
				s.push.DeleteByEndpoint(subs[i].Endpoint)
			} else {
				s.logger.Warn("send reminder", "goal_id", goal.ID, "error", err)
			}
		}
	}

	if err := s.push.MarkReminderSent(goal.ID, today); err != nil {
		s.logger.Error("mark reminder sent", "goal_id", goal.ID, "error", err)
	}
}
