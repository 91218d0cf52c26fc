// Package award runs the point-awarding operations. Each operation is a
// single SQLite transaction: reads, streak evaluation, entry write and the
// balance update all commit or roll back together, so two concurrent log
// attempts for the same goal and date can never double-award.
package award

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/dukerupert/stoke/internal/model"
	"github.com/dukerupert/stoke/internal/store"
	"github.com/dukerupert/stoke/internal/streak"
)

type Service struct {
	db         *sql.DB
	users      *store.UserStore
	templates  *store.TemplateStore
	goals      *store.GoalStore
	entries    *store.EntryStore
	milestones *store.MilestoneStore
	rewards    *store.RewardStore
	logger     *slog.Logger
}

func NewService(
	db *sql.DB,
	users *store.UserStore,
	templates *store.TemplateStore,
	goals *store.GoalStore,
	entries *store.EntryStore,
	milestones *store.MilestoneStore,
	rewards *store.RewardStore,
	logger *slog.Logger,
) *Service {
	return &Service{
		db:         db,
		users:      users,
		templates:  templates,
		goals:      goals,
		entries:    entries,
		milestones: milestones,
		rewards:    rewards,
		logger:     logger,
	}
}

// LogResult is returned from a successful LogEntry call.
type LogResult struct {
	EntryID       string      `json:"entry_id"`
	PointsAwarded int         `json:"points_awarded"`
	Streak        streak.Info `json:"streak"`
}

// LogEntry records a habit entry for a goal and awards points, all inside one
// transaction. The candidate entry is evaluated as part of the history before
// it is written, so the streak it reports already includes this log.
func (s *Service) LogEntry(ctx context.Context, userID, goalID int64, targetDate string, rawValue any) (*LogResult, error) {
	day, err := time.Parse(model.DateLayout, targetDate)
	if err != nil {
		return nil, fmt.Errorf("%w: target_date must be YYYY-MM-DD", ErrInvalidArgument)
	}

	value, err := model.ParseEntryValue(rawValue)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	var result *LogResult
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		goal, err := s.goals.GetByIDTx(tx, goalID)
		if err != nil {
			return err
		}
		if goal == nil {
			return fmt.Errorf("monthly goal %d: %w", goalID, ErrNotFound)
		}
		if goal.UserID != userID {
			return fmt.Errorf("monthly goal %d: %w", goalID, ErrUnauthorized)
		}

		// A missing template is tolerated: the entry is still recorded, it
		// just cannot earn points.
		tmpl, err := s.templates.GetByIDTx(tx, goal.TemplateID)
		if err != nil {
			return err
		}
		if tmpl == nil {
			s.logger.Warn("template missing for goal", "goal_id", goalID, "template_id", goal.TemplateID)
		}

		existing, err := s.entries.GetForGoalDateTx(tx, goalID, targetDate)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("goal %d on %s: %w", goalID, targetDate, ErrAlreadyLogged)
		}

		since := day.AddDate(0, 0, -(streak.MaxLookbackDays - 1)).Format(model.DateLayout)
		history, err := s.entries.ListForGoalSinceTx(tx, goalID, since)
		if err != nil {
			return err
		}

		// Candidate entry is synthesized inside the transaction closure so a
		// retry gets a fresh ID and timestamp.
		entry := model.HabitEntry{
			ID:            uuid.NewString(),
			MonthlyGoalID: goalID,
			UserID:        userID,
			TargetDate:    targetDate,
			Timestamp:     time.Now().UTC(),
			Value:         value,
		}
		history = append(history, entry)

		info := streak.Evaluate(history, day)
		points := streak.Points(value, tmpl, info)

		if err := s.entries.CreateTx(tx, &entry); err != nil {
			return err
		}

		user, err := s.users.GetByIDTx(tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		if err := s.users.AddPointsTx(tx, userID, points); err != nil {
			return err
		}

		result = &LogResult{EntryID: entry.ID, PointsAwarded: points, Streak: info}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("entry logged",
		"goal_id", goalID,
		"target_date", targetDate,
		"points", result.PointsAwarded,
		"streak", result.Streak.CurrentStreak,
		"shield_active", result.Streak.ShieldActive,
	)
	return result, nil
}

// CompleteMilestone flips a milestone's completion flag and awards its points.
// Completing an already-completed milestone fails rather than re-awarding.
func (s *Service) CompleteMilestone(ctx context.Context, userID, milestoneID int64) (int, error) {
	var points int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		m, err := s.milestones.GetByIDTx(tx, milestoneID)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("milestone %d: %w", milestoneID, ErrNotFound)
		}
		if m.UserID != userID {
			return fmt.Errorf("milestone %d: %w", milestoneID, ErrUnauthorized)
		}
		if m.Completed {
			return fmt.Errorf("milestone %d: %w", milestoneID, ErrAlreadyCompleted)
		}

		user, err := s.users.GetByIDTx(tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}

		if err := s.milestones.MarkCompletedTx(tx, milestoneID, time.Now().UTC()); err != nil {
			return err
		}
		if err := s.users.AddPointsTx(tx, userID, m.Points); err != nil {
			return err
		}

		points = m.Points
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("milestone completed", "milestone_id", milestoneID, "points", points)
	return points, nil
}

// RedeemReward spends points on a reward. The balance check and the deduction
// happen in the same transaction, so a racing redemption cannot overspend.
func (s *Service) RedeemReward(ctx context.Context, userID, rewardID int64) (int, error) {
	var cost int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		r, err := s.rewards.GetByIDTx(tx, rewardID)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("reward %d: %w", rewardID, ErrNotFound)
		}
		if r.UserID != userID {
			return fmt.Errorf("reward %d: %w", rewardID, ErrUnauthorized)
		}
		if r.Redeemed {
			return fmt.Errorf("reward %d: %w", rewardID, ErrAlreadyRedeemed)
		}

		user, err := s.users.GetByIDTx(tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		if user.Points < r.PointCost {
			return fmt.Errorf("need %d points, have %d: %w", r.PointCost, user.Points, ErrInsufficientPoints)
		}

		if err := s.rewards.MarkRedeemedTx(tx, r, time.Now().UTC()); err != nil {
			return err
		}
		if err := s.users.AddPointsTx(tx, userID, -r.PointCost); err != nil {
			return err
		}

		cost = r.PointCost
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("reward redeemed", "reward_id", rewardID, "points_spent", cost)
	return cost, nil
}

// withTx runs fn in a transaction, retrying with backoff when SQLite reports
// lock contention. The closure must be safe to re-execute: all reads and any
// captured time or IDs happen inside it.
func (s *Service) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(25*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback()

		if err := fn(tx); err != nil {
			if isBusy(err) {
				return retry.RetryableError(err)
			}
			return err
		}

		if err := tx.Commit(); err != nil {
			if isBusy(err) {
				return retry.RetryableError(err)
			}
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
}

func isBusy(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		code := serr.Code()
		return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
	}
	return false
}
