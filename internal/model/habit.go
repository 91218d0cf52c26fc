package model

import "time"

// DateLayout is the calendar-date format used for entry target dates and goal
// months. Target dates are logical days, distinct from the wall-clock instant
// an entry was recorded.
const DateLayout = "2006-01-02"

// MonthLayout identifies the calendar month a goal is scoped to.
const MonthLayout = "2006-01"

// Default point values applied when a template leaves them unset.
const (
	DefaultBasePoints    = 100
	DefaultPartialPoints = 25
)

type HabitTemplate struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Name          string    `json:"name"`
	BasePoints    int       `json:"base_points"`
	PartialPoints int       `json:"partial_points"`
	ShowUpPoints  int       `json:"show_up_points"`
	AllowShowUp   bool      `json:"allow_show_up"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type MonthlyGoal struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	TemplateID   int64     `json:"template_id"`
	Month        string    `json:"month"`
	TargetCount  int       `json:"target_count"`
	AllowNextDay bool      `json:"allow_next_day"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HabitEntry records one interaction with one goal on one calendar day.
// Entries are immutable once written; undo is a delete, never an update.
// At most one entry per (goal, target date) pair is meaningful.
type HabitEntry struct {
	ID            string     `json:"id"`
	MonthlyGoalID int64      `json:"monthly_goal_id"`
	UserID        int64      `json:"user_id"`
	TargetDate    string     `json:"target_date"`
	Timestamp     time.Time  `json:"timestamp"`
	Value         EntryValue `json:"value"`
}
