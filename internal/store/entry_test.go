package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukerupert/stoke/internal/database"
	"github.com/dukerupert/stoke/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "store_test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedUserGoal creates the user/template/goal rows entries hang off.
func seedUserGoal(t *testing.T, db *sql.DB) (int64, int64) {
	t.Helper()
	user, err := NewUserStore(db).Create("test@example.com", "Test", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	tmpl, err := NewTemplateStore(db).Create(user.ID, "Read", 100, 25, 25, true)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	goal, err := NewGoalStore(db).Create(user.ID, tmpl.ID, "2024-01", 20, false)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	return user.ID, goal.ID
}

func insertEntry(t *testing.T, db *sql.DB, es *EntryStore, e *model.HabitEntry) {
	t.Helper()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := es.CreateTx(tx, e); err != nil {
		tx.Rollback()
		t.Fatalf("create entry: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestEntryCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	userID, goalID := seedUserGoal(t, db)
	es := NewEntryStore(db)

	e := &model.HabitEntry{
		ID:            "entry-1",
		MonthlyGoalID: goalID,
		UserID:        userID,
		TargetDate:    "2024-01-05",
		Timestamp:     time.Now().UTC(),
		Value:         model.EntryValue{Kind: model.ValueFull},
	}
	insertEntry(t, db, es, e)

	got, err := es.GetByID("entry-1")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if got == nil {
		t.Fatal("expected entry, got nil")
	}
	if got.TargetDate != "2024-01-05" {
		t.Errorf("target_date = %q, want %q", got.TargetDate, "2024-01-05")
	}
	if got.Value.Kind != model.ValueFull {
		t.Errorf("kind = %q, want %q", got.Value.Kind, model.ValueFull)
	}
}

func TestEntryValueRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	userID, goalID := seedUserGoal(t, db)
	es := NewEntryStore(db)

	e := &model.HabitEntry{
		ID:            "entry-partial",
		MonthlyGoalID: goalID,
		UserID:        userID,
		TargetDate:    "2024-01-06",
		Timestamp:     time.Now().UTC(),
		Value:         model.EntryValue{Kind: model.ValuePartial, Payload: "ran 2k"},
	}
	insertEntry(t, db, es, e)

	got, err := es.GetByID("entry-partial")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if got.Value.Kind != model.ValuePartial || got.Value.Payload != "ran 2k" {
		t.Errorf("value = %+v, want partial/ran 2k", got.Value)
	}
}

func TestEntryUniquePerGoalDate(t *testing.T) {
	db := setupTestDB(t)
	userID, goalID := seedUserGoal(t, db)
	es := NewEntryStore(db)

	first := &model.HabitEntry{
		ID: "e1", MonthlyGoalID: goalID, UserID: userID,
		TargetDate: "2024-01-05", Timestamp: time.Now().UTC(),
		Value: model.EntryValue{Kind: model.ValueFull},
	}
	insertEntry(t, db, es, first)

	dup := &model.HabitEntry{
		ID: "e2", MonthlyGoalID: goalID, UserID: userID,
		TargetDate: "2024-01-05", Timestamp: time.Now().UTC(),
		Value: model.EntryValue{Kind: model.ValueFull},
	}
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()
	if err := es.CreateTx(tx, dup); err == nil {
		t.Error("expected unique constraint violation for duplicate date")
	}
}

func TestEntryListForGoalSince(t *testing.T) {
	db := setupTestDB(t)
	userID, goalID := seedUserGoal(t, db)
	es := NewEntryStore(db)

	dates := []string{"2023-12-30", "2024-01-02", "2024-01-05"}
	for i, d := range dates {
		insertEntry(t, db, es, &model.HabitEntry{
			ID: dates[i], MonthlyGoalID: goalID, UserID: userID,
			TargetDate: d, Timestamp: time.Now().UTC(),
			Value: model.EntryValue{Kind: model.ValueFull},
		})
	}

	entries, err := es.ListForGoalSince(goalID, "2024-01-01")
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	// Ascending by target date.
	if entries[0].TargetDate != "2024-01-02" || entries[1].TargetDate != "2024-01-05" {
		t.Errorf("order = %q, %q", entries[0].TargetDate, entries[1].TargetDate)
	}
}

func TestEntryDelete(t *testing.T) {
	db := setupTestDB(t)
	userID, goalID := seedUserGoal(t, db)
	es := NewEntryStore(db)

	insertEntry(t, db, es, &model.HabitEntry{
		ID: "undo-me", MonthlyGoalID: goalID, UserID: userID,
		TargetDate: "2024-01-05", Timestamp: time.Now().UTC(),
		Value: model.EntryValue{Kind: model.ValueFull},
	})

	if err := es.Delete("undo-me"); err != nil {
		t.Fatalf("delete entry: %v", err)
	}
	got, err := es.GetByID("undo-me")
	if err != nil {
		t.Fatalf("get deleted entry: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}
