package store

import (
	"testing"
	"time"

	"github.com/dukerupert/stoke/internal/model"
)

func TestGoalCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	user, _ := NewUserStore(db).Create("g@example.com", "G", "hash")
	tmpl, _ := NewTemplateStore(db).Create(user.ID, "Read", 100, 25, 25, true)

	gs := NewGoalStore(db)
	goal, err := gs.Create(user.ID, tmpl.ID, "2024-03", 20, true)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	got, err := gs.GetByID(goal.ID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if got == nil {
		t.Fatal("expected goal, got nil")
	}
	if got.Month != "2024-03" {
		t.Errorf("month = %q, want %q", got.Month, "2024-03")
	}
	if got.TargetCount != 20 {
		t.Errorf("target_count = %d, want 20", got.TargetCount)
	}
	if !got.AllowNextDay {
		t.Error("expected allow_next_day true")
	}
}

func TestGoalGetMissing(t *testing.T) {
	db := setupTestDB(t)
	gs := NewGoalStore(db)

	goal, err := gs.GetByID(9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if goal != nil {
		t.Error("expected nil for missing goal")
	}
}

func TestGoalListByUser(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	a, _ := us.Create("a@example.com", "A", "hash")
	b, _ := us.Create("b@example.com", "B", "hash")
	ts := NewTemplateStore(db)
	tmplA, _ := ts.Create(a.ID, "Read", 100, 25, 25, true)
	tmplB, _ := ts.Create(b.ID, "Swim", 100, 25, 25, true)

	gs := NewGoalStore(db)
	if _, err := gs.Create(a.ID, tmplA.ID, "2024-01", 20, false); err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if _, err := gs.Create(a.ID, tmplA.ID, "2024-02", 20, false); err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if _, err := gs.Create(b.ID, tmplB.ID, "2024-01", 10, false); err != nil {
		t.Fatalf("create goal: %v", err)
	}

	goals, err := gs.ListByUser(a.ID)
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(goals) != 2 {
		t.Fatalf("len = %d, want 2", len(goals))
	}
	// Most recent month first.
	if goals[0].Month != "2024-02" {
		t.Errorf("first month = %q, want %q", goals[0].Month, "2024-02")
	}

	all, err := gs.ListAll()
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all len = %d, want 3", len(all))
	}
}

func TestGoalUpdate(t *testing.T) {
	db := setupTestDB(t)
	user, _ := NewUserStore(db).Create("g@example.com", "G", "hash")
	tmpl, _ := NewTemplateStore(db).Create(user.ID, "Read", 100, 25, 25, true)

	gs := NewGoalStore(db)
	goal, err := gs.Create(user.ID, tmpl.ID, "2024-03", 20, false)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	updated, err := gs.Update(goal.ID, "2024-04", 25, true)
	if err != nil {
		t.Fatalf("update goal: %v", err)
	}
	if updated.Month != "2024-04" || updated.TargetCount != 25 || !updated.AllowNextDay {
		t.Errorf("updated = %+v", updated)
	}
}

func TestGoalDeleteCascadesEntries(t *testing.T) {
	db := setupTestDB(t)
	userID, goalID := seedUserGoal(t, db)
	es := NewEntryStore(db)

	insertEntry(t, db, es, &model.HabitEntry{
		ID: "cascade-1", MonthlyGoalID: goalID, UserID: userID,
		TargetDate: "2024-01-05", Timestamp: time.Now().UTC(),
		Value: model.EntryValue{Kind: model.ValueFull},
	})

	if err := NewGoalStore(db).Delete(goalID); err != nil {
		t.Fatalf("delete goal: %v", err)
	}

	got, err := es.GetByID("cascade-1")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if got != nil {
		t.Error("expected entry gone after goal delete")
	}
}
