package store

import (
	"testing"

	"github.com/dukerupert/stoke/internal/model"
)

func TestTemplateCreateAppliesDefaults(t *testing.T) {
	db := setupTestDB(t)
	user, err := NewUserStore(db).Create("t@example.com", "T", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	ts := NewTemplateStore(db)
	tmpl, err := ts.Create(user.ID, "Meditate", 0, 0, 0, false)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	if tmpl.BasePoints != model.DefaultBasePoints {
		t.Errorf("base_points = %d, want %d", tmpl.BasePoints, model.DefaultBasePoints)
	}
	if tmpl.PartialPoints != model.DefaultPartialPoints {
		t.Errorf("partial_points = %d, want %d", tmpl.PartialPoints, model.DefaultPartialPoints)
	}
}

func TestTemplateUpdate(t *testing.T) {
	db := setupTestDB(t)
	user, err := NewUserStore(db).Create("t@example.com", "T", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	ts := NewTemplateStore(db)
	tmpl, err := ts.Create(user.ID, "Run", 50, 10, 5, true)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	updated, err := ts.Update(tmpl.ID, "Run 5k", 200, 30, 10, false)
	if err != nil {
		t.Fatalf("update template: %v", err)
	}
	if updated.Name != "Run 5k" {
		t.Errorf("name = %q, want %q", updated.Name, "Run 5k")
	}
	if updated.BasePoints != 200 {
		t.Errorf("base_points = %d, want 200", updated.BasePoints)
	}
	if updated.AllowShowUp {
		t.Error("expected allow_show_up false after update")
	}
}

func TestTemplateListByUser(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	a, _ := us.Create("a@example.com", "A", "hash")
	b, _ := us.Create("b@example.com", "B", "hash")

	ts := NewTemplateStore(db)
	if _, err := ts.Create(a.ID, "Read", 100, 25, 25, true); err != nil {
		t.Fatalf("create template: %v", err)
	}
	if _, err := ts.Create(a.ID, "Write", 100, 25, 25, true); err != nil {
		t.Fatalf("create template: %v", err)
	}
	if _, err := ts.Create(b.ID, "Swim", 100, 25, 25, true); err != nil {
		t.Fatalf("create template: %v", err)
	}

	templates, err := ts.ListByUser(a.ID)
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(templates) != 2 {
		t.Errorf("len = %d, want 2", len(templates))
	}
	for _, tmpl := range templates {
		if tmpl.UserID != a.ID {
			t.Errorf("template %d belongs to user %d", tmpl.ID, tmpl.UserID)
		}
	}
}

func TestTemplateGetMissing(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTemplateStore(db)

	tmpl, err := ts.GetByID(9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if tmpl != nil {
		t.Error("expected nil for missing template")
	}
}

func TestTemplateDelete(t *testing.T) {
	db := setupTestDB(t)
	user, _ := NewUserStore(db).Create("t@example.com", "T", "hash")

	ts := NewTemplateStore(db)
	tmpl, err := ts.Create(user.ID, "Sleep early", 100, 25, 25, false)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	if err := ts.Delete(tmpl.ID); err != nil {
		t.Fatalf("delete template: %v", err)
	}
	got, err := ts.GetByID(tmpl.ID)
	if err != nil {
		t.Fatalf("get deleted: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}
