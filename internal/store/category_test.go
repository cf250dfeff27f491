// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"

	"promptbuddy/internal/models"
)

func TestCategoryStoreCreateDefaults(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	name := "Create Defaults " + uuid.NewString()[:8]
	t.Cleanup(func() { cleanCategories(t, db, name) })

	created, err := s.Create(&models.Category{Name: name})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if created.Icon != models.DefaultCategoryIcon {
		t.Errorf("icon: got %q, want %q", created.Icon, models.DefaultCategoryIcon)
	}
	if created.Color != models.DefaultCategoryColor {
		t.Errorf("color: got %#x, want %#x", created.Color, int64(models.DefaultCategoryColor))
	}

	// FindByID and FindByName agree.
	byID, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID == nil || byID.Name != name {
		t.Fatalf("FindByID: got %+v", byID)
	}

	byName, err := s.FindByName(name)
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if byName == nil || byName.ID != created.ID {
		t.Fatalf("FindByName: got %+v", byName)
	}

	// Not found.
	missing, _ := s.FindByID(uuid.New())
	if missing != nil {
		t.Error("expected nil for random UUID")
	}
}

func TestCategoryStoreOrderIndexAssignment(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	name1 := "Order A " + uuid.NewString()[:8]
	name2 := "Order B " + uuid.NewString()[:8]
	t.Cleanup(func() { cleanCategories(t, db, name1, name2) })

	a, err := s.Create(&models.Category{Name: name1})
	if err != nil {
		t.Fatalf("Create A: %v", err)
	}
	b, err := s.Create(&models.Category{Name: name2})
	if err != nil {
		t.Fatalf("Create B: %v", err)
	}

	if b.OrderIndex <= a.OrderIndex {
		t.Errorf("order index: B (%d) should sort after A (%d)", b.OrderIndex, a.OrderIndex)
	}
}

func TestCategoryStoreUpdatePartial(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	name := "Update Partial " + uuid.NewString()[:8]
	t.Cleanup(func() { cleanCategories(t, db, name) })

	created, err := s.Create(&models.Category{Name: name, Icon: "star", Color: 0xFF112233})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newIcon := "bolt"
	updated, err := s.Update(created.ID, CategoryUpdate{Icon: &newIcon})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Icon != "bolt" {
		t.Errorf("icon: got %q, want bolt", updated.Icon)
	}
	// Untouched fields survive a partial update.
	if updated.Name != name {
		t.Errorf("name changed: got %q", updated.Name)
	}
	if updated.Color != 0xFF112233 {
		t.Errorf("color changed: got %#x", updated.Color)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("updated_at should advance on update")
	}
}

func TestCategoryStoreUpdateNotFound(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	name := "ghost"
	_, err := s.Update(uuid.New(), CategoryUpdate{Name: &name})
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryStoreDeleteDetachesPrompts(t *testing.T) {
	db := testDB(t)
	cats := NewCategoryStore(db)
	prompts := NewPromptStore(db)

	catName := "Detach Cat " + uuid.NewString()[:8]
	title := "Detach Prompt " + uuid.NewString()[:8]
	t.Cleanup(func() {
		cleanPrompts(t, db, title)
		cleanCategories(t, db, catName)
	})

	cat, err := cats.Create(&models.Category{Name: catName})
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}
	p, err := prompts.Create(&models.Prompt{Title: title, Body: "body", CategoryID: &cat.ID})
	if err != nil {
		t.Fatalf("Create prompt: %v", err)
	}

	if err := cats.Delete(cat.ID, nil); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// Prompt survives with a nulled category.
	after, err := prompts.FindByID(p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if after == nil {
		t.Fatal("prompt should survive category deletion")
	}
	if after.CategoryID != nil {
		t.Errorf("categoryId: got %v, want nil", after.CategoryID)
	}
}

func TestCategoryStoreDeleteReassignsPrompts(t *testing.T) {
	db := testDB(t)
	cats := NewCategoryStore(db)
	prompts := NewPromptStore(db)

	oldName := "Reassign Old " + uuid.NewString()[:8]
	newName := "Reassign New " + uuid.NewString()[:8]
	title := "Reassign Prompt " + uuid.NewString()[:8]
	t.Cleanup(func() {
		cleanPrompts(t, db, title)
		cleanCategories(t, db, oldName, newName)
	})

	oldCat, _ := cats.Create(&models.Category{Name: oldName})
	newCat, _ := cats.Create(&models.Category{Name: newName})
	p, err := prompts.Create(&models.Prompt{Title: title, Body: "body", CategoryID: &oldCat.ID})
	if err != nil {
		t.Fatalf("Create prompt: %v", err)
	}

	if err := cats.Delete(oldCat.ID, &newCat.ID); err != nil {
		t.Fatalf("Delete with reassign: %v", err)
	}

	after, _ := prompts.FindByID(p.ID)
	if after.CategoryID == nil || *after.CategoryID != newCat.ID {
		t.Errorf("categoryId: got %v, want %s", after.CategoryID, newCat.ID)
	}
}

func TestCategoryStoreDeleteNotFound(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	if err := s.Delete(uuid.New(), nil); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryStoreReorder(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	name1 := "Reorder A " + uuid.NewString()[:8]
	name2 := "Reorder B " + uuid.NewString()[:8]
	t.Cleanup(func() { cleanCategories(t, db, name1, name2) })

	a, _ := s.Create(&models.Category{Name: name1})
	b, _ := s.Create(&models.Category{Name: name2})

	err := s.Reorder([]ReorderItem{
		{ID: a.ID, OrderIndex: 500},
		{ID: b.ID, OrderIndex: 400},
	})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	aAfter, _ := s.FindByID(a.ID)
	bAfter, _ := s.FindByID(b.ID)
	if aAfter.OrderIndex != 500 || bAfter.OrderIndex != 400 {
		t.Errorf("order: got A=%d B=%d, want 500/400", aAfter.OrderIndex, bAfter.OrderIndex)
	}
}

func TestCategoryStoreListPromptCounts(t *testing.T) {
	db := testDB(t)
	cats := NewCategoryStore(db)
	prompts := NewPromptStore(db)

	catName := "Count Cat " + uuid.NewString()[:8]
	title := "Count Prompt " + uuid.NewString()[:8]
	t.Cleanup(func() {
		cleanPrompts(t, db, title)
		cleanCategories(t, db, catName)
	})

	cat, _ := cats.Create(&models.Category{Name: catName})
	prompts.Create(&models.Prompt{Title: title, Body: "b", CategoryID: &cat.ID})

	all, err := cats.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}

	found := false
	for _, c := range all {
		if c.ID == cat.ID {
			found = true
			if c.PromptCount != 1 {
				t.Errorf("prompt count: got %d, want 1", c.PromptCount)
			}
		}
	}
	if !found {
		t.Error("created category missing from ListAll")
	}
}
