// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package importer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"promptbuddy/internal/models"
	"promptbuddy/internal/store"
)

// reconciler matches incoming records to existing store rows and decides
// create/update/skip per record. It is built fresh for every import, so
// the identity map is strictly request-scoped. In dry-run mode the full
// decision logic runs against live store reads but every write is
// elided, which keeps the reported counts identical to a real run.
type reconciler struct {
	categories *store.CategoryStore
	prompts    *store.PromptStore
	dryRun     bool
	ids        identityMap
}

func newReconciler(categories *store.CategoryStore, prompts *store.PromptStore, dryRun bool) *reconciler {
	return &reconciler{
		categories: categories,
		prompts:    prompts,
		dryRun:     dryRun,
		ids:        identityMap{},
	}
}

// shouldApply is the newer-wins comparison governing update vs skip.
// The incoming record is applied when either side carries no timestamp,
// or when the incoming one is strictly newer. On a tie the store wins.
func shouldApply(incoming *time.Time, stored time.Time) bool {
	if incoming == nil || stored.IsZero() {
		return true
	}
	return incoming.After(stored)
}

// reconcileCategories processes category records in input order,
// populating the identity map as it goes. Must run before any prompt is
// reconciled. Returns an error only on store failure; per-record
// validation problems are collected into rep.
func (r *reconciler) reconcileCategories(records []CategoryRecord, rep *SectionReport) error {
	for _, rec := range records {
		if rec.Name == "" {
			rep.Errors = append(rep.Errors, "invalid category: missing name")
			rep.Skipped++
			continue
		}

		existing, err := r.findCategory(rec)
		if err != nil {
			return err
		}

		if existing != nil {
			if shouldApply(rec.UpdatedAt, existing.UpdatedAt) {
				if !r.dryRun {
					// Absent fields stay nil and leave the stored value
					// alone; an explicit zero is applied like any other.
					upd := store.CategoryUpdate{
						Name:  &rec.Name,
						Icon:  rec.Icon,
						Color: rec.Color,
					}
					if _, err := r.categories.Update(existing.ID, upd); err != nil {
						return fmt.Errorf("update category %q: %w", rec.Name, err)
					}
				}
				rep.Updated++
			} else {
				rep.Skipped++
			}
			// The mapping is recorded regardless of outcome so that
			// prompts can still reference a skipped category.
			r.ids.register(rec.ID, rec.Name, existing.ID)
			continue
		}

		var resolved uuid.UUID
		if r.dryRun {
			resolved = uuid.New()
		} else {
			cat := models.Category{Name: rec.Name}
			if rec.Icon != nil {
				cat.Icon = *rec.Icon
			}
			if rec.Color != nil {
				cat.Color = *rec.Color
			}
			created, err := r.categories.Create(&cat)
			if err != nil {
				return fmt.Errorf("create category %q: %w", rec.Name, err)
			}
			resolved = created.ID
		}
		r.ids.register(rec.ID, rec.Name, resolved)
		rep.New++
	}
	return nil
}

// findCategory resolves an incoming record against the store, by
// external id when it is a known UUID, falling back to exact name match.
func (r *reconciler) findCategory(rec CategoryRecord) (*models.Category, error) {
	if rec.ID != "" {
		if id, err := uuid.Parse(rec.ID); err == nil {
			c, err := r.categories.FindByID(id)
			if err != nil {
				return nil, fmt.Errorf("resolve category %q: %w", rec.Name, err)
			}
			if c != nil {
				return c, nil
			}
		}
	}
	c, err := r.categories.FindByName(rec.Name)
	if err != nil {
		return nil, fmt.Errorf("resolve category %q: %w", rec.Name, err)
	}
	return c, nil
}

// reconcilePrompts processes prompt records in input order. Prompts are
// matched by incoming id only; titles are not assumed unique. Category
// references go through the identity map first, so a prompt can point at
// a category imported in the same dataset.
func (r *reconciler) reconcilePrompts(records []PromptRecord, rep *SectionReport) error {
	for _, rec := range records {
		if rec.Title == "" || rec.Body == "" {
			rep.Errors = append(rep.Errors, "invalid prompt: missing title or body")
			rep.Skipped++
			continue
		}

		categoryID, err := r.translateCategory(rec.CategoryID)
		if err != nil {
			rep.Errors = append(rep.Errors, fmt.Sprintf("prompt %q: %v", rec.Title, err))
			rep.Skipped++
			continue
		}

		var existing *models.Prompt
		if rec.ID != "" {
			if id, perr := uuid.Parse(rec.ID); perr == nil {
				existing, err = r.prompts.FindByID(id)
				if err != nil {
					return fmt.Errorf("resolve prompt %q: %w", rec.Title, err)
				}
			}
		}

		if existing != nil {
			if shouldApply(rec.UpdatedAt, existing.UpdatedAt) {
				if !r.dryRun {
					tags := rec.Tags
					if tags == nil {
						tags = []string{}
					}
					upd := store.PromptUpdate{
						Title:   &rec.Title,
						Body:    &rec.Body,
						Tags:    tags,
						SetTags: true,
					}
					// Only an explicit category reference moves the
					// prompt; a record without one keeps the stored link.
					if rec.CategoryID != "" {
						upd.CategoryID = categoryID
						upd.SetCategory = true
					}
					if rec.Language != "" {
						upd.Language = &rec.Language
					}
					if _, err := r.prompts.Update(existing.ID, upd, nil); err != nil {
						return fmt.Errorf("update prompt %q: %w", rec.Title, err)
					}
				}
				rep.Updated++
			} else {
				rep.Skipped++
			}
			continue
		}

		if !r.dryRun {
			_, err := r.prompts.Create(&models.Prompt{
				Title:      rec.Title,
				Body:       rec.Body,
				CategoryID: categoryID,
				Language:   rec.Language,
				Tags:       rec.Tags,
			})
			if err != nil {
				return fmt.Errorf("create prompt %q: %w", rec.Title, err)
			}
		}
		rep.New++
	}
	return nil
}

// translateCategory maps a prompt's raw category reference to a store
// id. References to categories in this dataset resolve through the
// identity map; a UUID not covered by the map passes through unchanged
// so prompts can reference pre-existing categories. Anything else cannot
// name a category and is a per-record validation error.
func (r *reconciler) translateCategory(ref string) (*uuid.UUID, error) {
	if ref == "" {
		return nil, nil
	}
	if resolved, ok := r.ids.resolve(ref); ok {
		return &resolved, nil
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("unknown category reference %q", ref)
	}
	return &id, nil
}
