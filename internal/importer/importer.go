// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package importer implements the import/export synchronization engine:
// reconciling an externally supplied dataset of categories and prompts
// against the store, exporting the store as a portable document, and
// validating a dataset without touching the store.
package importer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"promptbuddy/internal/models"
	"promptbuddy/internal/store"
	"promptbuddy/internal/vars"
)

// Service orchestrates imports and exports. It holds the database handle
// so an import can span one transaction; everything else goes through
// the entity stores.
type Service struct {
	db         *sql.DB
	categories *store.CategoryStore
	prompts    *store.PromptStore
}

// NewService returns an import/export service over the given database.
func NewService(db *sql.DB) *Service {
	return &Service{
		db:         db,
		categories: store.NewCategoryStore(db),
		prompts:    store.NewPromptStore(db),
	}
}

// Import reconciles the dataset against the store: categories first
// (building the identity map), then prompts. A real run spans a single
// transaction, committed only if every store call succeeds; any store
// failure rolls back the whole import. A dry run opens no transaction
// and writes nothing but reports the same counts a real run would.
// Per-record validation failures land in the report and never abort
// sibling records.
func (s *Service) Import(ctx context.Context, ds Dataset, dryRun bool) (*Report, error) {
	report := newReport()

	categories := s.categories
	prompts := s.prompts

	var tx *sql.Tx
	if !dryRun {
		var err error
		tx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin import tx: %w", err)
		}
		defer tx.Rollback()
		categories = categories.WithTx(tx)
		prompts = prompts.WithTx(tx)
	}

	rec := newReconciler(categories, prompts, dryRun)

	if err := rec.reconcileCategories(ds.Categories, &report.Categories); err != nil {
		return nil, err
	}
	if err := rec.reconcilePrompts(ds.Prompts, &report.Prompts); err != nil {
		return nil, err
	}

	if !dryRun {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit import tx: %w", err)
		}
	}

	slog.Info("import finished",
		"dryRun", dryRun,
		"categoriesNew", report.Categories.New,
		"categoriesUpdated", report.Categories.Updated,
		"categoriesSkipped", report.Categories.Skipped,
		"promptsNew", report.Prompts.New,
		"promptsUpdated", report.Prompts.Updated,
		"promptsSkipped", report.Prompts.Skipped,
		"errors", len(report.Categories.Errors)+len(report.Prompts.Errors),
	)
	return report, nil
}

// ExportOptions selects what an export contains. The zero value exports
// nothing; use DefaultExportOptions for a full export.
type ExportOptions struct {
	IncludeCategories bool
	IncludePrompts    bool
	CategoryID        *uuid.UUID
}

// DefaultExportOptions exports everything.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{IncludeCategories: true, IncludePrompts: true}
}

// Export flattens the store into a versioned portable document. It is
// read-only and runs outside any transaction; concurrent writes may land
// between the category and prompt queries.
func (s *Service) Export(opts ExportOptions) (*ExportDocument, error) {
	doc := &ExportDocument{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		Categories: []ExportCategory{},
		Prompts:    []ExportPrompt{},
	}

	if opts.IncludeCategories {
		cats, err := s.categories.ListAll()
		if err != nil {
			return nil, err
		}
		for _, c := range cats {
			doc.Categories = append(doc.Categories, exportCategory(c))
		}
	}

	if opts.IncludePrompts {
		items, err := s.prompts.ListAll(opts.CategoryID)
		if err != nil {
			return nil, err
		}
		for _, p := range items {
			doc.Prompts = append(doc.Prompts, exportPrompt(p))
		}
	}

	return doc, nil
}

func exportCategory(c models.Category) ExportCategory {
	return ExportCategory{
		ID:         c.ID,
		Name:       c.Name,
		Icon:       c.Icon,
		Color:      c.Color,
		OrderIndex: c.OrderIndex,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func exportPrompt(p models.Prompt) ExportPrompt {
	return ExportPrompt{
		ID:         p.ID,
		Title:      p.Title,
		Body:       p.Body,
		CategoryID: p.CategoryID,
		Language:   p.Language,
		Tags:       p.Tags,
		Variables:  p.Variables,
		UsageCount: p.UsageCount,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// Field length ceilings checked by Validate, matching what the entity
// endpoints enforce.
const (
	maxCategoryNameLen = 255
	maxPromptTitleLen  = 500
)

// Validate checks a dataset's structural constraints without touching
// the store, and summarizes what an import would bring in (including the
// total placeholder count across all prompt bodies).
func Validate(ds Dataset) *ValidationResult {
	v := &ValidationResult{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}

	v.Summary.Categories = len(ds.Categories)
	for i, cat := range ds.Categories {
		if cat.Name == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("category %d: missing name", i+1))
			v.Valid = false
		}
		if len(cat.Name) > maxCategoryNameLen {
			v.Errors = append(v.Errors, fmt.Sprintf("category %d: name too long (max %d characters)", i+1, maxCategoryNameLen))
			v.Valid = false
		}
	}

	v.Summary.Prompts = len(ds.Prompts)
	for i, p := range ds.Prompts {
		if p.Title == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("prompt %d: missing title", i+1))
			v.Valid = false
		}
		if len(p.Title) > maxPromptTitleLen {
			v.Errors = append(v.Errors, fmt.Sprintf("prompt %d: title too long (max %d characters)", i+1, maxPromptTitleLen))
			v.Valid = false
		}
		if p.Body == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("prompt %d: missing body", i+1))
			v.Valid = false
		} else {
			v.Summary.Variables += len(vars.Parse(p.Body))
		}
	}

	return v
}
