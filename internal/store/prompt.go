// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"promptbuddy/internal/models"
	"promptbuddy/internal/vars"
)

// PromptStore handles all prompt-related database operations, including
// the tag vocabulary and the derived variable rows.
type PromptStore struct {
	db DBTX
}

// NewPromptStore creates a new PromptStore with the given database connection.
func NewPromptStore(db *sql.DB) *PromptStore {
	return &PromptStore{db: db}
}

// WithTx returns a PromptStore bound to the given transaction.
func (s *PromptStore) WithTx(tx *sql.Tx) *PromptStore {
	return &PromptStore{db: tx}
}

// promptSelectHead joins category info, tags, and variables onto each
// prompt row. Aggregates are comma-joined, mirroring how the clients
// consume them as flat lists.
const promptSelectHead = `
	SELECT p.id, p.title, p.body, p.category_id, p.language, p.usage_count,
	       p.created_at, p.updated_at,
	       c.name AS category_name, c.color AS category_color, c.icon AS category_icon,
	       COALESCE(string_agg(DISTINCT t.name, ','), '') AS tags,
	       COALESCE(string_agg(DISTINCT pv.variable_name, ','), '') AS variables
	FROM prompts p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN prompt_tags pt ON pt.prompt_id = p.id
	LEFT JOIN tags t ON t.id = pt.tag_id
	LEFT JOIN prompt_variables pv ON pv.prompt_id = p.id
`

const promptSelectGroup = ` GROUP BY p.id, c.id`

// scanJoinedPrompt scans one row produced by promptSelectHead.
func scanJoinedPrompt(scanner interface{ Scan(...any) error }) (*models.Prompt, error) {
	var (
		p        models.Prompt
		catID    uuid.NullUUID
		catName  sql.NullString
		catColor sql.NullInt64
		catIcon  sql.NullString
		tags     string
		varNames string
	)
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Body, &catID, &p.Language, &p.UsageCount,
		&p.CreatedAt, &p.UpdatedAt,
		&catName, &catColor, &catIcon, &tags, &varNames,
	)
	if err != nil {
		return nil, err
	}

	if catID.Valid {
		id := catID.UUID
		p.CategoryID = &id
	}
	if catName.Valid {
		p.CategoryName = &catName.String
	}
	if catColor.Valid {
		p.CategoryColor = &catColor.Int64
	}
	if catIcon.Valid {
		p.CategoryIcon = &catIcon.String
	}
	p.Tags = splitList(tags)
	p.Variables = splitList(varNames)
	return &p, nil
}

// splitList converts a comma-joined aggregate into a slice. Empty input
// yields an empty (not nil) slice so JSON renders [].
func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// ListOptions filters and orders a prompt listing.
type ListOptions struct {
	Page         int
	Limit        int
	CategoryID   *uuid.UUID
	Search       string // full-text over title + body
	Tags         []string
	ExcludeTags  []string
	UpdatedAfter *time.Time // incremental-sync filter
	SortBy       string     // updated_at (default), created_at, title, usage_count
	SortOrder    string     // ASC or DESC (default)
}

// sortColumns whitelists ORDER BY targets; anything else falls back to
// updated_at.
var sortColumns = map[string]string{
	"updated_at":  "p.updated_at",
	"created_at":  "p.created_at",
	"title":       "p.title",
	"usage_count": "p.usage_count",
}

// buildPromptWhere translates ListOptions into a WHERE clause and args.
func buildPromptWhere(opts ListOptions) (string, []any) {
	var conds []string
	var args []any

	if opts.CategoryID != nil {
		args = append(args, *opts.CategoryID)
		conds = append(conds, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if opts.Search != "" {
		args = append(args, opts.Search)
		conds = append(conds, fmt.Sprintf(
			"to_tsvector('simple', p.title || ' ' || p.body) @@ websearch_to_tsquery('simple', $%d)",
			len(args)))
	}
	if opts.UpdatedAfter != nil {
		args = append(args, *opts.UpdatedAfter)
		conds = append(conds, fmt.Sprintf("p.updated_at > $%d", len(args)))
	}
	if len(opts.Tags) > 0 {
		ph := placeholders(len(args)+1, len(opts.Tags))
		for _, tag := range opts.Tags {
			args = append(args, tag)
		}
		conds = append(conds, fmt.Sprintf(`p.id IN (
			SELECT pt.prompt_id FROM prompt_tags pt
			JOIN tags t ON pt.tag_id = t.id
			WHERE t.name IN (%s))`, ph))
	}
	if len(opts.ExcludeTags) > 0 {
		ph := placeholders(len(args)+1, len(opts.ExcludeTags))
		for _, tag := range opts.ExcludeTags {
			args = append(args, tag)
		}
		conds = append(conds, fmt.Sprintf(`p.id NOT IN (
			SELECT pt.prompt_id FROM prompt_tags pt
			JOIN tags t ON pt.tag_id = t.id
			WHERE t.name IN (%s))`, ph))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page of prompts matching opts, with pagination metadata.
func (s *PromptStore) List(opts ListOptions) ([]models.Prompt, *Pagination, error) {
	where, args := buildPromptWhere(opts)

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM prompts p`+where, args...).Scan(&total); err != nil {
		return nil, nil, fmt.Errorf("count prompts: %w", err)
	}

	p := newPagination(opts.Page, opts.Limit, total)

	sortCol, ok := sortColumns[opts.SortBy]
	if !ok {
		sortCol = "p.updated_at"
	}
	dir := "DESC"
	if strings.EqualFold(opts.SortOrder, "ASC") {
		dir = "ASC"
	}

	args = append(args, p.Limit, (p.Page-1)*p.Limit)
	query := promptSelectHead + where + promptSelectGroup +
		fmt.Sprintf(" ORDER BY %s %s LIMIT $%d OFFSET $%d", sortCol, dir, len(args)-1, len(args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	items, err := collectPrompts(rows)
	if err != nil {
		return nil, nil, err
	}
	return items, p, rows.Err()
}

// ListAll returns every prompt, optionally filtered by category,
// unpaginated and ordered by recency. Used by the exporter.
func (s *PromptStore) ListAll(categoryID *uuid.UUID) ([]models.Prompt, error) {
	where, args := buildPromptWhere(ListOptions{CategoryID: categoryID})

	rows, err := s.db.Query(
		promptSelectHead+where+promptSelectGroup+` ORDER BY p.updated_at DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list all prompts: %w", err)
	}
	defer rows.Close()

	items, err := collectPrompts(rows)
	if err != nil {
		return nil, err
	}
	return items, rows.Err()
}

func collectPrompts(rows *sql.Rows) ([]models.Prompt, error) {
	var items []models.Prompt
	for rows.Next() {
		p, err := scanJoinedPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		items = append(items, *p)
	}
	return items, nil
}

// FindByID retrieves a prompt by ID with its tags and variables.
// Returns nil if not found.
func (s *PromptStore) FindByID(id uuid.UUID) (*models.Prompt, error) {
	row := s.db.QueryRow(promptSelectHead+` WHERE p.id = $1`+promptSelectGroup, id)
	p, err := scanJoinedPrompt(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find prompt by id: %w", err)
	}
	return p, nil
}

// Create inserts a new prompt. Variables are derived from the body and
// tags go through the shared vocabulary; everything happens in one unit.
func (s *PromptStore) Create(p *models.Prompt) (*models.Prompt, error) {
	language := p.Language
	if language == "" {
		language = models.DefaultLanguage
	}

	var id uuid.UUID
	err := runInTx(s.db, func(q DBTX) error {
		err := q.QueryRow(`
			INSERT INTO prompts (title, body, category_id, language)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, p.Title, p.Body, p.CategoryID, language).Scan(&id)
		if err != nil {
			return fmt.Errorf("create prompt: %w", err)
		}

		if err := saveVariables(q, id, vars.Parse(p.Body)); err != nil {
			return err
		}
		return saveTags(q, id, p.Tags)
	})
	if err != nil {
		return nil, err
	}

	return s.FindByID(id)
}

// PromptUpdate is a partial field set for Update. Nil fields are left
// untouched. SetCategory allows clearing the category (CategoryID nil);
// SetTags replaces the whole tag set with Tags.
type PromptUpdate struct {
	Title       *string
	Body        *string
	Language    *string
	CategoryID  *uuid.UUID
	SetCategory bool
	Tags        []string
	SetTags     bool
}

// Update applies upd to an existing prompt. When clientUpdatedAt is
// non-nil it is an optimistic-concurrency guard: if the stored row is
// strictly newer the update is rejected with ErrConflict. A body change
// re-derives variables, and SetTags replaces the tag set, all inside the
// same unit as the field update. Returns ErrNotFound if no row matched.
func (s *PromptStore) Update(id uuid.UUID, upd PromptUpdate, clientUpdatedAt *time.Time) (*models.Prompt, error) {
	err := runInTx(s.db, func(q DBTX) error {
		if clientUpdatedAt != nil {
			var stored time.Time
			err := q.QueryRow(`SELECT updated_at FROM prompts WHERE id = $1`, id).Scan(&stored)
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("conflict check: %w", err)
			}
			if stored.After(*clientUpdatedAt) {
				return ErrConflict
			}
		}

		sets := ""
		args := []any{}
		add := func(col string, v any) {
			args = append(args, v)
			if sets != "" {
				sets += ", "
			}
			sets += fmt.Sprintf("%s = $%d", col, len(args))
		}

		if upd.Title != nil {
			add("title", *upd.Title)
		}
		if upd.Body != nil {
			add("body", *upd.Body)
		}
		if upd.Language != nil {
			add("language", *upd.Language)
		}
		if upd.SetCategory {
			add("category_id", upd.CategoryID)
		}

		if len(args) == 0 && !upd.SetTags {
			return fmt.Errorf("no fields to update")
		}

		if len(args) > 0 {
			args = append(args, id)
			res, err := q.Exec(
				fmt.Sprintf(`UPDATE prompts SET %s, updated_at = NOW() WHERE id = $%d`, sets, len(args)),
				args...,
			)
			if err != nil {
				return fmt.Errorf("update prompt: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return ErrNotFound
			}
		}

		if upd.Body != nil {
			if _, err := q.Exec(`DELETE FROM prompt_variables WHERE prompt_id = $1`, id); err != nil {
				return fmt.Errorf("clear variables: %w", err)
			}
			if err := saveVariables(q, id, vars.Parse(*upd.Body)); err != nil {
				return err
			}
		}

		if upd.SetTags {
			if _, err := q.Exec(`DELETE FROM prompt_tags WHERE prompt_id = $1`, id); err != nil {
				return fmt.Errorf("clear tags: %w", err)
			}
			if err := saveTags(q, id, upd.Tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.FindByID(id)
}

// Delete removes a prompt. Its tag associations and variable rows go with
// it (ON DELETE CASCADE). Returns ErrNotFound if no row matched.
func (s *PromptStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM prompts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkDelete removes all prompts in ids and returns the affected count.
func (s *PromptStore) BulkDelete(ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := s.db.Exec(
		fmt.Sprintf(`DELETE FROM prompts WHERE id IN (%s)`, placeholders(1, len(ids))),
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("bulk delete prompts: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// BulkMoveCategory reassigns all prompts in ids to the given category and
// returns the affected count.
func (s *PromptStore) BulkMoveCategory(ids []uuid.UUID, categoryID uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := []any{categoryID}
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := s.db.Exec(
		fmt.Sprintf(`UPDATE prompts SET category_id = $1, updated_at = NOW() WHERE id IN (%s)`,
			placeholders(2, len(ids))),
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("bulk move prompts: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// IncrementUsage bumps a prompt's usage counter.
func (s *PromptStore) IncrementUsage(id uuid.UUID) error {
	_, err := s.db.Exec(
		`UPDATE prompts SET usage_count = usage_count + 1, updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	return nil
}

// RecentlyUsed returns the most recently touched prompts that have been
// used at least once.
func (s *PromptStore) RecentlyUsed(limit int) ([]models.Prompt, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := s.db.Query(
		promptSelectHead+` WHERE p.usage_count > 0`+promptSelectGroup+
			` ORDER BY p.updated_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recently used prompts: %w", err)
	}
	defer rows.Close()

	items, err := collectPrompts(rows)
	if err != nil {
		return nil, err
	}
	return items, rows.Err()
}

// saveVariables inserts derived variable rows for a prompt.
func saveVariables(q DBTX, promptID uuid.UUID, names []string) error {
	for _, name := range names {
		if _, err := q.Exec(`
			INSERT INTO prompt_variables (prompt_id, variable_name)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, promptID, name); err != nil {
			return fmt.Errorf("save variable %q: %w", name, err)
		}
	}
	return nil
}

// saveTags links a prompt to the given tag names, creating vocabulary
// entries as needed. The create-if-absent insert is an idempotent upsert,
// so concurrent imports naming the same new tag cannot fail on uniqueness.
func saveTags(q DBTX, promptID uuid.UUID, tags []string) error {
	for _, tag := range tags {
		name := strings.TrimSpace(tag)
		if name == "" {
			continue
		}

		if _, err := q.Exec(`
			INSERT INTO tags (name) VALUES ($1)
			ON CONFLICT (name) DO NOTHING
		`, name); err != nil {
			return fmt.Errorf("upsert tag %q: %w", name, err)
		}

		var tagID int
		if err := q.QueryRow(`SELECT id FROM tags WHERE name = $1`, name).Scan(&tagID); err != nil {
			return fmt.Errorf("lookup tag %q: %w", name, err)
		}

		if _, err := q.Exec(`
			INSERT INTO prompt_tags (prompt_id, tag_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, promptID, tagID); err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}
	return nil
}
