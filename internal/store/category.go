// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"promptbuddy/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db DBTX
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// WithTx returns a CategoryStore bound to the given transaction. All
// methods on the returned store run inside that transaction.
func (s *CategoryStore) WithTx(tx *sql.Tx) *CategoryStore {
	return &CategoryStore{db: tx}
}

const categoryColumns = `id, name, icon, color, order_index, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Icon, &c.Color,
		&c.OrderIndex, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const categoryListQuery = `
	SELECT c.id, c.name, c.icon, c.color, c.order_index,
	       c.created_at, c.updated_at,
	       COUNT(p.id) AS prompt_count
	FROM categories c
	LEFT JOIN prompts p ON p.category_id = c.id
	GROUP BY c.id
	ORDER BY c.order_index ASC, c.name ASC
`

// List returns one page of categories ordered by order_index, with prompt
// counts, plus pagination metadata.
func (s *CategoryStore) List(page, limit int) ([]models.Category, *Pagination, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return nil, nil, fmt.Errorf("count categories: %w", err)
	}

	p := newPagination(page, limit, total)
	offset := (p.Page - 1) * p.Limit

	rows, err := s.db.Query(categoryListQuery+` LIMIT $1 OFFSET $2`, p.Limit, offset)
	if err != nil {
		return nil, nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items, err := collectCategories(rows)
	if err != nil {
		return nil, nil, err
	}
	return items, p, rows.Err()
}

// ListAll returns every category with prompt counts, unpaginated. Used by
// the import reconciler and the exporter, which need the full set.
func (s *CategoryStore) ListAll() ([]models.Category, error) {
	rows, err := s.db.Query(categoryListQuery)
	if err != nil {
		return nil, fmt.Errorf("list all categories: %w", err)
	}
	defer rows.Close()

	items, err := collectCategories(rows)
	if err != nil {
		return nil, err
	}
	return items, rows.Err()
}

// collectCategories scans list rows (with the prompt_count column).
func collectCategories(rows *sql.Rows) ([]models.Category, error) {
	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Name, &c.Icon, &c.Color, &c.OrderIndex,
			&c.CreatedAt, &c.UpdatedAt, &c.PromptCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindByName retrieves a category by exact name match. Returns nil if not
// found. Names are unique by convention only; if duplicates exist the
// first by display order wins.
func (s *CategoryStore) FindByName(name string) (*models.Category, error) {
	row := s.db.QueryRow(`
		SELECT `+categoryColumns+` FROM categories
		WHERE name = $1
		ORDER BY order_index ASC
		LIMIT 1
	`, name)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it. Icon and color fall back
// to the defaults when unset; order_index is assigned after the current
// last category.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	icon := c.Icon
	if icon == "" {
		icon = models.DefaultCategoryIcon
	}
	color := c.Color
	if color == 0 {
		color = models.DefaultCategoryColor
	}

	var orderIndex int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(order_index), -1) + 1 FROM categories`).Scan(&orderIndex)
	if err != nil {
		return nil, fmt.Errorf("next order index: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO categories (name, icon, color, order_index)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		c.Name, icon, color, orderIndex,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// CategoryUpdate is a partial field set for Update. Nil fields are left
// untouched. OrderIndex is deliberately absent — display order changes
// only through Reorder.
type CategoryUpdate struct {
	Name  *string
	Icon  *string
	Color *int64
}

// Update applies the non-nil fields of upd to an existing category and
// returns the updated row. Returns ErrNotFound if no row matched.
func (s *CategoryStore) Update(id uuid.UUID, upd CategoryUpdate) (*models.Category, error) {
	sets := ""
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		if sets != "" {
			sets += ", "
		}
		sets += fmt.Sprintf("%s = $%d", col, len(args))
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Icon != nil {
		add("icon", *upd.Icon)
	}
	if upd.Color != nil {
		add("color", *upd.Color)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	args = append(args, id)
	row := s.db.QueryRow(
		fmt.Sprintf(`UPDATE categories SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s`,
			sets, len(args), categoryColumns),
		args...,
	)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// Delete removes a category. Dependent prompts are reassigned to
// reassignTo when given, otherwise detached (category_id set to NULL).
// Prompts are never deleted with their category. Returns ErrNotFound if
// the category does not exist.
func (s *CategoryStore) Delete(id uuid.UUID, reassignTo *uuid.UUID) error {
	return runInTx(s.db, func(q DBTX) error {
		var err error
		if reassignTo != nil {
			_, err = q.Exec(
				`UPDATE prompts SET category_id = $1, updated_at = NOW() WHERE category_id = $2`,
				*reassignTo, id,
			)
		} else {
			_, err = q.Exec(
				`UPDATE prompts SET category_id = NULL, updated_at = NOW() WHERE category_id = $1`,
				id,
			)
		}
		if err != nil {
			return fmt.Errorf("detach prompts: %w", err)
		}

		res, err := q.Exec(`DELETE FROM categories WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ReorderItem represents a single item in a reorder request.
type ReorderItem struct {
	ID         uuid.UUID `json:"id"`
	OrderIndex int       `json:"orderIndex"`
}

// Reorder updates order_index for multiple categories in one transaction.
func (s *CategoryStore) Reorder(items []ReorderItem) error {
	return runInTx(s.db, func(q DBTX) error {
		now := time.Now()
		for _, item := range items {
			if _, err := q.Exec(
				`UPDATE categories SET order_index = $1, updated_at = $2 WHERE id = $3`,
				item.OrderIndex, now, item.ID,
			); err != nil {
				return fmt.Errorf("reorder category %s: %w", item.ID, err)
			}
		}
		return nil
	})
}
