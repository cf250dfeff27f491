// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"promptbuddy/internal/models"
	"promptbuddy/internal/store"
)

// Categories groups the category endpoints.
type Categories struct {
	store *store.CategoryStore
}

// NewCategories creates the Categories handler group.
func NewCategories(s *store.CategoryStore) *Categories {
	return &Categories{store: s}
}

// List returns one page of categories with prompt counts.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, pagination, err := h.store.List(page, limit)
	if err != nil {
		storeError(w, err, "Failed to fetch categories")
		return
	}
	if items == nil {
		items = []models.Category{}
	}

	respond(w, http.StatusOK, envelope{Success: true, Data: items, Pagination: pagination})
}

// ListWithCounts returns every category with prompt counts, unpaginated.
func (h *Categories) ListWithCounts(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListAll()
	if err != nil {
		storeError(w, err, "Failed to fetch categories")
		return
	}
	if items == nil {
		items = []models.Category{}
	}

	respondData(w, http.StatusOK, items, "")
}

// Get returns a single category by id.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	c, err := h.store.FindByID(id)
	if err != nil {
		storeError(w, err, "Failed to fetch category")
		return
	}
	if c == nil {
		respondError(w, http.StatusNotFound, "Category not found")
		return
	}

	respondData(w, http.StatusOK, c, "")
}

type categoryCreateRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Icon  string `json:"icon" validate:"max=100"`
	Color int64  `json:"color" validate:"min=0"`
}

// Create inserts a new category.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryCreateRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := h.store.Create(&models.Category{
		Name:  req.Name,
		Icon:  req.Icon,
		Color: req.Color,
	})
	if err != nil {
		storeError(w, err, "Failed to create category")
		return
	}

	respondData(w, http.StatusCreated, c, "Category created successfully")
}

type categoryUpdateRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=255"`
	Icon  *string `json:"icon" validate:"omitempty,max=100"`
	Color *int64  `json:"color" validate:"omitempty,min=0"`
}

// Update applies a partial update to a category.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var req categoryUpdateRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == nil && req.Icon == nil && req.Color == nil {
		respondError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	c, err := h.store.Update(id, store.CategoryUpdate{
		Name:  req.Name,
		Icon:  req.Icon,
		Color: req.Color,
	})
	if err != nil {
		storeError(w, err, "Failed to update category")
		return
	}

	respondData(w, http.StatusOK, c, "Category updated successfully")
}

type categoryDeleteRequest struct {
	MoveToCategory *uuid.UUID `json:"moveToCategory"`
}

// Delete removes a category. Dependent prompts move to the category in
// the optional moveToCategory body field, or are detached.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	// The body is optional; an empty or absent one means detach.
	var req categoryDeleteRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.store.Delete(id, req.MoveToCategory); err != nil {
		storeError(w, err, "Failed to delete category")
		return
	}

	respondData(w, http.StatusOK, nil, "Category deleted successfully")
}

type reorderRequest struct {
	CategoryOrders []store.ReorderItem `json:"categoryOrders" validate:"required,min=1"`
}

// Reorder updates display positions for multiple categories at once.
func (h *Categories) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.store.Reorder(req.CategoryOrders); err != nil {
		storeError(w, err, "Failed to reorder categories")
		return
	}

	respondData(w, http.StatusOK, nil, "Categories reordered successfully")
}
