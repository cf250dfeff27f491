// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"promptbuddy/internal/models"
	"promptbuddy/internal/store"
	"promptbuddy/internal/vars"
)

// Prompts groups the prompt endpoints.
type Prompts struct {
	store *store.PromptStore
}

// NewPrompts creates the Prompts handler group.
func NewPrompts(s *store.PromptStore) *Prompts {
	return &Prompts{store: s}
}

// List returns one page of prompts. Filters: categoryId, search (full
// text over title and body), tags / excludeTags (comma separated),
// updatedAfter (RFC 3339, for incremental sync), sortBy, sortOrder.
func (h *Prompts) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := store.ListOptions{
		Search:      q.Get("search"),
		Tags:        splitParam(q.Get("tags")),
		ExcludeTags: splitParam(q.Get("excludeTags")),
		SortBy:      q.Get("sortBy"),
		SortOrder:   q.Get("sortOrder"),
	}
	opts.Page, _ = strconv.Atoi(q.Get("page"))
	opts.Limit, _ = strconv.Atoi(q.Get("limit"))

	if v := q.Get("categoryId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid categoryId")
			return
		}
		opts.CategoryID = &id
	}
	if v := q.Get("updatedAfter"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid updatedAfter timestamp")
			return
		}
		opts.UpdatedAfter = &ts
	}

	items, pagination, err := h.store.List(opts)
	if err != nil {
		storeError(w, err, "Failed to fetch prompts")
		return
	}
	if items == nil {
		items = []models.Prompt{}
	}

	respond(w, http.StatusOK, envelope{Success: true, Data: items, Pagination: pagination})
}

// splitParam turns a comma-separated query value into trimmed non-empty parts.
func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Recent returns the most recently used prompts.
func (h *Prompts) Recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := h.store.RecentlyUsed(limit)
	if err != nil {
		storeError(w, err, "Failed to fetch recently used prompts")
		return
	}
	if items == nil {
		items = []models.Prompt{}
	}

	respondData(w, http.StatusOK, items, "")
}

// Get returns a single prompt with its tags and variables.
func (h *Prompts) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	p, err := h.store.FindByID(id)
	if err != nil {
		storeError(w, err, "Failed to fetch prompt")
		return
	}
	if p == nil {
		respondError(w, http.StatusNotFound, "Prompt not found")
		return
	}

	respondData(w, http.StatusOK, p, "")
}

type promptCreateRequest struct {
	Title      string     `json:"title" validate:"required,max=500"`
	Body       string     `json:"body" validate:"required"`
	CategoryID *uuid.UUID `json:"categoryId"`
	Language   string     `json:"language" validate:"max=10"`
	Tags       []string   `json:"tags" validate:"dive,max=100"`
}

// Create inserts a new prompt; variables are derived from the body.
func (h *Prompts) Create(w http.ResponseWriter, r *http.Request) {
	var req promptCreateRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.store.Create(&models.Prompt{
		Title:      req.Title,
		Body:       req.Body,
		CategoryID: req.CategoryID,
		Language:   req.Language,
		Tags:       req.Tags,
	})
	if err != nil {
		storeError(w, err, "Failed to create prompt")
		return
	}

	respondData(w, http.StatusCreated, p, "Prompt created successfully")
}

type promptUpdateRequest struct {
	Title      *string    `json:"title" validate:"omitempty,max=500"`
	Body       *string    `json:"body"`
	CategoryID *uuid.UUID `json:"categoryId"`
	Language   *string    `json:"language" validate:"omitempty,max=10"`
	Tags       []string   `json:"tags" validate:"dive,max=100"`
	UpdatedAt  *time.Time `json:"updatedAt"`
}

// Update applies a partial update. The optional updatedAt field is an
// optimistic-concurrency guard: a 409 with type "conflict" is returned
// when the stored version is newer than the one the client last saw.
// A categoryId or tags key present in the body (even null) replaces the
// stored value; an absent key leaves it untouched.
func (h *Prompts) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	// Decode twice: into the DTO for values, and into a raw map to tell
	// an absent categoryId/tags apart from an explicit null.
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var req promptUpdateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	_, setCategory := keys["categoryId"]
	_, setTags := keys["tags"]

	upd := store.PromptUpdate{
		Title:       req.Title,
		Body:        req.Body,
		Language:    req.Language,
		CategoryID:  req.CategoryID,
		SetCategory: setCategory,
		Tags:        req.Tags,
		SetTags:     setTags,
	}
	if req.Title == nil && req.Body == nil && req.Language == nil && !setCategory && !setTags {
		respondError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	p, err := h.store.Update(id, upd, req.UpdatedAt)
	if err != nil {
		storeError(w, err, "Failed to update prompt")
		return
	}

	respondData(w, http.StatusOK, p, "Prompt updated successfully")
}

// Delete removes a prompt and its tag and variable rows.
func (h *Prompts) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(id); err != nil {
		storeError(w, err, "Failed to delete prompt")
		return
	}

	respondData(w, http.StatusOK, nil, "Prompt deleted successfully")
}

type duplicateRequest struct {
	Title string `json:"title" validate:"omitempty,max=500"`
}

// Duplicate copies an existing prompt, optionally under a new title.
func (h *Prompts) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var req duplicateRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	original, err := h.store.FindByID(id)
	if err != nil {
		storeError(w, err, "Failed to duplicate prompt")
		return
	}
	if original == nil {
		respondError(w, http.StatusNotFound, "Original prompt not found")
		return
	}

	title := req.Title
	if title == "" {
		title = original.Title + " (Copy)"
	}

	dup, err := h.store.Create(&models.Prompt{
		Title:      title,
		Body:       original.Body,
		CategoryID: original.CategoryID,
		Language:   original.Language,
		Tags:       original.Tags,
	})
	if err != nil {
		storeError(w, err, "Failed to duplicate prompt")
		return
	}

	respondData(w, http.StatusCreated, dup, "Prompt duplicated successfully")
}

// Usage bumps a prompt's usage counter.
func (h *Prompts) Usage(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	if err := h.store.IncrementUsage(id); err != nil {
		storeError(w, err, "Failed to increment usage")
		return
	}

	respondData(w, http.StatusOK, nil, "Usage count incremented")
}

type bulkRequest struct {
	Operation string      `json:"operation" validate:"required"`
	PromptIDs []uuid.UUID `json:"promptIds" validate:"required,min=1"`
	Data      struct {
		CategoryID *uuid.UUID `json:"categoryId"`
	} `json:"data"`
}

// Bulk applies one operation to many prompts: "delete" or
// "move_category". Unknown operations are rejected before any row is
// touched.
func (h *Prompts) Bulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !decode(w, r, &req) {
		return
	}

	var affected int64
	var err error

	switch req.Operation {
	case "delete":
		affected, err = h.store.BulkDelete(req.PromptIDs)
	case "move_category":
		if req.Data.CategoryID == nil {
			respondError(w, http.StatusBadRequest, "move_category requires data.categoryId")
			return
		}
		affected, err = h.store.BulkMoveCategory(req.PromptIDs, *req.Data.CategoryID)
	default:
		respondError(w, http.StatusBadRequest, "Unknown operation: "+req.Operation)
		return
	}
	if err != nil {
		storeError(w, err, "Failed to perform bulk operation")
		return
	}

	respond(w, http.StatusOK, envelope{
		Success:  true,
		Message:  "Bulk " + req.Operation + " completed",
		Affected: &affected,
	})
}

type parseVariablesRequest struct {
	Body string `json:"body" validate:"required"`
}

// ParseVariables extracts placeholder names from a template body without
// saving anything.
func (h *Prompts) ParseVariables(w http.ResponseWriter, r *http.Request) {
	var req parseVariablesRequest
	if !decode(w, r, &req) {
		return
	}

	variables := vars.Parse(req.Body)

	respondData(w, http.StatusOK, map[string]any{
		"variables": variables,
		"count":     len(variables),
	}, "")
}
