// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"promptbuddy/internal/importer"
)

// ImportExport groups the synchronization endpoints around the
// import/export engine.
type ImportExport struct {
	svc *importer.Service
}

// NewImportExport creates the ImportExport handler group.
func NewImportExport(svc *importer.Service) *ImportExport {
	return &ImportExport{svc: svc}
}

type importRequest struct {
	Data   *importer.Dataset `json:"data" validate:"required"`
	DryRun bool              `json:"dryRun"`
}

// Import reconciles an uploaded dataset against the store. With dryRun
// the full decision logic runs and the report is returned, but nothing
// is written.
func (h *ImportExport) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !decode(w, r, &req) {
		return
	}

	report, err := h.svc.Import(r.Context(), *req.Data, req.DryRun)
	if err != nil {
		slog.Error("import failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Import failed")
		return
	}

	message := "Import completed successfully"
	if req.DryRun {
		message = "Import preview completed"
	}
	respondData(w, http.StatusOK, report, message)
}

// exportOptions reads the shared include/filter parameters. Both
// sections default to included.
func exportOptions(includeCategories, includePrompts *bool, categoryID string) (importer.ExportOptions, error) {
	opts := importer.DefaultExportOptions()
	if includeCategories != nil {
		opts.IncludeCategories = *includeCategories
	}
	if includePrompts != nil {
		opts.IncludePrompts = *includePrompts
	}
	if categoryID != "" {
		id, err := uuid.Parse(categoryID)
		if err != nil {
			return opts, err
		}
		opts.CategoryID = &id
	}
	return opts, nil
}

// Export returns the store as a portable document.
func (h *ImportExport) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var includeCategories, includePrompts *bool
	if v := q.Get("categories"); v != "" {
		b := v == "true"
		includeCategories = &b
	}
	if v := q.Get("prompts"); v != "" {
		b := v == "true"
		includePrompts = &b
	}

	opts, err := exportOptions(includeCategories, includePrompts, q.Get("categoryId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid categoryId")
		return
	}

	doc, err := h.svc.Export(opts)
	if err != nil {
		slog.Error("export failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Export failed")
		return
	}

	respondData(w, http.StatusOK, doc, "Export completed successfully")
}

type downloadRequest struct {
	Categories *bool      `json:"categories"`
	Prompts    *bool      `json:"prompts"`
	CategoryID *uuid.UUID `json:"categoryId"`
	Filename   string     `json:"filename" validate:"omitempty,max=255"`
}

// Download streams the export document as a JSON attachment with a
// date-stamped default filename.
func (h *ImportExport) Download(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if err := validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	opts := importer.DefaultExportOptions()
	if req.Categories != nil {
		opts.IncludeCategories = *req.Categories
	}
	if req.Prompts != nil {
		opts.IncludePrompts = *req.Prompts
	}
	opts.CategoryID = req.CategoryID

	doc, err := h.svc.Export(opts)
	if err != nil {
		slog.Error("export download failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Download failed")
		return
	}

	filename := req.Filename
	if filename == "" {
		filename = "promptbuddy-export-" + time.Now().Format("2006-01-02") + ".json"
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	// The download carries the bare document, not the API envelope.
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		slog.Error("export download encode failed", "error", err)
	}
}

type validateRequest struct {
	Data *importer.Dataset `json:"data" validate:"required"`
}

// Validate checks a dataset for import without performing one.
func (h *ImportExport) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !decode(w, r, &req) {
		return
	}

	result := importer.Validate(*req.Data)

	message := "Data is valid for import"
	if !result.Valid {
		message = "Data has validation errors"
	}
	respondData(w, http.StatusOK, result, message)
}
