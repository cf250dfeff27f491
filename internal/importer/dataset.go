package importer

import (
	"time"

	"github.com/google/uuid"
)

// Dataset is the externally supplied payload of an import: ordered
// category and prompt records, either of which may be empty.
type Dataset struct {
	Categories []CategoryRecord `json:"categories"`
	Prompts    []PromptRecord   `json:"prompts"`
}

// CategoryRecord is one incoming category, not yet resolved against the
// store. ID is an opaque external identifier; it need not be a UUID and
// need not exist in the store. Icon and Color are pointers so a field
// absent from the payload (nil) is distinguishable from an explicit
// zero value. UpdatedAt comes from the exporting client's clock and is
// used only for conflict resolution.
type CategoryRecord struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Icon      *string    `json:"icon"`
	Color     *int64     `json:"color"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// PromptRecord is one incoming prompt. CategoryID may reference either a
// category record in the same dataset (by its external id or name) or a
// pre-existing store category by UUID.
type PromptRecord struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	CategoryID string     `json:"categoryId"`
	Language   string     `json:"language"`
	Tags       []string   `json:"tags"`
	UpdatedAt  *time.Time `json:"updatedAt"`
}

// SectionReport counts reconciliation outcomes for one record kind.
// Per-record validation failures land in Errors and count as skipped;
// they never abort sibling records.
type SectionReport struct {
	New     int      `json:"new"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// Report is the outcome of one import run.
type Report struct {
	Categories SectionReport `json:"categories"`
	Prompts    SectionReport `json:"prompts"`
}

func newReport() *Report {
	return &Report{
		Categories: SectionReport{Errors: []string{}},
		Prompts:    SectionReport{Errors: []string{}},
	}
}

// ExportDocument is the portable, versioned export format. Categories
// keep the order_index field name for compatibility with existing client
// export files.
type ExportDocument struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exportedAt"`
	Categories []ExportCategory `json:"categories"`
	Prompts    []ExportPrompt   `json:"prompts"`
}

// ExportVersion is the document format version written by Export.
const ExportVersion = "1.0"

type ExportCategory struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Icon       string    `json:"icon"`
	Color      int64     `json:"color"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type ExportPrompt struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	CategoryID *uuid.UUID `json:"categoryId"`
	Language   string     `json:"language"`
	Tags       []string   `json:"tags"`
	Variables  []string   `json:"variables"`
	UsageCount int        `json:"usageCount"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// ValidationResult is the outcome of a side-effect-free dataset check,
// used by clients to preview an import without performing one.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []string          `json:"errors"`
	Warnings []string          `json:"warnings"`
	Summary  ValidationSummary `json:"summary"`
}

// ValidationSummary counts what the dataset would bring in. Variables is
// the total placeholder count across all prompt bodies.
type ValidationSummary struct {
	Categories int `json:"categories"`
	Prompts    int `json:"prompts"`
	Variables  int `json:"variables"`
}
