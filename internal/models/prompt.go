// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultLanguage is assigned to prompts created without a language code.
const DefaultLanguage = "en"

// Prompt is a reusable text template. Variables are derived from the body
// ({{name}} placeholders) and never supplied directly; tags go through a
// globally deduplicated vocabulary.
type Prompt struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	CategoryID *uuid.UUID `json:"categoryId"`
	Language   string     `json:"language"`
	UsageCount int        `json:"usageCount"`
	Tags       []string   `json:"tags"`
	Variables  []string   `json:"variables"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	// Virtual fields populated by joined queries.
	CategoryName  *string `json:"categoryName,omitempty"`
	CategoryColor *int64  `json:"categoryColor,omitempty"`
	CategoryIcon  *string `json:"categoryIcon,omitempty"`
}
