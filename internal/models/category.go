// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Default appearance for categories created without explicit styling,
// e.g. during an import.
const (
	DefaultCategoryIcon  = "folder"
	DefaultCategoryColor = 0xFF2196F3 // opaque material blue (ARGB)
)

// Category groups prompts for display in the clients. Names are unique by
// convention only — the schema does not enforce it.
type Category struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Icon       string    `json:"icon"`
	Color      int64     `json:"color"` // 32-bit ARGB, stored wide so the alpha byte stays unsigned
	OrderIndex int       `json:"orderIndex"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Virtual field populated by store queries.
	PromptCount int `json:"promptCount"`
}
