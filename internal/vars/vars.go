// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package vars extracts placeholder variables from prompt template bodies.
// A placeholder is a {{name}} token; surrounding whitespace inside the
// braces is trimmed and empty names are discarded.
package vars

import (
	"regexp"
	"strings"
)

// placeholder matches a double-brace token with no closing brace inside.
var placeholder = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Parse returns the deduplicated placeholder names found in body, ordered
// by first occurrence. Example: "Hi {{name}}, {{ name }} {{status}}" →
// ["name", "status"].
func Parse(body string) []string {
	var names []string
	seen := make(map[string]struct{})

	for _, match := range placeholder.FindAllStringSubmatch(body, -1) {
		name := strings.TrimSpace(match[1])
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	return names
}
