package vars

import (
	"reflect"
	"testing"
)

// TestParse exercises the placeholder parser across typical bodies,
// whitespace handling, duplicates, and malformed braces.
func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single variable",
			input: "Hello {{name}}!",
			want:  []string{"name"},
		},
		{
			name:  "duplicate and padded variables",
			input: "Hello {{name}}, your {{name}} is {{ status }}",
			want:  []string{"name", "status"},
		},
		{
			name:  "order by first occurrence",
			input: "{{b}} then {{a}} then {{b}} again",
			want:  []string{"b", "a"},
		},
		{
			name:  "no variables",
			input: "plain text with no placeholders",
			want:  nil,
		},
		{
			name:  "empty body",
			input: "",
			want:  nil,
		},
		{
			name:  "whitespace-only name discarded",
			input: "broken {{   }} token and {{ok}}",
			want:  []string{"ok"},
		},
		{
			name:  "single braces ignored",
			input: "not a {variable} here",
			want:  nil,
		},
		{
			name:  "unclosed token ignored",
			input: "dangling {{never closed",
			want:  nil,
		},
		{
			name:  "multiline body",
			input: "Dear {{recipient}},\n\nRegarding {{topic}}:\n{{recipient}}",
			want:  []string{"recipient", "topic"},
		},
		{
			name:  "name with inner spaces kept",
			input: "{{first name}} and {{last name}}",
			want:  []string{"first name", "last name"},
		},
		{
			name:  "adjacent tokens",
			input: "{{a}}{{b}}{{c}}",
			want:  []string{"a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
