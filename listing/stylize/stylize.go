// Package stylize implements the display transform applied to listing items.
// It is intentionally pure so composition stays deterministic and testable.
package stylize

import "strings"

// Table maps lowercase characters to their display substitutes. Characters
// absent from the table pass through unchanged. The table is configuration
// data; the transform pipeline is fixed.
type Table map[string]string

// Stylize lowercases the input, substitutes each character through the table,
// and uppercases the result. Total: defined for every input, including the
// empty string and a nil table.
func Stylize(table Table, text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if repl, ok := table[string(r)]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}
