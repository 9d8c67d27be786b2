package contract

import "strings"

// MaxLabelLength bounds status labels and pair symbols.
const MaxLabelLength = 32

// ValidLabel reports whether s is a short, non-blank label.
func ValidLabel(s string) bool {
	return strings.TrimSpace(s) != "" && len(s) <= MaxLabelLength
}
