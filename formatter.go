package cmtharvest

import (
	"fmt"
	"strings"
)

// FormatWarnings summarizes parse warnings for display: one count line per
// kind followed by up to limit example lines. A limit of 0 prints counts only.
func FormatWarnings(warnings []Warning, limit int) string {
	if len(warnings) == 0 {
		return ""
	}

	counts := make(map[WarningKind]int)
	var kinds []WarningKind
	for _, w := range warnings {
		if _, ok := counts[w.Kind]; !ok {
			kinds = append(kinds, w.Kind)
		}
		counts[w.Kind]++
	}

	parts := make([]string, 0, len(kinds)+limit)
	for _, kind := range kinds {
		parts = append(parts, fmt.Sprintf("%d %s", counts[kind], kind))
	}
	for i, w := range warnings {
		if i >= limit {
			break
		}
		parts = append(parts, "  "+w.String())
	}

	return strings.Join(parts, "\n")
}
