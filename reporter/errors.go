package reporter

import (
	"fmt"
	"sort"
)

// Format renders a single diagnostic the way the driver does by default:
// "{file}({line},{column}): {message}\n".
func Format(d Diagnostic) string {
	return fmt.Sprintf("%s: %s\n", d.Pos, d.Message)
}

// SortByPosition sorts diagnostics by file, then line, then column, so a
// driver can present them in source order regardless of the order in
// which subsystems recorded them (lexer errors, directive errors, and
// expression errors interleave as the state machine walks the stream).
func SortByPosition(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Pos, diags[j].Pos
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}
