// Package macro implements the name-to-definition table described in
// spec §3 ("Macro definition"/"Macro table") and the non-reentrant
// expansion rule of §4.4. A Definition stores its replacement as a
// slice of token.Lexeme values rather than list nodes — expansion
// always materializes fresh, freshly pooled nodes from that slice, so
// the same Definition can be expanded at many call sites without the
// sites aliasing each other's list linkage.
package macro

import (
	"sort"

	"github.com/tidwall/btree"

	"github.com/unrealscript-tools/upp/internal/intern"
	"github.com/unrealscript-tools/upp/token"
)

// Definition is a single #define's recorded effect: a name, whether it
// was introduced with a parameter list (recognized syntactically per
// §1's function-like-macro non-goal, never expanded), and the
// replacement lexemes captured by value at definition time.
type Definition struct {
	Name           string
	NamePos        token.Pos
	HasParameters  bool
	Parameters     []token.Lexeme
	Replacement    []token.Lexeme
}

// Table is the name -> Definition map the directive state machine
// mutates and the expander/expression pre-pass read. It needs ordered
// iteration (for --dump-macros, SPEC_FULL.md §6), which a plain map
// can't give without an extra sort on every dump — tidwall/btree.Map
// already keeps keys ordered, so Dump's scan yields names in order and
// its sort only passes over already-sorted input.
//
// Table also owns an internal.intern.Table, the same double-checked-
// locking interning pool the teacher library uses, repurposed here for
// macro name and replacement text: a codebase with many #defines tends
// to repeat the same short literals (0, 1, TRUE, the empty string)
// across unrelated macros, and interning them at Define time collapses
// those copies down to one shared backing string per distinct text
// instead of one per Clone().
type Table struct {
	defs   btree.Map[string, *Definition]
	intern intern.Table
}

// Define records d, replacing any previous definition of the same name
// (§4.3: "redefinition silently replaces"). Name, Parameters, and
// Replacement text is interned in place before storing, so repeated
// identical literals across definitions share one allocation.
func (t *Table) Define(d *Definition) {
	d.Name = t.internText(d.Name)
	for i := range d.Parameters {
		d.Parameters[i].Text = t.internText(d.Parameters[i].Text)
	}
	for i := range d.Replacement {
		d.Replacement[i].Text = t.internText(d.Replacement[i].Text)
	}
	t.defs.Set(d.Name, d)
}

// internText interns s into t's pool and returns the table-owned copy,
// so every lexeme with the same text across every definition in t
// shares one string header.
func (t *Table) internText(s string) string {
	return t.intern.Value(t.intern.Intern(s))
}

// Lookup returns the definition for name, if any.
func (t *Table) Lookup(name string) (*Definition, bool) {
	return t.defs.Get(name)
}

// Defined reports whether name has a current definition, the question
// `defined X` and #ifdef/#ifndef ask.
func (t *Table) Defined(name string) bool {
	_, ok := t.defs.Get(name)
	return ok
}

// Undef removes name's definition, reporting whether one existed so the
// caller (the directive state machine) can emit "macro not defined"
// when it didn't (§4.3).
func (t *Table) Undef(name string) bool {
	_, existed := t.defs.Delete(name)
	return existed
}

// Len returns the number of currently-defined macros.
func (t *Table) Len() int {
	return t.defs.Len()
}

// Dump returns every definition in ascending name order, for
// --dump-macros.
func (t *Table) Dump() []*Definition {
	out := make([]*Definition, 0, t.defs.Len())
	t.defs.Scan(func(_ string, d *Definition) bool {
		out = append(out, d)
		return true
	})
	// btree.Map.Scan already yields ascending key order; Sort is a
	// defensive no-op kept cheap in case a future btree version changes
	// that guarantee.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
