package macro

import (
	"github.com/unrealscript-tools/upp/stream"
	"github.com/unrealscript-tools/upp/token"
)

// Stack is the "expansion-in-progress" stack of §3/§4.4: an ordered list
// of Definitions currently being substituted, used to block a macro from
// expanding into itself (directly or through another macro) before its
// own replacement has been fully retired from the stream.
//
// Grounded on the hideset map in
// other_examples/raymyers-ralph-cc-go__expand.go, but represented as an
// explicit stack rather than a set: the spec's balance invariant (§8)
// requires popping in the exact order pushed, which the sentinel-lexeme
// design (§4.4, §9) depends on — a set alone can't express "this push
// and that pop are the same activation".
type Stack struct {
	frames []*Definition
}

func (s *Stack) push(d *Definition) { s.frames = append(s.frames, d) }

func (s *Stack) pop() *Definition {
	n := len(s.frames)
	d := s.frames[n-1]
	s.frames = s.frames[:n-1]
	return d
}

// active reports whether d currently has an expansion in progress
// anywhere on the stack, blocking reentrant substitution.
func (s *Stack) active(d *Definition) bool {
	for _, f := range s.frames {
		if f == d {
			return true
		}
	}
	return false
}

// Depth returns the number of expansions currently in progress, for
// tests asserting the balance invariant of §8.
func (s *Stack) Depth() int { return len(s.frames) }

// Expander substitutes macro names for their replacement text in place
// within a stream.List, following the non-reentrant rule of §4.4.
type Expander struct {
	Table *Table
	Stack Stack
}

// NewExpander returns an Expander bound to table.
func NewExpander(table *Table) *Expander {
	return &Expander{Table: table}
}

// ExpandAt tries to expand the identifier lexeme at cur within list.
// It returns the lexeme the caller's cursor should continue from: if
// no expansion happened, that is cur.Next (advance past the untouched
// identifier); if an expansion did happen, that is the first lexeme of
// the freshly spliced-in replacement (so the caller re-enters expansion
// there, per §4.4's "advance the cursor ... re-enter expansion there").
//
// Grounded on the object-like-macro branch of
// other_examples/raymyers-ralph-cc-go__expand.go's expandObjectMacro,
// replaced here with in-place list surgery (insert-before-erase) rather
// than building a new token slice, since this dialect's expansion
// target is the mutable shared lexeme stream rather than a temporary
// expansion buffer.
func (e *Expander) ExpandAt(list *stream.List, cur *token.Lexeme) *token.Lexeme {
	if cur.Kind != token.Identifier {
		return cur.Next
	}

	def, ok := e.Table.Lookup(cur.Text)
	if !ok || def.HasParameters || e.Stack.active(def) {
		return cur.Next
	}

	e.Stack.push(def)

	var first *token.Lexeme
	for _, r := range def.Replacement {
		n := list.InsertBefore(cur, r)
		if first == nil {
			first = n
		}
	}
	list.InsertBefore(cur, token.Lexeme{Kind: token.MetaUsedDefinePop, Pos: cur.Pos})
	if first == nil {
		// Empty replacement: the marker itself is what the cursor
		// resumes at, so the pop still happens in the right place.
		first = cur.Prev
	}

	next := cur.Next
	list.Erase(cur)
	_ = next

	return first
}

// PassPop, called when the cursor reaches a MetaUsedDefinePop lexeme,
// closes the activation it marks and erases the marker, returning the
// lexeme the cursor should continue from.
func (e *Expander) PassPop(list *stream.List, marker *token.Lexeme) *token.Lexeme {
	e.Stack.pop()
	next := marker.Next
	list.Erase(marker)
	return next
}

// Step advances the cursor by exactly one dispatch decision: popping an
// expansion activation at a MetaUsedDefinePop marker, attempting
// expansion at an identifier, or simply moving on. It is the unit the
// directive state machine's own dispatch loop is built from.
func (e *Expander) Step(list *stream.List, cur *token.Lexeme) *token.Lexeme {
	switch cur.Kind {
	case token.MetaUsedDefinePop:
		return e.PassPop(list, cur)
	case token.Identifier:
		return e.ExpandAt(list, cur)
	default:
		return cur.Next
	}
}

