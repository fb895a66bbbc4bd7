// Package directive implements the directive state machine of spec §4.3:
// it walks a stream.List in place, dispatching #include/#define/#undef
// and the conditional-compilation family, erasing each directive's own
// lexemes once handled and splicing included files inline. What survives
// the walk is the emitted program text.
//
// Grounded on the dispatch-loop shape of other_examples/andrewchambers-cc
// __cpp.go (a single Run loop keyed on the lexeme under the cursor,
// falling through to macro expansion for anything that isn't a directive
// line) and other_examples/EngFlow-gazelle_cc__directive.go for the
// include/define/undef directive vocabulary; neither the teacher library
// nor anything else in the corpus drives a mutable shared token list the
// way this dialect's conditional-compilation and include-splicing model
// requires.
package directive

import (
	"strings"

	"github.com/unrealscript-tools/upp/expr"
	"github.com/unrealscript-tools/upp/lexer"
	"github.com/unrealscript-tools/upp/macro"
	"github.com/unrealscript-tools/upp/reporter"
	"github.com/unrealscript-tools/upp/stream"
	"github.com/unrealscript-tools/upp/token"
)

// FileResolver is the external collaborator of spec §6, restated here as
// the narrow surface the state machine actually calls: loading a quoted
// include relative to a base directory, and searching an angle include
// against a resolver-owned, already-expanded include-directory list.
// resolver.Resolver implements this; tests substitute a map-backed fake.
type FileResolver interface {
	// ResolveLoad resolves path against the directory cwd, falling back
	// to the resolver's include directories, returning the canonicalized
	// path and its bytes. ok is false on any failure (not found, I/O
	// error).
	ResolveLoad(cwd, path string) (canonical string, data []byte, ok bool)

	// ResolveAngle resolves path by searching the resolver's own
	// configured include directories, in registration order. ok is
	// false if no directory yields an existing file.
	ResolveAngle(path string) (canonical string, data []byte, ok bool)
}

// condState holds the implicit conditional stack of §3: a depth counter,
// a per-depth "have we seen #else yet" flag, and the single scalar
// erasing_depth that is the shallowest depth currently eliding.
type condState struct {
	ifDepth      int
	erasingDepth int
	elseSeen     []bool
}

// Machine is the directive state machine bound to one preprocessing run.
type Machine struct {
	Macros   *macro.Table
	Expander *macro.Expander
	Reporter *reporter.Handler
	Resolver FileResolver

	// RootDir is the directory quoted #include paths resolve against
	// (§4.3: "resolution base is the root file's directory" — always the
	// root file's directory, not the directory of whichever file the
	// #include itself appears in).
	RootDir string

	cond condState

	// includeGuards records, for each canonical path whose content has
	// already been spliced in once and structurally matches a classic
	// #ifndef/#define/#endif include-guard, the guarding macro's name.
	// A later #include of the same canonical path whose guard macro is
	// already defined is skipped outright rather than re-spliced and
	// immediately self-elided — an optimization layered on top of the
	// splice rule (SPEC_FULL.md §4.3 "Supplemented"), observationally
	// identical to re-splicing since the guard would have elided the
	// body anyway.
	includeGuards map[string]string
}

// NewMachine returns a Machine ready to process a freshly lexed root
// file. rootDir is the directory #include "..." resolves against.
func NewMachine(macros *macro.Table, resolver FileResolver, rootDir string, h *reporter.Handler) *Machine {
	return &Machine{
		Macros:        macros,
		Expander:      macro.NewExpander(macros),
		Reporter:      h,
		Resolver:      resolver,
		RootDir:       rootDir,
		cond:          condState{elseSeen: []bool{true}}, // depth-0 sentinel, §4.3/§9
		includeGuards: make(map[string]string),
	}
}

// Run walks list to completion, consuming directives, splicing includes,
// eliding inactive branches, and expanding macros in whatever remains.
// On return the list holds exactly the emitted program text.
func (m *Machine) Run(list *stream.List) {
	cur := list.Front()
	for cur != nil {
		switch cur.Kind {
		case token.Hash:
			cur = m.dispatchDirective(list, cur)

		case token.LineEnd, token.Whitespace, token.Comment:
			if m.cond.erasingDepth > 0 {
				next := cur.Next
				list.Erase(cur)
				cur = next
			} else {
				cur = cur.Next
			}

		default:
			if m.cond.erasingDepth > 0 {
				next := cur.Next
				list.Erase(cur)
				cur = next
			} else {
				cur = m.Expander.Step(list, cur)
			}
		}
	}

	// §8 states if_depth == 0 && erasing_depth == 0 as a universal
	// postcondition; the fixed error taxonomy has no "missing #endif"
	// entry, so an unbalanced run is silently closed out rather than
	// left dangling (see DESIGN.md, Open Questions).
	m.cond.ifDepth = 0
	m.cond.erasingDepth = 0
}

// dispatchDirective handles the "dispatch: HASH" / "directive" states of
// §4.3's table starting at hash, returning the lexeme the outer Run loop
// should resume from.
func (m *Machine) dispatchDirective(list *stream.List, hash *token.Lexeme) *token.Lexeme {
	kw := nextSignificant(hash)
	if kw == nil {
		list.EraseRange(hash, nil)
		return nil
	}
	if kw.Kind == token.LineEnd {
		list.EraseRange(hash, kw)
		return afterTerminator(kw)
	}
	if kw.Kind != token.Identifier {
		lineEnd := findLineEnd(hash)
		list.EraseRange(hash, lineEnd)
		return afterTerminator(lineEnd)
	}

	switch kw.Text {
	case "include":
		return m.doInclude(list, hash, kw)
	case "define":
		return m.doDefine(list, hash, kw)
	case "undef":
		return m.doUndef(list, hash, kw)
	case "ifdef":
		return m.doIfdefIfndef(list, hash, kw, true)
	case "ifndef":
		return m.doIfdefIfndef(list, hash, kw, false)
	case "if":
		return m.doIf(list, hash, kw)
	case "elif":
		return m.doElif(list, hash, kw)
	case "else":
		return m.doElse(list, hash, kw)
	case "endif":
		return m.doEndif(list, hash, kw)
	default:
		// Unrecognized directive name: passive consumption (§4.3's
		// "directive" row, "otherwise fall through").
		lineEnd := findLineEnd(hash)
		list.EraseRange(hash, lineEnd)
		return afterTerminator(lineEnd)
	}
}

// afterTerminator returns the resume point once a directive's own line
// has been fully handled. lineEnd (the directive's own terminating
// LINE_END, or nil at EOF) is always preserved by EraseRange's
// exclusive upper bound; returning its successor instead of lineEnd
// itself keeps the dispatch loop from ever revisiting — and therefore
// never eliding — a directive's own terminator, regardless of the
// erasing_depth state the directive enters, leaves, or passes through
// unperturbed (§4.3: only LINE_ENDs strictly inside an elided body are
// erased).
func afterTerminator(lineEnd *token.Lexeme) *token.Lexeme {
	if lineEnd == nil {
		return nil
	}
	return lineEnd.Next
}

func (m *Machine) pushDepth() {
	m.cond.ifDepth++
	for len(m.cond.elseSeen) <= m.cond.ifDepth {
		m.cond.elseSeen = append(m.cond.elseSeen, false)
	}
	m.cond.elseSeen[m.cond.ifDepth] = false
}

// checkTrailing reports "unexpected token" once if any significant
// lexeme appears strictly between after and lineEnd, per the "any
// handler: on exit" row of §4.3's table.
func (m *Machine) checkTrailing(after, lineEnd *token.Lexeme) {
	for cur := after.Next; cur != nil && cur != lineEnd; cur = cur.Next {
		if cur.IsSignificant() {
			m.Reporter.Errorf(cur.Pos, "unexpected-token", "unexpected token")
			return
		}
	}
}

// nextSignificant returns the first lexeme after from that is not
// WHITESPACE/COMMENT, stopping early (returning the LINE_END itself) if
// the line ends before any such lexeme, or nil at EOF.
func nextSignificant(from *token.Lexeme) *token.Lexeme {
	n := from.Next
	for n != nil && !n.IsSignificant() && n.Kind != token.LineEnd {
		n = n.Next
	}
	return n
}

// findLineEnd returns the next LINE_END lexeme after from, or nil if the
// file ends before one is found.
func findLineEnd(from *token.Lexeme) *token.Lexeme {
	for n := from.Next; n != nil; n = n.Next {
		if n.Kind == token.LineEnd {
			return n
		}
	}
	return nil
}

func (m *Machine) doDefine(list *stream.List, anchor, kw *token.Lexeme) *token.Lexeme {
	lineEnd := findLineEnd(anchor)
	name := nextSignificant(kw)
	if name == nil || name.Kind == token.LineEnd || name.Kind != token.Identifier {
		m.Reporter.Errorf(kw.Pos, "expected-name-for-define", "expected name for define")
		list.EraseRange(anchor, lineEnd)
		return afterTerminator(lineEnd)
	}

	def := &macro.Definition{Name: name.Text, NamePos: name.Pos}

	if name.Next != nil && name.Next.Kind == token.LParen {
		def.HasParameters = true
		m.Reporter.Errorf(name.Pos, "parameterized-not-supported", "parameterized not yet supported")
		for cur := name.Next.Next; cur != nil && cur != lineEnd; cur = cur.Next {
			if cur.Kind == token.RParen {
				break
			}
			if cur.IsSignificant() {
				def.Parameters = append(def.Parameters, cur.Clone())
			}
		}
	} else {
		for cur := name.Next; cur != nil && cur != lineEnd; cur = cur.Next {
			if cur.IsSignificant() {
				def.Replacement = append(def.Replacement, cur.Clone())
			}
		}
	}

	m.Macros.Define(def)
	list.EraseRange(anchor, lineEnd)
	return afterTerminator(lineEnd)
}

func (m *Machine) doUndef(list *stream.List, anchor, kw *token.Lexeme) *token.Lexeme {
	lineEnd := findLineEnd(anchor)
	name := nextSignificant(kw)
	switch {
	case name == nil:
		m.Reporter.Errorf(kw.Pos, "unexpected-eof", "unexpected EOF")
	case name.Kind == token.LineEnd:
		m.Reporter.Errorf(kw.Pos, "unexpected-eof", "unexpected EOF")
	case name.Kind != token.Identifier:
		m.Reporter.Errorf(name.Pos, "unexpected-token", "unexpected token")
	default:
		if !m.Macros.Undef(name.Text) {
			m.Reporter.Errorf(name.Pos, "macro-not-defined", "macro not defined")
		}
		m.checkTrailing(name, lineEnd)
	}
	list.EraseRange(anchor, lineEnd)
	return afterTerminator(lineEnd)
}

func (m *Machine) doIfdefIfndef(list *stream.List, anchor, kw *token.Lexeme, wantDefined bool) *token.Lexeme {
	lineEnd := findLineEnd(anchor)
	m.pushDepth()

	name := nextSignificant(kw)
	switch {
	case name == nil || name.Kind == token.LineEnd:
		m.Reporter.Errorf(kw.Pos, "unexpected-eof", "unexpected EOF")
	case name.Kind != token.Identifier:
		m.Reporter.Errorf(name.Pos, "unexpected-token", "unexpected token")
	default:
		match := m.Macros.Defined(name.Text) == wantDefined
		if !match && m.cond.erasingDepth == 0 {
			m.cond.erasingDepth = m.cond.ifDepth
		}
		m.checkTrailing(name, lineEnd)
	}

	list.EraseRange(anchor, lineEnd)
	return afterTerminator(lineEnd)
}

func (m *Machine) doIf(list *stream.List, anchor, kw *token.Lexeme) *token.Lexeme {
	lineEnd := findLineEnd(anchor)
	m.pushDepth()

	v := expr.Eval(list, kw.Next, lineEnd, m.Expander, m.Reporter)
	if !v && m.cond.erasingDepth == 0 {
		m.cond.erasingDepth = m.cond.ifDepth
	}

	list.EraseRange(anchor, lineEnd)
	return afterTerminator(lineEnd)
}

func (m *Machine) doElif(list *stream.List, anchor, kw *token.Lexeme) *token.Lexeme {
	lineEnd := findLineEnd(anchor)

	if m.cond.ifDepth == 0 {
		m.Reporter.Errorf(kw.Pos, "spurious-elif", "spurious elif")
		list.EraseRange(anchor, lineEnd)
		return afterTerminator(lineEnd)
	}

	d := m.cond.ifDepth
	if m.cond.elseSeen[d] {
		m.Reporter.Errorf(kw.Pos, "elif-after-else", "elif after else")
		list.EraseRange(anchor, lineEnd)
		return afterTerminator(lineEnd)
	}

	if m.cond.erasingDepth != 0 && m.cond.erasingDepth != d {
		// An ancestor depth is eliding; this elif's own truth value must
		// not perturb erasing_depth (same guard §4.3 gives ifdef/ifndef).
		list.EraseRange(anchor, lineEnd)
		return afterTerminator(lineEnd)
	}

	v := expr.Eval(list, kw.Next, lineEnd, m.Expander, m.Reporter)
	if m.cond.erasingDepth == d {
		if v {
			m.cond.erasingDepth = 0
		}
	} else if !v {
		m.cond.erasingDepth = d
	}

	list.EraseRange(anchor, lineEnd)
	return afterTerminator(lineEnd)
}

func (m *Machine) doElse(list *stream.List, anchor, kw *token.Lexeme) *token.Lexeme {
	lineEnd := findLineEnd(anchor)

	if m.cond.ifDepth == 0 {
		m.Reporter.Errorf(kw.Pos, "spurious-else", "spurious else")
		list.EraseRange(anchor, lineEnd)
		return afterTerminator(lineEnd)
	}

	d := m.cond.ifDepth
	if m.cond.elseSeen[d] {
		m.Reporter.Errorf(kw.Pos, "second-else", "second else")
		list.EraseRange(anchor, lineEnd)
		return afterTerminator(lineEnd)
	}
	m.cond.elseSeen[d] = true

	switch {
	case m.cond.erasingDepth != 0 && m.cond.erasingDepth != d:
		// ancestor eliding; leave untouched.
	case m.cond.erasingDepth == d:
		m.cond.erasingDepth = 0
	default:
		m.cond.erasingDepth = d
	}

	m.checkTrailing(kw, lineEnd)
	list.EraseRange(anchor, lineEnd)
	return afterTerminator(lineEnd)
}

func (m *Machine) doEndif(list *stream.List, anchor, kw *token.Lexeme) *token.Lexeme {
	lineEnd := findLineEnd(anchor)

	if m.cond.ifDepth == 0 {
		m.Reporter.Errorf(kw.Pos, "spurious-endif", "spurious endif")
		list.EraseRange(anchor, lineEnd)
		return afterTerminator(lineEnd)
	}

	d := m.cond.ifDepth
	m.cond.elseSeen[d] = false
	if m.cond.erasingDepth == d {
		m.cond.erasingDepth = 0
	}
	m.cond.ifDepth--

	m.checkTrailing(kw, lineEnd)
	list.EraseRange(anchor, lineEnd)
	return afterTerminator(lineEnd)
}

func (m *Machine) doInclude(list *stream.List, anchor, kw *token.Lexeme) *token.Lexeme {
	lineEnd := findLineEnd(anchor)
	nxt := nextSignificant(kw)

	switch {
	case nxt == nil || nxt.Kind == token.LineEnd:
		m.Reporter.Errorf(kw.Pos, "unexpected-eof", "unexpected EOF")
		list.EraseRange(anchor, lineEnd)
		return afterTerminator(lineEnd)

	case nxt.Kind == token.String:
		path := stripQuotes(nxt.Text)
		m.checkTrailing(nxt, lineEnd)
		return m.spliceInclude(list, anchor, lineEnd, m.resolveQuoted(path))

	case nxt.Kind == token.Lt:
		var sb strings.Builder
		sb.WriteString(nxt.Text)
		var closeTok *token.Lexeme
		for cur := nxt.Next; cur != nil && cur != lineEnd; cur = cur.Next {
			sb.WriteString(cur.Text)
			if cur.Kind == token.Gt {
				closeTok = cur
				break
			}
		}
		if closeTok == nil {
			m.Reporter.Errorf(nxt.Pos, "unclosed-include-path", "unclosed include path")
			list.EraseRange(anchor, lineEnd)
			return afterTerminator(lineEnd)
		}
		full := sb.String()
		path := full[1 : len(full)-1]
		m.checkTrailing(closeTok, lineEnd)
		return m.spliceInclude(list, anchor, lineEnd, m.resolveAngled(path))

	default:
		m.Reporter.Errorf(nxt.Pos, "unexpected-token", "unexpected token")
		list.EraseRange(anchor, lineEnd)
		return afterTerminator(lineEnd)
	}
}

// includeResult is the outcome of resolving one #include target.
type includeResult struct {
	canonical string
	data      []byte
	ok        bool
}

func (m *Machine) resolveQuoted(path string) includeResult {
	canonical, data, ok := m.Resolver.ResolveLoad(m.RootDir, path)
	return includeResult{canonical, data, ok}
}

func (m *Machine) resolveAngled(path string) includeResult {
	canonical, data, ok := m.Resolver.ResolveAngle(path)
	return includeResult{canonical, data, ok}
}

func stripQuotes(text string) string {
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}

// spliceInclude finishes an #include once its target path has been
// resolved: on failure it reports and erases the directive; on success
// it lexes the included file (skipping the splice entirely if an
// include guard already short-circuits it), splices the result in place
// of the directive, and erases the directive's own tokens.
func (m *Machine) spliceInclude(list *stream.List, anchor, lineEnd *token.Lexeme, res includeResult) *token.Lexeme {
	if !res.ok {
		m.Reporter.Errorf(anchor.Pos, "include-not-found", "could not find included file")
		list.EraseRange(anchor, lineEnd)
		return afterTerminator(lineEnd)
	}

	if guard, recorded := m.includeGuards[res.canonical]; recorded && m.Macros.Defined(guard) {
		list.EraseRange(anchor, lineEnd)
		return afterTerminator(lineEnd)
	}

	sub := lexer.Lex(res.canonical, res.data, m.Reporter)
	if guardName, ok := detectIncludeGuard(sub); ok {
		m.includeGuards[res.canonical] = guardName
	}

	first := sub.Front()
	list.SpliceBefore(anchor, sub)
	list.EraseRange(anchor, lineEnd)

	if first == nil {
		return afterTerminator(lineEnd)
	}
	return first
}

// detectIncludeGuard looks for a leading "#ifndef NAME" whose body later
// contains "#define NAME" before the list ends, the classic include-
// guard shape. It never mutates list; it is a read-only structural
// check run once per freshly lexed file, before that file's own
// directives are processed.
func detectIncludeGuard(list *stream.List) (string, bool) {
	cur := firstSignificant(list.Front())
	if cur == nil || cur.Kind != token.Hash {
		return "", false
	}
	kw := nextSignificant(cur)
	if kw == nil || kw.Kind != token.Identifier || kw.Text != "ifndef" {
		return "", false
	}
	name := nextSignificant(kw)
	if name == nil || name.Kind != token.Identifier {
		return "", false
	}
	guard := name.Text

	for n := name.Next; n != nil; n = n.Next {
		if n.Kind != token.Hash {
			continue
		}
		dkw := nextSignificant(n)
		if dkw == nil || dkw.Kind != token.Identifier || dkw.Text != "define" {
			continue
		}
		dname := nextSignificant(dkw)
		if dname != nil && dname.Kind == token.Identifier && dname.Text == guard {
			return guard, true
		}
	}
	return "", false
}

func firstSignificant(from *token.Lexeme) *token.Lexeme {
	for n := from; n != nil; n = n.Next {
		if n.IsSignificant() {
			return n
		}
	}
	return nil
}
