// Package expr implements the recursive-descent constant-expression
// parser/evaluator of spec §4.5, invoked by the directive state machine
// for the controlling expression of #if and #elif. Evaluation is
// 32-bit, with signed operators reinterpreting the same bit pattern
// per §4.5's "unsigned values; signed operations treat values as
// two's-complement".
//
// Grounded on the general recursive-descent shape of
// other_examples/andrewchambers-cc__cpp.go's expression evaluator
// (parse-and-fold in one pass, no separate AST materialization beyond
// what's needed for error recovery) and on
// other_examples/confucianzuoyuan-zcc's constant-expression grammar
// shape for the precedence ladder; neither the teacher library nor any
// other corpus member needs an arithmetic-expression evaluator (it
// works over protobuf descriptors, not C-style constant expressions).
package expr

import (
	"strconv"
	"unsafe"

	"golang.org/x/exp/constraints" //nolint:exptostd // mirrors the teacher's own holdout in internal/interval.

	"github.com/unrealscript-tools/upp/macro"
	"github.com/unrealscript-tools/upp/reporter"
	"github.com/unrealscript-tools/upp/stream"
	"github.com/unrealscript-tools/upp/token"
)

// Eval parses and evaluates the controlling expression occupying the
// half-open lexeme range [from, to) of list (to is normally the
// terminating LINE_END). It performs the §4.5 pre-pass first (macro
// expansion of identifiers, "defined X" folding), then parses and
// evaluates the resulting tokens. On any parse failure the expression
// is treated as false, per §4.5's error policy; diagnostics are
// recorded on h either way.
func Eval(list *stream.List, from, to *token.Lexeme, exp *macro.Expander, h *reporter.Handler) bool {
	from = prePass(list, from, to, exp, h)

	toks := collectSignificant(from, to)
	p := &parser{toks: toks, h: h}
	v, ok := p.parseOr()
	if !ok || !p.atEnd() {
		if ok && !p.atEnd() {
			h.Errorf(p.peek().Pos, "unexpected-token", "unexpected token")
		}
		return false
	}
	return v != 0
}

// prePass implements §4.5's pre-pass: every IDENTIFIER that is not the
// literal word "defined" is macro-expanded in place; every "defined"
// occurrence (with its optional parens and operand) is collapsed into a
// single DECIMAL 0/1 lexeme. Returns the (possibly moved) start of the
// range, since expansion or folding may replace the very first lexeme.
func prePass(list *stream.List, from, to *token.Lexeme, exp *macro.Expander, h *reporter.Handler) *token.Lexeme {
	first := from
	cur := from
	for cur != nil && cur != to {
		switch {
		case cur.Kind == token.MetaUsedDefinePop:
			next := exp.PassPop(list, cur)
			if cur == first {
				first = next
			}
			cur = next

		case cur.Kind == token.Identifier && cur.Text == "defined":
			start := cur
			replaced, next := foldDefined(list, exp.Table, cur, to, h)
			if start == first {
				first = replaced
			}
			cur = next

		case cur.Kind == token.Identifier:
			next := exp.ExpandAt(list, cur)
			// ExpandAt returns cur.Next when nothing was expanded; only a
			// real expansion (which erased cur) moves the range start.
			if cur == first && next != cur.Next {
				first = next
			}
			cur = next

		default:
			cur = cur.Next
		}
	}
	return first
}

// foldDefined consumes "defined", an optional "(", an IDENTIFIER, and a
// matching ")" if the opening paren was present, and replaces the whole
// run with a single DECIMAL lexeme of value 0 or 1. It returns the new
// DECIMAL lexeme and the lexeme to resume scanning from (its Next).
func foldDefined(list *stream.List, table *macro.Table, definedTok, to *token.Lexeme, h *reporter.Handler) (*token.Lexeme, *token.Lexeme) {
	pos := definedTok.Pos
	cur := nextSignificant(definedTok, to)

	hasParen := cur != nil && cur != to && cur.Kind == token.LParen
	if hasParen {
		cur = nextSignificant(cur, to)
	}

	if cur == nil || cur == to || cur.Kind != token.Identifier {
		h.Errorf(pos, "missing-operand-defined", "missing operand for operator \"defined\"")
		val := list.InsertBefore(definedTok, token.Lexeme{Kind: token.Decimal, Pos: pos, Text: "0"})
		end := definedTok.Next
		list.Erase(definedTok)
		return val, end
	}

	name := cur.Text
	last := cur

	if hasParen {
		closeTok := nextSignificant(cur, to)
		if closeTok == nil || closeTok == to || closeTok.Kind != token.RParen {
			h.Errorf(pos, "missing-closing-paren", "missing closing parenthesis")
		} else {
			last = closeTok
		}
	}

	v := "0"
	if table.Defined(name) {
		v = "1"
	}
	val := list.InsertBefore(definedTok, token.Lexeme{Kind: token.Decimal, Pos: pos, Text: v})
	resume := last.Next
	list.EraseRange(definedTok, resume)
	return val, resume
}

// nextSignificant returns the first lexeme at or after start.Next that
// is not WHITESPACE/COMMENT and is before to, or to/nil if none remains.
func nextSignificant(start, to *token.Lexeme) *token.Lexeme {
	n := start.Next
	for n != nil && n != to && !n.IsSignificant() {
		n = n.Next
	}
	return n
}

// collectSignificant copies the significant lexemes of [from, to) into a
// flat slice for the parser to index over; by this point the list no
// longer grows (prePass has already run), so there is no need to share
// list iterators with the parser.
func collectSignificant(from, to *token.Lexeme) []*token.Lexeme {
	var out []*token.Lexeme
	for n := from; n != nil && n != to; n = n.Next {
		if n.IsSignificant() {
			out = append(out, n)
		}
	}
	return out
}

type parser struct {
	toks []*token.Lexeme
	pos  int
	h    *reporter.Handler
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() *token.Lexeme {
	if p.atEnd() {
		return nil
	}
	return p.toks[p.pos]
}

func (p *parser) peekKind() token.Kind {
	if t := p.peek(); t != nil {
		return t.Kind
	}
	return token.EOF
}

func (p *parser) advance() *token.Lexeme {
	t := p.toks[p.pos]
	p.pos++
	return t
}

// binaryLevel parses a left-associative binary operator level: next
// parses the tighter-binding level below it, and ops maps an accepted
// operator kind to the combining function.
func (p *parser) binaryLevel(next func() (int32, bool), ops map[token.Kind]func(a, b int32) int32) (int32, bool) {
	v, ok := next()
	if !ok {
		return 0, false
	}
	for {
		f, matched := ops[p.peekKind()]
		if !matched {
			return v, true
		}
		opTok := p.advance()
		rhs, ok := next()
		if !ok {
			return 0, false
		}
		v = applyChecked(p, opTok, f, v, rhs)
	}
}

func applyChecked(p *parser, opTok *token.Lexeme, f func(a, b int32) int32, a, b int32) int32 {
	if (opTok.Kind == token.Div || opTok.Kind == token.Mod) && b == 0 {
		p.h.Errorf(opTok.Pos, "division-by-zero", "division by zero in constant expression")
		return 0
	}
	return f(a, b)
}

func (p *parser) parseOr() (int32, bool) {
	v, ok := p.parseAnd()
	if !ok {
		return 0, false
	}
	for p.peekKind() == token.Or {
		p.advance()
		rhs, ok := p.parseAnd()
		if !ok {
			return 0, false
		}
		v = boolToInt(v != 0 || rhs != 0)
	}
	return v, true
}

func (p *parser) parseAnd() (int32, bool) {
	v, ok := p.parseCmp()
	if !ok {
		return 0, false
	}
	for p.peekKind() == token.And {
		p.advance()
		rhs, ok := p.parseCmp()
		if !ok {
			return 0, false
		}
		v = boolToInt(v != 0 && rhs != 0)
	}
	return v, true
}

func (p *parser) parseCmp() (int32, bool) {
	return p.binaryLevel(p.parseBitOr, map[token.Kind]func(a, b int32) int32{
		token.Eq: func(a, b int32) int32 { return boolToInt(a == b) },
		token.Ne: func(a, b int32) int32 { return boolToInt(a != b) },
		token.Lt: func(a, b int32) int32 { return boolToInt(a < b) },
		token.Le: func(a, b int32) int32 { return boolToInt(a <= b) },
		token.Gt: func(a, b int32) int32 { return boolToInt(a > b) },
		token.Ge: func(a, b int32) int32 { return boolToInt(a >= b) },
	})
}

func (p *parser) parseBitOr() (int32, bool) {
	return p.binaryLevel(p.parseBitAnd, map[token.Kind]func(a, b int32) int32{
		token.BitOr:  func(a, b int32) int32 { return a | b },
		token.BitXor: func(a, b int32) int32 { return a ^ b },
	})
}

func (p *parser) parseBitAnd() (int32, bool) {
	return p.binaryLevel(p.parseShift, map[token.Kind]func(a, b int32) int32{
		token.BitAnd: func(a, b int32) int32 { return a & b },
	})
}

func (p *parser) parseShift() (int32, bool) {
	return p.binaryLevel(p.parseAdd, map[token.Kind]func(a, b int32) int32{
		token.Shl: func(a, b int32) int32 { return int32(uint32(a) << (uint32(b) & 31)) },
		// >> is arithmetic (sign-propagating) per §4.5.
		token.Shr: func(a, b int32) int32 { return a >> (uint32(b) & 31) },
		// >>> is logical on the unsigned reinterpretation.
		token.Ushr: func(a, b int32) int32 { return int32(uint32(a) >> (uint32(b) & 31)) },
	})
}

func (p *parser) parseAdd() (int32, bool) {
	return p.binaryLevel(p.parseMul, map[token.Kind]func(a, b int32) int32{
		token.Plus:  func(a, b int32) int32 { return a + b },
		token.Minus: func(a, b int32) int32 { return a - b },
	})
}

// Div and Mod never see b == 0 here: binaryLevel's applyChecked
// intercepts that case before calling either closure.
func (p *parser) parseMul() (int32, bool) {
	return p.binaryLevel(p.parseUnary, map[token.Kind]func(a, b int32) int32{
		token.Mul: func(a, b int32) int32 { return a * b },
		token.Div: func(a, b int32) int32 { return a / b },
		token.Mod: func(a, b int32) int32 { return a % b },
	})
}

func (p *parser) parseUnary() (int32, bool) {
	switch p.peekKind() {
	case token.Plus:
		p.advance()
		return p.parseUnary()
	case token.Minus:
		p.advance()
		v, ok := p.parseUnary()
		return -v, ok
	case token.Not:
		p.advance()
		v, ok := p.parseUnary()
		return boolToInt(v == 0), ok
	case token.BitNot:
		p.advance()
		v, ok := p.parseUnary()
		return ^v, ok
	default:
		return p.parsePrimary()
	}
}

func (p *parser) parsePrimary() (int32, bool) {
	if p.atEnd() {
		p.h.Errorf(token.Pos{}, "expected-token", "expected token, but found none")
		return 0, false
	}
	t := p.advance()
	switch t.Kind {
	case token.LParen:
		v, ok := p.parseOr()
		if !ok {
			return 0, false
		}
		if p.peekKind() != token.RParen {
			p.h.Errorf(t.Pos, "missing-close-paren", "missing )")
			return 0, false
		}
		p.advance()
		return v, true

	case token.Decimal:
		return parseNumber(t.Text, 10, p, t)

	case token.Octal:
		return parseNumber(t.Text, 8, p, t)

	case token.Hexadecimal:
		text := t.Text
		if len(text) >= 2 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X') {
			text = text[2:]
		}
		return parseNumber(text, 16, p, t)

	case token.Identifier:
		// Survived the pre-pass unresolved: evaluates to 0 with a warning
		// (§4.5).
		p.h.Warnf(t.Pos, "undefined-macro", "undefined macro, substituting 0")
		return 0, true

	default:
		p.h.Errorf(t.Pos, "unexpected-token", "unexpected token")
		return 0, false
	}
}

func parseNumber(text string, base int, p *parser, t *token.Lexeme) (int32, bool) {
	if text == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(text, base, 32)
	if err != nil {
		p.h.Errorf(t.Pos, "value-too-large", "value too large")
		return maxOf[int32](), true // INT_MAX, clamped per §4.5
	}
	return int32(uint32(v)), true
}

// maxOf returns the maximum representable value of a signed integer type.
// Generic over constraints.Signed so the clamp in parseNumber isn't pinned
// to int32 if the expression evaluator ever widens (§4.5 notes all
// evaluation is 32-bit today, but the bound computation itself shouldn't
// assume that).
func maxOf[T constraints.Signed]() T {
	var zero T
	bits := 8 * int(unsafe.Sizeof(zero))
	return T(uint64(1)<<(bits-1) - 1)
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
