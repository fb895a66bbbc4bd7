// Package serializer implements spec §4.6: it walks whatever lexemes
// survive directive processing and macro expansion, writing each one's
// text verbatim and inserting the minimum whitespace needed to keep
// adjacent lexemes from accidentally merging into a different token
// when the output is re-lexed.
package serializer

import (
	"bufio"
	"io"

	"github.com/unrealscript-tools/upp/token"
)

var numericKinds = map[token.Kind]bool{
	token.Identifier:   true,
	token.Octal:        true,
	token.Decimal:      true,
	token.Hexadecimal:  true,
	token.Float:        true,
}

var eqFamily = map[token.Kind]bool{
	token.Assign: true,
	token.BitAnd: true,
	token.BitOr:  true,
	token.BitXor: true,
	token.Hash:   true,
}

var signFamily = map[token.Kind]bool{
	token.Lt:     true,
	token.Not:    true,
	token.BitNot: true,
	token.Plus:   true,
	token.Minus:  true,
	token.Mul:    true,
	token.Pow:    true,
	token.Div:    true,
	token.Mod:    true,
	token.Concat: true,
}

// needsSpace reports whether a space must be inserted between cur and
// next so that re-lexing the output can't merge them into a single,
// different lexeme. It implements §4.6's four bullet rules exactly.
func needsSpace(cur, next token.Kind) bool {
	switch {
	case numericKinds[cur] && numericKinds[next]:
		return true
	case eqFamily[cur] && cur == next:
		return true
	case signFamily[cur] && (cur == next || next == token.Assign):
		return true
	case cur == token.Gt && (next == token.Gt || next == token.Assign || next == token.Shr):
		return true
	case cur == token.Shr && (next == token.Shr || next == token.Assign || next == token.Gt):
		return true
	default:
		return false
	}
}

// Write walks the residual lexeme list starting at front and writes it
// to w, buffered, with §4.6's whitespace fix-ups applied. WHITESPACE and
// LINE_END lexemes already present in the list are emitted as-is; no
// other whitespace is ever inserted.
func Write(w io.Writer, front *token.Lexeme) error {
	bw := bufio.NewWriter(w)
	for cur := front; cur != nil; cur = cur.Next {
		if _, err := bw.WriteString(cur.Text); err != nil {
			return err
		}
		if cur.Next != nil && needsSpace(cur.Kind, cur.Next.Kind) {
			if err := bw.WriteByte(' '); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
