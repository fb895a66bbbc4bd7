// Package lexer turns a file's raw bytes into a stream.List of lexemes.
// It is a pure function in spirit: given the same bytes and file name it
// always produces the same list and the same diagnostics, and it never
// looks more than a couple of bytes ahead of its cursor.
//
// The scanning style — a cursor over a byte slice with a "mark" recording
// where the current lexeme began — is carried over from the teacher
// library's rune-reader idiom (parser/lexer.go's runeReader.setMark/
// getMark), adapted to operate directly on bytes rather than decoded
// runes, since every category this dialect's preprocessor cares about
// (operators, identifiers, numeric literals, line endings) is pure ASCII
// and a byte >127 is itself just another whitespace byte (§4.1).
package lexer

import (
	"bytes"

	"github.com/unrealscript-tools/upp/reporter"
	"github.com/unrealscript-tools/upp/stream"
	"github.com/unrealscript-tools/upp/token"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Lex scans data (the full contents of file) into a fresh lexeme list.
// Diagnostics are recorded on h; scanning never aborts early because of
// them.
func Lex(file string, data []byte, h *reporter.Handler) *stream.List {
	if bytes.HasPrefix(data, utf8BOM) {
		data = data[len(utf8BOM):]
	}

	s := &scanner{file: file, data: data, line: 1}
	list := &stream.List{}
	for s.pos < len(s.data) {
		s.scanOne(list, h)
	}
	return list
}

type scanner struct {
	file string
	data []byte

	pos       int // current read offset
	mark      int // start offset of the lexeme currently being scanned
	line      int // 1-based
	lineStart int // byte offset of the start of the current line
}

func (s *scanner) byteAt(off int) byte {
	if off < 0 || off >= len(s.data) {
		return 0
	}
	return s.data[off]
}

func (s *scanner) peek() byte      { return s.byteAt(s.pos) }
func (s *scanner) peekAt(n int) byte { return s.byteAt(s.pos + n) }

func (s *scanner) startPos() token.Pos {
	return token.Pos{File: s.file, Line: s.line, Column: s.mark - s.lineStart + 1}
}

// newline consumes one line ending (\n, \r, or \r\n) starting at s.pos and
// advances the line counter. It does not emit a lexeme; callers decide
// whether the consumed bytes become a LINE_END lexeme or are silently
// swallowed (as in a backslash line splice).
func (s *scanner) newline() {
	if s.peek() == '\r' {
		s.pos++
		if s.peek() == '\n' {
			s.pos++
		}
	} else {
		s.pos++
	}
	s.line++
	s.lineStart = s.pos
}

func isLineEnd(b byte) bool { return b == '\n' || b == '\r' }

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\v', '\f':
		return true
	default:
		return b > 127
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool { return isIdentStart(b) || isDigit(b) }

// emit appends a lexeme spanning [s.mark, s.pos) of kind k to list.
func (s *scanner) emit(list *stream.List, k token.Kind, pos token.Pos) *token.Lexeme {
	text := string(s.data[s.mark:s.pos])
	return list.PushBack(token.Lexeme{
		Kind:   k,
		Pos:    pos,
		Length: s.pos - s.mark,
		Text:   text,
	})
}

func (s *scanner) scanOne(list *stream.List, h *reporter.Handler) {
	s.mark = s.pos
	pos := s.startPos()
	c := s.peek()

	switch {
	case isSpace(c):
		s.scanWhitespace()
		s.emit(list, token.Whitespace, pos)
		return

	case isLineEnd(c):
		s.newline()
		s.emit(list, token.LineEnd, pos)
		return

	case c == '\\':
		if s.peekAt(1) == '\n' || (s.peekAt(1) == '\r' && s.peekAt(2) == '\n') {
			s.pos++
			s.newline()
			return
		}
		s.pos++
		s.emit(list, token.Backslash, pos)
		return

	case isIdentStart(c):
		s.scanIdentifier()
		s.emit(list, token.Identifier, pos)
		return

	case isDigit(c):
		s.scanNumber(list, h, pos)
		return

	case c == '"':
		s.scanQuoted(list, h, pos, '"', token.String, "unclosed string")
		return

	case c == '\'':
		s.scanQuoted(list, h, pos, '\'', token.Name, "unclosed name")
		return

	case c == '/' && s.peekAt(1) == '/':
		s.scanLineComment()
		s.emit(list, token.Comment, pos)
		return

	case c == '/' && s.peekAt(1) == '*':
		s.scanBlockComment(h, pos)
		s.emit(list, token.Comment, pos)
		return
	}

	if k, n := matchOperator(s.data[s.pos:]); n > 0 {
		s.pos += n
		s.emit(list, k, pos)
		return
	}

	// Unknown byte: dropped silently from the lexeme list, but recorded.
	h.Warnf(pos, "unexpected-symbol", "dropping unexpected symbol %q", c)
	s.pos++
}

func (s *scanner) scanWhitespace() {
	for s.pos < len(s.data) && isSpace(s.peek()) {
		s.pos++
	}
}

func (s *scanner) scanIdentifier() {
	s.pos++
	for s.pos < len(s.data) && isIdentCont(s.peek()) {
		s.pos++
	}
}

// scanQuoted scans a "..." or '...' literal. A backslash escape consumes
// exactly one following byte, whatever it is (including the quote
// character or a line ending) — only an *unescaped* line ending or EOF
// terminates the literal early, with errMsg reported.
func (s *scanner) scanQuoted(list *stream.List, h *reporter.Handler, pos token.Pos, quote byte, kind token.Kind, errMsg string) {
	s.pos++ // opening quote
	for {
		if s.pos >= len(s.data) {
			h.Errorf(pos, "unclosed-quoted", "%s", errMsg)
			break
		}
		c := s.peek()
		if c == quote {
			s.pos++
			break
		}
		if isLineEnd(c) {
			h.Errorf(pos, "unclosed-quoted", "%s", errMsg)
			break
		}
		if c == '\\' && s.pos+1 < len(s.data) {
			s.pos += 2
			continue
		}
		s.pos++
	}
	s.emit(list, kind, pos)
}

func (s *scanner) scanLineComment() {
	s.pos += 2
	for s.pos < len(s.data) && !isLineEnd(s.peek()) {
		s.pos++
	}
}

func (s *scanner) scanBlockComment(h *reporter.Handler, pos token.Pos) {
	s.pos += 2
	for {
		if s.pos >= len(s.data) {
			h.Errorf(pos, "unterminated-block-comment", "unexpected EOF in comment")
			return
		}
		if s.peek() == '*' && s.peekAt(1) == '/' {
			s.pos += 2
			return
		}
		if isLineEnd(s.peek()) {
			s.newline()
			continue
		}
		s.pos++
	}
}

// scanNumber scans a numeric literal starting at s.mark, where
// s.data[s.mark] is known to be a digit. It implements the octal/decimal/
// hexadecimal/float classification of §4.1 directly.
func (s *scanner) scanNumber(list *stream.List, h *reporter.Handler, pos token.Pos) {
	kind := token.Decimal

	if s.peek() == '0' {
		s.pos++
		switch {
		case s.peek() == 'x' || s.peek() == 'X':
			s.pos++
			kind = token.Hexadecimal
			n := 0
			for s.pos < len(s.data) && isHexDigit(s.peek()) {
				s.pos++
				n++
			}
			if n == 0 {
				h.Errorf(pos, "invalid-hexadecimal-literal", "invalid hexadecimal literal")
			}
			s.emit(list, kind, pos)
			return

		default:
			kind = token.Octal
			invalid := false
			for s.pos < len(s.data) && isDigit(s.peek()) {
				if s.peek() == '8' || s.peek() == '9' {
					invalid = true
				}
				s.pos++
			}
			if invalid {
				h.Errorf(pos, "invalid-octal-literal", "invalid octal literal")
				kind = token.Decimal
			}
		}
	} else {
		for s.pos < len(s.data) && isDigit(s.peek()) {
			s.pos++
		}
	}

	if s.peek() == '.' {
		s.scanFloatTail(h, pos)
		s.emit(list, token.Float, pos)
		return
	}

	s.emit(list, kind, pos)
}

// scanFloatTail consumes the fractional digits, optional exponent, and
// optional f/F suffix of a FLOAT literal. s.pos is positioned at the '.'
// on entry.
func (s *scanner) scanFloatTail(h *reporter.Handler, pos token.Pos) {
	s.pos++ // '.'
	for s.pos < len(s.data) && isDigit(s.peek()) {
		s.pos++
	}

	if s.peek() == 'e' || s.peek() == 'E' {
		save := s.pos
		s.pos++
		if s.peek() == '+' || s.peek() == '-' {
			s.pos++
		}
		n := 0
		for s.pos < len(s.data) && isDigit(s.peek()) {
			s.pos++
			n++
		}
		if n == 0 {
			h.Errorf(pos, "invalid-float-literal", "invalid float literal")
			s.pos = save
		}
	}

	if s.peek() == 'f' || s.peek() == 'F' {
		s.pos++
	}
}
