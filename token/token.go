// Package token defines the Kind enumeration and the Lexeme type shared by
// every later stage of the preprocessor: the lexer produces Lexemes, the
// directive state machine and macro expander mutate the list they form in
// place, and the serializer walks what is left of that same list.
package token

import "fmt"

// Kind enumerates every lexeme category the lexer can produce.
type Kind uint8

const (
	// Invalid is the zero value; no lexeme should ever carry it.
	Invalid Kind = iota

	Whitespace
	LineEnd
	Comment
	Identifier
	String
	IncludeString
	Name
	Octal
	Decimal
	Hexadecimal
	Float

	Plus      // +
	Minus     // -
	Mul       // *
	Pow       // **
	Div       // /
	Mod       // %
	Assign    // =
	Eq        // ==
	Ne        // !=
	Lt        // <
	Le        // <=
	Gt        // >
	Ge        // >=
	Shl       // <<
	Shr       // >>
	Ushr      // >>>
	BitAnd    // &
	And       // &&
	BitOr     // |
	Or        // ||
	BitXor    // ^
	Xor       // ^^
	BitNot    // ~
	TildeAssign // ~=
	Not       // !
	Hash      // #
	Concat    // ##
	Dollar    // $
	DollarAssign // $=
	At        // @
	AtAssign  // @=
	Dot       // .
	Ellipsis  // ...
	Comma     // ,
	Colon     // :
	Semi      // ;
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	LBracket  // [
	RBracket  // ]
	Backslash // \

	PlusAssign  // +=
	MinusAssign // -=
	MulAssign   // *=
	DivAssign   // /=
	ModAssign   // %=
	Increment   // ++
	Decrement   // --

	// MetaUsedDefinePop is a synthetic marker inserted by the macro
	// expander; see macro.Expander.ExpandAt and PassPop.
	MetaUsedDefinePop

	// EOF is never linked into a lexeme list; the expression parser's
	// lookahead returns it to signal "no more lexemes" without requiring
	// a nil check at every call site.
	EOF
)

var names = map[Kind]string{
	Invalid:            "INVALID",
	Whitespace:         "WHITESPACE",
	LineEnd:            "LINE_END",
	Comment:            "COMMENT",
	Identifier:         "IDENTIFIER",
	String:             "STRING",
	IncludeString:      "INCLUDE_STRING",
	Name:               "NAME",
	Octal:              "OCTAL",
	Decimal:            "DECIMAL",
	Hexadecimal:        "HEXADECIMAL",
	Float:              "FLOAT",
	Plus:               "+",
	Minus:              "-",
	Mul:                "*",
	Pow:                "**",
	Div:                "/",
	Mod:                "%",
	Assign:             "=",
	Eq:                 "==",
	Ne:                 "!=",
	Lt:                 "<",
	Le:                 "<=",
	Gt:                 ">",
	Ge:                 ">=",
	Shl:                "<<",
	Shr:                ">>",
	Ushr:               ">>>",
	BitAnd:             "&",
	And:                "&&",
	BitOr:              "|",
	Or:                 "||",
	BitXor:             "^",
	Xor:                "^^",
	BitNot:             "~",
	TildeAssign:        "~=",
	Not:                "!",
	Hash:               "#",
	Concat:             "##",
	Dollar:             "$",
	DollarAssign:       "$=",
	At:                 "@",
	AtAssign:           "@=",
	Dot:                ".",
	Ellipsis:           "...",
	Comma:              ",",
	Colon:              ":",
	Semi:               ";",
	LParen:             "(",
	RParen:             ")",
	LBrace:             "{",
	RBrace:             "}",
	LBracket:           "[",
	RBracket:           "]",
	Backslash:          `\`,
	PlusAssign:         "+=",
	MinusAssign:        "-=",
	MulAssign:          "*=",
	DivAssign:          "/=",
	ModAssign:          "%=",
	Increment:          "++",
	Decrement:          "--",
	MetaUsedDefinePop:  "META_USED_DEFINE_POP",
	EOF:                "EOF",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsNumeric reports whether k is one of the four numeric-literal kinds.
func (k Kind) IsNumeric() bool {
	switch k {
	case Octal, Decimal, Hexadecimal, Float:
		return true
	default:
		return false
	}
}

// Pos identifies where in a source file a Lexeme began.
type Pos struct {
	File   string
	Line   int // 1-based
	Column int // 1-based, byte offset from line start
}

// String renders the position the way diagnostics do: "file(line,column)".
func (p Pos) String() string {
	return fmt.Sprintf("%s(%d,%d)", p.File, p.Line, p.Column)
}

// Lexeme is both the atomic unit the lexer produces and the node of the
// intrusive doubly-linked list the rest of the preprocessor mutates in
// place. Lexemes are allocated from a bump arena (see upp/stream) so that
// Next and Prev remain valid raw pointers across arbitrary splices
// elsewhere in the same list.
type Lexeme struct {
	Kind Kind
	Pos  Pos

	// Length is the number of source bytes this lexeme covers. It is 0
	// for synthetic lexemes such as MetaUsedDefinePop; copies made for
	// macro replacement keep the Length of the lexeme they were copied
	// from even though their Text is interned (see Text).
	Length int

	// Text is the lexeme's textual content: either a direct slice of a
	// file's byte buffer (for ordinary lexemes; its length equals
	// Length), or a string drawn from the interned literal pool (for
	// copies materialized during macro expansion and for synthetic
	// lexemes such as MetaUsedDefinePop, whose Text is empty).
	Text string

	Next, Prev *Lexeme
}

// IsSignificant reports whether l carries content the directive state
// machine and expression parser should see, i.e. it is neither
// whitespace, a line ending, nor a comment.
func (l *Lexeme) IsSignificant() bool {
	switch l.Kind {
	case Whitespace, LineEnd, Comment:
		return false
	default:
		return true
	}
}

// Clone returns a value copy of l with no list linkage, suitable for
// storing inside a macro.Definition's replacement list or for splicing a
// fresh copy into the stream during expansion.
func (l *Lexeme) Clone() Lexeme {
	c := *l
	c.Next, c.Prev = nil, nil
	return c
}
