package lexer

import "github.com/unrealscript-tools/upp/token"

// operators lists every multi-byte punctuator the dialect recognizes,
// longest first within each starting byte so matchOperator's linear scan
// performs maximal munch without needing a trie.
var operators = []struct {
	text string
	kind token.Kind
}{
	{"...", token.Ellipsis},
	{">>>", token.Ushr},
	{"==", token.Eq},
	{"!=", token.Ne},
	{"<=", token.Le},
	{">=", token.Ge},
	{"<<", token.Shl},
	{">>", token.Shr},
	{"&&", token.And},
	{"||", token.Or},
	{"^^", token.Xor},
	{"~=", token.TildeAssign},
	{"+=", token.PlusAssign},
	{"-=", token.MinusAssign},
	{"*=", token.MulAssign},
	{"/=", token.DivAssign},
	{"%=", token.ModAssign},
	{"++", token.Increment},
	{"--", token.Decrement},
	{"**", token.Pow},
	{"##", token.Concat},
	{"$=", token.DollarAssign},
	{"@=", token.AtAssign},
}

var singleByteOperators = map[byte]token.Kind{
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Mul,
	'/': token.Div,
	'%': token.Mod,
	'=': token.Assign,
	'<': token.Lt,
	'>': token.Gt,
	'&': token.BitAnd,
	'|': token.BitOr,
	'^': token.BitXor,
	'~': token.BitNot,
	'!': token.Not,
	'#': token.Hash,
	'$': token.Dollar,
	'@': token.At,
	'.': token.Dot,
	',': token.Comma,
	':': token.Colon,
	';': token.Semi,
	'(': token.LParen,
	')': token.RParen,
	'{': token.LBrace,
	'}': token.RBrace,
	'[': token.LBracket,
	']': token.RBracket,
}

// matchOperator returns the kind and byte length of the longest punctuator
// that begins at the start of rest, or (token.Invalid, 0) if rest doesn't
// begin with one at all.
func matchOperator(rest []byte) (token.Kind, int) {
	for _, op := range operators {
		if len(rest) >= len(op.text) && string(rest[:len(op.text)]) == op.text {
			return op.kind, len(op.text)
		}
	}
	if len(rest) > 0 {
		if k, ok := singleByteOperators[rest[0]]; ok {
			return k, 1
		}
	}
	return token.Invalid, 0
}
