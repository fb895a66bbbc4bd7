// Package preprocessor wires the lexer, directive state machine, macro
// table, and serializer into the single entry point spec §2 describes:
// read a root file, expand it in place, emit the residual text iff no
// error-severity diagnostic was recorded (§7: "on success the
// serializer runs, on failure it does not").
package preprocessor

import (
	"fmt"
	"io"

	"github.com/unrealscript-tools/upp/directive"
	"github.com/unrealscript-tools/upp/lexer"
	"github.com/unrealscript-tools/upp/macro"
	"github.com/unrealscript-tools/upp/reporter"
	"github.com/unrealscript-tools/upp/serializer"
	"github.com/unrealscript-tools/upp/token"
)

// Options configures a Run.
type Options struct {
	// RootPath is the path of the file to preprocess.
	RootPath string

	// RootDir is the directory quoted #include paths resolve against;
	// normally the directory containing RootPath.
	RootDir string

	// Resolver loads #include targets; see directive.FileResolver.
	Resolver directive.FileResolver

	// Defines are -D/--define or upp.yaml entries applied before
	// processing begins, in order (later entries win on name
	// collision, matching the macro table's redefinition rule).
	Defines []CommandLineDefine
}

// CommandLineDefine is a pre-parsed -D NAME[=VALUE] entry: Replacement
// is already split into lexemes by the driver (§6: "constructs a macro
// whose replacement is the tail excluding WHITESPACE and COMMENT
// lexemes").
type CommandLineDefine struct {
	Name        string
	Replacement []token.Lexeme
}

// Result is the outcome of a Run.
type Result struct {
	Handler *reporter.Handler
	Macros  *macro.Table
	Output  *token.Lexeme // nil on failure
}

// Run preprocesses the file at opts.RootPath (whose bytes are rootData)
// and returns the accumulated diagnostics, the final macro table (for
// --dump-macros), and, on success, the first lexeme of the emitted
// program text.
func Run(opts Options, rootData []byte) Result {
	h := &reporter.Handler{}
	macros := &macro.Table{}

	for _, d := range opts.Defines {
		macros.Define(&macro.Definition{Name: d.Name, Replacement: d.Replacement})
	}

	list := lexer.Lex(opts.RootPath, rootData, h)

	m := directive.NewMachine(macros, opts.Resolver, opts.RootDir, h)
	m.Run(list)

	res := Result{Handler: h, Macros: macros}
	if !h.HasErrors() {
		res.Output = list.Front()
	}
	return res
}

// WriteOutput serializes res.Output to w. It is only meaningful when
// Run succeeded (res.Output may legitimately be nil for an empty input,
// which still serializes to nothing).
func WriteOutput(w io.Writer, res Result) error {
	return serializer.Write(w, res.Output)
}

// ParseDefine splits a -D/--define value of the form NAME[=VALUE] into
// a CommandLineDefine, per §6: the driver lexes the value, finds the
// first '=' lexeme if any, and keeps the tail (excluding WHITESPACE and
// COMMENT lexemes) as the replacement.
func ParseDefine(raw string) (CommandLineDefine, error) {
	h := &reporter.Handler{}
	list := lexer.Lex("<command-line>", []byte(raw), h)

	first := list.Front()
	if first == nil || first.Kind != token.Identifier {
		return CommandLineDefine{}, fmt.Errorf("invalid -D value %q: expected NAME[=VALUE]", raw)
	}

	d := CommandLineDefine{Name: first.Text}
	cur := first.Next
	for cur != nil && cur.Kind != token.Assign {
		cur = cur.Next
	}
	if cur != nil {
		for cur = cur.Next; cur != nil; cur = cur.Next {
			if cur.IsSignificant() {
				d.Replacement = append(d.Replacement, cur.Clone())
			}
		}
	}
	return d, nil
}
