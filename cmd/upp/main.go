// Command upp is the driver of SPEC_FULL.md §6: it parses the fixed
// command-line surface, loads an optional upp.yaml, runs the
// preprocessor core, and prints diagnostics and output.
//
// Grounded on the teacher library not shipping a CLI at all (it is
// consumed as a library by protoc-gen-* binaries elsewhere) — the flag
// surface here is new, built with the standard library's flag package
// since no CLI-flag library (pflag, cobra, urfave/cli, ...) appears
// anywhere in the retrieved corpus's go.mod files to ground a
// third-party choice on; see DESIGN.md.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/unrealscript-tools/upp/internal/config"
	"github.com/unrealscript-tools/upp/internal/diag"
	"github.com/unrealscript-tools/upp/preprocessor"
	"github.com/unrealscript-tools/upp/reporter"
	"github.com/unrealscript-tools/upp/resolver"
	"github.com/unrealscript-tools/upp/token"
)

type stringList []string

func (s *stringList) String() string { return fmt.Sprint([]string(*s)) }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("upp", flag.ContinueOnError)

	var (
		output      string
		input       string
		includeDirs stringList
		defines     stringList
		verbose     bool
		dumpMacros  bool
		configPath  string
	)

	fs.StringVar(&output, "o", "", "output path (default stdout)")
	fs.StringVar(&output, "output", "", "output path (default stdout)")
	fs.StringVar(&input, "i", "", "input path")
	fs.StringVar(&input, "input", "", "input path")
	fs.Var(&includeDirs, "I", "include directory (repeatable)")
	fs.Var(&includeDirs, "include-dir", "include directory (repeatable)")
	fs.Var(&defines, "D", "NAME[=VALUE] (repeatable)")
	fs.Var(&defines, "define", "NAME[=VALUE] (repeatable)")
	fs.BoolVar(&verbose, "verbose", false, "render caret-snippet diagnostics")
	fs.StringVar(&configPath, "c", "", "path to upp.yaml (default ./upp.yaml)")
	fs.StringVar(&configPath, "config", "", "path to upp.yaml (default ./upp.yaml)")
	fs.BoolVar(&dumpMacros, "dump-macros", false, "print the final macro table after a successful run")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if input == "" {
		fmt.Fprintln(os.Stderr, "upp: -i/--input is required")
		return 2
	}

	if configPath == "" {
		configPath = "upp.yaml"
	}
	cfg, _, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "upp: reading %s: %v\n", configPath, err)
		return 1
	}
	mergedDefines, mergedIncludeDirs := config.Merge(cfg, defines, includeDirs)

	rootData, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "upp: %v\n", err)
		return 1
	}

	var parsedDefines []preprocessor.CommandLineDefine
	for _, raw := range mergedDefines {
		d, err := preprocessor.ParseDefine(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "upp: %v\n", err)
			return 2
		}
		parsedDefines = append(parsedDefines, d)
	}

	res := preprocessor.Run(preprocessor.Options{
		RootPath: input,
		RootDir:  resolver.RemoveFilename(absOrSelf(input)),
		Resolver: resolver.New(mergedIncludeDirs),
		Defines:  parsedDefines,
	}, rootData)

	diags := res.Handler.Diagnostics()
	reporter.SortByPosition(diags)
	for _, d := range diags {
		if verbose {
			diag.WriteVerbose(os.Stderr, d, sourceFor(d, rootData, input))
		} else {
			diag.WriteLine(os.Stderr, d)
		}
	}

	if res.Handler.HasErrors() {
		return 1
	}

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "upp: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := preprocessor.WriteOutput(f, res); err != nil {
			fmt.Fprintf(os.Stderr, "upp: %v\n", err)
			return 1
		}
	} else if err := preprocessor.WriteOutput(out, res); err != nil {
		fmt.Fprintf(os.Stderr, "upp: %v\n", err)
		return 1
	}

	if dumpMacros {
		for _, d := range res.Macros.Dump() {
			fmt.Fprintf(os.Stdout, "%s=%s\n", d.Name, macroText(d.Replacement))
		}
	}

	return 0
}

func absOrSelf(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// sourceFor returns the bytes of the file the diagnostic points into:
// the root file's own bytes if the diagnostic is positioned there,
// otherwise an empty slice, since an included file's bytes aren't
// retained by the driver once control returns here (the resolver's own
// cache holds them for the run's lifetime, but the driver has no need
// to look them back up outside of verbose rendering of root-file
// diagnostics).
func sourceFor(d reporter.Diagnostic, rootData []byte, rootPath string) []byte {
	if d.Pos.File == rootPath {
		return rootData
	}
	return nil
}

// macroText renders a macro's replacement lexemes as space-joined text
// for --dump-macros, which is a debugging aid rather than something
// re-lexed, so it skips the serializer's token-merge-prevention rules.
func macroText(replacement []token.Lexeme) string {
	var b strings.Builder
	for i, r := range replacement {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(r.Text)
	}
	return b.String()
}

