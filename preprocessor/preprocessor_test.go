package preprocessor_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unrealscript-tools/upp/preprocessor"
	"github.com/unrealscript-tools/upp/token"
)

// inMemoryResolver serves #include targets out of a map, keyed exactly as
// the directive asked for it, mirroring directive_test.go's fakeResolver
// so this package's end-to-end tests don't touch the filesystem.
type inMemoryResolver struct {
	files map[string]string
}

func (r *inMemoryResolver) ResolveLoad(cwd, path string) (string, []byte, bool) {
	data, ok := r.files[path]
	if !ok {
		return "", nil, false
	}
	return path, []byte(data), true
}

func (r *inMemoryResolver) ResolveAngle(path string) (string, []byte, bool) {
	return r.ResolveLoad("", path)
}

// diffStrings renders a unified diff between want and got when they
// differ, the same shape the teacher's internal/corpora golden-test
// harness produces via go-difflib, so a failing assertion here reads as a
// patch instead of two dumped strings.
func diffStrings(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	require.NoError(t, err)
	t.Errorf("output mismatch:\n%s", diff)
}

// TestEndToEndScenarios implements spec §8's six numbered end-to-end
// scenarios verbatim.
func TestEndToEndScenarios(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		src     string
		defines []preprocessor.CommandLineDefine
		files   map[string]string
		want    string
	}{
		{
			name: "scenario 1: object-like define substitutes in place",
			src:  "#define X 42\nint a = X;",
			want: "\nint a = 42;",
		},
		{
			name: "scenario 2: mutually referential macros block after one expansion",
			src:  "#define A B\n#define B A\nA",
			want: "\n\nA",
		},
		{
			name: "scenario 3: #if/#else selects the true branch",
			src:  "#if 1+2*3 > 6\nok\n#else\nno\n#endif",
			want: "\nok\n\n",
		},
		{
			name:    "scenario 4 (with define): #ifdef sees the -D define",
			src:     "#ifdef FOO\nx\n#endif",
			defines: []preprocessor.CommandLineDefine{{Name: "FOO"}},
			want:    "\nx\n",
		},
		{
			name: "scenario 4 (without define): #ifdef elides without -D",
			src:  "#ifdef FOO\nx\n#endif",
			want: "\n",
		},
		{
			name:  "scenario 5: quoted #include splices the resolved file inline",
			src:   "#include \"a.inc\"\nafter",
			files: map[string]string{"a.inc": "before\n"},
			want:  "before\n\nafter",
		},
		{
			name: "scenario 6: defined() combines with macro expansion in #if",
			src:  "#if defined(X) && X > 0\nyes\n#endif",
			defines: []preprocessor.CommandLineDefine{
				{Name: "X", Replacement: []token.Lexeme{{Kind: token.Decimal, Text: "5"}}},
			},
			want: "\nyes\n",
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			resolver := &inMemoryResolver{files: c.files}
			res := preprocessor.Run(preprocessor.Options{
				RootPath: "root.uc",
				RootDir:  "/root",
				Resolver: resolver,
				Defines:  c.defines,
			}, []byte(c.src))

			require.False(t, res.Handler.HasErrors(), "diagnostics: %v", res.Handler.Diagnostics())

			var b strings.Builder
			require.NoError(t, preprocessor.WriteOutput(&b, res))
			diffStrings(t, c.want, b.String())
		})
	}
}

// TestParseDefineReplacementShape locks down §6's -D parsing algorithm:
// the replacement is the tail after the first '=' lexeme, excluding
// WHITESPACE and COMMENT. go-cmp compares the parsed Lexeme slice
// structurally (ignoring the Next/Prev list-linkage fields a plain
// reflect-based Equal would trip over) the same way the teacher's
// internal/prototest helpers compare descriptor values in tests.
func TestParseDefineReplacementShape(t *testing.T) {
	t.Parallel()

	got, err := preprocessor.ParseDefine("X=1 + 2 // trailing comment")
	require.NoError(t, err)
	assert.Equal(t, "X", got.Name)

	want := []token.Lexeme{
		{Kind: token.Decimal, Text: "1"},
		{Kind: token.Plus, Text: "+"},
		{Kind: token.Decimal, Text: "2"},
	}

	opt := cmp.Comparer(func(a, b token.Lexeme) bool {
		return a.Kind == b.Kind && a.Text == b.Text
	})
	if diff := cmp.Diff(want, got.Replacement, opt); diff != "" {
		t.Errorf("replacement mismatch (-want +got):\n%s", diff)
	}
}

// TestParseDefineNameOnly covers the no-'='-lexeme shape: -D FOO alone
// defines FOO with an empty replacement.
func TestParseDefineNameOnly(t *testing.T) {
	t.Parallel()

	got, err := preprocessor.ParseDefine("FOO")
	require.NoError(t, err)
	assert.Equal(t, "FOO", got.Name)
	assert.Empty(t, got.Replacement)
}

// TestRunFailureSuppressesOutput locks down §7: the serializer is never
// meaningful when an error-severity diagnostic was recorded.
func TestRunFailureSuppressesOutput(t *testing.T) {
	t.Parallel()

	res := preprocessor.Run(preprocessor.Options{
		RootPath: "root.uc",
		RootDir:  "/root",
	}, []byte("#undef NEVER_DEFINED\n"))

	require.True(t, res.Handler.HasErrors())
	assert.Nil(t, res.Output)
}
