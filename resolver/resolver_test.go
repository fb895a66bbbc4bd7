package resolver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unrealscript-tools/upp/resolver"
)

func TestResolveLoadReadsFileRelativeToCwd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inner.uc"), []byte("body"), 0o644))

	r := resolver.New(nil)
	canonical, data, ok := r.ResolveLoad(dir, "inner.uc")
	require.True(t, ok)
	assert.Equal(t, "body", string(data))
	assert.NotEmpty(t, canonical)
}

func TestResolveLoadMissingFileFails(t *testing.T) {
	t.Parallel()

	r := resolver.New(nil)
	_, _, ok := r.ResolveLoad(t.TempDir(), "missing.uc")
	assert.False(t, ok)
}

func TestResolveLoadCachesByCanonicalPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inner.uc"), []byte("body"), 0o644))

	r := resolver.New(nil)
	_, data1, ok := r.ResolveLoad(dir, "inner.uc")
	require.True(t, ok)
	_, data2, ok := r.ResolveLoad(dir, "./inner.uc")
	require.True(t, ok)

	// Same canonical file reached two different ways must hand back the
	// exact same backing array, since lexemes slice into it for the
	// lifetime of the run.
	assert.Same(t, &data1[0], &data2[0])
}

func TestResolveAngleSearchesRegistrationOrderFirst(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(first, "lib.uc"), []byte("from-first"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(second, "lib.uc"), []byte("from-second"), 0o644))

	r := resolver.New([]string{first, second})
	_, data, ok := r.ResolveAngle("lib.uc")
	require.True(t, ok)
	assert.Equal(t, "from-first", string(data))
}

func TestResolveAngleFallsThroughToLaterDirectory(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(second, "lib.uc"), []byte("from-second"), 0o644))

	r := resolver.New([]string{first, second})
	_, data, ok := r.ResolveAngle("lib.uc")
	require.True(t, ok)
	assert.Equal(t, "from-second", string(data))
}

func TestResolveAngleNotFoundAcrossAllDirs(t *testing.T) {
	t.Parallel()

	r := resolver.New([]string{t.TempDir(), t.TempDir()})
	_, _, ok := r.ResolveAngle("missing.uc")
	assert.False(t, ok)
}

func TestResolveAngleWithNoIncludeDirsFails(t *testing.T) {
	t.Parallel()

	var r resolver.Resolver
	_, _, ok := r.ResolveAngle("anything.uc")
	assert.False(t, ok)
}

func TestNewExpandsGlobPatterns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "vendorA"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "vendorB"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "vendorB", "lib.uc"), []byte("vendored"), 0o644))

	r := resolver.New([]string{filepath.Join(root, "vendor*")})
	_, data, ok := r.ResolveAngle("lib.uc")
	require.True(t, ok)
	assert.Equal(t, "vendored", string(data))
}

func TestRemoveFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/a/b", resolver.RemoveFilename("/a/b/c.uc"))
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "f.uc")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.True(t, resolver.FileExists(file))
	assert.False(t, resolver.FileExists(dir))
	assert.False(t, resolver.FileExists(filepath.Join(dir, "nope.uc")))
}
