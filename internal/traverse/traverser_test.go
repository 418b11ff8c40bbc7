package traverse

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeprofile/internal/config"
	cperrors "github.com/standardbeagle/codeprofile/internal/errors"
	"github.com/standardbeagle/codeprofile/internal/types"
)

// writeTree creates files (relative path -> content) under a temp root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0644))
	}
	return root
}

func traverse(t *testing.T, root string, patterns ...string) *Result {
	t.Helper()
	cfg := config.Default(root)
	m, err := BuildMatcher(cfg, root, patterns)
	require.NoError(t, err)
	res, err := New(cfg, m).Traverse(context.Background(), root)
	require.NoError(t, err)
	return res
}

func relPaths(ps types.ProjectStructure) []string {
	out := make([]string, len(ps.Files))
	for i, f := range ps.Files {
		out[i] = f.RelPath
	}
	return out
}

func TestTraverse_SortedAndClassified(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/app.ts":            "export const app = 1\n",
		"src/app.test.ts":       "test('x', () => {})\n",
		"src/styles/main.css":   ".btn { color: red }\n",
		"package.json":          `{"name":"x"}`,
		"README.md":             "# hi\n",
		"public/logo.png":       "\x89PNG\r\n",
		"dist/bundle.js":        "var a=1",
		"scripts/vendor.min.js": "var a=1",
		"Makefile":              "all:\n",
	})

	res := traverse(t, root)
	ps := res.Structure

	assert.Equal(t, []string{
		"Makefile",
		"README.md",
		"dist/bundle.js",
		"package.json",
		"public/logo.png",
		"scripts/vendor.min.js",
		"src/app.test.ts",
		"src/app.ts",
		"src/styles/main.css",
	}, relPaths(ps))

	want := map[string]types.FileCategory{
		"Makefile":              types.CategoryConfig,
		"README.md":             types.CategoryDocumentation,
		"dist/bundle.js":        types.CategoryBuildArtifact,
		"package.json":          types.CategoryConfig,
		"public/logo.png":       types.CategoryAsset,
		"scripts/vendor.min.js": types.CategoryBuildArtifact,
		"src/app.test.ts":       types.CategoryTest,
		"src/app.ts":            types.CategorySource,
		"src/styles/main.css":   types.CategoryStylesheet,
	}
	for _, f := range ps.Files {
		assert.Equal(t, want[f.RelPath], f.Category, f.RelPath)
	}

	app, ok := ps.Lookup("src/app.ts")
	require.True(t, ok)
	assert.Equal(t, "TypeScript", app.Language)
	assert.Equal(t, ".ts", app.Ext)
	assert.Equal(t, "export const app = 1\n", string(app.Sample))

	readme, _ := ps.Lookup("README.md")
	assert.False(t, readme.HasSample(), "documentation is never sampled")

	assert.Equal(t, 1, ps.CategoryCounts[types.CategorySource])
	assert.Equal(t, 2, ps.CategoryCounts[types.CategoryConfig])
	assert.Contains(t, ps.Extensions, ".ts")
	assert.True(t, ps.HasDirectory("src/styles"))
	assert.Empty(t, res.Diagnostics)
}

func TestTraverse_Directories(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/b/c.go": "package b\n",
		"a/d.go":   "package a\n",
	})

	ps := traverse(t, root).Structure
	require.Len(t, ps.Directories, 3)

	assert.Equal(t, ".", ps.Directories[0].Path)
	assert.Equal(t, 0, ps.Directories[0].Depth)
	assert.Equal(t, []string{"a"}, ps.Directories[0].Children)

	assert.Equal(t, "a", ps.Directories[1].Path)
	assert.Equal(t, []string{"a/b", "a/d.go"}, ps.Directories[1].Children)

	assert.Equal(t, "a/b", ps.Directories[2].Path)
	assert.Equal(t, 2, ps.Directories[2].Depth)
}

func TestTraverse_IgnorePatterns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/main.go":           "package main\n",
		"src/gen/types.go":      "package gen\n",
		"logs/app.log":          "x",
		"logs/keep.log":         "x",
		"node_modules/x/i.js":   "x",
		"vendor/lib/lib.go":     "package lib\n",
		"docs/guide.md":         "x",
		"docs/internal/note.md": "x",
	})

	res := traverse(t, root, "src/gen/", "*.log", "!keep.log", "vendor", "docs/internal/")
	paths := relPaths(res.Structure)

	assert.Equal(t, []string{"docs/guide.md", "logs/keep.log", "src/main.go"}, paths)
	assert.False(t, res.Structure.HasDirectory("node_modules"), "default exclude")
	assert.False(t, res.Structure.HasDirectory("src/gen"))
}

// TestTraverse_IgnoredPathsNeverListed checks that every listed file is
// accepted by the same matcher, for a mix of negation and directory patterns.
func TestTraverse_IgnoredPathsNeverListed(t *testing.T) {
	files := map[string]string{}
	for _, p := range []string{"a.js", "b.ts", "c.py", "lib/a.js", "lib/b.ts", "lib/tmp/c.py", "tmp/x.js", "tmp/keep/y.js"} {
		files[p] = "x"
	}
	root := writeTree(t, files)
	patterns := []string{"*.js", "!lib/*.js", "tmp/", "!tmp/keep/"}

	res := traverse(t, root, patterns...)
	m, err := config.NewIgnoreMatcher(patterns...)
	require.NoError(t, err)

	for _, f := range res.Structure.Files {
		assert.False(t, m.ShouldIgnore(f.RelPath, false), f.RelPath)
	}
	// tmp/ is unanchored, so lib/tmp is excluded too and tmp/keep cannot
	// be re-included under an excluded parent
	assert.Equal(t, []string{"b.ts", "c.py", "lib/a.js", "lib/b.ts"}, relPaths(res.Structure))
}

func TestTraverse_Gitignore(t *testing.T) {
	root := writeTree(t, map[string]string{
		".gitignore":   "secret/\n*.tmp\n",
		"secret/a.go":  "package s\n",
		"x.tmp":        "x",
		"main.go":      "package main\n",
		"keep/z.tmp":   "x",
		"keep/main.go": "package keep\n",
	})

	res := traverse(t, root, "!keep/z.tmp")
	assert.Equal(t, []string{".gitignore", "keep/main.go", "keep/z.tmp", "main.go"}, relPaths(res.Structure))
}

func TestTraverse_BinaryAndLargeFilesNotSampled(t *testing.T) {
	root := writeTree(t, map[string]string{
		"bin.go":   "package x\x00\x00\x00",
		"small.go": "package x\n",
		"big.go":   "package x\n// padding\n",
	})

	cfg := config.Default(root)
	cfg.Scan.MaxFileSize = 12
	m, err := BuildMatcher(cfg, root, nil)
	require.NoError(t, err)
	res, err := New(cfg, m).Traverse(context.Background(), root)
	require.NoError(t, err)

	bin, _ := res.Structure.Lookup("bin.go")
	big, _ := res.Structure.Lookup("big.go")
	small, _ := res.Structure.Lookup("small.go")

	assert.False(t, bin.HasSample(), "NUL bytes mark binary content")
	assert.False(t, big.HasSample(), "files above MaxFileSize are recorded without sample")
	assert.True(t, small.HasSample())
	assert.Equal(t, int64(len("package x\n// padding\n")), big.Size)
}

func TestTraverse_SampleIsBounded(t *testing.T) {
	content := make([]byte, 100)
	for i := range content {
		content[i] = 'a'
	}
	root := writeTree(t, map[string]string{"long.py": string(content)})

	cfg := config.Default(root)
	cfg.Scan.ShallowSampleBytes = 10
	m, _ := BuildMatcher(cfg, root, nil)
	res, err := New(cfg, m).Traverse(context.Background(), root)
	require.NoError(t, err)

	f, _ := res.Structure.Lookup("long.py")
	assert.Len(t, f.Sample, 10)
	assert.Equal(t, int64(100), f.Size)
}

func TestTraverse_SymlinkCycle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := writeTree(t, map[string]string{"a/file.go": "package a\n"})
	require.NoError(t, os.Symlink(filepath.Join(root, "a"), filepath.Join(root, "a", "loop")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "broken")))

	res := traverse(t, root)
	assert.Equal(t, []string{"a/file.go"}, relPaths(res.Structure))

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, types.DiagInaccessiblePath, res.Diagnostics[0].Kind)
	assert.Equal(t, "broken", res.Diagnostics[0].Path)
}

func TestTraverse_UnreadableDirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := writeTree(t, map[string]string{
		"open/a.go":   "package open\n",
		"locked/b.go": "package locked\n",
	})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0000))
	defer os.Chmod(locked, 0755)

	res := traverse(t, root)
	assert.Equal(t, []string{"open/a.go"}, relPaths(res.Structure))
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "locked", res.Diagnostics[0].Path)
	assert.Equal(t, Stage, res.Diagnostics[0].Stage)
}

func TestTraverse_InvalidRoot(t *testing.T) {
	cfg := config.Default(".")
	m, _ := config.NewIgnoreMatcher()
	tr := New(cfg, m)

	_, err := tr.Traverse(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.True(t, cperrors.IsConfigError(err))

	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = tr.Traverse(context.Background(), file)
	assert.True(t, cperrors.IsConfigError(err))

	_, err = tr.Traverse(context.Background(), "")
	assert.True(t, cperrors.IsConfigError(err))
}

func TestTraverse_Cancelled(t *testing.T) {
	root := writeTree(t, map[string]string{"a/x.go": "package a\n", "b/y.go": "package b\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := config.Default(root)
	m, _ := BuildMatcher(cfg, root, nil)
	res, err := New(cfg, m).Traverse(ctx, root)
	require.NoError(t, err)
	assert.True(t, res.Structure.Truncated)
	assert.Empty(t, res.Structure.Files)
}

func TestTraverse_Idempotent(t *testing.T) {
	root := writeTree(t, map[string]string{
		"z.go": "package z\n", "a/b.ts": "x", "a/c/d.py": "x", "m.md": "x",
	})
	first := traverse(t, root)
	second := traverse(t, root)
	assert.Equal(t, first.Structure, second.Structure)
}

func TestBuildMatcher_InvalidCallerPattern(t *testing.T) {
	cfg := config.Default(".")
	_, err := BuildMatcher(cfg, t.TempDir(), []string{"[bad"})
	assert.True(t, cperrors.IsConfigError(err))
}
