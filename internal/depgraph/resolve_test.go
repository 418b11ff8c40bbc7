package depgraph

import (
	"path"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/codeprofile/internal/types"
)

var langByExt = map[string]string{
	".ts": "TypeScript", ".tsx": "TypeScript", ".js": "JavaScript", ".vue": "Vue",
	".py": "Python", ".go": "Go", ".c": "C", ".h": "C", ".rs": "Rust",
	".rb": "Ruby", ".php": "PHP",
}

func files(paths ...string) []*types.FileRecord {
	out := make([]*types.FileRecord, 0, len(paths))
	for _, p := range paths {
		out = append(out, &types.FileRecord{
			RelPath:  p,
			Name:     path.Base(p),
			Ext:      path.Ext(p),
			Category: types.CategorySource,
			Language: langByExt[path.Ext(p)],
		})
	}
	return out
}

func TestResolve_Script(t *testing.T) {
	fs := files(
		"src/app.ts", "src/lib/util.ts", "src/components/index.tsx",
		"src/legacy.js", "src/esm.ts", "src/views/Home.vue",
	)
	r := newResolver(fs, nil)
	from := fs[0]

	tests := []struct {
		spec string
		want string
	}{
		{"./lib/util", "src/lib/util.ts"},
		{"./lib/util.ts", "src/lib/util.ts"},
		{"./components", "src/components/index.tsx"},
		{"./legacy", "src/legacy.js"},
		{"./esm.js", "src/esm.ts"},
		{"./views/Home.vue", "src/views/Home.vue"},
		{"@/lib/util", "src/lib/util.ts"},
		{"~/components", "src/components/index.tsx"},
		{"src/legacy", "src/legacy.js"},
		{"/src/lib/util", "src/lib/util.ts"},
		{"react", ""},
		{"./missing", ""},
		{"../outside", ""},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.want, r.resolve(from, importRef{Spec: tt.spec}))
		})
	}
}

func TestResolve_Python(t *testing.T) {
	fs := files(
		"pkg/sub/mod.py", "pkg/core/__init__.py", "pkg/core/db.py",
		"pkg/sub/utils.py", "pkg/sub/__init__.py", "src/lib/helpers.py", "app/models.py",
	)
	r := newResolver(fs, nil)
	from := fs[0]

	assert.Equal(t, "pkg/core/__init__.py", r.resolve(from, importRef{Spec: "..core"}))
	assert.Equal(t, "pkg/core/db.py", r.resolve(from, importRef{Spec: "..core/db"}))
	assert.Equal(t, "pkg/sub/utils.py", r.resolve(from, importRef{Spec: ".utils"}))
	assert.Equal(t, "pkg/sub/__init__.py", r.resolve(from, importRef{Spec: "."}))
	assert.Equal(t, "app/models.py", r.resolve(from, importRef{Spec: "app/models"}))
	assert.Equal(t, "src/lib/helpers.py", r.resolve(from, importRef{Spec: "lib/helpers"}))
	assert.Equal(t, "", r.resolve(from, importRef{Spec: "os"}))
	assert.Equal(t, "", r.resolve(from, importRef{Spec: "....toofar"}))
}

func TestResolve_GoModules(t *testing.T) {
	fs := files(
		"main.go", "internal/store/store.go", "internal/store/cache.go",
		"internal/store/aaa_test.go", "tools/gen/main.go",
	)
	mods := []goModule{
		{Dir: ".", Path: "example.com/app"},
		{Dir: "tools", Path: "example.com/app/tools"},
	}
	r := newResolver(fs, mods)
	from := fs[0]

	assert.Equal(t, "internal/store/cache.go", r.resolve(from, importRef{Spec: "example.com/app/internal/store"}),
		"first non-test file of the package")
	assert.Equal(t, "tools/gen/main.go", r.resolve(from, importRef{Spec: "example.com/app/tools/gen"}),
		"nested module wins over its parent")
	assert.Equal(t, "main.go", r.resolve(fs[1], importRef{Spec: "example.com/app"}))
	assert.Equal(t, "", r.resolve(from, importRef{Spec: "example.com/app/missing"}))
	assert.Equal(t, "", r.resolve(from, importRef{Spec: "github.com/other/lib"}))
}

func TestResolve_OtherLanguages(t *testing.T) {
	fs := files(
		"src/main.c", "src/util.h", "include/net/sock.h",
		"crate/src/main.rs", "crate/src/config.rs", "crate/src/server/mod.rs", "crate/src/server/http.rs",
		"lib/app.rb", "lib/helpers/format.rb",
		"web/index.php", "web/src/Kernel.php",
	)
	r := newResolver(fs, nil)
	byPath := map[string]*types.FileRecord{}
	for _, f := range fs {
		byPath[f.RelPath] = f
	}

	assert.Equal(t, "src/util.h", r.resolve(byPath["src/main.c"], importRef{Spec: "util.h"}))
	assert.Equal(t, "include/net/sock.h", r.resolve(byPath["src/main.c"], importRef{Spec: "net/sock.h"}))
	assert.Equal(t, "crate/src/config.rs", r.resolve(byPath["crate/src/main.rs"], importRef{Spec: "config"}))
	assert.Equal(t, "crate/src/server/mod.rs", r.resolve(byPath["crate/src/main.rs"], importRef{Spec: "server"}))
	assert.Equal(t, "crate/src/server/http.rs", r.resolve(byPath["crate/src/server/mod.rs"], importRef{Spec: "http"}))
	assert.Equal(t, "", r.resolve(byPath["crate/src/config.rs"], importRef{Spec: "http"}))
	assert.Equal(t, "lib/helpers/format.rb", r.resolve(byPath["lib/app.rb"], importRef{Spec: "helpers/format"}))
	assert.Equal(t, "web/src/Kernel.php", r.resolve(byPath["web/index.php"], importRef{Spec: "./src/Kernel.php"}))
}

func TestNodeID(t *testing.T) {
	assert.Equal(t, "src/app", nodeID("src/app.ts"))
	assert.Equal(t, "src/comp.test", nodeID("src/comp.test.ts"))
	assert.Equal(t, "Makefile", nodeID("Makefile"))
}

func TestResolverNode_SharedStem(t *testing.T) {
	r := newResolver(files("lib/util.js", "lib/util.ts", "lib/app.ts", "src/foo.c", "src/foo.h", "a.ts", "a.ts.js"), nil)

	tests := []struct {
		relPath string
		want    string
	}{
		{"lib/util.js", "lib/util.js"},
		{"lib/util.ts", "lib/util.ts"},
		{"lib/app.ts", "lib/app"},
		{"src/foo.c", "src/foo.c"},
		{"src/foo.h", "src/foo.h"},
		{"a.ts", "a"},
		{"a.ts.js", "a.ts.js"},
		{"unselected.go", "unselected"},
	}
	for _, tt := range tests {
		t.Run(tt.relPath, func(t *testing.T) {
			assert.Equal(t, tt.want, r.node(tt.relPath))
		})
	}
}
