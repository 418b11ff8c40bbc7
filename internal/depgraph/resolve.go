package depgraph

import (
	"path"
	"sort"
	"strings"

	"github.com/standardbeagle/codeprofile/internal/types"
)

var scriptExts = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".mts", ".cts", ".vue", ".svelte", ".astro"}

// scriptAliases are the common bundler path aliases for the source root.
var scriptAliases = []struct{ prefix, dir string }{
	{"@/", "src"},
	{"~/", "src"},
	{"src/", "src"},
}

// goModule is a go.mod found in the tree.
type goModule struct {
	Dir  string // "." for the root
	Path string
}

// resolver maps import specifiers to graph files. Only files selected for
// the graph are valid targets, so edges never dangle.
type resolver struct {
	files      map[string]bool
	nodes      map[string]string // rel path -> graph node ID
	goModules  []goModule        // longest module path first
	goPackages map[string]string // package dir -> first non-test file
}

func newResolver(selected []*types.FileRecord, modules []goModule) *resolver {
	r := &resolver{
		files:      make(map[string]bool, len(selected)),
		nodes:      make(map[string]string, len(selected)),
		goPackages: make(map[string]string),
	}
	stems := make(map[string]int, len(selected))
	for _, f := range selected {
		r.files[f.RelPath] = true
		stems[nodeID(f.RelPath)]++
	}
	for _, f := range selected {
		id := nodeID(f.RelPath)
		if stems[id] > 1 || (id != f.RelPath && r.files[id]) {
			id = f.RelPath
		}
		r.nodes[f.RelPath] = id
		if f.Language == "Go" && !strings.HasSuffix(f.Name, "_test.go") {
			dir := path.Dir(f.RelPath)
			if cur, ok := r.goPackages[dir]; !ok || f.RelPath < cur {
				r.goPackages[dir] = f.RelPath
			}
		}
	}
	r.goModules = append(r.goModules, modules...)
	sort.Slice(r.goModules, func(i, j int) bool {
		return len(r.goModules[i].Path) > len(r.goModules[j].Path)
	})
	return r
}

// resolve returns the rel path of the file ref points at, or "".
func (r *resolver) resolve(from *types.FileRecord, ref importRef) string {
	dir := path.Dir(from.RelPath)
	spec := ref.Spec
	switch from.Language {
	case "JavaScript", "TypeScript", "Vue", "Svelte", "Astro":
		return r.resolveScript(dir, spec)
	case "Python":
		return r.resolvePython(dir, spec)
	case "Go":
		return r.resolveGo(spec)
	case "C", "C++":
		return r.first(path.Join(dir, spec), clean(spec), path.Join("include", spec))
	case "Rust":
		return r.resolveRustMod(from, spec)
	case "Ruby":
		base := path.Join(dir, spec)
		if path.Ext(base) == "" {
			base += ".rb"
		}
		return r.first(base)
	case "PHP":
		if isRelative(spec) {
			return r.first(path.Join(dir, spec))
		}
		return r.first(path.Join(dir, spec), clean(spec))
	}
	return ""
}

func (r *resolver) resolveScript(dir, spec string) string {
	switch {
	case isRelative(spec):
		return r.probeScript(path.Join(dir, spec))
	case strings.HasPrefix(spec, "/"):
		return r.probeScript(clean(spec))
	}
	for _, a := range scriptAliases {
		if strings.HasPrefix(spec, a.prefix) {
			if hit := r.probeScript(path.Join(a.dir, strings.TrimPrefix(spec, a.prefix))); hit != "" {
				return hit
			}
		}
	}
	return ""
}

// probeScript tries the path as written, with each script extension, as a
// directory index, and with a ".js" suffix swapped for its TypeScript source.
func (r *resolver) probeScript(base string) string {
	if r.files[base] {
		return base
	}
	cands := make([]string, 0, 2*len(scriptExts)+2)
	for _, ext := range scriptExts {
		cands = append(cands, base+ext)
	}
	for _, ext := range scriptExts {
		cands = append(cands, base+"/index"+ext)
	}
	if stem, ok := strings.CutSuffix(base, ".js"); ok {
		cands = append(cands, stem+".ts", stem+".tsx")
	}
	return r.first(cands...)
}

// resolvePython handles "..pkg/mod" (relative, one dot per level starting
// at the importer's package) and "pkg/mod" (from the root, a src/ layout
// or the importer's directory).
func (r *resolver) resolvePython(dir, spec string) string {
	rest := strings.TrimLeft(spec, ".")
	dots := len(spec) - len(rest)

	var bases []string
	if dots > 0 {
		base := dir
		for i := 1; i < dots; i++ {
			base = path.Dir(base)
		}
		bases = append(bases, path.Join(base, rest))
	} else {
		bases = append(bases, rest, path.Join("src", rest), path.Join(dir, rest))
	}

	var cands []string
	for _, b := range bases {
		if rest != "" {
			cands = append(cands, b+".py")
		}
		cands = append(cands, path.Join(b, "__init__.py"))
	}
	return r.first(cands...)
}

// resolveGo maps an import path under a known module to the package
// directory and picks that package's canonical file.
func (r *resolver) resolveGo(spec string) string {
	for _, m := range r.goModules {
		if m.Path == "" {
			continue
		}
		var rel string
		switch {
		case spec == m.Path:
			rel = "."
		case strings.HasPrefix(spec, m.Path+"/"):
			rel = strings.TrimPrefix(spec, m.Path+"/")
		default:
			continue
		}
		if f, ok := r.goPackages[path.Join(m.Dir, rel)]; ok {
			return f
		}
		return ""
	}
	return ""
}

// resolveRustMod resolves "mod x;". Crate roots and mod.rs files declare
// children beside themselves; any other file declares them in a directory
// named after itself.
func (r *resolver) resolveRustMod(from *types.FileRecord, name string) string {
	dir := path.Dir(from.RelPath)
	switch from.Name {
	case "main.rs", "lib.rs", "mod.rs":
	default:
		dir = path.Join(dir, strings.TrimSuffix(from.Name, ".rs"))
	}
	return r.first(path.Join(dir, name+".rs"), path.Join(dir, name, "mod.rs"))
}

func (r *resolver) first(cands ...string) string {
	for _, c := range cands {
		if strings.HasPrefix(c, "../") || c == ".." {
			continue
		}
		if r.files[c] {
			return c
		}
	}
	return ""
}

func isRelative(spec string) bool {
	return spec == "." || spec == ".." || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

func clean(spec string) string {
	return strings.TrimPrefix(path.Clean("/"+spec), "/")
}

// node returns the graph node for a selected file. Files sharing a stem
// (util.js and util.ts, foo.c and foo.h) keep their extensions.
func (r *resolver) node(relPath string) string {
	if id, ok := r.nodes[relPath]; ok {
		return id
	}
	return nodeID(relPath)
}

// nodeID is a rel path without its extension.
func nodeID(relPath string) string {
	return strings.TrimSuffix(relPath, path.Ext(relPath))
}
