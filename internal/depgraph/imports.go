package depgraph

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/codeprofile/internal/types"
)

// importRef is one import specifier as written in the source.
type importRef struct {
	Spec string
	Kind types.EdgeKind
}

// scanner extracts import references from a content sample.
type scanner func(content []byte) []importRef

var (
	jsImportRe   = regexp.MustCompile(`(?m)^\s*import\s+(?:type\s+)?(?:[\w*{}\s,$]+?\s+from\s+)?['"]([^'"\n]+)['"]`)
	jsExportRe   = regexp.MustCompile(`(?m)^\s*export\s+(?:type\s+)?(?:\*(?:\s+as\s+\w+)?|\{[^}]*\})\s+from\s+['"]([^'"\n]+)['"]`)
	jsDynamicRe  = regexp.MustCompile(`\bimport\(\s*['"]([^'"\n]+)['"]\s*\)`)
	jsRequireRe  = regexp.MustCompile(`\brequire\(\s*['"]([^'"\n]+)['"]\s*\)`)
	pyFromRe     = regexp.MustCompile(`(?m)^[ \t]*from\s+(\.+[\w.]*|[\w.]+)\s+import\s+\(?([^#\n)]+)`)
	pyImportRe   = regexp.MustCompile(`(?m)^[ \t]*import\s+([\w.]+(?:\s+as\s+\w+)?(?:\s*,\s*[\w.]+(?:\s+as\s+\w+)?)*)`)
	goSingleRe   = regexp.MustCompile(`(?m)^import\s+(?:[\w.]+\s+)?"([^"]+)"`)
	goBlockRe    = regexp.MustCompile(`(?ms)^import\s*\(([^)]*)\)`)
	goSpecRe     = regexp.MustCompile(`"([^"]+)"`)
	cIncludeRe   = regexp.MustCompile(`(?m)^\s*#\s*include\s+"([^"]+)"`)
	rustModRe    = regexp.MustCompile(`(?m)^\s*(?:pub(?:\([^)]*\))?\s+)?mod\s+(\w+)\s*;`)
	rubyRelRe    = regexp.MustCompile(`(?m)^\s*require_relative\s*\(?\s*['"]([^'"]+)['"]`)
	phpIncludeRe = regexp.MustCompile(`\b(?:require|include)(?:_once)?\s*\(?\s*(__DIR__\s*\.\s*)?['"]([^'"]+)['"]`)
)

func scanJS(content []byte) []importRef {
	var out []importRef
	for _, m := range jsImportRe.FindAllSubmatch(content, -1) {
		out = append(out, importRef{string(m[1]), types.EdgeStaticImport})
	}
	for _, m := range jsExportRe.FindAllSubmatch(content, -1) {
		out = append(out, importRef{string(m[1]), types.EdgeStaticImport})
	}
	for _, m := range jsDynamicRe.FindAllSubmatch(content, -1) {
		out = append(out, importRef{string(m[1]), types.EdgeDynamicImport})
	}
	for _, m := range jsRequireRe.FindAllSubmatch(content, -1) {
		out = append(out, importRef{string(m[1]), types.EdgeRequire})
	}
	return out
}

// scanPython turns module paths into slash form, keeping leading dots:
// "from ..core import db" yields "..core" and "..core/db" (db may be a
// submodule), "import a.b" yields "a/b".
func scanPython(content []byte) []importRef {
	var out []importRef
	for _, m := range pyFromRe.FindAllSubmatch(content, -1) {
		mod := pyModulePath(string(m[1]))
		out = append(out, importRef{mod, types.EdgeStaticImport})
		for _, name := range strings.Split(string(m[2]), ",") {
			name = strings.TrimSpace(strings.SplitN(strings.TrimSpace(name), " ", 2)[0])
			if name == "" || name == "*" {
				continue
			}
			sep := "/"
			if strings.HasSuffix(mod, ".") {
				sep = ""
			}
			out = append(out, importRef{mod + sep + name, types.EdgeStaticImport})
		}
	}
	for _, m := range pyImportRe.FindAllSubmatch(content, -1) {
		for _, part := range strings.Split(string(m[1]), ",") {
			name := strings.Fields(part)
			if len(name) > 0 {
				out = append(out, importRef{pyModulePath(name[0]), types.EdgeStaticImport})
			}
		}
	}
	return out
}

// pyModulePath keeps the leading dots and replaces inner dots with slashes.
func pyModulePath(mod string) string {
	rest := strings.TrimLeft(mod, ".")
	dots := mod[:len(mod)-len(rest)]
	return dots + strings.ReplaceAll(rest, ".", "/")
}

func scanGo(content []byte) []importRef {
	var out []importRef
	for _, m := range goSingleRe.FindAllSubmatch(content, -1) {
		out = append(out, importRef{string(m[1]), types.EdgeStaticImport})
	}
	for _, block := range goBlockRe.FindAllSubmatch(content, -1) {
		for _, m := range goSpecRe.FindAllSubmatch(block[1], -1) {
			out = append(out, importRef{string(m[1]), types.EdgeStaticImport})
		}
	}
	return out
}

func scanSingle(re *regexp.Regexp, kind types.EdgeKind) scanner {
	return func(content []byte) []importRef {
		var out []importRef
		for _, m := range re.FindAllSubmatch(content, -1) {
			out = append(out, importRef{string(m[1]), kind})
		}
		return out
	}
}

func scanPHP(content []byte) []importRef {
	var out []importRef
	for _, m := range phpIncludeRe.FindAllSubmatch(content, -1) {
		spec := string(m[2])
		if len(m[1]) > 0 {
			spec = "./" + strings.TrimPrefix(spec, "/")
		}
		out = append(out, importRef{spec, types.EdgeRequire})
	}
	return out
}

// scanners is keyed by classifier language name.
var scanners = map[string]scanner{
	"JavaScript": scanJS,
	"TypeScript": scanJS,
	"Vue":        scanJS,
	"Svelte":     scanJS,
	"Astro":      scanJS,
	"Python":     scanPython,
	"Go":         scanGo,
	"C":          scanSingle(cIncludeRe, types.EdgeStaticImport),
	"C++":        scanSingle(cIncludeRe, types.EdgeStaticImport),
	"Rust":       scanSingle(rustModRe, types.EdgeStaticImport),
	"Ruby":       scanSingle(rubyRelRe, types.EdgeRequire),
	"PHP":        scanPHP,
}
