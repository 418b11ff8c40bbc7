package traverse

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// defaultOutputDirs are conventional build output directories at the root.
var defaultOutputDirs = []string{"dist", "build", "out", "target", "coverage", ".output", "obj"}

var viteOutDirRe = regexp.MustCompile(`outDir\s*:\s*['"]([^'"]+)['"]`)

// OutputDirDetector finds build output directories declared by the
// project's own build configuration.
type OutputDirDetector struct {
	projectRoot string
}

// NewOutputDirDetector creates a detector for projectRoot.
func NewOutputDirDetector(projectRoot string) *OutputDirDetector {
	return &OutputDirDetector{projectRoot: projectRoot}
}

// Detect returns sorted, root-relative output directories: the defaults
// plus anything declared in package.json, tsconfig.json, vite config,
// Cargo.toml or pyproject.toml.
func (d *OutputDirDetector) Detect() []string {
	seen := make(map[string]bool)
	add := func(dir string) {
		dir = cleanOutputDir(dir)
		if dir != "" {
			seen[dir] = true
		}
	}

	for _, dir := range defaultOutputDirs {
		add(dir)
	}
	for _, dir := range d.javascriptOutputs() {
		add(dir)
	}
	for _, dir := range d.tomlOutputs() {
		add(dir)
	}

	out := make([]string, 0, len(seen))
	for dir := range seen {
		out = append(out, dir)
	}
	sort.Strings(out)
	return out
}

func (d *OutputDirDetector) javascriptOutputs() []string {
	var dirs []string

	if data, err := os.ReadFile(filepath.Join(d.projectRoot, "package.json")); err == nil {
		var pkg struct {
			Scripts map[string]string `json:"scripts"`
			Build   struct {
				OutDir string `json:"outDir"`
			} `json:"build"`
		}
		if json.Unmarshal(data, &pkg) == nil {
			for _, script := range pkg.Scripts {
				parts := strings.Fields(script)
				for i, part := range parts {
					if (part == "--outDir" || part == "-outDir" || part == "--out-dir") && i+1 < len(parts) {
						dirs = append(dirs, strings.Trim(parts[i+1], `"'`))
					}
				}
			}
			if pkg.Build.OutDir != "" {
				dirs = append(dirs, pkg.Build.OutDir)
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join(d.projectRoot, "tsconfig.json")); err == nil {
		var tsconfig struct {
			CompilerOptions struct {
				OutDir string `json:"outDir"`
			} `json:"compilerOptions"`
		}
		// tsconfig allows comments; a parse failure only loses this hint
		if json.Unmarshal(data, &tsconfig) == nil && tsconfig.CompilerOptions.OutDir != "" {
			dirs = append(dirs, tsconfig.CompilerOptions.OutDir)
		}
	}

	for _, name := range []string{"vite.config.js", "vite.config.ts", "vite.config.mjs"} {
		if data, err := os.ReadFile(filepath.Join(d.projectRoot, name)); err == nil {
			if m := viteOutDirRe.FindSubmatch(data); m != nil {
				dirs = append(dirs, string(m[1]))
			}
		}
	}

	return dirs
}

func (d *OutputDirDetector) tomlOutputs() []string {
	var dirs []string

	if data, err := os.ReadFile(filepath.Join(d.projectRoot, "Cargo.toml")); err == nil {
		var cargo struct {
			Build struct {
				TargetDir string `toml:"target-dir"`
			} `toml:"build"`
		}
		if toml.Unmarshal(data, &cargo) == nil && cargo.Build.TargetDir != "" {
			dirs = append(dirs, cargo.Build.TargetDir)
		}
	}

	if data, err := os.ReadFile(filepath.Join(d.projectRoot, "pyproject.toml")); err == nil {
		var pyproject struct {
			Tool struct {
				Poetry struct {
					Build struct {
						TargetDir string `toml:"target-dir"`
					} `toml:"build"`
				} `toml:"poetry"`
			} `toml:"tool"`
		}
		if toml.Unmarshal(data, &pyproject) == nil && pyproject.Tool.Poetry.Build.TargetDir != "" {
			dirs = append(dirs, pyproject.Tool.Poetry.Build.TargetDir)
		}
	}

	return dirs
}

// cleanOutputDir normalizes a declared directory to a root-relative path,
// rejecting anything that escapes the root.
func cleanOutputDir(dir string) string {
	dir = path.Clean(filepath.ToSlash(strings.TrimSpace(dir)))
	dir = strings.TrimPrefix(dir, "./")
	if dir == "." || dir == "" || strings.HasPrefix(dir, "../") || dir == ".." || path.IsAbs(dir) {
		return ""
	}
	return dir
}
