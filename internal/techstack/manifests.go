package techstack

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"
)

// manifestParser extracts declared dependency names from a manifest.
type manifestParser struct {
	Ecosystem *ecosystem
	Parse     func(path string, data []byte) ([]string, error)
}

// manifestParsers is keyed by lowercased base name.
var manifestParsers = map[string]manifestParser{
	"package.json":         {npmEcosystem, parsePackageJSON},
	"pnpm-workspace.yaml":  {npmEcosystem, parsePnpmWorkspace},
	"go.mod":               {goEcosystem, parseGoMod},
	"cargo.toml":           {cargoEcosystem, parseCargoToml},
	"pyproject.toml":       {pythonEcosystem, parsePyproject},
	"requirements.txt":     {pythonEcosystem, parseRequirements},
	"requirements-dev.txt": {pythonEcosystem, parseRequirements},
	"gemfile":              {rubyEcosystem, parseGemfile},
	"composer.json":        {composerEcosystem, parseComposerJSON},
	"pom.xml":              {jvmEcosystem, parsePom},
	"build.gradle":         {jvmEcosystem, parseGradle},
	"build.gradle.kts":     {jvmEcosystem, parseGradle},
	"pubspec.yaml":         {dartEcosystem, parsePubspec},
}

// IsManifest reports whether name (a base name) is a dependency manifest.
func IsManifest(name string) bool {
	_, ok := manifestParsers[strings.ToLower(name)]
	return ok
}

func parsePackageJSON(_ string, data []byte) ([]string, error) {
	var pkg struct {
		Dependencies         map[string]string `json:"dependencies"`
		DevDependencies      map[string]string `json:"devDependencies"`
		PeerDependencies     map[string]string `json:"peerDependencies"`
		OptionalDependencies map[string]string `json:"optionalDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return mapKeys(pkg.Dependencies, pkg.DevDependencies, pkg.PeerDependencies, pkg.OptionalDependencies), nil
}

func parseComposerJSON(_ string, data []byte) ([]string, error) {
	var composer struct {
		Require    map[string]string `json:"require"`
		RequireDev map[string]string `json:"require-dev"`
	}
	if err := json.Unmarshal(data, &composer); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return mapKeys(composer.Require, composer.RequireDev), nil
}

// parsePnpmWorkspace only validates the file; pnpm itself is found by marker.
func parsePnpmWorkspace(_ string, data []byte) ([]string, error) {
	var ws struct {
		Packages []string `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return nil, nil
}

func parsePubspec(_ string, data []byte) ([]string, error) {
	var pubspec struct {
		Dependencies    map[string]yaml.Node `yaml:"dependencies"`
		DevDependencies map[string]yaml.Node `yaml:"dev_dependencies"`
	}
	if err := yaml.Unmarshal(data, &pubspec); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return mapKeys(pubspec.Dependencies, pubspec.DevDependencies), nil
}

func parseGoMod(path string, data []byte) ([]string, error) {
	modFile, err := modfile.Parse(path, data, nil)
	if err != nil {
		return nil, err
	}
	deps := make([]string, 0, len(modFile.Require))
	for _, req := range modFile.Require {
		deps = append(deps, req.Mod.Path)
	}
	sort.Strings(deps)
	return deps, nil
}

func parseCargoToml(_ string, data []byte) ([]string, error) {
	var cargo struct {
		Dependencies      map[string]any `toml:"dependencies"`
		DevDependencies   map[string]any `toml:"dev-dependencies"`
		BuildDependencies map[string]any `toml:"build-dependencies"`
		Workspace         struct {
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"workspace"`
	}
	if err := toml.Unmarshal(data, &cargo); err != nil {
		return nil, err
	}
	return mapKeys(cargo.Dependencies, cargo.DevDependencies, cargo.BuildDependencies, cargo.Workspace.Dependencies), nil
}

func parsePyproject(_ string, data []byte) ([]string, error) {
	var pyproject struct {
		Project struct {
			Dependencies         []string            `toml:"dependencies"`
			OptionalDependencies map[string][]string `toml:"optional-dependencies"`
		} `toml:"project"`
		BuildSystem struct {
			Requires []string `toml:"requires"`
		} `toml:"build-system"`
		Tool map[string]any `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &pyproject); err != nil {
		return nil, err
	}

	var deps []string
	add := func(requirement string) {
		if name := requirementName(requirement); name != "" {
			deps = append(deps, name)
		}
	}
	for _, r := range pyproject.Project.Dependencies {
		add(r)
	}
	for _, group := range pyproject.Project.OptionalDependencies {
		for _, r := range group {
			add(r)
		}
	}
	for _, r := range pyproject.BuildSystem.Requires {
		add(r)
	}

	// [tool.pytest.ini_options], [tool.poetry] ... name the tool itself
	for name := range pyproject.Tool {
		add(name)
	}
	if poetry, ok := pyproject.Tool["poetry"].(map[string]any); ok {
		for _, key := range []string{"dependencies", "dev-dependencies"} {
			if m, ok := poetry[key].(map[string]any); ok {
				for name := range m {
					add(name)
				}
			}
		}
		if groups, ok := poetry["group"].(map[string]any); ok {
			for _, g := range groups {
				if group, ok := g.(map[string]any); ok {
					if m, ok := group["dependencies"].(map[string]any); ok {
						for name := range m {
							add(name)
						}
					}
				}
			}
		}
	}
	return dedupeSorted(deps), nil
}

var requirementNameRe = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)`)

// requirementName returns the normalized distribution name of a PEP 508
// requirement ("Django>=4.2; python_version>'3'" -> "django").
func requirementName(requirement string) string {
	m := requirementNameRe.FindString(strings.TrimSpace(requirement))
	if m == "" {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(m), "_", "-")
}

func parseRequirements(_ string, data []byte) ([]string, error) {
	var deps []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" || strings.HasPrefix(line, "-") {
			continue // -r other.txt, -e ., --index-url
		}
		if name := requirementName(line); name != "" {
			deps = append(deps, name)
		}
	}
	return dedupeSorted(deps), nil
}

var gemRe = regexp.MustCompile(`(?m)^\s*gem\s+['"]([^'"]+)['"]`)

func parseGemfile(_ string, data []byte) ([]string, error) {
	var deps []string
	for _, m := range gemRe.FindAllSubmatch(data, -1) {
		deps = append(deps, string(m[1]))
	}
	return dedupeSorted(deps), nil
}

var (
	pomDependencyRe = regexp.MustCompile(`<groupId>\s*([^<\s]+)\s*</groupId>\s*<artifactId>\s*([^<\s]+)\s*</artifactId>`)
	gradleCoordRe   = regexp.MustCompile(`['"]([\w.\-]+):([\w.\-]+)(?::[^'"]*)?['"]`)
	gradlePluginRe  = regexp.MustCompile(`id\s*\(?\s*['"]([\w.\-]+)['"]`)
)

// parsePom reads groupId:artifactId pairs lexically. A file without a
// <project> element is treated as malformed.
func parsePom(_ string, data []byte) ([]string, error) {
	if !strings.Contains(string(data), "<project") {
		return nil, fmt.Errorf("no <project> element")
	}
	var deps []string
	for _, m := range pomDependencyRe.FindAllSubmatch(data, -1) {
		deps = append(deps, string(m[1])+":"+string(m[2]))
	}
	return dedupeSorted(deps), nil
}

func parseGradle(_ string, data []byte) ([]string, error) {
	var deps []string
	for _, m := range gradleCoordRe.FindAllSubmatch(data, -1) {
		deps = append(deps, string(m[1])+":"+string(m[2]))
	}
	for _, m := range gradlePluginRe.FindAllSubmatch(data, -1) {
		deps = append(deps, string(m[1]))
	}
	return dedupeSorted(deps), nil
}

func mapKeys[V any](maps ...map[string]V) []string {
	var keys []string
	for _, m := range maps {
		for k := range m {
			keys = append(keys, k)
		}
	}
	return dedupeSorted(keys)
}

func dedupeSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	sort.Strings(in)
	out := in[:1]
	for _, s := range in[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
