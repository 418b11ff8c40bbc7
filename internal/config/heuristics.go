package config

import "sort"

// IndicatorKind is the structural signal an architecture indicator matches.
type IndicatorKind string

const (
	// IndicatorDir matches a directory name (stemmed) anywhere in the tree.
	IndicatorDir IndicatorKind = "dir"
	// IndicatorRootDir matches a directory name directly under the root.
	IndicatorRootDir IndicatorKind = "rootdir"
	// IndicatorSuffix matches a file base-name suffix such as ".service.ts".
	IndicatorSuffix IndicatorKind = "suffix"
	// IndicatorFile matches an exact file name anywhere in the tree.
	IndicatorFile IndicatorKind = "file"
	// IndicatorColocated matches a directory holding files with all listed
	// suffixes, separated by "+", e.g. ".tsx+.module.css".
	IndicatorColocated IndicatorKind = "colocated"
	// IndicatorFramework matches a detected framework name.
	IndicatorFramework IndicatorKind = "framework"
	// IndicatorManifestCount matches when at least Value manifests of one
	// ecosystem exist below the root ("2" means two package.json files).
	IndicatorManifestCount IndicatorKind = "manifests"
)

// Indicator is one weighted structural signal of an architecture pattern.
type Indicator struct {
	Kind   IndicatorKind
	Value  string
	Weight float64
}

// ArchitectureRule defines a pattern and its indicators. Lower Priority
// values rank first when two patterns share the same score.
type ArchitectureRule struct {
	Name       string
	Priority   int
	Indicators []Indicator
}

// Heuristics holds every tunable weight used by the profilers.
type Heuristics struct {
	ManifestConfidence float64
	MarkerConfidence   float64
	Architecture       []ArchitectureRule
}

// Clone deep-copies the heuristics.
func (h Heuristics) Clone() Heuristics {
	out := h
	out.Architecture = make([]ArchitectureRule, len(h.Architecture))
	for i, r := range h.Architecture {
		out.Architecture[i] = r
		out.Architecture[i].Indicators = append([]Indicator(nil), r.Indicators...)
	}
	return out
}

// Rule returns the rule with the given name.
func (h *Heuristics) Rule(name string) (*ArchitectureRule, bool) {
	for i := range h.Architecture {
		if h.Architecture[i].Name == name {
			return &h.Architecture[i], true
		}
	}
	return nil, false
}

// SetWeight overrides (or adds) one indicator of a named rule. Unknown rules
// are created at the lowest priority.
func (h *Heuristics) SetWeight(pattern string, kind IndicatorKind, value string, weight float64) {
	rule := h.ensureRule(pattern)
	for i := range rule.Indicators {
		if rule.Indicators[i].Kind == kind && rule.Indicators[i].Value == value {
			rule.Indicators[i].Weight = weight
			return
		}
	}
	rule.Indicators = append(rule.Indicators, Indicator{Kind: kind, Value: value, Weight: weight})
}

// SetPriority changes the tie-break rank of a named rule, creating it if needed.
func (h *Heuristics) SetPriority(pattern string, priority int) {
	h.ensureRule(pattern).Priority = priority
}

func (h *Heuristics) ensureRule(name string) *ArchitectureRule {
	if rule, ok := h.Rule(name); ok {
		return rule
	}
	h.Architecture = append(h.Architecture, ArchitectureRule{
		Name:     name,
		Priority: len(h.Architecture) + 1,
	})
	return &h.Architecture[len(h.Architecture)-1]
}

// RuleNames returns the configured pattern names sorted by priority.
func (h *Heuristics) RuleNames() []string {
	rules := append([]ArchitectureRule(nil), h.Architecture...)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	return names
}

// DefaultHeuristics returns the built-in indicator tables.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		ManifestConfidence: 60,
		MarkerConfidence:   90,
		Architecture: []ArchitectureRule{
			{
				Name:     "MVC",
				Priority: 1,
				Indicators: []Indicator{
					{IndicatorDir, "models", 30},
					{IndicatorDir, "views", 30},
					{IndicatorDir, "controllers", 30},
					{IndicatorSuffix, "controller", 10},
					{IndicatorFramework, "Ruby on Rails", 10},
					{IndicatorFramework, "Laravel", 10},
					{IndicatorFramework, "ASP.NET Core", 10},
				},
			},
			{
				Name:     "Clean Architecture",
				Priority: 2,
				Indicators: []Indicator{
					{IndicatorDir, "domain", 25},
					{IndicatorDir, "usecases", 25},
					{IndicatorDir, "entities", 20},
					{IndicatorDir, "infrastructure", 20},
					{IndicatorDir, "application", 10},
					{IndicatorSuffix, "usecase", 10},
				},
			},
			{
				Name:     "Hexagonal",
				Priority: 3,
				Indicators: []Indicator{
					{IndicatorDir, "ports", 35},
					{IndicatorDir, "adapters", 35},
					{IndicatorDir, "domain", 15},
					{IndicatorDir, "core", 15},
				},
			},
			{
				Name:     "Layered",
				Priority: 4,
				Indicators: []Indicator{
					{IndicatorDir, "services", 20},
					{IndicatorDir, "repositories", 20},
					{IndicatorDir, "handlers", 15},
					{IndicatorDir, "dao", 15},
					{IndicatorDir, "dto", 10},
					{IndicatorSuffix, "service", 10},
					{IndicatorSuffix, "repository", 10},
				},
			},
			{
				Name:     "MVVM",
				Priority: 5,
				Indicators: []Indicator{
					{IndicatorDir, "viewmodels", 40},
					{IndicatorDir, "views", 20},
					{IndicatorDir, "models", 20},
					{IndicatorSuffix, "viewmodel", 20},
				},
			},
			{
				Name:     "Feature-Sliced",
				Priority: 6,
				Indicators: []Indicator{
					{IndicatorDir, "features", 25},
					{IndicatorDir, "entities", 15},
					{IndicatorDir, "widgets", 20},
					{IndicatorDir, "shared", 15},
					{IndicatorDir, "pages", 10},
					{IndicatorDir, "app", 5},
					{IndicatorDir, "processes", 10},
				},
			},
			{
				Name:     "Component-Based",
				Priority: 7,
				Indicators: []Indicator{
					{IndicatorDir, "components", 40},
					{IndicatorColocated, ".tsx+.css", 15},
					{IndicatorColocated, ".tsx+.test.tsx", 15},
					{IndicatorColocated, ".vue+.spec.ts", 15},
					{IndicatorFramework, "React", 15},
					{IndicatorFramework, "Vue", 15},
					{IndicatorFramework, "Svelte", 15},
					{IndicatorFramework, "Angular", 15},
				},
			},
			{
				Name:     "Monorepo",
				Priority: 8,
				Indicators: []Indicator{
					{IndicatorRootDir, "packages", 35},
					{IndicatorRootDir, "apps", 25},
					{IndicatorRootDir, "libs", 15},
					{IndicatorFile, "pnpm-workspace.yaml", 30},
					{IndicatorFile, "lerna.json", 30},
					{IndicatorFile, "nx.json", 30},
					{IndicatorFile, "turbo.json", 25},
					{IndicatorFile, "go.work", 30},
					{IndicatorManifestCount, "3", 20},
				},
			},
			{
				Name:     "Microservices",
				Priority: 9,
				Indicators: []Indicator{
					{IndicatorRootDir, "services", 30},
					{IndicatorFile, "docker-compose.yml", 25},
					{IndicatorFile, "docker-compose.yaml", 25},
					{IndicatorFile, "skaffold.yaml", 20},
					{IndicatorDir, "k8s", 15},
					{IndicatorDir, "helm", 15},
					{IndicatorManifestCount, "2", 10},
				},
			},
		},
	}
}
