package patterns

import (
	"sort"
	"strings"

	"github.com/standardbeagle/codeprofile/internal/extract"
	"github.com/standardbeagle/codeprofile/internal/types"
)

// suffixConvention returns "*.service.ts" for "user.service.ts": the part
// of a base name from its first inner dot, when that part has at least two
// segments. Plain "main.go" has no convention.
func suffixConvention(name string) string {
	lower := strings.ToLower(name)
	i := strings.IndexByte(lower, '.')
	if i <= 0 {
		return ""
	}
	rest := lower[i:]
	if strings.Count(rest, ".") < 2 {
		return ""
	}
	return "*" + rest
}

// recurringPatterns counts construct occurrences across all extraction
// results plus file-suffix conventions, keeps those seen at least
// minRepeats times and orders them by count then name.
func recurringPatterns(ps *types.ProjectStructure, results []*extract.Result, minRepeats int) []string {
	if minRepeats < 1 {
		minRepeats = 1
	}
	counts := make(map[string]int)
	var selectors []string
	for _, r := range results {
		if r == nil {
			continue
		}
		for _, c := range r.Constructs {
			counts[c]++
		}
		for _, s := range r.Selectors {
			// single lowercase words fit every style
			if s != strings.ToLower(s) || strings.ContainsAny(s, "-_") {
				selectors = append(selectors, s)
			}
		}
	}

	for _, f := range ps.Files {
		if !f.Category.MaySample() {
			continue
		}
		if conv := suffixConvention(f.Name); conv != "" {
			counts[conv+" files"]++
		}
	}

	if len(selectors) >= minRepeats {
		if res, ok := dominantStyle("", selectors); ok && res.Style != types.StyleUnrecognized {
			counts[string(res.Style)+" CSS class names"] = res.Counts[res.Style]
		}
	}

	var names []string
	for name, n := range counts {
		if n >= minRepeats {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if names == nil {
		names = []string{}
	}
	return names
}
