package patterns

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/surgebase/porter2"

	"github.com/standardbeagle/codeprofile/internal/config"
	"github.com/standardbeagle/codeprofile/internal/techstack"
	"github.com/standardbeagle/codeprofile/internal/types"
)

// normalizeDir folds a directory name onto its indicator form: lowercase,
// separators dropped, stemmed. "Controllers", "controller" and
// "use-cases"/"usecase" each collapse to one key.
func normalizeDir(name string) string {
	name = strings.ToLower(name)
	name = strings.NewReplacer("-", "", "_", "", ".", "").Replace(name)
	return porter2.Stem(name)
}

// structureIndex is the lookup form of a ProjectStructure used by the
// indicator matchers.
type structureIndex struct {
	dirs      map[string]string // normalized name -> first path
	rootDirs  map[string]string
	files     map[string]string // lowercased base name -> first path
	code      []types.FileRecord
	byDir     map[string][]string // dir -> lowercased base names
	manifests map[string]int      // lowercased manifest name -> count
}

func indexStructure(ps *types.ProjectStructure) *structureIndex {
	idx := &structureIndex{
		dirs:      make(map[string]string),
		rootDirs:  make(map[string]string),
		files:     make(map[string]string),
		byDir:     make(map[string][]string),
		manifests: make(map[string]int),
	}
	// Directories and files arrive sorted, so the first hit is the smallest path.
	for _, d := range ps.Directories {
		if d.Path == "." {
			continue
		}
		key := normalizeDir(path.Base(d.Path))
		if _, ok := idx.dirs[key]; !ok {
			idx.dirs[key] = d.Path
		}
		if d.Depth == 1 {
			if _, ok := idx.rootDirs[key]; !ok {
				idx.rootDirs[key] = d.Path
			}
		}
	}
	for _, f := range ps.Files {
		if f.Category == types.CategoryBuildArtifact {
			continue
		}
		base := strings.ToLower(f.Name)
		if _, ok := idx.files[base]; !ok {
			idx.files[base] = f.RelPath
		}
		if techstack.IsManifest(f.Name) {
			idx.manifests[base]++
		}
		if f.Category.MaySample() {
			idx.code = append(idx.code, f)
			dir := path.Dir(f.RelPath)
			idx.byDir[dir] = append(idx.byDir[dir], base)
		}
	}
	return idx
}

// match reports whether the indicator holds, with a short evidence string.
func (idx *structureIndex) match(ind config.Indicator, tech *types.TechStackProfile) (string, bool) {
	switch ind.Kind {
	case config.IndicatorDir:
		if p, ok := idx.dirs[normalizeDir(ind.Value)]; ok {
			return p + "/", true
		}
	case config.IndicatorRootDir:
		if p, ok := idx.rootDirs[normalizeDir(ind.Value)]; ok {
			return p + "/", true
		}
	case config.IndicatorFile:
		if p, ok := idx.files[strings.ToLower(ind.Value)]; ok {
			return p, true
		}
	case config.IndicatorSuffix:
		want := strings.ToLower(ind.Value)
		for _, f := range idx.code {
			if hasNameSuffix(f.Name, want) {
				return f.RelPath, true
			}
		}
	case config.IndicatorColocated:
		return idx.matchColocated(strings.Split(strings.ToLower(ind.Value), "+"))
	case config.IndicatorFramework:
		if tech != nil && tech.Has(ind.Value) {
			return "framework " + ind.Value, true
		}
	case config.IndicatorManifestCount:
		need, err := strconv.Atoi(ind.Value)
		if err != nil || need <= 0 {
			return "", false
		}
		names := make([]string, 0, len(idx.manifests))
		for name := range idx.manifests {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if n := idx.manifests[name]; n >= need {
				return fmt.Sprintf("%d %s manifests", n, name), true
			}
		}
	}
	return "", false
}

// hasNameSuffix matches ".service.ts" style values against the whole base
// name and bare words like "controller" against the name up to its last
// extension, so both "UserController.php" and "user.controller.ts" match.
func hasNameSuffix(name, suffix string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(suffix, ".") {
		return strings.HasSuffix(lower, suffix)
	}
	return strings.HasSuffix(strings.TrimSuffix(lower, path.Ext(lower)), suffix)
}

// matchColocated finds the first directory holding distinct files that end
// with every listed suffix.
func (idx *structureIndex) matchColocated(suffixes []string) (string, bool) {
	dirs := make([]string, 0, len(idx.byDir))
	for d := range idx.byDir {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	for _, d := range dirs {
		if colocated(idx.byDir[d], suffixes) {
			return d + "/", true
		}
	}
	return "", false
}

func colocated(names, suffixes []string) bool {
	used := make(map[int]bool, len(suffixes))
	for _, suf := range suffixes {
		found := false
		// A file ending with a longer listed suffix is reserved for it.
		for i, n := range names {
			if used[i] || !strings.HasSuffix(n, suf) || claimedByLonger(n, suf, suffixes) {
				continue
			}
			used[i] = true
			found = true
			break
		}
		if !found {
			return false
		}
	}
	return true
}

func claimedByLonger(name, suf string, suffixes []string) bool {
	for _, other := range suffixes {
		if len(other) > len(suf) && strings.HasSuffix(other, suf) && strings.HasSuffix(name, other) {
			return true
		}
	}
	return false
}

// scoreArchitecture evaluates every configured rule. Scores only grow as
// indicators match and are capped at 100. Results at or above minScore are
// returned by score, then rule priority, then name.
func scoreArchitecture(idx *structureIndex, h config.Heuristics, tech *types.TechStackProfile, minScore float64) []types.ArchitecturePatternResult {
	type scored struct {
		result   types.ArchitecturePatternResult
		priority int
	}
	var all []scored
	for _, rule := range h.Architecture {
		var score float64
		evidence := []string{}
		for _, ind := range rule.Indicators {
			ev, ok := idx.match(ind, tech)
			if !ok {
				continue
			}
			score += ind.Weight
			evidence = append(evidence, ev)
		}
		score = types.ClampScore(score)
		if score < minScore || score == 0 {
			continue
		}
		sort.Strings(evidence)
		all = append(all, scored{
			result:   types.ArchitecturePatternResult{Name: rule.Name, Score: types.Round2(score), Evidence: dedupe(evidence)},
			priority: rule.Priority,
		})
	}

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.result.Score != b.result.Score {
			return a.result.Score > b.result.Score
		}
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		return a.result.Name < b.result.Name
	})

	out := make([]types.ArchitecturePatternResult, len(all))
	for i, s := range all {
		out[i] = s.result
	}
	return out
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
