package techstack

import (
	"sort"

	"github.com/standardbeagle/codeprofile/internal/types"
)

// rankLanguages computes each language's share of source-category files.
// Languages at or above threshold percent are returned, highest share
// first, ties by name.
func rankLanguages(ps *types.ProjectStructure, threshold float64) []types.LanguageShare {
	counts := make(map[string]int)
	total := 0
	for i := range ps.Files {
		f := &ps.Files[i]
		if f.Category != types.CategorySource || f.Language == "" {
			continue
		}
		counts[f.Language]++
		total++
	}
	if total == 0 {
		return nil
	}

	shares := make([]types.LanguageShare, 0, len(counts))
	for lang, n := range counts {
		pct := types.Round2(float64(n) * 100 / float64(total))
		if pct < threshold {
			continue
		}
		shares = append(shares, types.LanguageShare{Language: lang, Percentage: pct, FileCount: n})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].FileCount != shares[j].FileCount {
			return shares[i].FileCount > shares[j].FileCount
		}
		return shares[i].Language < shares[j].Language
	})
	return shares
}
