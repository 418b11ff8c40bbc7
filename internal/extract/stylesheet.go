package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/standardbeagle/codeprofile/internal/types"
)

var (
	cssCommentRe     = regexp.MustCompile(`(?s)/\*.*?\*/`)
	cssLineCommentRe = regexp.MustCompile(`(?m)//[^\n]*$`)
	cssURLRe         = regexp.MustCompile(`url\([^)]*\)`)
	cssStringRe      = regexp.MustCompile(`"[^"\n]*"|'[^'\n]*'`)
	cssValueRe       = regexp.MustCompile(`:[^;{}]*;`)
	cssClassRe       = regexp.MustCompile(`\.(-?[_a-zA-Z][\w-]*)`)
)

var stylesheetConstructs = []struct {
	name string
	re   *regexp.Regexp
}{
	{"CSS custom property", regexp.MustCompile(`(?m)^\s*--[\w-]+\s*:`)},
	{"media query", regexp.MustCompile(`@media\b`)},
	{"SCSS mixin", regexp.MustCompile(`@mixin\s+[\w-]+`)},
	{"SCSS variable", regexp.MustCompile(`(?m)^\s*\$[\w-]+\s*:`)},
	{"Tailwind @apply", regexp.MustCompile(`@apply\s`)},
}

// extractStylesheet collects class selector names. Declaration values,
// comments and strings are removed first so numbers like ".5em" and file
// names inside url() are not mistaken for selectors.
func extractStylesheet(f *types.FileRecord) (*Result, error) {
	text := string(f.Sample)
	res := newResult()
	for _, c := range stylesheetConstructs {
		for range c.re.FindAllStringIndex(text, -1) {
			res.Constructs = append(res.Constructs, c.name)
		}
	}

	text = cssCommentRe.ReplaceAllString(text, " ")
	if f.Ext == ".scss" || f.Ext == ".sass" || f.Ext == ".less" {
		text = cssLineCommentRe.ReplaceAllString(text, "")
	}
	text = cssURLRe.ReplaceAllString(text, "")
	text = cssStringRe.ReplaceAllString(text, "")
	text = cssValueRe.ReplaceAllString(text, ";")

	seen := make(map[string]bool)
	for _, m := range cssClassRe.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		res.Selectors = append(res.Selectors, name)
		if strings.Contains(name, "__") || strings.Contains(name, "--") {
			res.Constructs = append(res.Constructs, "BEM class selector")
		}
	}
	sort.Strings(res.Selectors)
	return res, nil
}
