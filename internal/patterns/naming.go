package patterns

import (
	"sort"
	"strings"
	"unicode"

	"github.com/standardbeagle/codeprofile/internal/types"
)

// charClass records which character classes occur in a name.
type charClass uint8

const (
	classLower charClass = 1 << iota
	classUpper
	classDigit
	classUnderscore
	classHyphen
	classOther
)

func classesOf(name string) charClass {
	var c charClass
	for _, r := range name {
		switch {
		case r == '_':
			c |= classUnderscore
		case r == '-':
			c |= classHyphen
		case unicode.IsLower(r):
			c |= classLower
		case unicode.IsUpper(r):
			c |= classUpper
		case unicode.IsDigit(r):
			c |= classDigit
		default:
			c |= classOther
		}
	}
	return c
}

// Classify returns the naming style of name. A name that fits several
// styles ("user" is valid camelCase, snake_case and kebab-case) gets the
// first one in StylePriority. Leading and trailing underscores are ignored
// so private markers like "_cache" or "__init__" do not decide the style.
func Classify(name string) types.NamingStyle {
	name = strings.Trim(name, "_$")
	if name == "" {
		return types.StyleUnrecognized
	}
	first := []rune(name)[0]
	if !unicode.IsLetter(first) {
		return types.StyleUnrecognized
	}

	c := classesOf(name)
	if c&classOther != 0 || (c&classUnderscore != 0 && c&classHyphen != 0) {
		return types.StyleUnrecognized
	}
	if strings.Contains(name, "__") || strings.Contains(name, "--") {
		return types.StyleUnrecognized
	}

	switch {
	case c&classHyphen != 0:
		if c&classUpper == 0 {
			return types.StyleKebab
		}
	case c&classUnderscore != 0:
		if c&classUpper == 0 {
			return types.StyleSnake
		}
		if c&classLower == 0 {
			return types.StyleScreamingSnake
		}
	case unicode.IsLower(first):
		return types.StyleCamel
	default:
		// "URL" and "ID" read as both PascalCase and SCREAMING_SNAKE_CASE.
		return types.StylePascal
	}
	return types.StyleUnrecognized
}

func stylePriority(s types.NamingStyle) int {
	for i, p := range types.StylePriority {
		if p == s {
			return i
		}
	}
	return len(types.StylePriority)
}

// dominantStyle tallies names by style. The winner has the highest count,
// ties going to the higher-priority style. Example is the first name of the
// winning bucket in sorted order.
func dominantStyle(cat types.IdentifierCategory, names []string) (types.NamingConventionResult, bool) {
	if len(names) == 0 {
		return types.NamingConventionResult{}, false
	}

	counts := make(map[types.NamingStyle]int)
	examples := make(map[types.NamingStyle]string)
	for _, n := range names {
		s := Classify(n)
		counts[s]++
		if ex, ok := examples[s]; !ok || n < ex {
			examples[s] = n
		}
	}

	best := types.StyleUnrecognized
	bestCount := -1
	for _, s := range types.StylePriority {
		if counts[s] > bestCount {
			best, bestCount = s, counts[s]
		}
	}

	return types.NamingConventionResult{
		Category:   cat,
		Style:      best,
		Confidence: types.Round2(float64(bestCount) / float64(len(names)) * 100),
		Example:    examples[best],
		Total:      len(names),
		Counts:     counts,
	}, true
}

// fileStem strips everything from the first dot after position zero, so
// "user.service.ts" yields "user". Dotfiles yield "".
func fileStem(base string) string {
	if strings.HasPrefix(base, ".") {
		return ""
	}
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

// structureNames collects file and directory identifiers. Only files that
// carry code count; documentation and lockfiles follow external naming rules.
func structureNames(ps *types.ProjectStructure) (files, dirs []string) {
	for _, f := range ps.Files {
		if !f.Category.MaySample() {
			continue
		}
		if s := fileStem(f.Name); s != "" {
			files = append(files, s)
		}
	}
	for _, d := range ps.Directories {
		if d.Path == "." {
			continue
		}
		base := d.Path[strings.LastIndexByte(d.Path, '/')+1:]
		if strings.HasPrefix(base, ".") {
			continue
		}
		dirs = append(dirs, base)
	}
	sort.Strings(files)
	sort.Strings(dirs)
	return files, dirs
}
