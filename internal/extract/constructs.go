package extract

import (
	"regexp"

	"github.com/standardbeagle/codeprofile/internal/types"
)

// construct is a recognizable code shape. Every match in a sample counts as
// one occurrence. Framework-specific shapes are only reported when the
// framework was detected.
type construct struct {
	Name      string
	Languages []string
	Exts      []string // optional extension filter
	Framework string
	Re        *regexp.Regexp
}

var scriptLanguages = []string{"JavaScript", "TypeScript"}

var constructs = []construct{
	// JavaScript / TypeScript
	{Name: "React function component", Languages: scriptLanguages, Exts: []string{".jsx", ".tsx"}, Framework: "React",
		Re: regexp.MustCompile(`(?m)^\s*(?:export\s+(?:default\s+)?)?(?:function\s+[A-Z]\w*\s*\(|const\s+[A-Z]\w*\s*(?::\s*[\w.<>]+\s*)?=\s*(?:\([^)]*\)|\w+)\s*=>)`)},
	{Name: "custom React hook", Languages: scriptLanguages, Framework: "React",
		Re: regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:function|const)\s+use[A-Z]\w*`)},
	{Name: "Express route handler", Languages: scriptLanguages, Framework: "Express",
		Re: regexp.MustCompile(`\b(?:app|router)\.(?:get|post|put|patch|delete)\(`)},
	{Name: "NestJS decorator", Languages: []string{"TypeScript"}, Framework: "NestJS",
		Re: regexp.MustCompile(`(?m)^\s*@(?:Controller|Injectable|Module|Get|Post|Put|Delete)\(`)},
	{Name: "Angular component", Languages: []string{"TypeScript"}, Framework: "Angular",
		Re: regexp.MustCompile(`@Component\(\s*\{`)},
	{Name: "ES class", Languages: scriptLanguages,
		Re: regexp.MustCompile(`(?m)^\s*(?:export\s+(?:default\s+)?)?(?:abstract\s+)?class\s+\w+`)},
	{Name: "async/await", Languages: scriptLanguages,
		Re: regexp.MustCompile(`\bawait\s`)},
	{Name: "ES module import", Languages: scriptLanguages,
		Re: regexp.MustCompile(`(?m)^\s*import\s.*\bfrom\s+['"]`)},
	{Name: "CommonJS require", Languages: scriptLanguages,
		Re: regexp.MustCompile(`\brequire\(\s*['"]`)},
	{Name: "TypeScript interface", Languages: []string{"TypeScript"},
		Re: regexp.MustCompile(`(?m)^\s*(?:export\s+)?interface\s+\w+`)},
	{Name: "TypeScript type alias", Languages: []string{"TypeScript"},
		Re: regexp.MustCompile(`(?m)^\s*(?:export\s+)?type\s+\w+(?:<[^>]*>)?\s*=`)},

	// Go
	{Name: "Go constructor function", Languages: []string{"Go"},
		Re: regexp.MustCompile(`(?m)^func\s+New\w*\(`)},
	{Name: "Go interface", Languages: []string{"Go"},
		Re: regexp.MustCompile(`(?m)^type\s+\w+\s+interface\s*\{`)},
	{Name: "Go method", Languages: []string{"Go"},
		Re: regexp.MustCompile(`(?m)^func\s+\([^)]+\)\s+\w+`)},
	{Name: "goroutine", Languages: []string{"Go"},
		Re: regexp.MustCompile(`\bgo\s+(?:func\s*\(|[\w.]+\()`)},
	{Name: "error wrapping", Languages: []string{"Go"},
		Re: regexp.MustCompile(`fmt\.Errorf\([^)]*%w`)},
	{Name: "table-driven test", Languages: []string{"Go"},
		Re: regexp.MustCompile(`\b(?:tests|cases|tt)\s*:?=\s*(?:\[\]struct|map\[string\]struct)`)},

	// Python
	{Name: "Python dataclass", Languages: []string{"Python"},
		Re: regexp.MustCompile(`(?m)^\s*@(?:dataclasses\.)?dataclass\b`)},
	{Name: "Python decorator", Languages: []string{"Python"},
		Re: regexp.MustCompile(`(?m)^\s*@\w+(?:\.\w+)*`)},
	{Name: "Python type hints", Languages: []string{"Python"},
		Re: regexp.MustCompile(`(?m)^\s*(?:async\s+)?def\s+\w+\([^)]*\)\s*->`)},
	{Name: "Python async function", Languages: []string{"Python"},
		Re: regexp.MustCompile(`(?m)^\s*async\s+def\s`)},
	{Name: "context manager", Languages: []string{"Python"},
		Re: regexp.MustCompile(`(?m)^\s*(?:async\s+)?with\s+\S`)},
	{Name: "pytest fixture", Languages: []string{"Python"},
		Re: regexp.MustCompile(`@pytest\.fixture`)},
	{Name: "Django model", Languages: []string{"Python"}, Framework: "Django",
		Re: regexp.MustCompile(`class\s+\w+\(\s*models\.Model\s*\)`)},
	{Name: "Pydantic model", Languages: []string{"Python"},
		Re: regexp.MustCompile(`class\s+\w+\(\s*BaseModel\s*\)`)},
	{Name: "FastAPI route", Languages: []string{"Python"}, Framework: "FastAPI",
		Re: regexp.MustCompile(`(?m)^\s*@\w+\.(?:get|post|put|patch|delete)\(`)},

	// JVM
	{Name: "Spring stereotype", Languages: []string{"Java", "Kotlin"}, Framework: "Spring Boot",
		Re: regexp.MustCompile(`@(?:RestController|Controller|Service|Repository|Component)\b`)},
	{Name: "Java annotation", Languages: []string{"Java"},
		Re: regexp.MustCompile(`(?m)^\s*@[A-Z]\w*`)},
	{Name: "Java interface", Languages: []string{"Java"},
		Re: regexp.MustCompile(`(?m)^\s*(?:public\s+)?interface\s+\w+`)},

	// Rust
	{Name: "Rust trait implementation", Languages: []string{"Rust"},
		Re: regexp.MustCompile(`(?m)^\s*impl(?:<[^>]*>)?\s+[\w:]+(?:<[^>]*>)?\s+for\s+`)},
	{Name: "derive macro", Languages: []string{"Rust"},
		Re: regexp.MustCompile(`#\[derive\(`)},
	{Name: "error propagation", Languages: []string{"Rust"},
		Re: regexp.MustCompile(`\)\?[;.]`)},

	// C#
	{Name: "auto property", Languages: []string{"C#"},
		Re: regexp.MustCompile(`\{\s*get;\s*(?:(?:private\s+|init;?\s*)?set;)?\s*\}`)},
	{Name: "async Task", Languages: []string{"C#"},
		Re: regexp.MustCompile(`\basync\s+Task\b`)},

	// PHP / Ruby
	{Name: "Eloquent model", Languages: []string{"PHP"}, Framework: "Laravel",
		Re: regexp.MustCompile(`extends\s+Model\b`)},
	{Name: "PHP namespace", Languages: []string{"PHP"},
		Re: regexp.MustCompile(`(?m)^\s*namespace\s+[\w\\]+;`)},
	{Name: "ActiveRecord model", Languages: []string{"Ruby"}, Framework: "Ruby on Rails",
		Re: regexp.MustCompile(`<\s*(?:ApplicationRecord|ActiveRecord::Base)\b`)},
}

func (c *construct) applies(f *types.FileRecord) bool {
	if !containsStr(c.Languages, f.Language) {
		return false
	}
	return len(c.Exts) == 0 || containsStr(c.Exts, f.Ext)
}

// detectConstructs returns one name per match in f's sample.
func detectConstructs(f *types.FileRecord, enabled func(string) bool) []string {
	var out []string
	for i := range constructs {
		c := &constructs[i]
		if !c.applies(f) {
			continue
		}
		if c.Framework != "" && !enabled(c.Framework) {
			continue
		}
		for range c.Re.FindAllIndex(f.Sample, -1) {
			out = append(out, c.Name)
		}
	}
	return out
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
