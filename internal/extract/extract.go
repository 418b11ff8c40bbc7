// Package extract pulls identifiers, import specifiers and recognizable
// constructs out of a file's content sample. Extraction is lexical or
// query-based; nothing here resolves symbols across files.
package extract

import (
	"fmt"

	"github.com/standardbeagle/codeprofile/internal/debug"
	cperrors "github.com/standardbeagle/codeprofile/internal/errors"
	"github.com/standardbeagle/codeprofile/internal/types"
)

// Result is everything one file contributes to pattern detection.
type Result struct {
	Identifiers map[types.IdentifierCategory][]string
	Imports     []string
	Selectors   []string // stylesheet class selectors
	Constructs  []string // one entry per occurrence
}

func newResult() *Result {
	return &Result{Identifiers: make(map[types.IdentifierCategory][]string)}
}

func (r *Result) add(cat types.IdentifierCategory, name string) {
	if name == "" {
		return
	}
	r.Identifiers[cat] = append(r.Identifiers[cat], name)
}

// merge adds identifiers from other that r does not already hold in the
// same category. Imports and constructs are left alone.
func (r *Result) merge(other *Result) {
	for cat, names := range other.Identifiers {
		seen := make(map[string]bool, len(r.Identifiers[cat]))
		for _, name := range r.Identifiers[cat] {
			seen[name] = true
		}
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				r.add(cat, name)
			}
		}
	}
}

// Empty reports whether nothing was extracted.
func (r *Result) Empty() bool {
	if r == nil {
		return true
	}
	for _, ids := range r.Identifiers {
		if len(ids) > 0 {
			return false
		}
	}
	return len(r.Imports) == 0 && len(r.Selectors) == 0 && len(r.Constructs) == 0
}

// Extractor is a pure function from a file (and its sample) to a Result.
type Extractor func(f *types.FileRecord) (*Result, error)

// Registry dispatches files to extractors: first by category, then by
// language for code files.
type Registry struct {
	byCategory map[types.FileCategory]Extractor
	byLanguage map[string]Extractor
	treeSitter *TreeSitter
	frameworks map[string]bool
}

// NewRegistry builds the dispatch tables. tech gates framework-specific
// constructs; nil enables all of them.
func NewRegistry(tech *types.TechStackProfile) *Registry {
	r := &Registry{
		treeSitter: NewTreeSitter(),
	}
	if tech != nil {
		r.frameworks = make(map[string]bool)
		for _, d := range tech.Detections {
			r.frameworks[d.Name] = true
		}
	}

	r.byCategory = map[types.FileCategory]Extractor{
		types.CategorySource:     r.extractCode,
		types.CategoryTest:       r.extractCode,
		types.CategoryStylesheet: extractStylesheet,
	}

	r.byLanguage = map[string]Extractor{
		"JavaScript": r.extractJavaScript,
		"TypeScript": r.extractTypeScript,
	}
	for _, lang := range r.treeSitter.Languages() {
		lang := lang
		r.byLanguage[lang] = func(f *types.FileRecord) (*Result, error) {
			res, err := r.treeSitter.Extract(lang, f.Ext, f.Sample)
			if err != nil || res.Empty() {
				debug.LogPattern("tree-sitter gave nothing for %s (%v), using regex\n", f.RelPath, err)
				return extractGeneric(f.Sample), nil
			}
			return res, nil
		}
	}
	return r
}

// Close releases parser resources.
func (r *Registry) Close() {
	r.treeSitter.Close()
}

// Supports reports whether files of this category are extracted at all.
func (r *Registry) Supports(cat types.FileCategory) bool {
	_, ok := r.byCategory[cat]
	return ok
}

// Extract runs the extractor for f. A file without a sample or without a
// registered extractor yields (nil, nil). Panics inside an extractor are
// returned as a ParseError so one bad file never stops the run.
func (r *Registry) Extract(f *types.FileRecord) (res *Result, err error) {
	ext, ok := r.byCategory[f.Category]
	if !ok || !f.HasSample() {
		return nil, nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			debug.LogPattern("extractor panic in %s: %v\n", f.RelPath, rec)
			res = nil
			err = cperrors.NewParseError(f.RelPath, f.Language, fmt.Errorf("extractor panic: %v", rec))
		}
	}()

	res, err = ext(f)
	if err != nil {
		return nil, cperrors.NewParseError(f.RelPath, f.Language, err)
	}
	if res != nil && f.Category != types.CategoryStylesheet {
		res.Constructs = append(res.Constructs, detectConstructs(f, r.frameworkEnabled)...)
	}
	return res, nil
}

func (r *Registry) extractCode(f *types.FileRecord) (*Result, error) {
	if fn, ok := r.byLanguage[f.Language]; ok {
		return fn(f)
	}
	return extractGeneric(f.Sample), nil
}

func (r *Registry) frameworkEnabled(name string) bool {
	return r.frameworks == nil || r.frameworks[name]
}
