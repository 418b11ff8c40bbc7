package extract

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unsafe"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/codeprofile/internal/debug"
	"github.com/standardbeagle/codeprofile/internal/types"
)

// grammar describes one tree-sitter language. Each pattern is compiled on
// its own so a pattern the linked grammar version rejects only loses itself.
type grammar struct {
	language func() unsafe.Pointer
	patterns []string
}

// grammars is keyed by classifier language name. JavaScript and TypeScript
// are listed for the JS/TS extractors, which try other strategies first.
var grammars = map[string]grammar{
	"Go": {
		language: tree_sitter_go.Language,
		patterns: []string{
			`(function_declaration name: (identifier) @function.name)`,
			`(method_declaration name: (field_identifier) @method.name)`,
			`(type_declaration (type_spec name: (type_identifier) @type.name))`,
			`(var_spec name: (identifier) @variable.name)`,
			`(const_spec name: (identifier) @constant.name)`,
			`(short_var_declaration left: (expression_list (identifier) @variable.name))`,
			`(import_spec path: (interpreted_string_literal) @import.path)`,
		},
	},
	"Python": {
		language: tree_sitter_python.Language,
		patterns: []string{
			`(function_definition name: (identifier) @function.name)`,
			`(class_definition name: (identifier) @class.name)`,
			`(assignment left: (identifier) @variable.name)`,
			`(import_statement name: (dotted_name) @import.path)`,
			`(import_from_statement module_name: (_) @import.path)`,
		},
	},
	"Rust": {
		language: tree_sitter_rust.Language,
		patterns: []string{
			`(function_item name: (identifier) @function.name)`,
			`(struct_item name: (type_identifier) @struct.name)`,
			`(enum_item name: (type_identifier) @enum.name)`,
			`(trait_item name: (type_identifier) @interface.name)`,
			`(type_item name: (type_identifier) @type.name)`,
			`(let_declaration pattern: (identifier) @variable.name)`,
			`(const_item name: (identifier) @constant.name)`,
			`(use_declaration argument: (_) @import.path)`,
		},
	},
	"Java": {
		language: tree_sitter_java.Language,
		patterns: []string{
			`(method_declaration name: (identifier) @method.name)`,
			`(constructor_declaration name: (identifier) @constructor.name)`,
			`(class_declaration name: (identifier) @class.name)`,
			`(record_declaration name: (identifier) @class.name)`,
			`(interface_declaration name: (identifier) @interface.name)`,
			`(enum_declaration name: (identifier) @enum.name)`,
			`(field_declaration declarator: (variable_declarator name: (identifier) @field.name))`,
			`(local_variable_declaration declarator: (variable_declarator name: (identifier) @variable.name))`,
			`(import_declaration (scoped_identifier) @import.path)`,
		},
	},
	"C#": {
		language: tree_sitter_csharp.Language,
		patterns: []string{
			`(method_declaration name: (identifier) @method.name)`,
			`(class_declaration name: (identifier) @class.name)`,
			`(interface_declaration name: (identifier) @interface.name)`,
			`(struct_declaration name: (identifier) @struct.name)`,
			`(record_declaration name: (identifier) @record.name)`,
			`(enum_declaration name: (identifier) @enum.name)`,
			`(property_declaration name: (identifier) @property.name)`,
			`(field_declaration (variable_declaration (variable_declarator (identifier) @field.name)))`,
			`(using_directive (qualified_name) @import.path)`,
			`(using_directive (identifier) @import.path)`,
		},
	},
	"C": {
		language: tree_sitter_cpp.Language,
		patterns: cFamilyPatterns,
	},
	"C++": {
		language: tree_sitter_cpp.Language,
		patterns: append([]string{
			`(class_specifier name: (type_identifier) @class.name)`,
		}, cFamilyPatterns...),
	},
	"PHP": {
		language: tree_sitter_php.LanguagePHP,
		patterns: []string{
			`(class_declaration name: (name) @class.name)`,
			`(interface_declaration name: (name) @interface.name)`,
			`(trait_declaration name: (name) @trait.name)`,
			`(enum_declaration name: (name) @enum.name)`,
			`(function_definition name: (name) @function.name)`,
			`(method_declaration name: (name) @method.name)`,
			`(assignment_expression left: (variable_name (name) @variable.name))`,
		},
	},
	"Zig": {
		language: tree_sitter_zig.Language,
		patterns: []string{
			`(function_declaration (identifier) @function.name)`,
			`(variable_declaration (identifier) @struct.name (struct_declaration))`,
			`(variable_declaration (identifier) @struct.name (union_declaration))`,
		},
	},
	"JavaScript": {
		language: tree_sitter_javascript.Language,
		patterns: []string{
			`(function_declaration name: (identifier) @function.name)`,
			`(generator_function_declaration name: (identifier) @function.name)`,
			`(variable_declarator name: (identifier) @function.name value: [(arrow_function) (function_expression)])`,
			`(variable_declarator name: (identifier) @variable.name value: [(number) (string) (object) (array) (call_expression) (identifier) (member_expression) (new_expression) (template_string) (true) (false) (null)])`,
			`(method_definition name: (property_identifier) @method.name)`,
			`(class_declaration name: (identifier) @class.name)`,
			`(import_statement source: (string) @import.source)`,
		},
	},
	"TypeScript": {
		language: tree_sitter_typescript.LanguageTypescript,
		patterns: []string{
			`(function_declaration name: (identifier) @function.name)`,
			`(variable_declarator name: (identifier) @function.name value: [(arrow_function) (function_expression)])`,
			`(variable_declarator name: (identifier) @variable.name value: [(number) (string) (object) (array) (call_expression) (identifier) (member_expression) (new_expression) (template_string) (true) (false) (null)])`,
			`(method_definition name: (property_identifier) @method.name)`,
			`(class_declaration name: (type_identifier) @class.name)`,
			`(interface_declaration name: (type_identifier) @interface.name)`,
			`(type_alias_declaration name: (type_identifier) @type.name)`,
			`(enum_declaration name: (identifier) @enum.name)`,
			`(import_statement source: (string) @import.source)`,
		},
	},
}

var cFamilyPatterns = []string{
	`(function_definition declarator: (function_declarator declarator: (identifier) @function.name))`,
	`(struct_specifier name: (type_identifier) @struct.name)`,
	`(enum_specifier name: (type_identifier) @enum.name)`,
	`(declaration declarator: (init_declarator declarator: (identifier) @variable.name))`,
	`(preproc_include path: (_) @import.path)`,
}

// captureCategory maps the kind half of a capture name ("function" in
// "function.name") to an identifier category.
var captureCategory = map[string]types.IdentifierCategory{
	"function":    types.IdentFunction,
	"method":      types.IdentFunction,
	"constructor": types.IdentFunction,
	"class":       types.IdentClass,
	"struct":      types.IdentClass,
	"interface":   types.IdentClass,
	"enum":        types.IdentClass,
	"trait":       types.IdentClass,
	"record":      types.IdentClass,
	"type":        types.IdentClass,
	"variable":    types.IdentVariable,
	"field":       types.IdentVariable,
	"property":    types.IdentVariable,
	"constant":    types.IdentVariable,
}

// languageEntry holds the compiled queries and an idle parser pool for one
// language. Parsers are not safe for concurrent use, queries are.
type languageEntry struct {
	once     sync.Once
	language *tree_sitter.Language
	queries  []*tree_sitter.Query

	mu   sync.Mutex
	idle []*tree_sitter.Parser
}

// TreeSitter runs name-capture queries against content samples. Languages
// are set up lazily on first use.
type TreeSitter struct {
	entries map[string]*languageEntry
}

// NewTreeSitter creates an extractor for every registered grammar.
func NewTreeSitter() *TreeSitter {
	ts := &TreeSitter{entries: make(map[string]*languageEntry, len(grammars))}
	for lang := range grammars {
		ts.entries[lang] = &languageEntry{}
	}
	return ts
}

// Languages returns the languages dispatched straight to tree-sitter, sorted.
// JavaScript and TypeScript are reached through their own extractors.
func (ts *TreeSitter) Languages() []string {
	var out []string
	for lang := range ts.entries {
		if lang == "JavaScript" || lang == "TypeScript" {
			continue
		}
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

func (ts *TreeSitter) entry(lang string) *languageEntry {
	e, ok := ts.entries[lang]
	if !ok {
		return nil
	}
	e.once.Do(func() {
		g := grammars[lang]
		e.language = tree_sitter.NewLanguage(g.language())
		for _, p := range g.patterns {
			q, _ := tree_sitter.NewQuery(e.language, p)
			// The binding can return a typed nil error; the query is what counts.
			if q != nil {
				e.queries = append(e.queries, q)
			} else {
				debug.LogPattern("%s: pattern rejected by grammar: %s\n", lang, p)
			}
		}
	})
	return e
}

func (e *languageEntry) acquire() (*tree_sitter.Parser, error) {
	e.mu.Lock()
	if n := len(e.idle); n > 0 {
		p := e.idle[n-1]
		e.idle = e.idle[:n-1]
		e.mu.Unlock()
		return p, nil
	}
	e.mu.Unlock()

	p := tree_sitter.NewParser()
	if err := p.SetLanguage(e.language); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (e *languageEntry) release(p *tree_sitter.Parser) {
	e.mu.Lock()
	e.idle = append(e.idle, p)
	e.mu.Unlock()
}

// Extract parses content with the grammar for lang and collects captured
// names. It returns an error when the language has no usable grammar.
func (ts *TreeSitter) Extract(lang, ext string, content []byte) (*Result, error) {
	e := ts.entry(lang)
	if e == nil {
		return nil, fmt.Errorf("no grammar for %s", lang)
	}
	if len(e.queries) == 0 {
		return nil, fmt.Errorf("no usable queries for %s", lang)
	}

	parser, err := e.acquire()
	if err != nil {
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}
	defer e.release(parser)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("%s parser returned no tree", lang)
	}
	defer tree.Close()

	res := newResult()
	root := tree.RootNode()
	for _, q := range e.queries {
		names := q.CaptureNames()
		qc := tree_sitter.NewQueryCursor()
		matches := qc.Matches(q, root, content)
		for match := matches.Next(); match != nil; match = matches.Next() {
			for _, c := range match.Captures {
				kind, field, _ := strings.Cut(names[c.Index], ".")
				text := string(content[c.Node.StartByte():c.Node.EndByte()])
				if kind == "import" {
					if spec := cleanImport(text); spec != "" {
						res.Imports = append(res.Imports, spec)
					}
					continue
				}
				if field != "name" {
					continue
				}
				if cat, ok := captureCategory[kind]; ok {
					res.add(cat, text)
				}
			}
		}
		qc.Close()
	}
	// A sample cut mid-declaration leaves an ERROR node that can swallow
	// the last declaration; the line-based shapes still see it.
	if root.HasError() {
		res.merge(extractGeneric(content))
	}
	return res, nil
}

// Close releases idle parsers and compiled queries.
func (ts *TreeSitter) Close() {
	for _, e := range ts.entries {
		e.mu.Lock()
		for _, p := range e.idle {
			p.Close()
		}
		e.idle = nil
		e.mu.Unlock()
		for _, q := range e.queries {
			q.Close()
		}
		e.queries = nil
	}
}

func cleanImport(s string) string {
	return strings.Trim(strings.TrimSpace(s), "\"'`<>")
}
