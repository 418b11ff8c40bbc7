package extract

import (
	"regexp"

	"github.com/standardbeagle/codeprofile/internal/types"
)

// Lexical shapes for JavaScript and TypeScript. They see only declarations
// that start a line, which is what a content sample reliably contains.
var (
	scriptFunctionRe = regexp.MustCompile(`(?m)^\s*(?:export\s+(?:default\s+)?)?(?:async\s+)?function\s*\*?\s+(\w+)\s*[(<]`)
	scriptArrowRe    = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:const|let|var)\s+(\w+)\s*(?::[^=]+)?=\s*(?:async\s+)?(?:function\b|\([^)]*\)\s*(?::[^=]+)?=>|\w+\s*=>)`)
	scriptVariableRe = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:const|let|var)\s+(\w+)`)
	scriptClassRe    = regexp.MustCompile(`(?m)^\s*(?:export\s+(?:default\s+)?)?(?:abstract\s+)?class\s+(\w+)`)
	scriptMethodRe   = regexp.MustCompile(`(?m)^\s+(?:(?:public|private|protected|static|async|readonly|override)\s+)*(\w+)\s*\([^)]*\)\s*(?::\s*[^{]+)?\{`)
	scriptImportRe   = regexp.MustCompile(`(?m)^\s*(?:import|export)\s+(?:[^'"]*?\s+from\s+)?['"]([^'"]+)['"]`)
	scriptRequireRe  = regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`)

	tsTypeRe = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:declare\s+)?(?:interface|type|enum|const\s+enum)\s+(\w+)`)
)

var controlKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"function": true, "return": true, "constructor": true, "super": true,
}

func extractScript(content []byte, typescript bool) *Result {
	res := newResult()
	functions := make(map[string]bool)

	for _, m := range scriptFunctionRe.FindAllSubmatch(content, -1) {
		res.add(types.IdentFunction, string(m[1]))
	}
	for _, m := range scriptArrowRe.FindAllSubmatch(content, -1) {
		name := string(m[1])
		functions[name] = true
		res.add(types.IdentFunction, name)
	}
	for _, m := range scriptVariableRe.FindAllSubmatch(content, -1) {
		if name := string(m[1]); !functions[name] {
			res.add(types.IdentVariable, name)
		}
	}
	for _, m := range scriptClassRe.FindAllSubmatch(content, -1) {
		res.add(types.IdentClass, string(m[1]))
	}
	for _, m := range scriptMethodRe.FindAllSubmatch(content, -1) {
		if name := string(m[1]); !controlKeywords[name] {
			res.add(types.IdentFunction, name)
		}
	}
	if typescript {
		for _, m := range tsTypeRe.FindAllSubmatch(content, -1) {
			res.add(types.IdentClass, string(m[1]))
		}
	}
	for _, m := range scriptImportRe.FindAllSubmatch(content, -1) {
		res.Imports = append(res.Imports, string(m[1]))
	}
	for _, m := range scriptRequireRe.FindAllSubmatch(content, -1) {
		res.Imports = append(res.Imports, string(m[1]))
	}
	return res
}

// Shapes shared by most remaining languages: def/fn/func/fun declarations,
// class-like type declarations and simple top-level assignments.
var (
	genericFunctionRe = regexp.MustCompile(`(?m)^\s*(?:(?:pub|public|private|protected|static|export|async|inline|override|suspend)\s+)*(?:def|fn|func|fun|function|sub|proc)\s+(?:self\.)?(\w+)`)
	genericClassRe    = regexp.MustCompile(`(?m)^\s*(?:(?:pub|public|private|protected|abstract|final|sealed|data|open|export)\s+)*(?:class|struct|interface|trait|enum|module|protocol|record|object)\s+(\w+)`)
	genericVariableRe = regexp.MustCompile(`(?m)^\s*(?:(?:let|var|val|const|local|my|our)\s+)?([A-Za-z_]\w*)\s*(?::\s*[\w<>\[\]?.]+\s*)?=[^=>~]`)
	genericImportRe   = regexp.MustCompile(`(?m)^\s*(?:import|require|require_relative|use|using|include|from)\s+['"<]?([\w./:@-]+)`)
)

var genericSkip = map[string]bool{
	"self": true, "this": true, "if": true, "else": true, "return": true,
	"end": true, "then": true, "do": true,
}

func extractGeneric(content []byte) *Result {
	res := newResult()
	for _, m := range genericFunctionRe.FindAllSubmatch(content, -1) {
		res.add(types.IdentFunction, string(m[1]))
	}
	for _, m := range genericClassRe.FindAllSubmatch(content, -1) {
		res.add(types.IdentClass, string(m[1]))
	}
	for _, m := range genericVariableRe.FindAllSubmatch(content, -1) {
		if name := string(m[1]); !genericSkip[name] {
			res.add(types.IdentVariable, name)
		}
	}
	for _, m := range genericImportRe.FindAllSubmatch(content, -1) {
		res.Imports = append(res.Imports, string(m[1]))
	}
	return res
}
