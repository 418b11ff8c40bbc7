package traverse

import (
	"path"
	"strings"

	"github.com/standardbeagle/codeprofile/internal/types"
)

// extensionRule maps an extension to a category and, for code, a language.
type extensionRule struct {
	Category types.FileCategory
	Language string
}

// filenameCategories holds exact (lowercased) file names. These win over
// the extension table, so package.json is config and not generic JSON.
var filenameCategories = map[string]types.FileCategory{
	// Dependency manifests and lockfiles
	"package.json":        types.CategoryConfig,
	"package-lock.json":   types.CategoryConfig,
	"yarn.lock":           types.CategoryConfig,
	"pnpm-lock.yaml":      types.CategoryConfig,
	"pnpm-workspace.yaml": types.CategoryConfig,
	"bun.lockb":           types.CategoryConfig,
	"go.mod":              types.CategoryConfig,
	"go.sum":              types.CategoryConfig,
	"go.work":             types.CategoryConfig,
	"cargo.toml":          types.CategoryConfig,
	"cargo.lock":          types.CategoryConfig,
	"pyproject.toml":      types.CategoryConfig,
	"requirements.txt":    types.CategoryConfig,
	"pipfile":             types.CategoryConfig,
	"pipfile.lock":        types.CategoryConfig,
	"poetry.lock":         types.CategoryConfig,
	"setup.py":            types.CategoryConfig,
	"setup.cfg":           types.CategoryConfig,
	"gemfile":             types.CategoryConfig,
	"gemfile.lock":        types.CategoryConfig,
	"composer.json":       types.CategoryConfig,
	"composer.lock":       types.CategoryConfig,
	"pom.xml":             types.CategoryConfig,
	"build.gradle":        types.CategoryConfig,
	"build.gradle.kts":    types.CategoryConfig,
	"settings.gradle":     types.CategoryConfig,
	"pubspec.yaml":        types.CategoryConfig,
	"pubspec.lock":        types.CategoryConfig,
	"mix.exs":             types.CategoryConfig,

	// Build and tooling
	"makefile":            types.CategoryConfig,
	"dockerfile":          types.CategoryConfig,
	"docker-compose.yml":  types.CategoryConfig,
	"docker-compose.yaml": types.CategoryConfig,
	"procfile":            types.CategoryConfig,
	"justfile":            types.CategoryConfig,
	"rakefile":            types.CategoryConfig,
	"vagrantfile":         types.CategoryConfig,
	"jenkinsfile":         types.CategoryConfig,
	".gitignore":          types.CategoryConfig,
	".gitattributes":      types.CategoryConfig,
	".dockerignore":       types.CategoryConfig,
	".editorconfig":       types.CategoryConfig,
	".npmrc":              types.CategoryConfig,
	".nvmrc":              types.CategoryConfig,
	".env":                types.CategoryConfig,
	".env.example":        types.CategoryConfig,
	".prettierrc":         types.CategoryConfig,
	".eslintrc":           types.CategoryConfig,
	".babelrc":            types.CategoryConfig,
	".codeprofile.kdl":    types.CategoryConfig,

	// Documentation
	"readme":       types.CategoryDocumentation,
	"license":      types.CategoryDocumentation,
	"licence":      types.CategoryDocumentation,
	"changelog":    types.CategoryDocumentation,
	"contributing": types.CategoryDocumentation,
	"authors":      types.CategoryDocumentation,
	"notice":       types.CategoryDocumentation,
	"copying":      types.CategoryDocumentation,
}

// configNamePrefixes catch tool configs whose extension would otherwise
// make them source (vite.config.ts, jest.config.js, .eslintrc.cjs).
var configNamePrefixes = []string{
	"vite.config.", "vitest.config.", "jest.config.", "webpack.config.", "rollup.config.",
	"next.config.", "nuxt.config.", "svelte.config.", "astro.config.", "remix.config.",
	"tailwind.config.", "postcss.config.", "babel.config.", "tsconfig.", "jsconfig.",
	"karma.conf.", "playwright.config.", "cypress.config.", "vue.config.", "angular.json",
	".eslintrc.", ".prettierrc.", ".stylelintrc.", "eslint.config.", "prettier.config.",
	"turbo.json", "nx.json", "lerna.json", "gatsby-config.", "metro.config.",
}

var extensionTable = map[string]extensionRule{
	// Source
	".go":     {types.CategorySource, "Go"},
	".ts":     {types.CategorySource, "TypeScript"},
	".tsx":    {types.CategorySource, "TypeScript"},
	".mts":    {types.CategorySource, "TypeScript"},
	".cts":    {types.CategorySource, "TypeScript"},
	".js":     {types.CategorySource, "JavaScript"},
	".jsx":    {types.CategorySource, "JavaScript"},
	".mjs":    {types.CategorySource, "JavaScript"},
	".cjs":    {types.CategorySource, "JavaScript"},
	".py":     {types.CategorySource, "Python"},
	".pyi":    {types.CategorySource, "Python"},
	".rb":     {types.CategorySource, "Ruby"},
	".java":   {types.CategorySource, "Java"},
	".kt":     {types.CategorySource, "Kotlin"},
	".kts":    {types.CategorySource, "Kotlin"},
	".scala":  {types.CategorySource, "Scala"},
	".rs":     {types.CategorySource, "Rust"},
	".cs":     {types.CategorySource, "C#"},
	".c":      {types.CategorySource, "C"},
	".h":      {types.CategorySource, "C"},
	".cpp":    {types.CategorySource, "C++"},
	".cc":     {types.CategorySource, "C++"},
	".cxx":    {types.CategorySource, "C++"},
	".hpp":    {types.CategorySource, "C++"},
	".hh":     {types.CategorySource, "C++"},
	".php":    {types.CategorySource, "PHP"},
	".swift":  {types.CategorySource, "Swift"},
	".m":      {types.CategorySource, "Objective-C"},
	".dart":   {types.CategorySource, "Dart"},
	".zig":    {types.CategorySource, "Zig"},
	".lua":    {types.CategorySource, "Lua"},
	".ex":     {types.CategorySource, "Elixir"},
	".exs":    {types.CategorySource, "Elixir"},
	".erl":    {types.CategorySource, "Erlang"},
	".hs":     {types.CategorySource, "Haskell"},
	".clj":    {types.CategorySource, "Clojure"},
	".vue":    {types.CategorySource, "Vue"},
	".svelte": {types.CategorySource, "Svelte"},
	".astro":  {types.CategorySource, "Astro"},
	".sh":     {types.CategorySource, "Shell"},
	".bash":   {types.CategorySource, "Shell"},
	".zsh":    {types.CategorySource, "Shell"},
	".ps1":    {types.CategorySource, "PowerShell"},
	".sql":    {types.CategorySource, "SQL"},
	".r":      {types.CategorySource, "R"},
	".jl":     {types.CategorySource, "Julia"},

	// Stylesheets
	".css":  {types.CategoryStylesheet, "CSS"},
	".scss": {types.CategoryStylesheet, "SCSS"},
	".sass": {types.CategoryStylesheet, "Sass"},
	".less": {types.CategoryStylesheet, "Less"},
	".styl": {types.CategoryStylesheet, "Stylus"},

	// Config
	".json":       {types.CategoryConfig, ""},
	".jsonc":      {types.CategoryConfig, ""},
	".yaml":       {types.CategoryConfig, ""},
	".yml":        {types.CategoryConfig, ""},
	".toml":       {types.CategoryConfig, ""},
	".ini":        {types.CategoryConfig, ""},
	".cfg":        {types.CategoryConfig, ""},
	".conf":       {types.CategoryConfig, ""},
	".xml":        {types.CategoryConfig, ""},
	".properties": {types.CategoryConfig, ""},
	".env":        {types.CategoryConfig, ""},
	".kdl":        {types.CategoryConfig, ""},
	".tf":         {types.CategoryConfig, ""},
	".gradle":     {types.CategoryConfig, ""},
	".lock":       {types.CategoryConfig, ""},

	// Documentation
	".md":   {types.CategoryDocumentation, ""},
	".mdx":  {types.CategoryDocumentation, ""},
	".rst":  {types.CategoryDocumentation, ""},
	".txt":  {types.CategoryDocumentation, ""},
	".adoc": {types.CategoryDocumentation, ""},

	// Assets
	".png":   {types.CategoryAsset, ""},
	".jpg":   {types.CategoryAsset, ""},
	".jpeg":  {types.CategoryAsset, ""},
	".gif":   {types.CategoryAsset, ""},
	".svg":   {types.CategoryAsset, ""},
	".ico":   {types.CategoryAsset, ""},
	".webp":  {types.CategoryAsset, ""},
	".avif":  {types.CategoryAsset, ""},
	".bmp":   {types.CategoryAsset, ""},
	".woff":  {types.CategoryAsset, ""},
	".woff2": {types.CategoryAsset, ""},
	".ttf":   {types.CategoryAsset, ""},
	".otf":   {types.CategoryAsset, ""},
	".eot":   {types.CategoryAsset, ""},
	".mp3":   {types.CategoryAsset, ""},
	".mp4":   {types.CategoryAsset, ""},
	".wav":   {types.CategoryAsset, ""},
	".webm":  {types.CategoryAsset, ""},
	".pdf":   {types.CategoryAsset, ""},

	// Build artifacts
	".map":   {types.CategoryBuildArtifact, ""},
	".pyc":   {types.CategoryBuildArtifact, ""},
	".pyo":   {types.CategoryBuildArtifact, ""},
	".class": {types.CategoryBuildArtifact, ""},
	".o":     {types.CategoryBuildArtifact, ""},
	".obj":   {types.CategoryBuildArtifact, ""},
	".so":    {types.CategoryBuildArtifact, ""},
	".dll":   {types.CategoryBuildArtifact, ""},
	".dylib": {types.CategoryBuildArtifact, ""},
	".exe":   {types.CategoryBuildArtifact, ""},
	".a":     {types.CategoryBuildArtifact, ""},
	".wasm":  {types.CategoryBuildArtifact, ""},
	".jar":   {types.CategoryBuildArtifact, ""},
}

// testDirNames mark every source file beneath them as a test.
var testDirNames = map[string]bool{
	"__tests__": true,
	"__mocks__": true,
	"test":      true,
	"tests":     true,
	"spec":      true,
	"e2e":       true,
	"testdata":  true,
}

// Classifier assigns a category and language to a relative path.
type Classifier struct {
	outputDirs []string
}

// NewClassifier creates a classifier. outputDirs are root-relative build
// output directories whose contents are classified as build artifacts.
func NewClassifier(outputDirs []string) *Classifier {
	return &Classifier{outputDirs: outputDirs}
}

// LanguageForExt returns the language implied by an extension, or "".
func LanguageForExt(ext string) string {
	return extensionTable[strings.ToLower(ext)].Language
}

// Classify returns category and language for a root-relative path.
// Order: build output dirs, exact file names, tool config prefixes, minified
// bundles, then the extension table with test heuristics for code.
func (c *Classifier) Classify(relPath string) (types.FileCategory, string) {
	name := path.Base(relPath)
	lower := strings.ToLower(name)
	ext := strings.ToLower(path.Ext(name))
	lang := extensionTable[ext].Language

	if c.inOutputDir(relPath) {
		return types.CategoryBuildArtifact, lang
	}

	if cat, ok := filenameCategories[lower]; ok {
		return cat, lang
	}
	if stem := strings.TrimSuffix(lower, ext); ext != "" {
		// README.md, LICENSE.txt, CHANGELOG.rst
		if cat, ok := filenameCategories[stem]; ok && cat == types.CategoryDocumentation {
			return cat, ""
		}
	}
	for _, prefix := range configNamePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return types.CategoryConfig, lang
		}
	}
	if strings.Contains(lower, ".min.") || strings.HasSuffix(lower, ".bundle.js") || strings.Contains(lower, ".chunk.") {
		return types.CategoryBuildArtifact, lang
	}
	if strings.HasPrefix(lower, "dockerfile.") || strings.HasSuffix(lower, ".dockerfile") {
		return types.CategoryConfig, ""
	}

	rule, ok := extensionTable[ext]
	if !ok {
		return types.CategoryOther, ""
	}
	if rule.Category == types.CategorySource && isTestPath(relPath, name) {
		return types.CategoryTest, rule.Language
	}
	return rule.Category, rule.Language
}

func (c *Classifier) inOutputDir(relPath string) bool {
	for _, dir := range c.outputDirs {
		if strings.HasPrefix(relPath, dir+"/") {
			return true
		}
	}
	return false
}

// isTestPath applies name and directory heuristics for test files.
func isTestPath(relPath, name string) bool {
	lower := strings.ToLower(name)
	ext := path.Ext(lower)
	stem := strings.TrimSuffix(lower, ext)

	switch {
	case strings.HasSuffix(stem, "_test"), strings.HasSuffix(stem, "_tests"):
		return true // Go, Python, Elixir
	case strings.HasSuffix(stem, ".test"), strings.HasSuffix(stem, ".spec"):
		return true // JS/TS
	case strings.HasSuffix(stem, "_spec"):
		return true // Ruby
	case strings.HasPrefix(stem, "test_") && ext == ".py":
		return true
	case ext == ".py" && stem == "conftest":
		return true
	}

	// Java/C#/Kotlin/PHP: FooTest.java, FooTests.cs, FooTestCase.php
	origStem := strings.TrimSuffix(name, path.Ext(name))
	for _, suffix := range []string{"Test", "Tests", "TestCase", "Spec", "IT"} {
		if strings.HasSuffix(origStem, suffix) && len(origStem) > len(suffix) {
			r := origStem[len(origStem)-len(suffix)-1]
			if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
				return true
			}
		}
	}

	dir := path.Dir(relPath)
	for dir != "." && dir != "/" && dir != "" {
		if testDirNames[strings.ToLower(path.Base(dir))] {
			return true
		}
		dir = path.Dir(dir)
	}
	return false
}
