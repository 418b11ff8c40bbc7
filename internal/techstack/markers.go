package techstack

import (
	"path"
	"strings"

	"github.com/standardbeagle/codeprofile/internal/types"
)

// marker is a file name, name prefix or root-relative path whose presence
// implies a technology regardless of declared dependencies.
type marker struct {
	Name   string // exact lowercased base name
	Prefix string // lowercased base name prefix
	Path   string // root-relative file or directory
	Tech   tech
}

var markers = []marker{
	// Framework config files
	{Prefix: "next.config.", Tech: framework("Next.js")},
	{Prefix: "nuxt.config.", Tech: framework("Nuxt")},
	{Name: "angular.json", Tech: framework("Angular")},
	{Prefix: "svelte.config.", Tech: framework("SvelteKit")},
	{Prefix: "astro.config.", Tech: framework("Astro")},
	{Prefix: "remix.config.", Tech: framework("Remix")},
	{Prefix: "gatsby-config.", Tech: framework("Gatsby")},
	{Name: "nest-cli.json", Tech: framework("NestJS")},
	{Name: "manage.py", Tech: framework("Django")},
	{Name: "artisan", Tech: framework("Laravel")},
	{Path: "config/routes.rb", Tech: framework("Ruby on Rails")},
	{Path: "bin/rails", Tech: framework("Ruby on Rails")},
	{Name: "tauri.conf.json", Tech: framework("Tauri")},

	// Library config files
	{Prefix: "tailwind.config.", Tech: library("Tailwind CSS")},
	{Name: "schema.prisma", Tech: library("Prisma")},
	{Prefix: "drizzle.config.", Tech: library("Drizzle ORM")},
	{Path: ".storybook", Tech: library("Storybook")},

	// Build tooling
	{Prefix: "vite.config.", Tech: buildTool("Vite")},
	{Prefix: "webpack.config.", Tech: buildTool("Webpack")},
	{Prefix: "rollup.config.", Tech: buildTool("Rollup")},
	{Prefix: "postcss.config.", Tech: buildTool("PostCSS")},
	{Prefix: "babel.config.", Tech: buildTool("Babel")},
	{Name: ".babelrc", Tech: buildTool("Babel")},
	{Name: "tsconfig.json", Tech: buildTool("TypeScript")},
	{Prefix: ".eslintrc", Tech: buildTool("ESLint")},
	{Prefix: "eslint.config.", Tech: buildTool("ESLint")},
	{Prefix: ".prettierrc", Tech: buildTool("Prettier")},
	{Name: "turbo.json", Tech: buildTool("Turborepo")},
	{Name: "nx.json", Tech: buildTool("Nx")},
	{Name: "lerna.json", Tech: buildTool("Lerna")},
	{Name: "pnpm-workspace.yaml", Tech: buildTool("pnpm")},
	{Name: "pnpm-lock.yaml", Tech: buildTool("pnpm")},
	{Name: "yarn.lock", Tech: buildTool("Yarn")},
	{Name: "package-lock.json", Tech: buildTool("npm")},
	{Name: "bun.lockb", Tech: buildTool("Bun")},
	{Name: "dockerfile", Tech: buildTool("Docker")},
	{Prefix: "dockerfile.", Tech: buildTool("Docker")},
	{Name: "docker-compose.yml", Tech: buildTool("Docker Compose")},
	{Name: "docker-compose.yaml", Tech: buildTool("Docker Compose")},
	{Name: "compose.yaml", Tech: buildTool("Docker Compose")},
	{Name: "makefile", Tech: buildTool("Make")},
	{Name: "go.mod", Tech: buildTool("Go Modules")},
	{Name: "cargo.toml", Tech: buildTool("Cargo")},
	{Name: "pom.xml", Tech: buildTool("Maven")},
	{Name: "build.gradle", Tech: buildTool("Gradle")},
	{Name: "build.gradle.kts", Tech: buildTool("Gradle")},
	{Name: "poetry.lock", Tech: buildTool("Poetry")},
	{Name: "composer.json", Tech: buildTool("Composer")},
	{Path: ".github/workflows", Tech: buildTool("GitHub Actions")},
	{Name: ".gitlab-ci.yml", Tech: buildTool("GitLab CI")},

	// Test runners
	{Prefix: "jest.config.", Tech: testTool("Jest")},
	{Prefix: "vitest.config.", Tech: testTool("Vitest")},
	{Prefix: "playwright.config.", Tech: testTool("Playwright")},
	{Prefix: "cypress.config.", Tech: testTool("Cypress")},
	{Name: "cypress.json", Tech: testTool("Cypress")},
	{Prefix: "karma.conf.", Tech: testTool("Karma")},
	{Name: ".mocharc.json", Tech: testTool("Mocha")},
	{Name: "pytest.ini", Tech: testTool("pytest")},
	{Name: "conftest.py", Tech: testTool("pytest")},
	{Name: "tox.ini", Tech: testTool("tox")},
	{Name: ".rspec", Tech: testTool("RSpec")},
	{Name: "phpunit.xml", Tech: testTool("PHPUnit")},
	{Name: "phpunit.xml.dist", Tech: testTool("PHPUnit")},
}

// matchFile reports whether the marker applies to file f.
func (m *marker) matchFile(f *types.FileRecord) bool {
	if m.Path != "" {
		return f.RelPath == m.Path
	}
	lower := strings.ToLower(path.Base(f.RelPath))
	if m.Name != "" {
		return lower == m.Name
	}
	return strings.HasPrefix(lower, m.Prefix)
}

// detectMarkers returns one finding per marker hit. Build artifacts never
// count as evidence.
func detectMarkers(ps *types.ProjectStructure) []finding {
	var out []finding
	for i := range ps.Files {
		f := &ps.Files[i]
		if f.Category == types.CategoryBuildArtifact {
			continue
		}
		for j := range markers {
			if markers[j].matchFile(f) {
				out = append(out, finding{Tech: markers[j].Tech, Source: types.SourceMarker, Evidence: f.RelPath})
			}
		}
	}
	for j := range markers {
		m := &markers[j]
		if m.Path != "" && ps.HasDirectory(m.Path) {
			out = append(out, finding{Tech: m.Tech, Source: types.SourceMarker, Evidence: m.Path + "/"})
		}
	}
	return out
}
