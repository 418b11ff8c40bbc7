package techstack

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeprofile/internal/config"
	"github.com/standardbeagle/codeprofile/internal/traverse"
	"github.com/standardbeagle/codeprofile/internal/types"
)

func scan(t *testing.T, files map[string]string) (*config.Config, *types.ProjectStructure) {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0644))
	}
	cfg := config.Default(root)
	m, err := traverse.BuildMatcher(cfg, root, nil)
	require.NoError(t, err)
	res, err := traverse.New(cfg, m).Traverse(context.Background(), root)
	require.NoError(t, err)
	return cfg, &res.Structure
}

func profile(t *testing.T, files map[string]string) *Result {
	t.Helper()
	cfg, ps := scan(t, files)
	return New(cfg).Profile(context.Background(), ps)
}

func detection(t *testing.T, p types.TechStackProfile, name string) types.TechDetection {
	t.Helper()
	for _, d := range p.Detections {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("%s not detected; have %v", name, p.Detections)
	return types.TechDetection{}
}

func TestProfile_ReactWithoutNext(t *testing.T) {
	res := profile(t, map[string]string{
		"package.json": `{"dependencies":{"react":"^18.0.0","react-dom":"^18.0.0"},"devDependencies":{"jest":"^29"}}`,
		"src/App.jsx":  "export function App() { return null }\n",
	})

	p := res.Profile
	assert.Contains(t, p.Frameworks, "React")
	assert.NotContains(t, p.Frameworks, "Next.js")
	assert.Contains(t, p.TestingFrameworks, "Jest")
	assert.Empty(t, res.Diagnostics)

	react := detection(t, p, "React")
	assert.Equal(t, types.SourceManifest, react.Source)
	assert.Equal(t, 60.0, react.Confidence)
	assert.Equal(t, []string{"package.json declares react"}, react.Evidence)
}

func TestProfile_MarkerDominatesManifest(t *testing.T) {
	res := profile(t, map[string]string{
		"package.json":   `{"dependencies":{"next":"14.0.0","react":"18.0.0"}}`,
		"next.config.js": "module.exports = {}\n",
	})

	next := detection(t, res.Profile, "Next.js")
	assert.Equal(t, types.SourceMarker, next.Source)
	assert.Equal(t, 90.0, next.Confidence)
	assert.Equal(t, []string{"next.config.js", "package.json declares next"}, next.Evidence)

	// one entry per canonical name
	count := 0
	for _, d := range res.Profile.Detections {
		if d.Name == "Next.js" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestProfile_MalformedManifestFallsBackToMarkers(t *testing.T) {
	res := profile(t, map[string]string{
		"package.json":   `{"dependencies": {"react": `,
		"vite.config.ts": "export default {}\n",
		"src/main.ts":    "console.log(1)\n",
	})

	require.Len(t, res.Diagnostics, 1)
	diag := res.Diagnostics[0]
	assert.Equal(t, types.DiagManifestFailure, diag.Kind)
	assert.Equal(t, "package.json", diag.Path)
	assert.Equal(t, Stage, diag.Stage)

	assert.Contains(t, res.Profile.BuildTools, "Vite")
	assert.NotContains(t, res.Profile.Frameworks, "React")
}

func TestProfile_PrimaryLanguages(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 80; i++ {
		files[fmt.Sprintf("web/m%02d.ts", i)] = "export {}\n"
	}
	for i := 0; i < 20; i++ {
		files[fmt.Sprintf("py/m%02d.py", i)] = "x = 1\n"
	}
	files["README.md"] = "docs are not source\n"
	files["web/a.test.ts"] = "tests are not source\n"

	res := profile(t, files)
	langs := res.Profile.PrimaryLanguages
	require.Len(t, langs, 2)
	assert.Equal(t, types.LanguageShare{Language: "TypeScript", Percentage: 80, FileCount: 80}, langs[0])
	assert.Equal(t, types.LanguageShare{Language: "Python", Percentage: 20, FileCount: 20}, langs[1])
}

func TestProfile_LanguageThreshold(t *testing.T) {
	files := map[string]string{"tool.sh": "echo\n"}
	for i := 0; i < 30; i++ {
		files[fmt.Sprintf("pkg/f%02d.go", i)] = "package pkg\n"
	}
	res := profile(t, files)

	require.Len(t, res.Profile.PrimaryLanguages, 1, "shell share is below the threshold")
	assert.Equal(t, "Go", res.Profile.PrimaryLanguages[0].Language)
}

func TestProfile_Ecosystems(t *testing.T) {
	res := profile(t, map[string]string{
		"go.mod":              "module example.com/svc\n\ngo 1.22\n\nrequire (\n\tgithub.com/gin-gonic/gin v1.9.1\n\tgithub.com/labstack/echo/v4 v4.11.0\n\tgithub.com/stretchr/testify v1.8.4\n)\n",
		"api/Cargo.toml":      "[package]\nname = \"api\"\n\n[dependencies]\naxum = \"0.7\"\ntokio = { version = \"1\", features = [\"full\"] }\n",
		"ml/pyproject.toml":   "[project]\ndependencies = [\"FastAPI>=0.100\", \"pydantic\"]\n\n[tool.pytest.ini_options]\naddopts = \"-q\"\n",
		"ml/requirements.txt": "# pinned\nDjango==4.2 # web\n-r base.txt\nnumpy\n",
		"web/Gemfile":         "source 'https://rubygems.org'\ngem 'rails', '~> 7.0'\ngem \"rspec-rails\", group: :test\n",
		"php/composer.json":   `{"require":{"laravel/framework":"^10"},"require-dev":{"phpunit/phpunit":"^10"}}`,
		"java/pom.xml":        "<project><dependencies><dependency><groupId>org.springframework.boot</groupId><artifactId>spring-boot-starter-web</artifactId></dependency></dependencies></project>",
		"kt/build.gradle.kts": "plugins { id(\"org.springframework.boot\") }\ndependencies { testImplementation(\"org.mockito:mockito-core:5.0.0\") }\n",
		"app/pubspec.yaml":    "name: app\ndependencies:\n  flutter:\n    sdk: flutter\n  flutter_bloc: ^8.0.0\ndev_dependencies:\n  flutter_test:\n    sdk: flutter\n",
		"pnpm-workspace.yaml": "packages:\n  - 'apps/*'\n",
	})
	require.Empty(t, res.Diagnostics)

	p := res.Profile
	for _, fw := range []string{"Gin", "Echo", "Axum", "FastAPI", "Django", "Ruby on Rails", "Laravel", "Spring Boot", "Flutter"} {
		assert.Contains(t, p.Frameworks, fw)
	}
	for _, lib := range []string{"Tokio", "Pydantic", "NumPy", "BLoC"} {
		assert.Contains(t, p.Libraries, lib)
	}
	for _, tf := range []string{"Testify", "pytest", "RSpec", "PHPUnit", "Mockito", "Flutter Test"} {
		assert.Contains(t, p.TestingFrameworks, tf)
	}
	for _, bt := range []string{"Go Modules", "Cargo", "Maven", "Gradle", "Composer", "pnpm"} {
		assert.Contains(t, p.BuildTools, bt)
	}
	assert.Contains(t, p.Stacks, "Flutter + BLoC")
	assert.IsIncreasing(t, p.Frameworks)
}

func TestProfile_Stacks(t *testing.T) {
	res := profile(t, map[string]string{
		"package.json": `{"dependencies":{"express":"4","react":"18","mongoose":"7","next":"14","@trpc/server":"10","tailwindcss":"3","@prisma/client":"5"}}`,
	})
	assert.Equal(t, []string{"MERN", "T3"}, res.Profile.Stacks)
}

func TestProfile_BuildArtifactsIgnored(t *testing.T) {
	res := profile(t, map[string]string{
		"dist/package.json":   `{"dependencies":{"vue":"3"}}`,
		"dist/next.config.js": "module.exports = {}\n",
	})
	assert.Empty(t, res.Profile.Detections)
	assert.Equal(t, []string{}, res.Profile.Frameworks)
}

func TestProfile_ConfidenceOverride(t *testing.T) {
	cfg, ps := scan(t, map[string]string{"angular.json": "{}"})
	cfg.Heuristics.MarkerConfidence = 75
	res := New(cfg).Profile(context.Background(), ps)
	assert.Equal(t, 75.0, detection(t, res.Profile, "Angular").Confidence)
}

func TestProfile_Deterministic(t *testing.T) {
	files := map[string]string{
		"package.json":            `{"dependencies":{"vue":"3","axios":"1"},"devDependencies":{"vitest":"1","vite":"5"}}`,
		"packages/a/package.json": `{"dependencies":{"react":"18"}}`,
		"Dockerfile":              "FROM node\n",
	}
	cfg, ps := scan(t, files)
	first := New(cfg).Profile(context.Background(), ps)
	second := New(cfg).Profile(context.Background(), ps)
	assert.Equal(t, first, second)
}
