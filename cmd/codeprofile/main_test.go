package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeprofile/internal/types"
	"github.com/standardbeagle/codeprofile/testhelpers"
)

// Test data setup
func setupTestProject(t *testing.T) string {
	testFiles := map[string]string{
		"package.json":         `{"name": "api", "dependencies": {"express": "^4.18.0"}}`,
		"src/app.js":           "const users = require('./routes/users')\nmodule.exports = users\n",
		"src/routes/users.js":  "const db = require('../db')\nmodule.exports = db\n",
		"src/db.js":            "module.exports = {}\n",
		"src/cycle/a.js":       "require('./b')\n",
		"src/cycle/b.js":       "require('./a')\n",
		"README.md":            "# API\n",
		"dist/bundle.js":       "compiled\n",
		".codeprofile.kdl":     "performance {\n    workers 2\n}\n",
		"node_modules/x/x.js":  "module.exports = 1\n",
		"docs/guide/setup.md":  "# setup\n",
		"docs/guide/deploy.md": "# deploy\n",
		"scripts/release.sh":   "#!/bin/sh\n",
		"src/routes/orders.js": "module.exports = {}\n",
	}
	return testhelpers.WriteTree(t, testFiles)
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(append([]string{"codeprofile"}, args...))
	return stdout.String(), err
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	root := setupTestProject(t)

	out, err := runCLI(t, "--root", root, "--ignore", "dist/", "analyze", "--json")
	require.NoError(t, err)

	var res types.ProjectAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, types.ScanModeShallow, res.Mode)
	assert.True(t, res.TechStack.Has("Express"))
	assert.False(t, res.Structure.HasFile("dist/bundle.js"))
	assert.False(t, res.Structure.HasFile("node_modules/x/x.js"))
	assert.True(t, res.Metrics.CyclesDetected)
	assert.Equal(t, [][]string{{"src/cycle/a", "src/cycle/b"}}, res.Metrics.Cycles)
}

func TestAnalyzeCommand_PositionalRootAndDeep(t *testing.T) {
	root := setupTestProject(t)

	out, err := runCLI(t, "--deep", "analyze", "--json", root)
	require.NoError(t, err)

	var res types.ProjectAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, types.ScanModeDeep, res.Mode)
	assert.Equal(t, root, res.Structure.Root)
}

func TestAnalyzeCommand_Text(t *testing.T) {
	root := setupTestProject(t)

	out, err := runCLI(t, "--root", root, "analyze")
	require.NoError(t, err)
	assert.Contains(t, out, "Project: "+root)
	assert.Contains(t, out, "Tech stack:")
	assert.Contains(t, out, "Express")
	assert.Contains(t, out, "cycles: 1")
	assert.Contains(t, out, "src/cycle/a -> src/cycle/b -> src/cycle/a")
}

func TestAnalyzeCommand_InvalidRoot(t *testing.T) {
	_, err := runCLI(t, "--root", filepath.Join(t.TempDir(), "missing"), "analyze")
	assert.Error(t, err)
}

func TestStructureCommand(t *testing.T) {
	root := setupTestProject(t)

	out, err := runCLI(t, "--root", root, "structure", "--max-depth", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "./ (")
	assert.Contains(t, out, "  src/ (")
	assert.NotContains(t, out, "guide/", "max depth stops the tree")
	assert.NotContains(t, out, "node_modules/")

	out, err = runCLI(t, "--root", root, "structure", "--json")
	require.NoError(t, err)
	var payload struct {
		Structure types.ProjectStructure `json:"structure"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.True(t, payload.Structure.HasFile("src/app.js"))
}

func TestTechAndPatternsCommands(t *testing.T) {
	root := setupTestProject(t)

	out, err := runCLI(t, "--root", root, "tech", "--json")
	require.NoError(t, err)
	var tech types.TechStackProfile
	require.NoError(t, json.Unmarshal([]byte(out), &tech))
	assert.Contains(t, tech.Frameworks, "Express")

	out, err = runCLI(t, "--root", root, "patterns")
	require.NoError(t, err)
	assert.Contains(t, out, "Patterns (")
	assert.Contains(t, out, "consistency:")
}

func TestGraphCommand_Formats(t *testing.T) {
	root := setupTestProject(t)

	out, err := runCLI(t, "--root", root, "graph", "--format", "dot")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph dependencies {"))
	assert.Contains(t, out, `"src/app" -> "src/routes/users";`)
	assert.Contains(t, out, `"src/cycle/a" [color=red];`)

	dotFile := filepath.Join(t.TempDir(), "deps.dot")
	_, err = runCLI(t, "--root", root, "graph", "--format", "dot", "-o", dotFile)
	require.NoError(t, err)
	data, err := os.ReadFile(dotFile)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))

	_, err = runCLI(t, "--root", root, "graph", "--format", "svg")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "codeprofile ")
	assert.Contains(t, out, "build: ")
}
