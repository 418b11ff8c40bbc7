package testhelpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeprofile/internal/types"
)

func TestWriteTree(t *testing.T) {
	root := WriteTree(t, map[string]string{
		"a.go":         "package a\n",
		"deep/x/y.txt": "y",
	})

	data, err := os.ReadFile(filepath.Join(root, "deep", "x", "y.txt"))
	require.NoError(t, err)
	assert.Equal(t, "y", string(data))
	assert.FileExists(t, filepath.Join(root, "a.go"))
}

func TestTestConfigBuilder(t *testing.T) {
	cfg := NewTestConfigBuilder("/proj").
		WithExclusions("fixtures/").
		WithMode(types.ScanModeDeep).
		WithWorkers(3).
		Build()

	assert.Equal(t, "/proj", cfg.Project.Root)
	assert.Equal(t, types.ScanModeDeep, cfg.Scan.Mode)
	assert.Equal(t, 3, cfg.WorkerCount())
	assert.False(t, cfg.Scan.RespectGitignore)
	assert.Contains(t, cfg.Exclude, "fixtures/")
	assert.Contains(t, cfg.Exclude, "node_modules/")
	assert.True(t, NewTestConfigBuilder("/proj").WithGitignore().Build().Scan.RespectGitignore)
}
