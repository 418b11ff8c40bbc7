package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullInfo(t *testing.T) {
	info := FullInfo()
	assert.True(t, strings.HasPrefix(info, "codeprofile "+Version))
	assert.Contains(t, info, GitCommit)
}

func TestBuildID_Stable(t *testing.T) {
	first := BuildID()
	assert.NotEmpty(t, first)
	assert.Equal(t, first, BuildID())
}
