package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeprofile/internal/types"
)

func TestTreeSitter_Go(t *testing.T) {
	ts := NewTreeSitter()
	defer ts.Close()

	res, err := ts.Extract("Go", ".go", []byte(`package server

import (
	"fmt"
	"net/http"
)

type Server struct{}

func NewServer() *Server { return &Server{} }

func (s *Server) Start() error {
	listenAddr := ":8080"
	return fmt.Errorf("%s", listenAddr)
}
`))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"NewServer", "Start"}, res.Identifiers[types.IdentFunction])
	assert.Equal(t, []string{"Server"}, res.Identifiers[types.IdentClass])
	assert.Equal(t, []string{"listenAddr"}, res.Identifiers[types.IdentVariable])
	assert.ElementsMatch(t, []string{"fmt", "net/http"}, res.Imports)
}

func TestTreeSitter_Python(t *testing.T) {
	ts := NewTreeSitter()
	defer ts.Close()

	res, err := ts.Extract("Python", ".py", []byte(`import os
from .models import User

class UserRepository:
    def find_user(self, user_id):
        return None

def load_config():
    max_retries = 3
`))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"find_user", "load_config"}, res.Identifiers[types.IdentFunction])
	assert.Equal(t, []string{"UserRepository"}, res.Identifiers[types.IdentClass])
	assert.Equal(t, []string{"max_retries"}, res.Identifiers[types.IdentVariable])
	assert.Contains(t, res.Imports, "os")
}

func TestTreeSitter_PartialSampleStillYieldsNames(t *testing.T) {
	ts := NewTreeSitter()
	defer ts.Close()

	// Samples are cut at a byte limit, often mid-declaration.
	res, err := ts.Extract("Rust", ".rs", []byte("pub struct Config {}\n\nfn parse_args() {\n    let value = 1;\n    if value > "))
	require.NoError(t, err)
	assert.Contains(t, res.Identifiers[types.IdentClass], "Config")
	assert.Contains(t, res.Identifiers[types.IdentFunction], "parse_args")
}

func TestTreeSitter_UnknownLanguage(t *testing.T) {
	ts := NewTreeSitter()
	defer ts.Close()

	_, err := ts.Extract("COBOL", ".cbl", []byte("IDENTIFICATION DIVISION."))
	assert.Error(t, err)
}

func TestTreeSitter_Languages(t *testing.T) {
	ts := NewTreeSitter()
	defer ts.Close()

	langs := ts.Languages()
	assert.IsIncreasing(t, langs)
	assert.Contains(t, langs, "Go")
	assert.NotContains(t, langs, "JavaScript", "scripts are dispatched through their own extractors")
}

func TestTreeSitter_ConcurrentUse(t *testing.T) {
	ts := NewTreeSitter()
	defer ts.Close()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			res, err := ts.Extract("Go", ".go", []byte("package a\nfunc Run() {}\n"))
			if assert.NoError(t, err) {
				assert.Equal(t, []string{"Run"}, res.Identifiers[types.IdentFunction])
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
