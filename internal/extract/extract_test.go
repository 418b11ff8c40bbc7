package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cperrors "github.com/standardbeagle/codeprofile/internal/errors"
	"github.com/standardbeagle/codeprofile/internal/types"
)

func record(rel, lang string, cat types.FileCategory, content string) *types.FileRecord {
	ext := ""
	for i := len(rel) - 1; i >= 0 && rel[i] != '/'; i-- {
		if rel[i] == '.' {
			ext = rel[i:]
			break
		}
	}
	return &types.FileRecord{
		RelPath:  rel,
		Name:     rel,
		Ext:      ext,
		Language: lang,
		Category: cat,
		Sample:   []byte(content),
	}
}

func newTestRegistry(t *testing.T, tech *types.TechStackProfile) *Registry {
	t.Helper()
	r := NewRegistry(tech)
	t.Cleanup(r.Close)
	return r
}

func TestExtract_CommonJSUsesAST(t *testing.T) {
	r := newTestRegistry(t, nil)
	res, err := r.Extract(record("src/server.js", "JavaScript", types.CategorySource, `
const express = require('express');

function startServer(port) {
  const app = express();
  return app;
}

class UserService {
  getUser(id) { return id; }
}

const handleRequest = (req, res) => res.send('ok');
`))
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.ElementsMatch(t, []string{"startServer", "getUser", "handleRequest"}, res.Identifiers[types.IdentFunction])
	assert.Equal(t, []string{"UserService"}, res.Identifiers[types.IdentClass])
	assert.Contains(t, res.Identifiers[types.IdentVariable], "express")
	assert.Equal(t, []string{"express"}, res.Imports)
}

func TestExtract_ESModuleFallsBack(t *testing.T) {
	r := newTestRegistry(t, nil)
	res, err := r.Extract(record("src/App.jsx", "JavaScript", types.CategorySource,
		"import React from 'react';\n\nexport function App() {\n  return null;\n}\n"))
	require.NoError(t, err)
	assert.Contains(t, res.Identifiers[types.IdentFunction], "App")
	assert.Contains(t, res.Imports, "react")
}

func TestExtract_NoSampleOrUnsupportedCategory(t *testing.T) {
	r := newTestRegistry(t, nil)

	res, err := r.Extract(record("README.md", "", types.CategoryDocumentation, "# hi"))
	assert.NoError(t, err)
	assert.Nil(t, res)

	res, err = r.Extract(record("main.go", "Go", types.CategorySource, ""))
	assert.NoError(t, err)
	assert.Nil(t, res)

	assert.True(t, r.Supports(types.CategoryTest))
	assert.False(t, r.Supports(types.CategoryConfig))
}

func TestExtract_PanicBecomesParseError(t *testing.T) {
	r := newTestRegistry(t, nil)
	r.byCategory[types.CategorySource] = func(*types.FileRecord) (*Result, error) {
		panic("boom")
	}

	res, err := r.Extract(record("x.rb", "Ruby", types.CategorySource, "puts 1"))
	assert.Nil(t, res)
	require.Error(t, err)

	var pe *cperrors.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "x.rb", pe.FilePath)
}

func TestExtract_GenericLanguage(t *testing.T) {
	r := newTestRegistry(t, nil)
	res, err := r.Extract(record("lib/user.rb", "Ruby", types.CategorySource, `
require 'json'

class UserRecord
  def full_name
    first_name = "a"
  end
end
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"full_name"}, res.Identifiers[types.IdentFunction])
	assert.Equal(t, []string{"UserRecord"}, res.Identifiers[types.IdentClass])
	assert.Equal(t, []string{"first_name"}, res.Identifiers[types.IdentVariable])
	assert.Equal(t, []string{"json"}, res.Imports)
}

func TestExtract_TruncatedSampleKeepsLastDeclaration(t *testing.T) {
	r := newTestRegistry(t, nil)

	tests := []struct {
		name     string
		file     *types.FileRecord
		function string
		class    string
	}{
		{
			name:     "rust",
			file:     record("src/cli.rs", "Rust", types.CategorySource, "pub struct Config {}\n\nfn parse_args() {\n    let value = 1;\n    if value > "),
			function: "parse_args",
			class:    "Config",
		},
		{
			name:     "go",
			file:     record("cli.go", "Go", types.CategorySource, "package cli\n\ntype Config struct{}\n\nfunc parseArgs() {\n\tvalue := 1\n\tif value > "),
			function: "parseArgs",
			class:    "Config",
		},
		{
			name:     "python",
			file:     record("cli.py", "Python", types.CategorySource, "class Config:\n    pass\n\ndef parse_args():\n    value = 1\n    if value > "),
			function: "parse_args",
			class:    "Config",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Extract(tt.file)
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.Contains(t, res.Identifiers[types.IdentFunction], tt.function)
			assert.Contains(t, res.Identifiers[types.IdentClass], tt.class)
		})
	}
}

func TestResultMerge(t *testing.T) {
	res := newResult()
	res.add(types.IdentFunction, "run")
	res.Imports = []string{"fmt"}

	other := newResult()
	other.add(types.IdentFunction, "run")
	other.add(types.IdentFunction, "stop")
	other.add(types.IdentClass, "Server")
	other.Imports = []string{"os"}

	res.merge(other)
	assert.Equal(t, []string{"run", "stop"}, res.Identifiers[types.IdentFunction])
	assert.Equal(t, []string{"Server"}, res.Identifiers[types.IdentClass])
	assert.Equal(t, []string{"fmt"}, res.Imports)
}

func TestExtract_ConstructsGatedByFramework(t *testing.T) {
	src := "export function UserCard() {\n  return <div/>;\n}\nexport const ProfileCard = () => <div/>;\n"

	withReact := newTestRegistry(t, &types.TechStackProfile{
		Detections: []types.TechDetection{{Name: "React", Kind: types.TechFramework}},
	})
	res, err := withReact.Extract(record("src/Card.jsx", "JavaScript", types.CategorySource, src))
	require.NoError(t, err)
	assert.Equal(t, 2, count(res.Constructs, "React function component"))

	without := newTestRegistry(t, &types.TechStackProfile{})
	res, err = without.Extract(record("src/Card.jsx", "JavaScript", types.CategorySource, src))
	require.NoError(t, err)
	assert.Zero(t, count(res.Constructs, "React function component"))
}

func TestDetectConstructs(t *testing.T) {
	all := func(string) bool { return true }
	tests := []struct {
		name    string
		file    *types.FileRecord
		want    string
		atLeast int
	}{
		{
			name:    "go constructors",
			file:    record("svc.go", "Go", types.CategorySource, "func NewA() *A {}\nfunc NewB() *B {}\n"),
			want:    "Go constructor function",
			atLeast: 2,
		},
		{
			name:    "python dataclass",
			file:    record("m.py", "Python", types.CategorySource, "@dataclass\nclass A:\n    x: int\n"),
			want:    "Python dataclass",
			atLeast: 1,
		},
		{
			name:    "rust trait impl",
			file:    record("lib.rs", "Rust", types.CategorySource, "impl Display for Point {\n}\n"),
			want:    "Rust trait implementation",
			atLeast: 1,
		},
		{
			name:    "typescript interface",
			file:    record("a.ts", "TypeScript", types.CategorySource, "export interface User {}\ninterface Role {}\n"),
			want:    "TypeScript interface",
			atLeast: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectConstructs(tt.file, all)
			assert.GreaterOrEqual(t, count(got, tt.want), tt.atLeast)
		})
	}
}

func TestDetectConstructs_LanguageMismatch(t *testing.T) {
	f := record("a.py", "Python", types.CategorySource, "func NewA() {}\n")
	assert.Zero(t, count(detectConstructs(f, func(string) bool { return true }), "Go constructor function"))
}

func count(list []string, s string) int {
	n := 0
	for _, v := range list {
		if v == s {
			n++
		}
	}
	return n
}
