package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreMatcher evaluates an ordered list of gitignore-style patterns against
// root-relative, forward-slash paths.
//
// Semantics follow git: the last matching pattern decides, "!" re-includes,
// a trailing "/" restricts the pattern to directories, a pattern containing
// an inner or leading "/" is anchored at the root, and "**" spans any number
// of directories. Once a directory is ignored nothing beneath it can be
// re-included.
type IgnoreMatcher struct {
	patterns []IgnorePattern
}

// IgnorePattern is one parsed pattern line.
type IgnorePattern struct {
	Source    string // original line
	Glob      string // doublestar glob matched against the relative path
	Negate    bool
	Directory bool
	Anchored  bool

	// literal is set for unanchored patterns without glob metacharacters,
	// which only need a base-name comparison
	literal string
}

// NewIgnoreMatcher parses patterns in order. Blank lines and comments are skipped.
func NewIgnoreMatcher(patterns ...string) (*IgnoreMatcher, error) {
	m := &IgnoreMatcher{patterns: make([]IgnorePattern, 0, len(patterns))}
	for _, p := range patterns {
		if err := m.AddPattern(p); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// LoadGitignore appends patterns from rootPath/.gitignore. A missing file is not an error.
func (m *IgnoreMatcher) LoadGitignore(rootPath string) error {
	file, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	return m.scanAndParsePatterns(file)
}

func (m *IgnoreMatcher) scanAndParsePatterns(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := m.AddPattern(scanner.Text()); err != nil {
			// A bad line in a user .gitignore is skipped, git does the same
			continue
		}
	}
	return scanner.Err()
}

// AddPattern parses and appends a single pattern line.
func (m *IgnoreMatcher) AddPattern(line string) error {
	p, ok, err := parseIgnorePattern(line)
	if err != nil {
		return err
	}
	if ok {
		m.patterns = append(m.patterns, p)
	}
	return nil
}

// Len returns the number of active patterns.
func (m *IgnoreMatcher) Len() int {
	return len(m.patterns)
}

// Patterns returns the source lines of the active patterns, in order.
func (m *IgnoreMatcher) Patterns() []string {
	out := make([]string, len(m.patterns))
	for i, p := range m.patterns {
		out[i] = p.Source
	}
	return out
}

func parseIgnorePattern(line string) (IgnorePattern, bool, error) {
	line = trimTrailingSpaces(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return IgnorePattern{}, false, nil
	}

	p := IgnorePattern{Source: line}

	switch {
	case strings.HasPrefix(line, "!"):
		p.Negate = true
		line = line[1:]
	case strings.HasPrefix(line, `\!`), strings.HasPrefix(line, `\#`):
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") {
		p.Directory = true
		line = strings.TrimRight(line, "/")
	}

	if strings.HasPrefix(line, "/") {
		p.Anchored = true
		line = strings.TrimLeft(line, "/")
	} else if strings.Contains(line, "/") {
		p.Anchored = true
	}

	if line == "" {
		return IgnorePattern{}, false, nil
	}

	if p.Anchored {
		p.Glob = line
	} else {
		p.Glob = "**/" + line
		if !strings.ContainsAny(line, `*?[\{`) {
			p.literal = line
		}
	}

	if !doublestar.ValidatePattern(p.Glob) {
		return IgnorePattern{}, false, fmt.Errorf("invalid ignore pattern %q", p.Source)
	}

	return p, true, nil
}

// trimTrailingSpaces removes unescaped trailing spaces as git does.
func trimTrailingSpaces(line string) string {
	line = strings.TrimRight(line, "\r\n\t")
	for strings.HasSuffix(line, " ") && !strings.HasSuffix(line, `\ `) {
		line = line[:len(line)-1]
	}
	return line
}

// ShouldIgnore reports whether relPath is excluded, taking excluded ancestor
// directories into account.
func (m *IgnoreMatcher) ShouldIgnore(relPath string, isDir bool) bool {
	relPath = normalizeRel(relPath)
	if relPath == "" || relPath == "." || len(m.patterns) == 0 {
		return false
	}

	// An excluded ancestor cannot be overridden by a later negation
	for i := 0; i < len(relPath); i++ {
		if relPath[i] == '/' && m.decide(relPath[:i], true) {
			return true
		}
	}

	return m.decide(relPath, isDir)
}

// ShouldIgnoreEntry decides a single entry whose parent directory is already
// known to be included. The traverser uses this while walking.
func (m *IgnoreMatcher) ShouldIgnoreEntry(relPath string, isDir bool) bool {
	if len(m.patterns) == 0 {
		return false
	}
	return m.decide(normalizeRel(relPath), isDir)
}

// decide applies every pattern in order; the last match wins.
func (m *IgnoreMatcher) decide(relPath string, isDir bool) bool {
	ignored := false
	base := path.Base(relPath)
	for i := range m.patterns {
		p := &m.patterns[i]
		if p.Directory && !isDir {
			continue
		}
		if p.matches(relPath, base) {
			ignored = !p.Negate
		}
	}
	return ignored
}

func (p *IgnorePattern) matches(relPath, base string) bool {
	if p.literal != "" {
		return base == p.literal
	}
	ok, err := doublestar.Match(p.Glob, relPath)
	return err == nil && ok
}

func normalizeRel(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	return strings.Trim(p, "/")
}
