package types

import (
	"fmt"
	"strings"
)

// Common system-wide constants
const (
	// File size limits
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB - files above this are recorded but never sampled

	// Content sampling
	DefaultShallowSampleBytes = 16 * 1024 // first 16KB of each source file in shallow mode
	DefaultDeepSampleBytes    = 64 * 1024 // first 64KB in deep mode

	// Dependency graph caps
	DefaultShallowGraphFiles = 2000
	DefaultDeepGraphFiles    = 10000

	// Binary detection
	BinaryPreCheckBytes = 512 // bytes inspected for magic numbers / NUL bytes

	// Heuristic thresholds
	DefaultPrimaryLanguageThreshold = 5.0  // percent of source files
	DefaultArchitectureMinScore     = 20.0 // architecture patterns below this are not reported
	DefaultCentralLimit             = 20   // central modules reported

	MaxScore = 100.0
	MinScore = 0.0
)

// ScanMode selects how much work the pipeline performs per file.
type ScanMode string

const (
	ScanModeShallow ScanMode = "shallow"
	ScanModeDeep    ScanMode = "deep"
)

// ParseScanMode converts a user-provided string into a ScanMode.
func ParseScanMode(s string) (ScanMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shallow":
		return ScanModeShallow, nil
	case "deep":
		return ScanModeDeep, nil
	default:
		return "", fmt.Errorf("unknown scan mode %q (expected shallow or deep)", s)
	}
}

// FileCategory is the closed set of classifications a file can receive.
type FileCategory string

const (
	CategorySource        FileCategory = "source"
	CategoryConfig        FileCategory = "config"
	CategoryDocumentation FileCategory = "documentation"
	CategoryStylesheet    FileCategory = "stylesheet"
	CategoryTest          FileCategory = "test"
	CategoryAsset         FileCategory = "asset"
	CategoryBuildArtifact FileCategory = "build-artifact"
	CategoryOther         FileCategory = "other"
)

// AllCategories lists every FileCategory in declaration order.
var AllCategories = []FileCategory{
	CategorySource,
	CategoryConfig,
	CategoryDocumentation,
	CategoryStylesheet,
	CategoryTest,
	CategoryAsset,
	CategoryBuildArtifact,
	CategoryOther,
}

// MaySample reports whether files of this category can carry a content sample.
func (c FileCategory) MaySample() bool {
	return c == CategorySource || c == CategoryTest || c == CategoryStylesheet
}

// FileRecord describes one non-ignored file in the project.
type FileRecord struct {
	AbsPath  string       `json:"abs_path"`
	RelPath  string       `json:"rel_path"` // forward-slash path relative to root, unique key
	Name     string       `json:"name"`
	Ext      string       `json:"ext"` // lowercase, including the leading dot
	Category FileCategory `json:"category"`
	Language string       `json:"language,omitempty"`
	Size     int64        `json:"size"`

	// Sample holds the first N bytes of the file. Only later stages read it.
	Sample []byte `json:"-"`
}

// HasSample reports whether content was captured for this file.
func (f FileRecord) HasSample() bool {
	return len(f.Sample) > 0
}

// DirectoryRecord describes one directory in the project tree.
type DirectoryRecord struct {
	Path     string   `json:"path"` // "." for the root
	Depth    int      `json:"depth"`
	Children []string `json:"children"` // immediate child paths, sorted
}

// ProjectStructure is the output of the traversal stage.
type ProjectStructure struct {
	Root           string               `json:"root"`
	Files          []FileRecord         `json:"files"`
	Directories    []DirectoryRecord    `json:"directories"`
	CategoryCounts map[FileCategory]int `json:"category_counts"`
	Extensions     []string             `json:"extensions"`
	TotalSize      int64                `json:"total_size"`
	Truncated      bool                 `json:"truncated,omitempty"`
}

// FilesByCategory returns the files of the given category in path order.
func (ps *ProjectStructure) FilesByCategory(category FileCategory) []FileRecord {
	var out []FileRecord
	for _, f := range ps.Files {
		if f.Category == category {
			out = append(out, f)
		}
	}
	return out
}

// HasFile reports whether a file with the given relative path exists.
func (ps *ProjectStructure) HasFile(relPath string) bool {
	_, ok := ps.Lookup(relPath)
	return ok
}

// Lookup finds a file by relative path. Files are sorted, so this is a binary search.
func (ps *ProjectStructure) Lookup(relPath string) (FileRecord, bool) {
	lo, hi := 0, len(ps.Files)
	for lo < hi {
		mid := (lo + hi) / 2
		if ps.Files[mid].RelPath < relPath {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(ps.Files) && ps.Files[lo].RelPath == relPath {
		return ps.Files[lo], true
	}
	return FileRecord{}, false
}

// HasDirectory reports whether a directory with the given relative path exists.
func (ps *ProjectStructure) HasDirectory(relPath string) bool {
	for _, d := range ps.Directories {
		if d.Path == relPath {
			return true
		}
	}
	return false
}

// ClampScore bounds a score or confidence to [0,100].
func ClampScore(v float64) float64 {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// Round2 rounds to two decimal places so serialized scores are stable.
func Round2(v float64) float64 {
	if v < 0 {
		return -Round2(-v)
	}
	return float64(int64(v*100+0.5)) / 100
}
