package traverse

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codeprofile/internal/config"
	"github.com/standardbeagle/codeprofile/internal/debug"
	cperrors "github.com/standardbeagle/codeprofile/internal/errors"
	"github.com/standardbeagle/codeprofile/internal/types"
)

// Stage is the diagnostic stage name used by the traverser.
const Stage = "traverse"

// Result is the traversal output plus the issues that were skipped.
type Result struct {
	Structure   types.ProjectStructure
	Diagnostics []types.Diagnostic
}

// Traverser walks a project tree and builds a ProjectStructure.
type Traverser struct {
	cfg    *config.Config
	ignore *config.IgnoreMatcher
	binary *BinaryDetector
}

// New creates a traverser. ignore must already hold every active pattern
// (see BuildMatcher).
func New(cfg *config.Config, ignore *config.IgnoreMatcher) *Traverser {
	return &Traverser{
		cfg:    cfg,
		ignore: ignore,
		binary: NewBinaryDetector(),
	}
}

// BuildMatcher assembles the active ignore list in precedence order:
// configured excludes, the root .gitignore, then caller patterns. Later
// patterns win, so a caller "!pattern" can re-include a default exclusion.
func BuildMatcher(cfg *config.Config, root string, callerPatterns []string) (*config.IgnoreMatcher, error) {
	m, err := config.NewIgnoreMatcher(cfg.Exclude...)
	if err != nil {
		return nil, cperrors.NewConfigError("exclude", strings.Join(cfg.Exclude, ","), err)
	}
	if cfg.Scan.RespectGitignore {
		if err := m.LoadGitignore(root); err != nil {
			debug.LogTraverse("could not read .gitignore in %s: %v\n", root, err)
		}
	}
	for _, p := range callerPatterns {
		if err := m.AddPattern(p); err != nil {
			return nil, cperrors.NewConfigError("ignore", p, err)
		}
	}
	return m, nil
}

type pendingDir struct {
	abs   string
	rel   string
	real  string
	depth int
}

// Traverse walks root with an explicit directory queue. Only an invalid root
// is returned as an error; unreadable entries become diagnostics. When ctx is
// cancelled the partial structure is returned with Truncated set.
func (t *Traverser) Traverse(ctx context.Context, root string) (*Result, error) {
	absRoot, realRoot, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	defer debug.Stage(debug.ComponentTraverse, "walk "+absRoot)()

	classifier := NewClassifier(NewOutputDirDetector(absRoot).Detect())

	res := &Result{}
	ps := &res.Structure
	ps.Root = absRoot
	ps.CategoryCounts = make(map[types.FileCategory]int)

	visited := map[string]bool{realRoot: true}
	queue := []pendingDir{{abs: absRoot, rel: ".", real: realRoot}}

	for len(queue) > 0 {
		if ctx.Err() != nil {
			ps.Truncated = true
			break
		}
		dir := queue[0]
		queue = queue[1:]

		record := types.DirectoryRecord{Path: dir.rel, Depth: dir.depth}

		entries, err := os.ReadDir(dir.abs)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics,
				cperrors.NewFileError("readdir", dir.rel, err).Diagnostic(Stage))
			// ReadDir may return the entries it managed to read
		}

		for _, entry := range entries {
			rel := joinRel(dir.rel, entry.Name())
			abs := filepath.Join(dir.abs, entry.Name())
			realPath := path.Join(dir.real, entry.Name())

			isDir := entry.IsDir()
			isLink := entry.Type()&fs.ModeSymlink != 0
			var info fs.FileInfo
			if isLink {
				if !t.cfg.Scan.FollowSymlinks {
					continue
				}
				info, err = os.Stat(abs)
				if err != nil {
					res.Diagnostics = append(res.Diagnostics,
						cperrors.NewFileError("stat", rel, err).Diagnostic(Stage))
					continue
				}
				isDir = info.IsDir()
			}

			// Ignore filtering happens before any classification or read
			if t.ignore.ShouldIgnoreEntry(rel, isDir) {
				continue
			}

			if isDir {
				if isLink {
					resolved, err := filepath.EvalSymlinks(abs)
					if err != nil {
						res.Diagnostics = append(res.Diagnostics,
							cperrors.NewFileError("resolve", rel, err).Diagnostic(Stage))
						continue
					}
					realPath = filepath.ToSlash(resolved)
				}
				if visited[realPath] {
					debug.LogTraverse("skipping already visited directory %s (%s)\n", rel, realPath)
					continue
				}
				visited[realPath] = true
				queue = append(queue, pendingDir{abs: abs, rel: rel, real: realPath, depth: dir.depth + 1})
				record.Children = append(record.Children, rel)
				continue
			}

			if !entry.Type().IsRegular() && !isLink {
				continue // sockets, devices, pipes
			}
			if !t.included(rel) {
				continue
			}

			if info == nil {
				info, err = entry.Info()
				if err != nil {
					res.Diagnostics = append(res.Diagnostics,
						cperrors.NewFileError("stat", rel, err).Diagnostic(Stage))
					continue
				}
			}

			category, language := classifier.Classify(rel)
			ps.Files = append(ps.Files, types.FileRecord{
				AbsPath:  abs,
				RelPath:  rel,
				Name:     entry.Name(),
				Ext:      strings.ToLower(filepath.Ext(entry.Name())),
				Category: category,
				Language: language,
				Size:     info.Size(),
			})
			record.Children = append(record.Children, rel)
		}

		sort.Strings(record.Children)
		ps.Directories = append(ps.Directories, record)
	}

	sort.Slice(ps.Files, func(i, j int) bool { return ps.Files[i].RelPath < ps.Files[j].RelPath })
	sort.Slice(ps.Directories, func(i, j int) bool { return ps.Directories[i].Path < ps.Directories[j].Path })

	if t.sampleFiles(ctx, res) {
		ps.Truncated = true
	}

	extSet := make(map[string]bool)
	for _, f := range ps.Files {
		ps.CategoryCounts[f.Category]++
		ps.TotalSize += f.Size
		if f.Ext != "" {
			extSet[f.Ext] = true
		}
	}
	ps.Extensions = make([]string, 0, len(extSet))
	for ext := range extSet {
		ps.Extensions = append(ps.Extensions, ext)
	}
	sort.Strings(ps.Extensions)

	debug.LogTraverse("%d files, %d directories, %d diagnostics, truncated=%v\n",
		len(ps.Files), len(ps.Directories), len(res.Diagnostics), ps.Truncated)
	return res, nil
}

// sampleFiles reads bounded content samples on a worker pool. Each worker
// writes only its own slot; diagnostics are merged afterwards in path order.
// Returns true when cancellation stopped scheduling.
func (t *Traverser) sampleFiles(ctx context.Context, res *Result) bool {
	files := res.Structure.Files
	limit := t.cfg.SampleBytes()
	if limit <= 0 {
		return false
	}

	samples := make([][]byte, len(files))
	errs := make([]error, len(files))
	cancelled := false

	g := new(errgroup.Group)
	g.SetLimit(t.cfg.WorkerCount())
	for i := range files {
		f := &files[i]
		if !f.Category.MaySample() || f.Size == 0 || f.Size > t.cfg.Scan.MaxFileSize {
			continue
		}
		if t.binary.IsBinaryByExtension(f.Name) {
			continue
		}
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		g.Go(func() error {
			samples[i], errs[i] = t.readSample(f.AbsPath, limit)
			return nil
		})
	}
	_ = g.Wait()

	for i := range files {
		if errs[i] != nil {
			res.Diagnostics = append(res.Diagnostics,
				cperrors.NewFileError("read", files[i].RelPath, errs[i]).Diagnostic(Stage))
			continue
		}
		files[i].Sample = samples[i]
	}
	return cancelled
}

// readSample returns at most limit bytes, or nil if the content is binary.
func (t *Traverser) readSample(absPath string, limit int) ([]byte, error) {
	file, err := os.Open(absPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	buf := make([]byte, limit)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	buf = buf[:n]
	if t.binary.IsBinaryByContent(buf) {
		return nil, nil
	}
	return buf, nil
}

// included applies the optional include allow-list.
func (t *Traverser) included(rel string) bool {
	if len(t.cfg.Include) == 0 {
		return true
	}
	for _, pattern := range t.cfg.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func resolveRoot(root string) (string, string, error) {
	if root == "" {
		return "", "", cperrors.NewConfigError("root", root, fmt.Errorf("root path is required"))
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", "", cperrors.NewConfigError("root", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return "", "", cperrors.NewConfigError("root", root, err)
	}
	if !info.IsDir() {
		return "", "", cperrors.NewConfigError("root", root, fmt.Errorf("not a directory"))
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", "", cperrors.NewConfigError("root", root, err)
	}
	return absRoot, filepath.ToSlash(realRoot), nil
}

func joinRel(dir, name string) string {
	if dir == "." {
		return name
	}
	return dir + "/" + name
}
