package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/codeprofile/internal/debug"
	"github.com/standardbeagle/codeprofile/internal/types"
	"github.com/standardbeagle/codeprofile/internal/version"
)

// Section names accepted by analyze_project.
const (
	SectionStructure   = "structure"
	SectionTechStack   = "tech_stack"
	SectionPatterns    = "patterns"
	SectionGraph       = "graph"
	SectionMetrics     = "metrics"
	SectionDiagnostics = "diagnostics"
)

var allSections = []string{
	SectionStructure,
	SectionTechStack,
	SectionPatterns,
	SectionGraph,
	SectionMetrics,
	SectionDiagnostics,
}

func sectionEnum() []any {
	out := make([]any, len(allSections))
	for i, s := range allSections {
		out[i] = s
	}
	return out
}

// AnalyzeProjectParams are the analyze_project arguments.
type AnalyzeProjectParams struct {
	Root         string   `json:"root,omitempty"`
	Deep         bool     `json:"deep,omitempty"`
	Ignore       []string `json:"ignore,omitempty"`
	Sections     []string `json:"sections,omitempty"`
	IncludeFiles bool     `json:"include_files,omitempty"`
}

// InvalidateCacheParams are the invalidate_cache arguments.
type InvalidateCacheParams struct {
	Root string `json:"root,omitempty"`
}

// StructureSummary is the structure section without the per-file list.
type StructureSummary struct {
	Root           string                     `json:"root"`
	FileCount      int                        `json:"file_count"`
	DirectoryCount int                        `json:"directory_count"`
	CategoryCounts map[types.FileCategory]int `json:"category_counts"`
	Extensions     []string                   `json:"extensions"`
	TotalSize      int64                      `json:"total_size"`
	Files          []types.FileRecord         `json:"files,omitempty"`
}

// AnalyzeProjectResponse carries the requested sections. Mode, fingerprint
// and the truncation flag are always present.
type AnalyzeProjectResponse struct {
	Mode        types.ScanMode          `json:"mode"`
	Fingerprint string                  `json:"fingerprint"`
	Truncated   bool                    `json:"truncated"`
	ElapsedMs   int64                   `json:"elapsed_ms"`
	Structure   *StructureSummary       `json:"structure,omitempty"`
	TechStack   *types.TechStackProfile `json:"tech_stack,omitempty"`
	Patterns    *types.PatternProfile   `json:"patterns,omitempty"`
	Graph       *types.DependencyGraph  `json:"graph,omitempty"`
	Metrics     *types.GraphMetrics     `json:"metrics,omitempty"`
	Diagnostics []types.Diagnostic      `json:"diagnostics,omitempty"`
}

func parseSections(requested []string) (map[string]bool, error) {
	want := make(map[string]bool, len(allSections))
	if len(requested) == 0 {
		for _, s := range allSections {
			want[s] = true
		}
		return want, nil
	}
	valid := make(map[string]bool, len(allSections))
	for _, s := range allSections {
		valid[s] = true
	}
	for _, s := range requested {
		if !valid[s] {
			return nil, fmt.Errorf("unknown section %q (valid: %v)", s, allSections)
		}
		want[s] = true
	}
	return want, nil
}

func (s *Server) handleAnalyzeProject(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(toolAnalyzeProject, func() (*mcp.CallToolResult, error) {
		var params AnalyzeProjectParams
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
		}
		want, err := parseSections(params.Sections)
		if err != nil {
			return nil, err
		}
		root := params.Root
		if root == "" {
			root = s.defaultRoot
		}

		debug.LogMCP("analyze_project root=%s deep=%v sections=%v\n", root, params.Deep, params.Sections)
		start := time.Now()
		pa, err := s.analyzer(params.Deep).Analyze(ctx, root, params.Ignore)
		if err != nil {
			return createSmartErrorResponse(toolAnalyzeProject, err, map[string]interface{}{"root": root})
		}
		return createJSONResponse(buildAnalyzeResponse(pa, want, params.IncludeFiles, time.Since(start)))
	})
}

func buildAnalyzeResponse(pa *types.ProjectAnalysis, want map[string]bool, includeFiles bool, elapsed time.Duration) *AnalyzeProjectResponse {
	resp := &AnalyzeProjectResponse{
		Mode:        pa.Mode,
		Fingerprint: pa.Fingerprint,
		Truncated:   pa.Truncated,
		ElapsedMs:   elapsed.Milliseconds(),
	}
	if want[SectionStructure] {
		ps := pa.Structure
		resp.Structure = &StructureSummary{
			Root:           ps.Root,
			FileCount:      len(ps.Files),
			DirectoryCount: len(ps.Directories),
			CategoryCounts: ps.CategoryCounts,
			Extensions:     ps.Extensions,
			TotalSize:      ps.TotalSize,
		}
		if includeFiles {
			resp.Structure.Files = ps.Files
		}
	}
	if want[SectionTechStack] {
		resp.TechStack = &pa.TechStack
	}
	if want[SectionPatterns] {
		resp.Patterns = &pa.Patterns
	}
	if want[SectionGraph] {
		resp.Graph = &pa.Graph
	}
	if want[SectionMetrics] {
		resp.Metrics = &pa.Metrics
	}
	if want[SectionDiagnostics] {
		resp.Diagnostics = pa.Diagnostics
	}
	return resp
}

func (s *Server) handleInvalidateCache(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(toolInvalidateCache, func() (*mcp.CallToolResult, error) {
		var params InvalidateCacheParams
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
		}

		var removed int
		if params.Root == "" {
			removed = s.cache.Stats().Entries
			s.cache.Clear()
		} else {
			removed = s.analyzer(false).Invalidate(params.Root)
		}
		debug.LogMCP("invalidate_cache root=%q removed=%d\n", params.Root, removed)

		return createJSONResponse(map[string]interface{}{
			"success": true,
			"removed": removed,
		})
	})
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(toolInfo, func() (*mcp.CallToolResult, error) {
		return createJSONResponse(map[string]interface{}{
			"name":         "codeprofile",
			"version":      version.Version,
			"build":        version.BuildID(),
			"go_version":   runtime.Version(),
			"default_root": s.defaultRoot,
			"scan_mode":    s.cfg.Scan.Mode,
			"cache":        s.cache.GetCacheInfo(),
			"sections":     allSections,
		})
	})
}
