// Package mcp exposes the project analysis as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/codeprofile/internal/analyzer"
	"github.com/standardbeagle/codeprofile/internal/cache"
	"github.com/standardbeagle/codeprofile/internal/config"
	cpdebug "github.com/standardbeagle/codeprofile/internal/debug"
	"github.com/standardbeagle/codeprofile/internal/types"
	"github.com/standardbeagle/codeprofile/internal/version"
)

const (
	toolAnalyzeProject  = "analyze_project"
	toolInvalidateCache = "invalidate_cache"
	toolInfo            = "info"
)

// Server serves analyze_project and its companions. Analyses are cached
// per root so repeated calls from one session are cheap.
type Server struct {
	server      *mcp.Server
	cfg         *config.Config
	cache       *cache.ResultCache
	defaultRoot string
}

// NewServer creates the MCP server. defaultRoot is analyzed when a call
// gives no root.
func NewServer(cfg *config.Config, defaultRoot string) (*Server, error) {
	if cfg == nil {
		cfg = config.Default(defaultRoot)
	}
	rc, err := cache.NewResultCache(cache.CacheConfig{
		MaxEntries: cfg.Performance.CacheSize,
		TTL:        cache.DefaultTTL,
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:         cfg,
		cache:       rc,
		defaultRoot: defaultRoot,
	}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "codeprofile",
		Version: version.Version,
	}, nil)
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        toolAnalyzeProject,
		Description: "Profile a source tree: file structure, tech stack, naming and architecture patterns, " +
			"and the module dependency graph with centrality, layers and cycles. Results are cached until files change.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{
				"root": {
					Type:        "string",
					Description: "Project root directory (defaults to the server's working root)",
				},
				"deep": {
					Type:        "boolean",
					Description: "Deep scan: larger content samples and graph file cap",
				},
				"ignore": {
					Type:        "array",
					Description: "Extra gitignore-style patterns, applied after the configured excludes",
					Items:       &jsonschema.Schema{Type: "string"},
				},
				"sections": {
					Type:        "array",
					Description: "Limit the response to these parts of the analysis",
					Items: &jsonschema.Schema{
						Type: "string",
						Enum: sectionEnum(),
					},
				},
				"include_files": {
					Type:        "boolean",
					Description: "Include the per-file list in the structure section (large for big trees)",
				},
			},
		},
	}, s.handleAnalyzeProject)

	s.server.AddTool(&mcp.Tool{
		Name:        toolInvalidateCache,
		Description: "Drop cached analyses for a root, or for every root when none is given.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{
				"root": {
					Type:        "string",
					Description: "Project root whose cached analyses are dropped",
				},
			},
		},
	}, s.handleInvalidateCache)

	s.server.AddTool(&mcp.Tool{
		Name:        toolInfo,
		Description: "Server version, build and cache statistics.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleInfo)
}

// recoverFromPanic turns a panic inside a handler into an error result so
// one bad project cannot take the server down.
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			cpdebug.LogMCP("PANIC RECOVERED in %s: %v\n%s", operation, r, debug.Stack())
			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()

	result, err = handler()
	if err != nil {
		cpdebug.LogMCP("Error in %s: %v\n", operation, err)
		return createErrorResponse(operation, err)
	}
	return result, nil
}

func (s *Server) analyzer(deep bool) *analyzer.Analyzer {
	opts := []analyzer.Option{analyzer.WithCache(s.cache)}
	if deep {
		opts = append(opts, analyzer.WithMode(types.ScanModeDeep))
	}
	return analyzer.New(s.cfg, opts...)
}

// Start serves over stdio until ctx is done or the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	cpdebug.SetMCPMode(true)
	cpdebug.LogMCP("starting MCP server with stdio transport, root %s\n", s.defaultRoot)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying server, for in-process transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
