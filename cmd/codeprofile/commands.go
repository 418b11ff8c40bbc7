package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codeprofile/internal/analyzer"
	"github.com/standardbeagle/codeprofile/internal/cache"
	"github.com/standardbeagle/codeprofile/internal/config"
	"github.com/standardbeagle/codeprofile/internal/debug"
	"github.com/standardbeagle/codeprofile/internal/mcp"
	"github.com/standardbeagle/codeprofile/internal/types"
	"github.com/standardbeagle/codeprofile/internal/version"
	"github.com/standardbeagle/codeprofile/internal/watch"
	"github.com/standardbeagle/codeprofile/pkg/pathutil"
)

// signalContext is cancelled on SIGINT/SIGTERM so a long scan returns its
// partial result instead of dying mid-write.
func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	parent := c.Context
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// runAnalysis loads the configuration and runs the full pipeline.
func runAnalysis(c *cli.Context) (*types.ProjectAnalysis, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, err
	}
	ctx, cancel := signalContext(c)
	defer cancel()

	res, err := analyzer.New(cfg).Analyze(ctx, cfg.Project.Root, c.StringSlice("ignore"))
	if err != nil {
		return nil, err
	}
	if res.Truncated {
		log.Printf("Warning: analysis of %s was truncated; results are partial", cfg.Project.Root)
	}
	return res, nil
}

func analyzeCommand(c *cli.Context) error {
	res, err := runAnalysis(c)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, res)
	}
	printAnalysis(c.App.Writer, res)
	return nil
}

func structureCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(c)
	defer cancel()

	res, err := analyzer.New(cfg).Structure(ctx, cfg.Project.Root, c.StringSlice("ignore"))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, struct {
			Structure   types.ProjectStructure `json:"structure"`
			Diagnostics []types.Diagnostic     `json:"diagnostics"`
		}{res.Structure, res.Diagnostics})
	}
	printStructure(c.App.Writer, &res.Structure, c.Int("max-depth"))
	printDiagnostics(c.App.Writer, res.Diagnostics)
	return nil
}

func techCommand(c *cli.Context) error {
	res, err := runAnalysis(c)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, res.TechStack)
	}
	printTechStack(c.App.Writer, &res.TechStack)
	return nil
}

func patternsCommand(c *cli.Context) error {
	res, err := runAnalysis(c)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, res.Patterns)
	}
	printPatterns(c.App.Writer, &res.Patterns)
	return nil
}

func graphCommand(c *cli.Context) error {
	res, err := runAnalysis(c)
	if err != nil {
		return err
	}

	out := c.App.Writer
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		out = f
		if cwd, err := os.Getwd(); err == nil {
			log.Printf("Writing dependency graph to %s", pathutil.ToRelative(f.Name(), cwd))
		}
	}

	switch {
	case c.Bool("json"):
		return writeJSON(out, struct {
			Graph   types.DependencyGraph `json:"graph"`
			Metrics types.GraphMetrics    `json:"metrics"`
		}{res.Graph, res.Metrics})
	case c.String("format") == "dot":
		writeDOT(out, &res.Graph, &res.Metrics)
		return nil
	case c.String("format") == "text":
		printGraph(out, &res.Graph, &res.Metrics)
		return nil
	}
	return fmt.Errorf("unknown graph format %q (expected text or dot)", c.String("format"))
}

func watchCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	if d := c.Duration("debounce"); d > 0 {
		cfg.Performance.WatchDebounceMs = int(d.Milliseconds())
	}

	rc, err := cache.NewResultCache(cache.CacheConfig{MaxEntries: cfg.Performance.CacheSize, TTL: cache.DefaultTTL})
	if err != nil {
		return err
	}
	a := analyzer.New(cfg, analyzer.WithCache(rc))
	ignore := c.StringSlice("ignore")

	ctx, cancel := signalContext(c)
	defer cancel()

	initial, err := a.Analyze(ctx, cfg.Project.Root, ignore)
	if err != nil {
		return err
	}
	if err := emitWatchResult(c, initial, nil); err != nil {
		return err
	}

	w, err := watch.New(a, cfg, cfg.Project.Root, ignore)
	if err != nil {
		return err
	}
	w.SetCallbacks(func(res *types.ProjectAnalysis, changed []string) {
		if err := emitWatchResult(c, res, changed); err != nil {
			log.Printf("Warning: failed to write result: %v", err)
		}
	}, func(err error) {
		log.Printf("Error: re-analysis failed: %v", err)
	})

	log.Printf("Watching %s (Ctrl+C to stop)", cfg.Project.Root)
	if err := w.Run(ctx); err != nil {
		return err
	}
	stats := w.GetStats()
	log.Printf("Stopped after %d re-analyses of %d events", stats.Reanalyses, stats.EventsProcessed)
	return nil
}

func emitWatchResult(c *cli.Context, res *types.ProjectAnalysis, changed []string) error {
	if c.Bool("json") {
		return json.NewEncoder(c.App.Writer).Encode(struct {
			Changed  []string               `json:"changed"`
			Analysis *types.ProjectAnalysis `json:"analysis"`
		}{changed, res})
	}
	if len(changed) > 0 {
		fmt.Fprintf(c.App.Writer, "\n[%s] %d changed: %v\n", time.Now().Format("15:04:05"), len(changed), changed)
	}
	printAnalysis(c.App.Writer, res)
	return nil
}

func mcpCommand(c *cli.Context) error {
	// Stdout carries the protocol; nothing else may write to it
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return debug.Fatal("failed to load config: %v\n", err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return debug.Fatal("invalid config: %v\n", err)
	}

	server, err := mcp.NewServer(cfg, cfg.Project.Root)
	if err != nil {
		return debug.Fatal("failed to create MCP server: %v\n", err)
	}

	ctx, cancel := signalContext(c)
	defer cancel()

	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		return debug.Fatal("MCP server error: %v\n", err)
	}
	debug.LogMCP("Server shutdown completed\n")
	return nil
}

func versionCommand(c *cli.Context) error {
	fmt.Fprintln(c.App.Writer, version.FullInfo())
	fmt.Fprintf(c.App.Writer, "build: %s\n", version.BuildID())
	return nil
}
