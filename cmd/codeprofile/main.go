package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codeprofile/internal/config"
	"github.com/standardbeagle/codeprofile/internal/debug"
	"github.com/standardbeagle/codeprofile/internal/types"
	"github.com/standardbeagle/codeprofile/internal/version"
)

var jsonFlag = &cli.BoolFlag{
	Name:    "json",
	Aliases: []string{"j"},
	Usage:   "Output as JSON",
}

// loadConfigWithOverrides loads configuration and applies CLI flag overrides.
// The root comes from --root, then the first argument, then the working
// directory; the project's .codeprofile.kdl is read from that root.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" && c.NArg() > 0 {
		root = c.Args().First()
	}
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
	}

	configDir := absRoot
	if dir := c.String("config"); dir != "" {
		configDir = dir
	}
	cfg, err := config.LoadWithRoot("", configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configDir, err)
	}
	cfg.Project.Root = absRoot

	if c.Bool("deep") {
		cfg.Scan.Mode = types.ScanModeDeep
	}
	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if c.IsSet("workers") {
		cfg.Performance.Workers = c.Int("workers")
	}
	if c.IsSet("timeout") {
		cfg.Performance.TimeoutSec = int(c.Duration("timeout").Seconds())
	}
	if c.IsSet("no-gitignore") {
		cfg.Scan.RespectGitignore = !c.Bool("no-gitignore")
	}
	return cfg, nil
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                   "codeprofile",
		Usage:                  "Profile a codebase: structure, tech stack, conventions and module graph",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Writer:                 stdout,
		ErrWriter:              stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory to analyze (default: first argument or .)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Directory holding .codeprofile.kdl (default: the project root)",
			},
			&cli.BoolFlag{
				Name:  "deep",
				Usage: "Deep scan: larger content samples and graph file cap",
			},
			&cli.StringSliceFlag{
				Name:    "ignore",
				Aliases: []string{"i"},
				Usage:   "Extra gitignore-style patterns (e.g., --ignore 'dist/' --ignore '*.gen.go')",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Only analyze files matching glob patterns (e.g., --include 'src/**')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Add to the configured exclude patterns",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Worker goroutines per stage (0 = NumCPU-1)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Stop scheduling work after this long and report partial results",
			},
			&cli.BoolFlag{
				Name:  "no-gitignore",
				Usage: "Do not apply the root .gitignore",
			},
			&cli.BoolFlag{
				Name:   "debug-log",
				Usage:  "Write debug output (DEBUG=1) to a log file under the temp dir instead of stderr",
				Hidden: true,
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug-log") {
				logPath, err := debug.InitDebugLogFile()
				if err != nil {
					return err
				}
				log.Printf("Debug log: %s", logPath)
				return nil
			}
			debug.SetDebugOutput(c.App.ErrWriter)
			return nil
		},
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Aliases:   []string{"a"},
				Usage:     "Run every stage and print the merged profile",
				ArgsUsage: "[root]",
				Flags:     []cli.Flag{jsonFlag},
				Action:    analyzeCommand,
			},
			{
				Name:      "structure",
				Aliases:   []string{"st"},
				Usage:     "Show file categories and the directory tree",
				ArgsUsage: "[root]",
				Flags: []cli.Flag{
					jsonFlag,
					&cli.IntFlag{
						Name:    "max-depth",
						Aliases: []string{"d"},
						Usage:   "Maximum directory depth to print",
						Value:   3,
					},
				},
				Action: structureCommand,
			},
			{
				Name:      "tech",
				Aliases:   []string{"t"},
				Usage:     "Show languages, frameworks, libraries, build and test tools",
				ArgsUsage: "[root]",
				Flags:     []cli.Flag{jsonFlag},
				Action:    techCommand,
			},
			{
				Name:      "patterns",
				Aliases:   []string{"p"},
				Usage:     "Show naming conventions and architecture patterns",
				ArgsUsage: "[root]",
				Flags:     []cli.Flag{jsonFlag},
				Action:    patternsCommand,
			},
			{
				Name:      "graph",
				Aliases:   []string{"g"},
				Usage:     "Show the module dependency graph metrics",
				ArgsUsage: "[root]",
				Description: `Prints central modules, layers and cycles. With --format dot the graph
is written in Graphviz DOT format:

  codeprofile graph --format dot -o deps.dot
  dot -Tsvg deps.dot -o deps.svg`,
				Flags: []cli.Flag{
					jsonFlag,
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, dot",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the graph to this file instead of stdout",
					},
				},
				Action: graphCommand,
			},
			{
				Name:      "watch",
				Aliases:   []string{"w"},
				Usage:     "Re-analyze whenever files under the root change",
				ArgsUsage: "[root]",
				Flags: []cli.Flag{
					jsonFlag,
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "Quiet period before a re-run (default from config)",
					},
				},
				Action: watchCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Start the MCP server on stdio",
				Action: mcpCommand,
			},
			{
				Name:   "version",
				Usage:  "Print version and build information",
				Action: versionCommand,
			},
		},
	}
}

func main() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
