package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/codeprofile/internal/types"
)

// Known keys per section, used for unknown-key suggestions.
var knownKeys = map[string][]string{
	"":            {"project", "scan", "graph", "performance", "thresholds", "heuristics", "include", "exclude"},
	"project":     {"root", "name"},
	"scan":        {"mode", "max_file_size", "shallow_sample_bytes", "deep_sample_bytes", "follow_symlinks", "respect_gitignore"},
	"graph":       {"shallow_max_files", "deep_max_files", "central_limit"},
	"performance": {"workers", "timeout_sec", "cache_size", "watch_debounce_ms"},
	"thresholds":  {"primary_language", "architecture_min_score", "code_pattern_min_repeats"},
	"heuristics":  {"manifest_confidence", "marker_confidence", "pattern"},
	"pattern": {
		"priority",
		string(IndicatorDir),
		string(IndicatorRootDir),
		string(IndicatorSuffix),
		string(IndicatorFile),
		string(IndicatorColocated),
		string(IndicatorFramework),
		string(IndicatorManifestCount),
	},
}

// LoadKDL loads configuration from the .codeprofile.kdl file in projectRoot.
// A missing file returns (nil, nil).
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, ConfigFileName)

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
	}

	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		absRoot = projectRoot
	}

	cfg, warnings, err := parseKDL(string(content), absRoot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kdlPath, err)
	}
	for _, w := range warnings {
		log.Printf("WARNING: %s: %s", kdlPath, w)
	}

	// Relative roots resolve against the directory holding the config file
	if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Join(absRoot, cfg.Project.Root)
	}
	cfg.Project.Root = filepath.Clean(cfg.Project.Root)

	return cfg, nil
}

// parseKDL applies a KDL document on top of Default(root). Unknown keys
// are returned as warnings with a closest-match suggestion.
func parseKDL(content, root string) (*Config, []string, error) {
	cfg := Default(root)
	var warnings []string
	unknown := func(section, key string) {
		warnings = append(warnings, unknownKeyMessage(section, key, knownKeys[section]))
	}

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "root":
					assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				case "name":
					assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
				default:
					unknown("project", nodeName(cn))
				}
			}
		case "scan":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "mode":
					if s, ok := firstStringArg(cn); ok {
						mode, err := types.ParseScanMode(s)
						if err != nil {
							return nil, nil, err
						}
						cfg.Scan.Mode = mode
					}
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Scan.MaxFileSize = int64(v)
					}
					if s, ok := firstStringArg(cn); ok {
						sz, err := parseSize(s)
						if err != nil {
							return nil, nil, fmt.Errorf("scan.max_file_size: %w", err)
						}
						cfg.Scan.MaxFileSize = sz
					}
				case "shallow_sample_bytes":
					if v, ok := firstIntArg(cn); ok {
						cfg.Scan.ShallowSampleBytes = v
					}
				case "deep_sample_bytes":
					if v, ok := firstIntArg(cn); ok {
						cfg.Scan.DeepSampleBytes = v
					}
				case "follow_symlinks":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Scan.FollowSymlinks = b
					}
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Scan.RespectGitignore = b
					}
				default:
					unknown("scan", nodeName(cn))
				}
			}
		case "graph":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "shallow_max_files":
					if v, ok := firstIntArg(cn); ok {
						cfg.Graph.ShallowMaxFiles = v
					}
				case "deep_max_files":
					if v, ok := firstIntArg(cn); ok {
						cfg.Graph.DeepMaxFiles = v
					}
				case "central_limit":
					if v, ok := firstIntArg(cn); ok {
						cfg.Graph.CentralLimit = v
					}
				default:
					unknown("graph", nodeName(cn))
				}
			}
		case "performance":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.Workers = v
					}
				case "timeout_sec":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.TimeoutSec = v
					}
				case "cache_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.CacheSize = v
					}
				case "watch_debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.WatchDebounceMs = v
					}
				default:
					unknown("performance", nodeName(cn))
				}
			}
		case "thresholds":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "primary_language":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Thresholds.PrimaryLanguage = v
					}
				case "architecture_min_score":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Thresholds.ArchitectureMinScore = v
					}
				case "code_pattern_min_repeats":
					if v, ok := firstIntArg(cn); ok {
						cfg.Thresholds.CodePatternMinRepeats = v
					}
				default:
					unknown("thresholds", nodeName(cn))
				}
			}
		case "heuristics":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "manifest_confidence":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Heuristics.ManifestConfidence = v
					}
				case "marker_confidence":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Heuristics.MarkerConfidence = v
					}
				case "pattern":
					// pattern "MVC" { priority 1; dir "models" 30 }
					name, ok := firstStringArg(cn)
					if !ok {
						return nil, nil, fmt.Errorf("heuristics.pattern requires a name argument")
					}
					if err := parsePatternBlock(&cfg.Heuristics, name, cn, unknown); err != nil {
						return nil, nil, err
					}
				default:
					unknown("heuristics", nodeName(cn))
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			// An exclude block replaces the built-in list
			cfg.Exclude = collectStringArgs(n)
		default:
			unknown("", nodeName(n))
		}
	}

	return cfg, warnings, nil
}

func parsePatternBlock(h *Heuristics, name string, n *document.Node, unknown func(section, key string)) error {
	for _, in := range n.Children {
		key := nodeName(in)
		if key == "priority" {
			if v, ok := firstIntArg(in); ok {
				h.SetPriority(name, v)
			}
			continue
		}
		kind := IndicatorKind(key)
		if !isIndicatorKind(kind) {
			unknown("pattern", key)
			continue
		}
		value, ok := firstStringArg(in)
		if !ok {
			return fmt.Errorf("heuristics.pattern %q: %s indicator needs a value", name, key)
		}
		weight, ok := floatArgAt(in, 1)
		if !ok {
			return fmt.Errorf("heuristics.pattern %q: %s %q needs a weight", name, key, value)
		}
		h.SetWeight(name, kind, value, weight)
	}
	return nil
}

func isIndicatorKind(k IndicatorKind) bool {
	switch k {
	case IndicatorDir, IndicatorRootDir, IndicatorSuffix, IndicatorFile,
		IndicatorColocated, IndicatorFramework, IndicatorManifestCount:
		return true
	}
	return false
}

// Helper functions over the kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}
func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}
func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}
func firstFloatArg(n *document.Node) (float64, bool) {
	return floatArgAt(n, 0)
}
func floatArgAt(n *document.Node, i int) (float64, bool) {
	if len(n.Arguments) <= i {
		return 0, false
	}
	switch v := n.Arguments[i].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		log.Printf("WARNING: invalid number for '%s' in KDL config, got %T", nodeName(n), n.Arguments[i].Value)
		return 0, false
	}
}
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// Block form: exclude { "node_modules/" }, where each string is a child node name
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}
func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}

	return num * multiplier, nil
}
