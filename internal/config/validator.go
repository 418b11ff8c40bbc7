package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	edlib "github.com/hbollon/go-edlib"

	cperrors "github.com/standardbeagle/codeprofile/internal/errors"
	"github.com/standardbeagle/codeprofile/internal/types"
)

// minSuggestionSimilarity is the Jaro-Winkler score a known key needs
// before it is offered as a "did you mean" suggestion.
const minSuggestionSimilarity = 0.75

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults.
// Every failure is a *errors.ConfigError, the only fatal error kind.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return cperrors.NewConfigError("project.root", cfg.Project.Root, err)
	}

	if err := v.validateScanConfig(&cfg.Scan); err != nil {
		return cperrors.NewConfigError("scan", string(cfg.Scan.Mode), err)
	}

	if err := v.validateGraphConfig(&cfg.Graph); err != nil {
		return cperrors.NewConfigError("graph", "", err)
	}

	if err := v.validatePerformanceConfig(&cfg.Performance); err != nil {
		return cperrors.NewConfigError("performance", strconv.Itoa(cfg.Performance.Workers), err)
	}

	if err := v.validateThresholds(&cfg.Thresholds); err != nil {
		return cperrors.NewConfigError("thresholds", "", err)
	}

	if err := v.validateHeuristics(&cfg.Heuristics); err != nil {
		return cperrors.NewConfigError("heuristics", "", err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

// validateProjectConfig checks that the root exists and is a directory
func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}

	info, err := os.Stat(project.Root)
	if err != nil {
		return fmt.Errorf("project root is not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project root %s is not a directory", project.Root)
	}

	return nil
}

func (v *Validator) validateScanConfig(scan *Scan) error {
	if _, err := types.ParseScanMode(string(scan.Mode)); err != nil {
		return err
	}
	if scan.MaxFileSize <= 0 {
		return fmt.Errorf("MaxFileSize must be positive, got %d", scan.MaxFileSize)
	}
	if scan.ShallowSampleBytes < 0 || scan.DeepSampleBytes < 0 {
		return fmt.Errorf("sample sizes cannot be negative, got %d/%d", scan.ShallowSampleBytes, scan.DeepSampleBytes)
	}
	if scan.DeepSampleBytes > 0 && scan.DeepSampleBytes < scan.ShallowSampleBytes {
		return fmt.Errorf("DeepSampleBytes (%d) must not be smaller than ShallowSampleBytes (%d)",
			scan.DeepSampleBytes, scan.ShallowSampleBytes)
	}
	return nil
}

func (v *Validator) validateGraphConfig(graph *Graph) error {
	if graph.ShallowMaxFiles < 0 || graph.DeepMaxFiles < 0 {
		return fmt.Errorf("graph file caps cannot be negative, got %d/%d", graph.ShallowMaxFiles, graph.DeepMaxFiles)
	}
	if graph.CentralLimit < 0 {
		return fmt.Errorf("CentralLimit cannot be negative, got %d", graph.CentralLimit)
	}
	return nil
}

// validatePerformanceConfig validates performance configuration
func (v *Validator) validatePerformanceConfig(perf *Performance) error {
	// Workers: 0 means auto-detect (will be set by smart defaults)
	if perf.Workers < 0 {
		return fmt.Errorf("Workers cannot be negative, got %d", perf.Workers)
	}
	if perf.TimeoutSec < 0 {
		return fmt.Errorf("TimeoutSec cannot be negative, got %d", perf.TimeoutSec)
	}
	if perf.CacheSize < 0 {
		return fmt.Errorf("CacheSize cannot be negative, got %d", perf.CacheSize)
	}
	if perf.WatchDebounceMs < 0 {
		return fmt.Errorf("WatchDebounceMs cannot be negative, got %d", perf.WatchDebounceMs)
	}
	return nil
}

func (v *Validator) validateThresholds(th *Thresholds) error {
	if th.PrimaryLanguage < 0 || th.PrimaryLanguage > 100 {
		return fmt.Errorf("PrimaryLanguage threshold must be within [0,100], got %v", th.PrimaryLanguage)
	}
	if th.ArchitectureMinScore < 0 || th.ArchitectureMinScore > 100 {
		return fmt.Errorf("ArchitectureMinScore must be within [0,100], got %v", th.ArchitectureMinScore)
	}
	if th.CodePatternMinRepeats < 1 {
		return fmt.Errorf("CodePatternMinRepeats must be at least 1, got %d", th.CodePatternMinRepeats)
	}
	return nil
}

// validateHeuristics rejects negative weights, which would break score monotonicity
func (v *Validator) validateHeuristics(h *Heuristics) error {
	for _, c := range []float64{h.ManifestConfidence, h.MarkerConfidence} {
		if c < 0 || c > 100 {
			return fmt.Errorf("detection confidence must be within [0,100], got %v", c)
		}
	}
	seen := make(map[string]bool, len(h.Architecture))
	for _, rule := range h.Architecture {
		if rule.Name == "" {
			return errors.New("architecture rule without a name")
		}
		if seen[rule.Name] {
			return fmt.Errorf("architecture rule %q defined twice", rule.Name)
		}
		seen[rule.Name] = true
		for _, ind := range rule.Indicators {
			if ind.Weight < 0 {
				return fmt.Errorf("%s: %s %q has negative weight %v", rule.Name, ind.Kind, ind.Value, ind.Weight)
			}
		}
	}
	return nil
}

// setSmartDefaults applies defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	// Leave a core free for the OS, minimum of 1
	if cfg.Performance.Workers == 0 {
		cfg.Performance.Workers = cfg.WorkerCount()
	}

	if cfg.Scan.DeepSampleBytes == 0 {
		cfg.Scan.DeepSampleBytes = types.DefaultDeepSampleBytes
	}
	if cfg.Scan.ShallowSampleBytes == 0 {
		cfg.Scan.ShallowSampleBytes = types.DefaultShallowSampleBytes
	}
	if cfg.Graph.ShallowMaxFiles == 0 {
		cfg.Graph.ShallowMaxFiles = types.DefaultShallowGraphFiles
	}
	if cfg.Graph.DeepMaxFiles == 0 {
		cfg.Graph.DeepMaxFiles = types.DefaultDeepGraphFiles
	}
	if cfg.Graph.CentralLimit == 0 {
		cfg.Graph.CentralLimit = types.DefaultCentralLimit
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}

// SuggestKey returns the known key most similar to key, or "" when nothing
// is close enough.
func SuggestKey(key string, known []string) string {
	best := ""
	var bestScore float32
	for _, candidate := range known {
		score, err := edlib.StringsSimilarity(key, candidate, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	if bestScore < minSuggestionSimilarity {
		return ""
	}
	return best
}

func unknownKeyMessage(section, key string, known []string) string {
	where := key
	if section != "" {
		where = section + "." + key
	}
	if s := SuggestKey(key, known); s != "" {
		return fmt.Sprintf("unknown key %q, did you mean %q?", where, s)
	}
	return fmt.Sprintf("unknown key %q ignored", where)
}
