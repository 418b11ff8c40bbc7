package types

// DiagnosticKind classifies a non-fatal issue.
type DiagnosticKind string

const (
	DiagInaccessiblePath DiagnosticKind = "inaccessible-path"
	DiagParseFailure     DiagnosticKind = "parse-failure"
	DiagManifestFailure  DiagnosticKind = "manifest-failure"
	DiagResourceCap      DiagnosticKind = "resource-cap"
)

// Diagnostic records an issue that was skipped rather than failing the run.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Stage   string         `json:"stage"`
	Path    string         `json:"path,omitempty"`
	Message string         `json:"message"`
}

// ProjectAnalysis is the merged result of all pipeline stages.
type ProjectAnalysis struct {
	Mode        ScanMode         `json:"mode"`
	Fingerprint string           `json:"fingerprint"`
	Structure   ProjectStructure `json:"structure"`
	TechStack   TechStackProfile `json:"tech_stack"`
	Patterns    PatternProfile   `json:"patterns"`
	Graph       DependencyGraph  `json:"graph"`
	Metrics     GraphMetrics     `json:"metrics"`
	Diagnostics []Diagnostic     `json:"diagnostics"`
	Truncated   bool             `json:"truncated"`
}
