package types

// TechKind groups detected technologies.
type TechKind string

const (
	TechFramework TechKind = "framework"
	TechLibrary   TechKind = "library"
	TechBuildTool TechKind = "build-tool"
	TechTesting   TechKind = "testing"
)

// DetectionSource records which pass found a technology.
type DetectionSource string

const (
	SourceManifest DetectionSource = "manifest"
	SourceMarker   DetectionSource = "marker"
)

// LanguageShare is one entry of the primary language ranking.
type LanguageShare struct {
	Language   string  `json:"language"`
	Percentage float64 `json:"percentage"`
	FileCount  int     `json:"file_count"`
}

// TechDetection is the merged evidence for a single technology.
type TechDetection struct {
	Name       string          `json:"name"`
	Kind       TechKind        `json:"kind"`
	Source     DetectionSource `json:"source"`
	Confidence float64         `json:"confidence"`
	Evidence   []string        `json:"evidence,omitempty"`
}

// TechStackProfile is the output of the technology stage.
type TechStackProfile struct {
	PrimaryLanguages  []LanguageShare `json:"primary_languages"`
	Frameworks        []string        `json:"frameworks"`
	Libraries         []string        `json:"libraries"`
	BuildTools        []string        `json:"build_tools"`
	TestingFrameworks []string        `json:"testing_frameworks"`
	Stacks            []string        `json:"stacks"`
	Detections        []TechDetection `json:"detections"`
}

// Has reports whether any category contains the named technology.
func (tp *TechStackProfile) Has(name string) bool {
	for _, d := range tp.Detections {
		if d.Name == name {
			return true
		}
	}
	return false
}

// HasFramework reports whether name is among the detected frameworks.
func (tp *TechStackProfile) HasFramework(name string) bool {
	return containsString(tp.Frameworks, name)
}

// IdentifierCategory is the kind of identifier a naming style is computed for.
type IdentifierCategory string

const (
	IdentVariable  IdentifierCategory = "variable"
	IdentFunction  IdentifierCategory = "function"
	IdentClass     IdentifierCategory = "class"
	IdentFile      IdentifierCategory = "file"
	IdentDirectory IdentifierCategory = "directory"
)

// AllIdentifierCategories lists every identifier category in report order.
var AllIdentifierCategories = []IdentifierCategory{
	IdentVariable,
	IdentFunction,
	IdentClass,
	IdentFile,
	IdentDirectory,
}

// NamingStyle is one of the naming-convention buckets.
type NamingStyle string

const (
	StyleCamel          NamingStyle = "camelCase"
	StylePascal         NamingStyle = "PascalCase"
	StyleSnake          NamingStyle = "snake_case"
	StyleKebab          NamingStyle = "kebab-case"
	StyleScreamingSnake NamingStyle = "SCREAMING_SNAKE_CASE"
	StyleUnrecognized   NamingStyle = "unrecognized"
)

// StylePriority is the tie-break order for ambiguous identifiers and equal counts.
var StylePriority = []NamingStyle{
	StyleCamel,
	StylePascal,
	StyleSnake,
	StyleKebab,
	StyleScreamingSnake,
	StyleUnrecognized,
}

// NamingConventionResult is the dominant style for one identifier category.
type NamingConventionResult struct {
	Category   IdentifierCategory  `json:"category"`
	Style      NamingStyle         `json:"style"`
	Confidence float64             `json:"confidence"`
	Example    string              `json:"example,omitempty"`
	Total      int                 `json:"total"`
	Counts     map[NamingStyle]int `json:"counts,omitempty"`
}

// ArchitecturePatternResult is the score of one architecture pattern.
type ArchitecturePatternResult struct {
	Name     string   `json:"name"`
	Score    float64  `json:"score"`
	Evidence []string `json:"evidence"`
}

// ConsistencyMetrics aggregates naming confidence for reporting.
type ConsistencyMetrics struct {
	Overall     float64                        `json:"overall"`
	PerCategory map[IdentifierCategory]float64 `json:"per_category"`
}

// PatternProfile is the output of the pattern stage.
type PatternProfile struct {
	Naming        map[IdentifierCategory]NamingConventionResult `json:"naming"`
	Architecture  []ArchitecturePatternResult                   `json:"architecture"`
	CodePatterns  []string                                      `json:"code_patterns"`
	Consistency   ConsistencyMetrics                            `json:"consistency"`
	FilesAnalyzed int                                           `json:"files_analyzed"`
	Truncated     bool                                          `json:"truncated,omitempty"`
}

// Pattern returns the architecture result with the given name, if reported.
func (pp *PatternProfile) Pattern(name string) (ArchitecturePatternResult, bool) {
	for _, r := range pp.Architecture {
		if r.Name == name {
			return r, true
		}
	}
	return ArchitecturePatternResult{}, false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
