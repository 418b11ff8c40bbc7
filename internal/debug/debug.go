package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/codeprofile/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode tracks if we're serving over stdio (set by main). Stdout belongs
// to the protocol in that mode so nothing is ever written.
var MCPMode = false

// debugOutput is the writer for debug output (defaults to nil, meaning no output)
var debugOutput io.Writer

// debugFile holds the open file handle if debug output goes to a file
var debugFile *os.File

// debugMutex protects access to debug output
var debugMutex sync.Mutex

// Component names used as log prefixes
const (
	ComponentTraverse = "TRAVERSE"
	ComponentTech     = "TECH"
	ComponentPattern  = "PATTERN"
	ComponentGraph    = "GRAPH"
	ComponentCache    = "CACHE"
	ComponentWatch    = "WATCH"
	ComponentMCP      = "MCP"
	ComponentAnalyze  = "ANALYZE"
)

// SetMCPMode enables MCP mode which suppresses all debug output
func SetMCPMode(enabled bool) {
	MCPMode = enabled
}

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// InitDebugLogFile opens a timestamped log file under the temp dir and
// routes debug output there. Call CloseDebugLog when done.
func InitDebugLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "codeprofile-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02T150405")
	logPath := filepath.Join(logDir, fmt.Sprintf("debug-%s.log", timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugFile = file
	debugOutput = file
	return logPath, nil
}

// CloseDebugLog closes the debug log file if one is open.
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile != nil {
		err := debugFile.Close()
		debugFile = nil
		debugOutput = nil
		return err
	}
	return nil
}

// IsDebugEnabled returns true if debug mode is enabled and we're not in MCP mode
func IsDebugEnabled() bool {
	if MCPMode {
		return false
	}
	if EnableDebug == "true" {
		return true
	}
	v := os.Getenv("CODEPROFILE_DEBUG")
	if v == "" {
		v = os.Getenv("DEBUG")
	}
	return v == "1" || v == "true"
}

func getDebugWriter() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput
}

// Printf prints debug information only when debug mode is enabled and output is configured
func Printf(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG] "+format, args...)
}

// Log writes a component-prefixed debug line
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format, append([]interface{}{component}, args...)...)
}

func LogTraverse(format string, args ...interface{}) { Log(ComponentTraverse, format, args...) }
func LogTech(format string, args ...interface{})     { Log(ComponentTech, format, args...) }
func LogPattern(format string, args ...interface{})  { Log(ComponentPattern, format, args...) }
func LogGraph(format string, args ...interface{})    { Log(ComponentGraph, format, args...) }
func LogCache(format string, args ...interface{})    { Log(ComponentCache, format, args...) }
func LogWatch(format string, args ...interface{})    { Log(ComponentWatch, format, args...) }
func LogMCP(format string, args ...interface{})      { Log(ComponentMCP, format, args...) }
func LogAnalyze(format string, args ...interface{})  { Log(ComponentAnalyze, format, args...) }

// Stage logs the start of a pipeline stage and returns a func that logs its
// duration. Usage: defer debug.Stage(debug.ComponentGraph, "build")()
func Stage(component, name string) func() {
	if !IsDebugEnabled() {
		return func() {}
	}
	start := time.Now()
	Log(component, "%s started\n", name)
	return func() {
		Log(component, "%s finished in %v\n", name, time.Since(start))
	}
}

// Fatal logs a fatal error message and returns it as an error.
// In MCP mode, output is suppressed entirely.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if !MCPMode {
		if w := getDebugWriter(); w != nil {
			fmt.Fprintf(w, "[FATAL] %s", msg)
		}
	}
	return fmt.Errorf("fatal error: %s", msg)
}
