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
// go build -ldflags "-X github.com/Lightwood13/msc/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// ProtocolMode is set when stdio carries LSP or MCP traffic.
// Only file-backed output is allowed while it is on.
var ProtocolMode = false

var (
	debugOutput io.Writer
	debugFile   *os.File
	debugMutex  sync.Mutex
)

// Component names used across the engine.
const (
	ComponentCatalog   = "CATALOG"
	ComponentScope     = "SCOPE"
	ComponentLSP       = "LSP"
	ComponentMCP       = "MCP"
	ComponentWatch     = "WATCH"
	ComponentWorkspace = "WORKSPACE"
)

// SetProtocolMode toggles stdio protection.
func SetProtocolMode(enabled bool) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	ProtocolMode = enabled
}

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// InitDebugLogFile opens a timestamped log file under the temp dir and routes
// debug output to it. Call CloseDebugLog when done.
func InitDebugLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "msc-debug-logs")
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

// IsDebugEnabled reports whether the build flag or DEBUG env var turns logging on.
func IsDebugEnabled() bool {
	if EnableDebug == "true" {
		return true
	}
	v := os.Getenv("DEBUG")
	return v == "1" || v == "true"
}

// writer returns the active output, or nil when nothing may be written.
func writer() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	if debugOutput == nil {
		return nil
	}
	if ProtocolMode && debugFile == nil {
		// stdout/stderr style writers would corrupt the protocol stream
		if debugOutput == io.Writer(os.Stdout) || debugOutput == io.Writer(os.Stderr) {
			return nil
		}
	}
	return debugOutput
}

// Log writes a component-tagged line when debugging is enabled.
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format+"\n", append([]interface{}{component}, args...)...)
}

func LogCatalog(format string, args ...interface{}) { Log(ComponentCatalog, format, args...) }

func LogScope(format string, args ...interface{}) { Log(ComponentScope, format, args...) }

func LogLSP(format string, args ...interface{}) { Log(ComponentLSP, format, args...) }

func LogMCP(format string, args ...interface{}) { Log(ComponentMCP, format, args...) }

func LogWatch(format string, args ...interface{}) { Log(ComponentWatch, format, args...) }

func LogWorkspace(format string, args ...interface{}) { Log(ComponentWorkspace, format, args...) }

