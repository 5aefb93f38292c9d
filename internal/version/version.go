package version

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Version information for the msc language service
const (
	Version = "1.3.0"

	// ServerName is reported to LSP and MCP clients.
	ServerName = "msc-language-server"
)

// Set with -ldflags "-X github.com/Lightwood13/msc/internal/version.GitCommit=..."
var (
	BuildDate = "development"
	GitCommit = "unknown"
)

// Info returns the bare version string
func Info() string {
	return Version
}

// FullInfo returns detailed version information
func FullInfo() string {
	return "msc " + Version + " (commit: " + GitCommit + ", built: " + BuildDate + ")"
}

var (
	buildID     string
	buildIDOnce sync.Once
)

// BuildID returns a short fingerprint of the running binary.
func BuildID() string {
	buildIDOnce.Do(func() {
		buildID = computeBuildID()
	})
	return buildID
}

func computeBuildID() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version + "-" + GitCommit
	}

	h := xxhash.New()
	_, _ = h.WriteString(info.GoVersion)
	_, _ = h.WriteString(info.Main.Path)
	_, _ = h.WriteString(info.Main.Version)
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision", "vcs.modified", "vcs.time":
			_, _ = h.WriteString(s.Key)
			_, _ = h.WriteString(s.Value)
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
