package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"

	mscerrors "github.com/Lightwood13/msc/internal/errors"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults checks every section and fills in values left at zero.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return mscerrors.NewConfigError("project", cfg.Project.Root, err)
	}
	if err := v.validateWorkspaceConfig(&cfg.Workspace); err != nil {
		return mscerrors.NewConfigError("workspace", "", err)
	}
	if err := v.validateWatchConfig(&cfg.Watch); err != nil {
		return mscerrors.NewConfigError("watch", strconv.Itoa(cfg.Watch.DebounceMs), err)
	}
	if cfg.Performance.MaxGoroutines < 0 {
		return mscerrors.NewConfigError("performance", strconv.Itoa(cfg.Performance.MaxGoroutines),
			fmt.Errorf("MaxGoroutines cannot be negative, got %d", cfg.Performance.MaxGoroutines))
	}
	if t := cfg.Diagnostics.SuggestThreshold; t < 0 || t > 1 {
		return mscerrors.NewConfigError("diagnostics", strconv.FormatFloat(t, 'g', -1, 64),
			fmt.Errorf("SuggestThreshold must be between 0 and 1, got %v", t))
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

func (v *Validator) validateWorkspaceConfig(ws *Workspace) error {
	if ws.MaxFileSize < 0 {
		return fmt.Errorf("MaxFileSize cannot be negative, got %d", ws.MaxFileSize)
	}
	if ws.MaxFileSize > 100*1024*1024 {
		return fmt.Errorf("MaxFileSize should not exceed 100MB, got %d", ws.MaxFileSize)
	}
	for _, p := range ws.Include {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid include pattern %q", p)
		}
	}
	for _, p := range ws.Exclude {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

func (v *Validator) validateWatchConfig(w *Watch) error {
	if w.DebounceMs < 0 {
		return fmt.Errorf("DebounceMs cannot be negative, got %d", w.DebounceMs)
	}
	if w.DebounceMs > 60000 {
		return fmt.Errorf("DebounceMs should not exceed one minute, got %d", w.DebounceMs)
	}
	return nil
}

func (v *Validator) setSmartDefaults(cfg *Config) {
	// Leave one core for the editor.
	if cfg.Performance.MaxGoroutines == 0 {
		cfg.Performance.MaxGoroutines = max(1, runtime.NumCPU()-1)
	}
	if cfg.Workspace.MaxFileSize == 0 {
		cfg.Workspace.MaxFileSize = DefaultMaxFileSize
	}
	if len(cfg.Workspace.Include) == 0 {
		cfg.Workspace.Include = []string{DefaultInclude}
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = DefaultDebounceMs
	}
	if cfg.Project.Name == "" {
		cfg.Project.Name = filepath.Base(cfg.Project.Root)
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
