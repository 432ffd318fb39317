package sidecar

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Manifest describes a sidecar binary shipped inside a binaries directory.
// A manifest is optional: a directory containing just the binary under its
// default name works without one.
type Manifest struct {
	// Name of the sidecar (informational)
	Name string `yaml:"name"`

	// Version of the sidecar (informational)
	Version string `yaml:"version"`

	// Executable file name, relative to the manifest's directory
	Executable string `yaml:"executable"`

	// Optional: description of what the sidecar samples
	Description string `yaml:"description"`
}

// LoadManifest reads and validates a manifest.yaml
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	if m.Executable == "" {
		return nil, fmt.Errorf("manifest %s: executable is required", path)
	}

	return &m, nil
}

// DefaultBinaryName returns the sidecar executable name for this platform
func DefaultBinaryName() string {
	if runtime.GOOS == "windows" {
		return "lhm-sidecar.exe"
	}
	return "lhm-sidecar"
}

// Resolver locates the sidecar executable on the filesystem.
type Resolver struct {
	binaryName string
	devDir     string
	logger     *zap.SugaredLogger
}

// NewResolver creates a resolver. binaryName defaults to the platform
// binary name; devDir is the development-tree binaries directory and may
// be empty.
func NewResolver(binaryName, devDir string, logger *zap.SugaredLogger) *Resolver {
	if binaryName == "" {
		binaryName = DefaultBinaryName()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Resolver{
		binaryName: binaryName,
		devDir:     devDir,
		logger:     logger,
	}
}

// Resolve tries candidate directories in order: the binaries directory
// packaged next to the running executable, the configured development
// directory, and two working-directory fallbacks. The first directory
// holding the binary (or a manifest pointing at one) wins.
func (r *Resolver) Resolve() (string, error) {
	var dirs []string

	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Join(filepath.Dir(exe), "binaries"))
	}
	if r.devDir != "" {
		dirs = append(dirs, r.devDir)
	}
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs,
			filepath.Join(cwd, "binaries"),
			filepath.Join(cwd, "sidecar", "binaries"),
		)
	}

	for _, dir := range dirs {
		path, ok := r.probe(dir)
		if ok {
			r.logger.Infow("resolved sidecar binary", "path", path)
			return path, nil
		}
	}

	return "", fmt.Errorf("sidecar binary %q not found, searched: %s",
		r.binaryName, strings.Join(dirs, ", "))
}

// probe checks one directory for the binary, honoring a manifest.yaml
// override of the executable name when present.
func (r *Resolver) probe(dir string) (string, bool) {
	name := r.binaryName

	manifestPath := filepath.Join(dir, "manifest.yaml")
	if _, err := os.Stat(manifestPath); err == nil {
		m, err := LoadManifest(manifestPath)
		if err != nil {
			r.logger.Warnw("ignoring invalid sidecar manifest",
				"path", manifestPath, "error", err)
		} else {
			name = m.Executable
		}
	}

	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}

	return path, true
}
