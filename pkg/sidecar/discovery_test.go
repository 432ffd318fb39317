package sidecar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBinary(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

func TestResolveDevDir(t *testing.T) {
	dir := t.TempDir()
	want := writeBinary(t, dir, "lhm-sidecar")

	r := NewResolver("lhm-sidecar", dir, nil)
	got, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveCustomBinaryName(t *testing.T) {
	dir := t.TempDir()
	want := writeBinary(t, dir, "sensors-probe")

	r := NewResolver("sensors-probe", dir, nil)
	got, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveManifestOverride(t *testing.T) {
	dir := t.TempDir()
	want := writeBinary(t, dir, "custom-probe")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(`
name: sensor-probe
version: 1.2.0
executable: custom-probe
`), 0o644))

	// The manifest redirects away from the default binary name.
	r := NewResolver("lhm-sidecar", dir, nil)
	got, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveInvalidManifestFallsBack(t *testing.T) {
	dir := t.TempDir()
	want := writeBinary(t, dir, "lhm-sidecar")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.yaml"),
		[]byte("name: broken\n"), 0o644)) // missing executable

	r := NewResolver("lhm-sidecar", dir, nil)
	got, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveNotFound(t *testing.T) {
	r := NewResolver("lhm-sidecar", t.TempDir(), nil)

	_, err := r.Resolve()
	require.Error(t, err)

	// The error must classify as binary_not_found for the UI.
	info := Classify(ErrorStatus(err.Error()))
	assert.Equal(t, StatusInfoBinaryNotFound, info.Status)
}

func TestResolveSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "lhm-sidecar"), 0o755))

	r := NewResolver("lhm-sidecar", dir, nil)
	_, err := r.Resolve()
	assert.Error(t, err)
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: sensor-probe
version: 0.4.1
executable: lhm-sidecar
description: LibreHardwareMonitor bridge
`), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "sensor-probe", m.Name)
	assert.Equal(t, "0.4.1", m.Version)
	assert.Equal(t, "lhm-sidecar", m.Executable)
}

func TestLoadManifestMissingExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: x\n"), 0o644))

	_, err := LoadManifest(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executable is required")
}
