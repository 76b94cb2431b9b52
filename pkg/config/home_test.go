package config

import (
	"path/filepath"
	"testing"
)

func TestGetHome_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envHome, dir)
	resetHome()
	t.Cleanup(resetHome)

	if got := GetHome(); got != dir {
		t.Errorf("expected %s, got %s", dir, got)
	}
	if got := GlobalConfigPath(); got != filepath.Join(dir, "global_config.yaml") {
		t.Errorf("unexpected global config path: %s", got)
	}
}

func TestGetHome_Cached(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envHome, dir)
	resetHome()
	t.Cleanup(resetHome)

	first := GetHome()
	t.Setenv(envHome, t.TempDir())
	if got := GetHome(); got != first {
		t.Errorf("expected cached home %s, got %s", first, got)
	}
}
