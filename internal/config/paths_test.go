package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProfileDir(t *testing.T) {
	t.Setenv(HomeEnv, "")
	home, _ := os.UserHomeDir()
	got := ProfileDir("main")
	want := filepath.Join(home, ".gigtune", "profiles", "main")
	if got != want {
		t.Errorf("ProfileDir(main) = %q, want %q", got, want)
	}
}

func TestSignalDBPath(t *testing.T) {
	got := SignalDBPath("test")
	if !strings.HasSuffix(got, filepath.Join("profiles", "test", "signal.db")) {
		t.Errorf("SignalDBPath(test) = %q, want suffix profiles/test/signal.db", got)
	}
}

func TestLogPath(t *testing.T) {
	got := LogPath("test")
	if !strings.HasSuffix(got, filepath.Join("profiles", "test", "logs", "gigtune.log")) {
		t.Errorf("LogPath(test) = %q, want suffix profiles/test/logs/gigtune.log", got)
	}
}

func TestEnsureProfileDir(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(HomeEnv, tmpDir)

	if err := EnsureProfileDir("test"); err != nil {
		t.Fatalf("EnsureProfileDir() error = %v", err)
	}

	for _, dir := range []string{ProfileDir("test"), LogDir("test")} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("%s not created: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
		if perm := info.Mode().Perm(); perm != 0700 {
			t.Errorf("%s permission = %o, want 0700", dir, perm)
		}
	}
	if Path() != filepath.Join(tmpDir, "config.toml") {
		t.Errorf("Path() = %q", Path())
	}
}
