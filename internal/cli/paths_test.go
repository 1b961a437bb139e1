package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestXDGDirs(t *testing.T) {
	tests := []struct {
		name string
		env  string
		fn   func() (string, error)
	}{
		{"cache", "XDG_CACHE_HOME", cacheDir},
		{"config", "XDG_CONFIG_HOME", configDir},
		{"data", "XDG_DATA_HOME", dataDir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			t.Setenv(tt.env, base)

			dir, err := tt.fn()
			if err != nil {
				t.Fatal(err)
			}
			if want := filepath.Join(base, appName); dir != want {
				t.Errorf("dir = %q, want %q", dir, want)
			}
		})
	}
}

func TestLocalPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	p, err := localPath("", "kintree.db")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(p, filepath.Join(appName, "kintree.db")) {
		t.Errorf("default path = %q", p)
	}
	if _, err := os.Stat(filepath.Dir(p)); err != nil {
		t.Errorf("data dir not created: %v", err)
	}

	home, _ := os.UserHomeDir()
	p, _ = localPath("~/trees/a.db", "")
	if p != filepath.Join(home, "trees", "a.db") {
		t.Errorf("tilde path = %q", p)
	}
	if p, _ = localPath("/srv/a.db", ""); p != "/srv/a.db" {
		t.Errorf("absolute path = %q", p)
	}
}
