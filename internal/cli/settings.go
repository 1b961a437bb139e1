package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/store"
	"github.com/matzehuels/kintree/pkg/store/file"
	"github.com/matzehuels/kintree/pkg/store/memory"
	"github.com/matzehuels/kintree/pkg/store/mongo"
	"github.com/matzehuels/kintree/pkg/store/sqlite"
)

// Store drivers.
const (
	driverSQLite = "sqlite"
	driverFile   = "file"
	driverMongo  = "mongo"
	driverMemory = "memory"
)

// Environment overrides for the settings file.
const (
	envStore = "KINTREE_STORE"
	envDSN   = "KINTREE_DSN"
)

// Settings is the CLI settings file:
//
//	[store]
//	driver = "sqlite"              # sqlite, file, mongo or memory
//	dsn = "~/.local/share/kintree/kintree.db"
//	database = "kintree"           # mongo only
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"   # empty: file cache
//
//	[layout]
//	strategy = "subtree"
//	node_width = 160
//
//	[server]
//	addr = ":8080"
type Settings struct {
	Store  StoreSettings  `toml:"store"`
	Cache  CacheSettings  `toml:"cache"`
	Layout layout.Options `toml:"layout"`
	Server ServerSettings `toml:"server"`
}

// StoreSettings selects the member store.
type StoreSettings struct {
	Driver   string `toml:"driver"`
	DSN      string `toml:"dsn"`
	Database string `toml:"database"`
}

// CacheSettings selects the pipeline cache.
type CacheSettings struct {
	RedisURL string `toml:"redis_url"`
	Dir      string `toml:"dir"`
}

// ServerSettings configures "kintree serve".
type ServerSettings struct {
	Addr string `toml:"addr"`
}

func defaultSettings() Settings {
	return Settings{
		Store:  StoreSettings{Driver: driverSQLite, Database: appName},
		Server: ServerSettings{Addr: ":8080"},
	}
}

// configDir returns the settings directory ($XDG_CONFIG_HOME/kintree).
func configDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// dataDir returns the directory for local stores ($XDG_DATA_HOME/kintree).
func dataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// loadSettings reads path, or the default settings file when path is empty.
// A missing default file is not an error; a missing explicit one is.
func loadSettings(path string) (Settings, error) {
	s := defaultSettings()
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err == nil {
			path = filepath.Join(dir, "config.toml")
		}
	}
	if path != "" {
		md, err := toml.DecodeFile(path, &s)
		switch {
		case err == nil:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return s, errors.New(errors.ErrCodeInvalidInput, "%s: unknown settings %v", path, undecoded)
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return s, fmt.Errorf("read settings %s: %w", path, err)
		}
	}

	if v := os.Getenv(envStore); v != "" {
		s.Store.Driver = v
	}
	if v := os.Getenv(envDSN); v != "" {
		s.Store.DSN = v
	}
	s.Store.Driver = strings.ToLower(strings.TrimSpace(s.Store.Driver))
	return s, s.Layout.Validate()
}

// openStore opens the configured member store.
func openStore(ctx context.Context, s StoreSettings) (store.Store, error) {
	switch s.Driver {
	case driverSQLite, "":
		dsn, err := localPath(s.DSN, appName+".db")
		if err != nil {
			return nil, err
		}
		return sqlite.Open(ctx, dsn)
	case driverFile:
		dir, err := localPath(s.DSN, "members")
		if err != nil {
			return nil, err
		}
		return file.New(dir)
	case driverMongo:
		uri := s.DSN
		if uri == "" {
			uri = "mongodb://localhost:27017"
		}
		return mongo.Open(ctx, mongo.Config{URI: uri, Database: s.Database})
	case driverMemory:
		return memory.New(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store driver %q (want sqlite, file, mongo or memory)", s.Driver)
	}
}

// localPath expands a leading ~ in p, or returns name under dataDir.
func localPath(p, name string) (string, error) {
	if p == "" {
		dir, err := dataDir()
		if err != nil {
			return "", err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create data dir: %w", err)
		}
		return filepath.Join(dir, name), nil
	}
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, rest), nil
	}
	return p, nil
}

// openCache returns the configured cache and its keyer. Redis entries are
// scoped under "kintree:" so a shared instance can be cleared safely.
func openCache(ctx context.Context, s CacheSettings, noCache bool) (cache.Cache, cache.Keyer, error) {
	if noCache {
		return cache.NewNullCache(), nil, nil
	}
	if s.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, s.RedisURL, appName+":")
		if err != nil {
			return nil, nil, err
		}
		return rc, cache.NewScopedKeyer(nil, "v1:"), nil
	}
	dir := s.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil, nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, err
	}
	return fc, nil, nil
}
