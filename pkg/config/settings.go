package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Storage backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Backends lists the storage backends.
var Backends = []string{BackendFile, BackendRedis, BackendMongo}

// Settings is the user's settings file.
type Settings struct {
	Store  StoreSettings  `toml:"store"`
	Layout LayoutSettings `toml:"layout"`
	View   View           `toml:"view"`
}

// StoreSettings selects where sessions are persisted.
type StoreSettings struct {
	Backend string `toml:"backend"` // "file", "redis", "mongo"
	Dir     string `toml:"dir"`     // file backend; empty means the default data dir

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`

	Timeout Duration `toml:"timeout"`
}

// LayoutSettings controls headless layout runs and the explorer.
type LayoutSettings struct {
	Width    float64  `toml:"width"`
	Height   float64  `toml:"height"`
	MaxTicks int      `toml:"max_ticks"`
	Interval Duration `toml:"interval"`
}

// Duration is a time.Duration that reads and writes TOML strings like "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() *Settings {
	return &Settings{
		Store: StoreSettings{
			Backend:       BackendFile,
			RedisAddr:     "localhost:6379",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "netview",
			Timeout:       Duration{10 * time.Second},
		},
		Layout: LayoutSettings{
			Width:    1200,
			Height:   800,
			MaxTicks: 1000,
			Interval: Duration{16 * time.Millisecond},
		},
		View: DefaultView(),
	}
}

// Dir returns the netview config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "netview")
}

// DataDir returns the netview data directory, where the file backend keeps
// sessions by default.
func DataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "netview")
}

// Path returns the settings file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// LoadFile reads settings from path. A missing file yields defaults; values
// absent from the file keep their defaults.
func LoadFile(path string) (*Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, err
	}
	s.View = s.View.Normalize()
	return s, nil
}

// SaveFile writes settings to path, creating parent directories.
func SaveFile(path string, s *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(s)
}

// EnsureExists writes the default settings to path unless a file is
// already there, and reports whether it created one.
func EnsureExists(path string) (created bool, err error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := SaveFile(path, DefaultSettings()); err != nil {
		return false, err
	}
	return true, nil
}
