package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gookit/validate"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	AppName   = "bare"
	EnvPrefix = "BARE"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrNoConfigFile  = errors.New("no configuration file to watch")
)

type GopherConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"required|min:1"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required|in:trace,debug,info,warn,error"`
	Format string `mapstructure:"format" validate:"required|in:console,json"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	SizeMB  int           `mapstructure:"size_mb" validate:"min:0"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type HTTPConfig struct {
	UserAgent string `mapstructure:"user_agent"`
}

// Config is the resolved client configuration. Timeout bounds every
// blocking gemini step and HTTP requests.
type Config struct {
	Timeout    time.Duration `mapstructure:"timeout" validate:"required|min:1"`
	KnownHosts string        `mapstructure:"known_hosts" validate:"required"`
	Gopher     GopherConfig  `mapstructure:"gopher"`
	Log        LogConfig     `mapstructure:"log"`
	Cache      CacheConfig   `mapstructure:"cache"`
	HTTP       HTTPConfig    `mapstructure:"http"`
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	v := validate.Struct(c)
	if !v.Validate() {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, v.Errors.Error())
	}
	return nil
}

// YAML renders the configuration with durations in their text form.
func (c *Config) YAML() ([]byte, error) {
	view := map[string]any{
		"timeout":     c.Timeout.String(),
		"known_hosts": c.KnownHosts,
		"gopher": map[string]any{
			"timeout": c.Gopher.Timeout.String(),
		},
		"log": map[string]any{
			"level":  c.Log.Level,
			"format": c.Log.Format,
		},
		"cache": map[string]any{
			"enabled": c.Cache.Enabled,
			"size_mb": c.Cache.SizeMB,
			"ttl":     c.Cache.TTL.String(),
		},
		"http": map[string]any{
			"user_agent": c.HTTP.UserAgent,
		},
	}
	return yaml.Marshal(view)
}

// Dir is the per-user directory holding the config file and the known hosts.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(base, AppName)
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string { return filepath.Join(Dir(), "config.yaml") }

func setDefaults(v *viper.Viper) {
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("known_hosts", filepath.Join(Dir(), "known_hosts.json"))
	v.SetDefault("gopher.timeout", 30*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size_mb", 8)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("http.user_agent", AppName+"/1.0")
}

// Loader owns the viper instance behind a Config so it can be reloaded.
type Loader struct {
	v        *viper.Viper
	path     string
	fromFile bool

	mu  sync.RWMutex
	cfg *Config
}

// Load reads defaults, the YAML file at path (DefaultPath when empty) and
// BARE_* environment overrides, in increasing priority. A missing file is
// not an error.
func Load(path string) (*Loader, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	l := &Loader{v: v, path: path}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		l.fromFile = true
	}

	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}
	l.cfg = cfg
	return l, nil
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Config returns the current configuration.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// Path is the config file location, whether or not it exists.
func (l *Loader) Path() string { return l.path }

// FromFile reports whether a config file was read.
func (l *Loader) FromFile() bool { return l.fromFile }

// Watch reloads the configuration whenever the file changes and passes the
// result to onChange. An invalid edit keeps the previous configuration and
// is reported as the error.
func (l *Loader) Watch(onChange func(*Config, error)) error {
	if !l.fromFile {
		return ErrNoConfigFile
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if ignoreEvent(e) {
			return
		}
		cfg, err := l.decode()
		if err == nil {
			l.mu.Lock()
			l.cfg = cfg
			l.mu.Unlock()
		}
		onChange(cfg, err)
	})
	l.v.WatchConfig()
	return nil
}

func ignoreEvent(e fsnotify.Event) bool {
	return !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create)
}
