// Package config carga la configuración del server y del CLI: defaults,
// después un YAML opcional y por último variables de entorno.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"baby-care-log/internal/platform/logger"

	"gopkg.in/yaml.v3"
)

// Duration acepta strings tipo "200ms" o "5s" en el YAML.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", node.Line, s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Log    LogConfig    `yaml:"log"`
	Auth   AuthConfig   `yaml:"auth"`
	Client ClientConfig `yaml:"client"`
}

type ServerConfig struct {
	Port            string   `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

type DBConfig struct {
	// DSN vacío = repos in-memory.
	DSN string `yaml:"dsn"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	App    string `yaml:"app"`
}

// AuthConfig: tokens estáticos token -> userID. Sin tokens el server queda en
// modo dev (header X-Debug-User-ID).
type AuthConfig struct {
	Tokens map[string]string `yaml:"tokens"`
}

type ClientConfig struct {
	Server  string   `yaml:"server"`
	User    string   `yaml:"user"`
	Token   string   `yaml:"token"`
	Profile string   `yaml:"profile"`
	Timeout Duration `yaml:"timeout"`

	GridWindow    Duration `yaml:"grid_window"`
	SuggestWindow Duration `yaml:"suggest_window"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     Duration(5 * time.Second),
			WriteTimeout:    Duration(10 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			App:    "baby-care-log",
		},
		Client: ClientConfig{
			Server:        "http://localhost:8080",
			Timeout:       Duration(10 * time.Second),
			GridWindow:    Duration(200 * time.Millisecond),
			SuggestWindow: Duration(500 * time.Millisecond),
		},
	}
}

// Load arma la config desde path (o CONFIG_FILE si path está vacío) y el
// entorno del proceso.
func Load(path string) (Config, error) {
	return LoadWith(path, os.LookupEnv)
}

// LoadWith es Load con un lookup de entorno inyectable (tests).
func LoadWith(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) == "" {
		path, _ = lookup("CONFIG_FILE")
	}
	if path = strings.TrimSpace(path); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		defer f.Close()
		if err := decode(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}

	applyEnv(&cfg, lookup)
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set("PORT", &cfg.Server.Port)
	set("DB_DSN", &cfg.DB.DSN)
	set("LOG_LEVEL", &cfg.Log.Level)
	set("LOG_FORMAT", &cfg.Log.Format)
	set("APP_NAME", &cfg.Log.App)
	set("BABYLOG_SERVER", &cfg.Client.Server)
	set("BABYLOG_USER", &cfg.Client.User)
	set("BABYLOG_TOKEN", &cfg.Client.Token)
	set("BABYLOG_PROFILE", &cfg.Client.Profile)
}

func (s ServerConfig) Addr() string {
	return ":" + strings.TrimPrefix(s.Port, ":")
}

// Logger construye el logger de la plataforma con esta config.
func (l LogConfig) Logger(w io.Writer) logger.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(l.Level),
		Format: logger.ParseFormat(l.Format),
		App:    l.App,
		Writer: w,
	})
}
