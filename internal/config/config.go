package config

import (
	"math/rand"
	"os"
	"strconv"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/tatianab/scottfree/internal/catalog"
	"github.com/tatianab/scottfree/internal/engine"
	"github.com/tatianab/scottfree/internal/loader"
	"github.com/tatianab/scottfree/internal/models"
)

// Config holds the application configuration.
type Config struct {
	// GamePath is the game file to play.
	GamePath string `yaml:"game"`
	// SaveDir holds the named save slots.
	SaveDir string `yaml:"save_dir"`
	// CatalogPath names a YAML catalog whose recipes are tried after the
	// built-in ones.
	CatalogPath string `yaml:"catalog"`

	LogLevel string `yaml:"log_level"`
	// LogFile receives the log while the terminal UI owns the screen.
	LogFile string `yaml:"log_file"`

	// Seed fixes the random source of implicit actions. Zero means seed
	// from the clock.
	Seed int64 `yaml:"seed"`

	YouAre          bool `yaml:"you_are"`
	ScottLight      bool `yaml:"scott_light"`
	PrehistoricLamp bool `yaml:"prehistoric_lamp"`

	GeminiAPIKey string `yaml:"-"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		SaveDir:  models.SaveDir,
		LogLevel: "warning",
	}
}

// LoadConfig loads the configuration. The YAML file named by SCOTT_CONFIG,
// if any, is read first; environment variables override it.
func LoadConfig() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("SCOTT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parsing config file %s", path)
		}
	}

	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	str("SCOTT_GAME", &cfg.GamePath)
	str("SCOTT_SAVE_DIR", &cfg.SaveDir)
	str("SCOTT_CATALOG", &cfg.CatalogPath)
	str("SCOTT_LOG_LEVEL", &cfg.LogLevel)
	str("SCOTT_LOG_FILE", &cfg.LogFile)
	str("GEMINI_API_KEY", &cfg.GeminiAPIKey)

	for name, dst := range map[string]*bool{
		"SCOTT_YOU_ARE":          &cfg.YouAre,
		"SCOTT_SCOTT_LIGHT":      &cfg.ScottLight,
		"SCOTT_PREHISTORIC_LAMP": &cfg.PrehistoricLamp,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", name)
		}
		*dst = b
	}

	if v := os.Getenv("SCOTT_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "SCOTT_SEED")
		}
		cfg.Seed = seed
	}
	return cfg, nil
}

// RequireAPIKey checks that a Gemini API key is set.
func (c *Config) RequireAPIKey() error {
	if c.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY environment variable is not set")
	}
	return nil
}

// SetupLogging applies LogLevel and, when LogFile is set, sends the log
// there. The returned function closes the log file.
func (c *Config) SetupLogging() (func(), error) {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{DisableColors: true, FullTimestamp: true})
	if c.LogFile == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "opening log file")
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}, nil
}

// EngineOptions returns the engine options the configuration selects.
func (c *Config) EngineOptions() engine.Options {
	opts := engine.Options{
		YouAre:          c.YouAre,
		ScottLight:      c.ScottLight,
		PrehistoricLamp: c.PrehistoricLamp,
	}
	if c.Seed != 0 {
		opts.Rand = rand.New(rand.NewSource(c.Seed))
	}
	return opts
}

// LoaderOptions returns the loader options the configuration selects.
func (c *Config) LoaderOptions() ([]loader.Option, error) {
	if c.CatalogPath == "" {
		return nil, nil
	}
	extra, err := catalog.Load(c.CatalogPath)
	if err != nil {
		return nil, errors.Wrapf(err, "catalog %s", c.CatalogPath)
	}
	return []loader.Option{loader.WithCatalog(catalog.Default().Extend(extra))}, nil
}
