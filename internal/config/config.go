// Package config loads scanner settings from defaults, an optional YAML file,
// a .env file and SCANNER_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/statement-scanner/internal/models"
	"github.com/insightdelivered/statement-scanner/internal/parser"
)

// LocaleAuto asks the parser to pick the locale from the text.
const LocaleAuto = "auto"

// Known OCR provider names, in the order they are tried by default.
const (
	ProviderVision    = "vision"
	ProviderGemini    = "gemini"
	ProviderTesseract = "tesseract"
)

// Config is the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Parser struct {
		Locale     string            `mapstructure:"locale" yaml:"locale"`
		Heuristics parser.Heuristics `mapstructure:"heuristics" yaml:"heuristics"`
	} `mapstructure:"parser" yaml:"parser"`

	OCR struct {
		Providers         []string `mapstructure:"providers" yaml:"providers"`
		TimeoutSeconds    int      `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		RequestsPerMinute int      `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
		Vision            struct {
			APIKey string `mapstructure:"api_key" yaml:"-"`
		} `mapstructure:"vision" yaml:"vision"`
		Gemini struct {
			APIKey string `mapstructure:"api_key" yaml:"-"`
			Model  string `mapstructure:"model" yaml:"model"`
		} `mapstructure:"gemini" yaml:"gemini"`
		Tesseract struct {
			Language string `mapstructure:"language" yaml:"language"`
		} `mapstructure:"tesseract" yaml:"tesseract"`
	} `mapstructure:"ocr" yaml:"ocr"`

	Server struct {
		Addr        string `mapstructure:"addr" yaml:"addr"`
		BodyLimitMB int    `mapstructure:"body_limit_mb" yaml:"body_limit_mb"`
	} `mapstructure:"server" yaml:"server"`

	Categories struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"categories" yaml:"categories"`
}

// Load reads the configuration. When file is empty, config.yaml is looked up
// in $HOME/.statement-scanner and the working directory; a missing file is
// not an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	if err := setDefaults(v); err != nil {
		return nil, err
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.statement-scanner")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SCANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Provider keys are commonly exported without the prefix.
	if err := v.BindEnv("ocr.vision.api_key", "SCANNER_OCR_VISION_API_KEY", "GOOGLE_VISION_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding vision api key: %w", err)
	}
	if err := v.BindEnv("ocr.gemini.api_key", "SCANNER_OCR_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding gemini api key: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	for i, p := range cfg.OCR.Providers {
		cfg.OCR.Providers[i] = strings.ToLower(strings.TrimSpace(p))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadEnv loads a .env file into the process environment. A missing file is
// ignored; variables already set win over the file.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) error {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("parser.locale", LocaleAuto)
	heuristics, err := heuristicDefaults()
	if err != nil {
		return err
	}
	for key, value := range heuristics {
		v.SetDefault("parser.heuristics."+key, value)
	}

	v.SetDefault("ocr.providers", []string{ProviderVision, ProviderGemini, ProviderTesseract})
	v.SetDefault("ocr.timeout_seconds", 30)
	v.SetDefault("ocr.requests_per_minute", 60)
	v.SetDefault("ocr.vision.api_key", "")
	v.SetDefault("ocr.gemini.api_key", "")
	v.SetDefault("ocr.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ocr.tesseract.language", "nor+eng")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.body_limit_mb", 20)

	v.SetDefault("categories.file", "categories.yaml")
	return nil
}

// heuristicDefaults flattens parser.DefaultHeuristics into viper keys so every
// field can be overridden from the file or the environment.
func heuristicDefaults() (map[string]any, error) {
	raw, err := yaml.Marshal(parser.DefaultHeuristics())
	if err != nil {
		return nil, fmt.Errorf("encoding default heuristics: %w", err)
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding default heuristics: %w", err)
	}
	return out, nil
}

// Validate checks values that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", c.Log.Format)
	}

	if c.Parser.Locale != LocaleAuto {
		if _, ok := parser.ProfileFor(models.Locale(c.Parser.Locale)); !ok {
			return fmt.Errorf("parser.locale must be %q or one of %v, got %q", LocaleAuto, parser.Locales(), c.Parser.Locale)
		}
	}
	if err := c.Parser.Heuristics.Validate(); err != nil {
		return fmt.Errorf("parser.heuristics: %w", err)
	}

	for _, p := range c.OCR.Providers {
		switch p {
		case ProviderVision, ProviderGemini, ProviderTesseract:
		default:
			return fmt.Errorf("unknown ocr provider %q", p)
		}
	}
	if c.OCR.TimeoutSeconds < 1 || c.OCR.TimeoutSeconds > 300 {
		return fmt.Errorf("ocr.timeout_seconds must be between 1 and 300, got: %d", c.OCR.TimeoutSeconds)
	}

	if c.OCR.RequestsPerMinute < 0 || c.OCR.RequestsPerMinute > 1000 {
		return fmt.Errorf("ocr.requests_per_minute must be between 0 and 1000, got: %d", c.OCR.RequestsPerMinute)
	}

	if c.Server.BodyLimitMB < 1 {
		return fmt.Errorf("server.body_limit_mb must be positive, got: %d", c.Server.BodyLimitMB)
	}
	return nil
}

// DetectLocale reports whether the locale should be detected per document.
func (c *Config) DetectLocale() bool {
	return c.Parser.Locale == LocaleAuto
}
