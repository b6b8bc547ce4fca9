// Package config loads service and CLI settings from defaults, an optional
// config file, a .env file and STATEMENT_OCR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. STATEMENT_OCR_SERVER_PORT.
const EnvPrefix = "STATEMENT_OCR"

// DefaultWhitelist restricts tesseract to digits, Latin letters with French
// accents, the euro sign and the separators seen in amounts and dates.
const DefaultWhitelist = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZàâäéèêëïîôöùûüÿçÀÂÄÉÈÊËÏÎÔÖÙÛÜŸÇ€.,-: "

// Extraction modes.
const (
	ModeOCR  = "ocr"
	ModeText = "text"
	ModeAuto = "auto"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	OCR     OCRConfig     `mapstructure:"ocr"`
	Extract ExtractConfig `mapstructure:"extract"`
	Parser  ParserConfig  `mapstructure:"parser"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MaxUploadMB int    `mapstructure:"max_upload_mb"`
}

// Addr returns host:port for the listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MaxUploadBytes returns the upload limit in bytes.
func (s ServerConfig) MaxUploadBytes() int {
	return s.MaxUploadMB * 1024 * 1024
}

type OCRConfig struct {
	Language  string `mapstructure:"language"`
	DPI       int    `mapstructure:"dpi"`
	FirstPage int    `mapstructure:"first_page"`
	LastPage  int    `mapstructure:"last_page"`
	PSM       int    `mapstructure:"psm"`
	Whitelist string `mapstructure:"whitelist"`
	Workers   int    `mapstructure:"workers"`
}

type ExtractConfig struct {
	Mode string `mapstructure:"mode"`
}

type ParserConfig struct {
	Locale     string `mapstructure:"locale"`
	LocaleFile string `mapstructure:"locale_file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.max_upload_mb", 16)

	v.SetDefault("ocr.language", "fra")
	v.SetDefault("ocr.dpi", 200)
	v.SetDefault("ocr.first_page", 1)
	v.SetDefault("ocr.last_page", 5)
	v.SetDefault("ocr.psm", 6)
	v.SetDefault("ocr.whitelist", DefaultWhitelist)
	v.SetDefault("ocr.workers", 2)

	v.SetDefault("extract.mode", ModeOCR)

	v.SetDefault("parser.locale", "fr")
	v.SetDefault("parser.locale_file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads configuration. path may be empty, in which case only defaults,
// .env and the environment are used. A missing .env is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Extract.Mode {
	case ModeOCR, ModeText, ModeAuto:
	default:
		return fmt.Errorf("extract.mode must be ocr, text or auto, got %q", c.Extract.Mode)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	if c.OCR.DPI < 50 {
		return fmt.Errorf("ocr.dpi too low: %d", c.OCR.DPI)
	}
	if c.OCR.FirstPage < 1 || c.OCR.LastPage < c.OCR.FirstPage {
		return fmt.Errorf("ocr page window %d-%d is invalid", c.OCR.FirstPage, c.OCR.LastPage)
	}
	if c.OCR.Workers < 1 {
		return fmt.Errorf("ocr.workers must be positive, got %d", c.OCR.Workers)
	}
	return nil
}
