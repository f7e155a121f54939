// Package config is the tgscout configuration file, tgscout.json5.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"tgscout/internal/report"
	"tgscout/internal/scrapers/tgstat"
	"tgscout/lib/configutil"
)

const FileName = "tgscout.json5"

type Crawl struct {
	MaxPages          int     `json:"max_pages"`
	DelayMs           int     `json:"delay_ms"`
	ThresholdPercent  float64 `json:"threshold_percent"`
	APIBaseURL        string  `json:"api_base_url"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	UserAgent         string  `json:"user_agent"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`
	// DumpDir is where every http exchange is written to when set.
	DumpDir string `json:"dump_dir"`
}

func (c Crawl) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}

func (c Crawl) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type Output struct {
	CSVPath string `json:"csv_path"`
	Top     int    `json:"top"`
}

type Store struct {
	// DSN is a sqlite path or a libsql url, empty disables the history.
	DSN string `json:"dsn"`
}

type Telegram struct {
	Enabled    bool   `json:"enabled"`
	Token      string `json:"token"`
	ChatID     string `json:"chat_id"`
	APIBaseURL string `json:"api_base_url"`
}

type Email struct {
	Enabled  bool     `json:"enabled"`
	Server   string   `json:"server"`
	Port     int      `json:"port"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	From     string   `json:"from"`
	To       []string `json:"to"`
}

type Config struct {
	Crawl    Crawl    `json:"crawl"`
	Output   Output   `json:"output"`
	Store    Store    `json:"store"`
	Telegram Telegram `json:"telegram"`
	Email    Email    `json:"email"`
}

func Default() Config {
	return Config{
		Crawl: Crawl{
			MaxPages:         50,
			DelayMs:          int(tgstat.DefaultDelay / time.Millisecond),
			ThresholdPercent: 20,
			APIBaseURL:       tgstat.DefaultAPIBaseURL,
			TimeoutSeconds:   int(tgstat.DefaultTimeout / time.Second),
			UserAgent:        tgstat.DefaultUserAgent,
		},
		Output: Output{
			CSVPath: report.DefaultCSVPath,
			Top:     10,
		},
		Email: Email{
			Port: 587,
		},
	}
}

// Load reads the configuration at path over the defaults, keys missing from the file keep
// their default. An empty path searches for FileName from the working directory upwards, and
// not finding it is not an error.
func Load(path string) (Config, string, error) {
	if path != "" {
		out, err := configutil.ReadConfigOnto(path, Default())
		if err != nil {
			return Config{}, "", fmt.Errorf("read config %s: %w", path, err)
		}
		return out, path, nil
	}

	out, path, err := configutil.ReadRecursivelyOnto(FileName, Default())
	if errors.Is(err, os.ErrNotExist) {
		return Default(), "", nil
	}
	if err != nil {
		return Config{}, "", fmt.Errorf("read config: %w", err)
	}
	return out, path, nil
}

// Validate reports every invalid value at once.
func (c Config) Validate() error {
	var errs []error
	if c.Crawl.MaxPages < 1 {
		errs = append(errs, fmt.Errorf("crawl.max_pages must be at least 1, got %d", c.Crawl.MaxPages))
	}
	if c.Crawl.DelayMs < 0 {
		errs = append(errs, fmt.Errorf("crawl.delay_ms must not be negative"))
	}
	if c.Crawl.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("crawl.requests_per_second must not be negative"))
	}
	if c.Telegram.Enabled && (c.Telegram.Token == "" || c.Telegram.ChatID == "") {
		errs = append(errs, fmt.Errorf("telegram.token and telegram.chat_id are required when telegram is enabled"))
	}
	if c.Email.Enabled && (c.Email.Server == "" || len(c.Email.To) == 0) {
		errs = append(errs, fmt.Errorf("email.server and email.to are required when email is enabled"))
	}
	return errors.Join(errs...)
}
