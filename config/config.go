package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultSourceID = "ivproperties"

type Config struct {
	SourceID   string
	Sources    map[string]*SourceConfig
	Fetch      FetchConfig
	Log        LogConfig
	RunLogDSN  string
	Watch      WatchConfig
	Policy     PolicyConfig
	SourcesDir string
}

type FetchConfig struct {
	Timeout   time.Duration
	UserAgent string
}

type LogConfig struct {
	Path     string
	MaxBytes int64
}

type WatchConfig struct {
	Cron     string
	Interval time.Duration
}

// PolicyConfig controls the optional layer wrapped around the fetcher.
// Zero values leave the fetcher as a bare single attempt.
type PolicyConfig struct {
	CacheTTL  time.Duration
	RateLimit time.Duration
}

type SourceConfig struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	BaseURL     string    `yaml:"base_url"`
	SearchParam string    `yaml:"search_param"`
	Selectors   Selectors `yaml:"selectors"`
}

// Selectors holds CSS selectors per field, tried in order until one yields text.
type Selectors struct {
	Card    []string `yaml:"card"`
	Title   []string `yaml:"title"`
	Address []string `yaml:"address"`
	Price   []string `yaml:"price"`
	Beds    []string `yaml:"beds"`
	Baths   []string `yaml:"baths"`
	Link    []string `yaml:"link"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		SourceID: getEnv("HOUSING_SOURCE", DefaultSourceID),
		Sources:  map[string]*SourceConfig{DefaultSourceID: DefaultSource()},
		Fetch: FetchConfig{
			Timeout:   getEnvDuration("FETCH_TIMEOUT", 15*time.Second),
			UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
		},
		Log: LogConfig{
			Path:     getEnv("LOG_PATH", "housing.log"),
			MaxBytes: int64(getEnvInt("LOG_MAX_BYTES", 2*1024*1024)),
		},
		RunLogDSN: os.Getenv("RUN_LOG_DSN"),
		Watch: WatchConfig{
			Cron:     os.Getenv("WATCH_CRON"),
			Interval: getEnvDuration("WATCH_INTERVAL", 0),
		},
		Policy: PolicyConfig{
			CacheTTL:  getEnvDuration("CACHE_TTL", 0),
			RateLimit: time.Duration(getEnvInt("RATE_LIMIT_MS", 0)) * time.Millisecond,
		},
		SourcesDir: getEnv("SOURCES_DIR", "config/sources"),
	}

	if err := cfg.loadSourceConfigs(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Source returns the selected source.
func (c *Config) Source() (*SourceConfig, error) {
	src, ok := c.Sources[c.SourceID]
	if !ok {
		return nil, fmt.Errorf("unknown source: %s", c.SourceID)
	}
	return src, nil
}

func (c *Config) loadSourceConfigs() error {
	entries, err := os.ReadDir(c.SourcesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		path := filepath.Join(c.SourcesDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var src SourceConfig
		if err := yaml.Unmarshal(data, &src); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if err := src.Validate(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		c.Sources[src.ID] = &src
	}

	return nil
}

func (s *SourceConfig) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("source id is required")
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return fmt.Errorf("source %s: bad base_url: %w", s.ID, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("source %s: base_url %q must be absolute", s.ID, s.BaseURL)
	}
	if len(s.Selectors.Card) == 0 {
		return fmt.Errorf("source %s: at least one card selector is required", s.ID)
	}
	return nil
}

// Origin is the scheme and host of the base URL, used to resolve relative links.
func (s *SourceConfig) Origin() string {
	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// DefaultSource describes ivproperties.com. A YAML file with the same id replaces it.
func DefaultSource() *SourceConfig {
	return &SourceConfig{
		ID:          DefaultSourceID,
		Name:        "IV Properties",
		BaseURL:     "https://www.ivproperties.com/",
		SearchParam: "q",
		Selectors: Selectors{
			Card:    []string{".property-listing", ".listing-item", "article.property", ".property"},
			Title:   []string{".property-title", ".listing-title", "h2", "h3"},
			Address: []string{".property-address", ".address", "address"},
			Price:   []string{".property-price", ".price", ".rent"},
			Beds:    []string{".property-beds", ".beds", ".bedrooms"},
			Baths:   []string{".property-baths", ".baths", ".bathrooms"},
			Link:    []string{"a.property-link", "a[href]"},
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
