package orgwatch

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level orgwatch configuration.
type Config struct {
	// CheckInterval is the start-to-start poll cadence. Default: 1 hour.
	CheckInterval time.Duration `yaml:"check_interval"`
	// FetchTimeout bounds each provider API request. Default: 30 seconds.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	GitHub GitHubConfig `yaml:"github"`
	Hub    HubConfig    `yaml:"huggingface"`
	Store  StoreConfig  `yaml:"store"`
	Notify NotifyConfig `yaml:"notify"`
}

// GitHubConfig selects the GitHub organizations to watch.
type GitHubConfig struct {
	Orgs []string `yaml:"orgs"`
	// Token authenticates API requests. Falls back to GITHUB_TOKEN.
	Token string `yaml:"token"`
	// APIBase overrides the API root for GitHub Enterprise or tests.
	APIBase string `yaml:"api_base"`
}

// HubConfig selects the HuggingFace organizations to watch.
type HubConfig struct {
	Orgs []string `yaml:"orgs"`
	// APIBase overrides the API root for mirrors or tests.
	APIBase string `yaml:"api_base"`
}

// StoreConfig selects the snapshot persistence backend.
type StoreConfig struct {
	// Backend is "file" or "sqlite". Default: file.
	Backend string `yaml:"backend"`
	// Dir holds per-organization JSON state files (file backend). Default: data.
	Dir string `yaml:"dir"`
	// Path is the database file (sqlite backend). Default: data/orgwatch.db.
	Path string `yaml:"path"`
}

// NotifyConfig selects the notification sink.
type NotifyConfig struct {
	// Sink is "webhook" or "stdout". Default: stdout when no webhook URL is set.
	Sink string `yaml:"sink"`
	// WebhookURL is the WeChat Work robot endpoint. Falls back to
	// WECHAT_WEBHOOK_URL.
	WebhookURL string `yaml:"webhook_url"`
}

// LoadConfigFile reads a YAML configuration file, applies defaults, and
// fills credentials from the environment where the file leaves them blank.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.CheckInterval <= 0 {
		c.CheckInterval = time.Hour
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 30 * time.Second
	}
	if c.GitHub.Token == "" {
		c.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "file"
	}
	if c.Store.Dir == "" {
		c.Store.Dir = "data"
	}
	if c.Store.Path == "" {
		c.Store.Path = "data/orgwatch.db"
	}
	if c.Notify.WebhookURL == "" {
		c.Notify.WebhookURL = os.Getenv("WECHAT_WEBHOOK_URL")
	}
	if c.Notify.Sink == "" {
		if c.Notify.WebhookURL != "" {
			c.Notify.Sink = "webhook"
		} else {
			c.Notify.Sink = "stdout"
		}
	}
}

// Validate rejects configurations the watcher cannot run with.
func (c *Config) Validate() error {
	if len(c.GitHub.Orgs) == 0 && len(c.Hub.Orgs) == 0 {
		return fmt.Errorf("config: no organizations to watch")
	}
	switch c.Store.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	switch c.Notify.Sink {
	case "stdout":
	case "webhook":
		if c.Notify.WebhookURL == "" {
			return fmt.Errorf("config: webhook sink needs notify.webhook_url or WECHAT_WEBHOOK_URL")
		}
		if u, err := url.Parse(c.Notify.WebhookURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("config: webhook_url must be an http(s) URL")
		}
	default:
		return fmt.Errorf("config: unknown notify sink %q", c.Notify.Sink)
	}
	return nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}
