package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for followrank
type Config struct {
	// Remote follower API
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Crawl state machine settings
	Crawl CrawlConfig `yaml:"crawl" json:"crawl"`

	// In-client retries for transport failures
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Ranking settings
	PageRank PageRankConfig `yaml:"pagerank" json:"pagerank"`

	// Metrics export
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Stored credential selection
	Credentials CredentialsConfig `yaml:"credentials" json:"credentials"`
}

// TwitterConfig holds follower API configuration
type TwitterConfig struct {
	BaseURL   string        `yaml:"base_url" json:"base_url"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	PageSize  int           `yaml:"page_size" json:"page_size"`
}

// CrawlConfig holds crawl configuration
type CrawlConfig struct {
	FollowersDir           string        `yaml:"followers_dir" json:"followers_dir"`
	SeedFile               string        `yaml:"seed_file" json:"seed_file"`
	CheckpointFile         string        `yaml:"checkpoint_file" json:"checkpoint_file"`
	MaxLevel               int           `yaml:"max_level" json:"max_level"`
	MaxFollowersPerAccount int           `yaml:"max_followers_per_account" json:"max_followers_per_account"`
	ShortCooldown          time.Duration `yaml:"short_cooldown" json:"short_cooldown"`
	LongCooldown           time.Duration `yaml:"long_cooldown" json:"long_cooldown"`
	MaxLongCooldown        time.Duration `yaml:"max_long_cooldown" json:"max_long_cooldown"`
}

// RetryConfig holds retry configuration for the API client
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
}

// PageRankConfig holds ranking configuration
type PageRankConfig struct {
	TeleportationRate   float64 `yaml:"teleportation_rate" json:"teleportation_rate"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" json:"similarity_threshold"`
	MaxIterations       int     `yaml:"max_iterations" json:"max_iterations"`
	Workers             int     `yaml:"workers" json:"workers"`
	OutputFile          string  `yaml:"output_file" json:"output_file"`
	Top                 int     `yaml:"top" json:"top"`
}

// MetricsConfig holds metrics export configuration
type MetricsConfig struct {
	Textfile   string `yaml:"textfile" json:"textfile"`
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// CredentialsConfig selects the stored account used for API calls
type CredentialsConfig struct {
	Account string `yaml:"account" json:"account"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			BaseURL:   "https://api.twitter.com/1.1",
			Timeout:   30 * time.Second,
			UserAgent: "followrank/1.0",
			PageSize:  5000,
		},
		Crawl: CrawlConfig{
			FollowersDir:           "followers",
			SeedFile:               "SeedSet.txt",
			CheckpointFile:         "RestartStatusFile.txt",
			MaxLevel:               1,
			MaxFollowersPerAccount: 5000,
			ShortCooldown:          2 * time.Second,
			LongCooldown:           15 * time.Minute,
			MaxLongCooldown:        time.Hour,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			MaxDelay:    30 * time.Second,
		},
		PageRank: PageRankConfig{
			TeleportationRate:   0.1,
			SimilarityThreshold: 0.9999,
			MaxIterations:       75,
			Workers:             0, // 0 means one per CPU
			OutputFile:          "pagerank.csv",
			Top:                 20,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Credentials: CredentialsConfig{
			Account: "default",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if baseURL := os.Getenv("FOLLOWRANK_API_BASE_URL"); baseURL != "" {
		c.Twitter.BaseURL = baseURL
	}
	if dir := os.Getenv("FOLLOWRANK_FOLLOWERS_DIR"); dir != "" {
		c.Crawl.FollowersDir = dir
	}
	if seed := os.Getenv("FOLLOWRANK_SEED_FILE"); seed != "" {
		c.Crawl.SeedFile = seed
	}
	if cp := os.Getenv("FOLLOWRANK_CHECKPOINT_FILE"); cp != "" {
		c.Crawl.CheckpointFile = cp
	}
	if level := os.Getenv("FOLLOWRANK_MAX_LEVEL"); level != "" {
		val, err := strconv.Atoi(level)
		if err != nil {
			errs = append(errs, fmt.Errorf("FOLLOWRANK_MAX_LEVEL: %w", err))
		} else {
			c.Crawl.MaxLevel = val
		}
	}
	if cooldown := os.Getenv("FOLLOWRANK_LONG_COOLDOWN"); cooldown != "" {
		d, err := time.ParseDuration(cooldown)
		if err != nil {
			errs = append(errs, fmt.Errorf("FOLLOWRANK_LONG_COOLDOWN: %w", err))
		} else {
			c.Crawl.LongCooldown = d
		}
	}
	if rate := os.Getenv("FOLLOWRANK_TELEPORTATION_RATE"); rate != "" {
		val, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("FOLLOWRANK_TELEPORTATION_RATE: %w", err))
		} else {
			c.PageRank.TeleportationRate = val
		}
	}
	if out := os.Getenv("FOLLOWRANK_OUTPUT_FILE"); out != "" {
		c.PageRank.OutputFile = out
	}
	if textfile := os.Getenv("FOLLOWRANK_METRICS_TEXTFILE"); textfile != "" {
		c.Metrics.Textfile = textfile
	}
	if addr := os.Getenv("FOLLOWRANK_METRICS_ADDR"); addr != "" {
		c.Metrics.ListenAddr = addr
	}
	if logLevel := os.Getenv("FOLLOWRANK_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if account := os.Getenv("FOLLOWRANK_ACCOUNT"); account != "" {
		c.Credentials.Account = account
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".followrank.yaml",
		".followrank.yml",
		filepath.Join(home, ".config", "followrank", "config.yaml"),
		filepath.Join(home, ".config", "followrank", "config.yml"),
		filepath.Join(home, ".followrank.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. The teleportation rate is
// deliberately not checked here: the ranking engine clamps it.
func (c *Config) Validate() error {
	var errs []error

	if c.Twitter.BaseURL == "" {
		errs = append(errs, errors.New("api base url is required"))
	}
	if c.Twitter.Timeout <= 0 {
		errs = append(errs, errors.New("api timeout must be positive"))
	}
	if c.Twitter.PageSize <= 0 {
		errs = append(errs, errors.New("page size must be positive"))
	}

	if c.Crawl.FollowersDir == "" {
		errs = append(errs, errors.New("followers directory is required"))
	}
	if c.Crawl.SeedFile == "" {
		errs = append(errs, errors.New("seed file is required"))
	}
	if c.Crawl.CheckpointFile == "" {
		errs = append(errs, errors.New("checkpoint file is required"))
	}
	if c.Crawl.MaxLevel < 0 {
		errs = append(errs, errors.New("max level cannot be negative"))
	}
	if c.Crawl.MaxFollowersPerAccount < 0 {
		errs = append(errs, errors.New("max followers per account cannot be negative"))
	}
	if c.Crawl.ShortCooldown < 0 || c.Crawl.LongCooldown < 0 {
		errs = append(errs, errors.New("cooldowns cannot be negative"))
	}
	if c.Crawl.MaxLongCooldown < c.Crawl.LongCooldown {
		errs = append(errs, errors.New("max long cooldown must be at least the long cooldown"))
	}

	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry max attempts must be at least 1"))
	}

	if c.PageRank.SimilarityThreshold <= 0 || c.PageRank.SimilarityThreshold > 1 {
		errs = append(errs, errors.New("similarity threshold must be in (0, 1]"))
	}
	if c.PageRank.MaxIterations <= 0 {
		errs = append(errs, errors.New("max iterations must be positive"))
	}
	if c.PageRank.Workers < 0 {
		errs = append(errs, errors.New("workers cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if maxLevel, ok := flags["max-level"].(int); ok && maxLevel >= 0 {
		c.Crawl.MaxLevel = maxLevel
	}
	if dir, ok := flags["followers-dir"].(string); ok && dir != "" {
		c.Crawl.FollowersDir = dir
	}
	if out, ok := flags["output"].(string); ok && out != "" {
		c.PageRank.OutputFile = out
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".followrank.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
