package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings
type Config struct {
	// Scan configuration
	Scan ScanConfig `yaml:"scan" mapstructure:"scan"`

	// AI analysis configuration
	AI AIConfig `yaml:"ai" mapstructure:"ai"`

	// Report output configuration
	Report ReportConfig `yaml:"report" mapstructure:"report"`
}

type ScanConfig struct {
	Directory string `yaml:"directory" mapstructure:"directory"`
	MaxDepth  int    `yaml:"max_depth" mapstructure:"max_depth"`
	Author    string `yaml:"author" mapstructure:"author"`
	// UseGitUser falls back to `git config user.name` / user.email when
	// no author filter is configured
	UseGitUser bool `yaml:"use_git_user" mapstructure:"use_git_user"`
}

type AIConfig struct {
	Enabled     bool          `yaml:"enabled" mapstructure:"enabled"`
	Provider    string        `yaml:"provider" mapstructure:"provider"` // "openai", "gemini"
	OpenAIKey   string        `yaml:"openai_key" mapstructure:"openai_key"`
	OpenAIModel string        `yaml:"openai_model" mapstructure:"openai_model"`
	GeminiKey   string        `yaml:"gemini_key" mapstructure:"gemini_key"`
	GeminiModel string        `yaml:"gemini_model" mapstructure:"gemini_model"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type ReportConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Directory:  ".",
			MaxDepth:   3,
			UseGitUser: true,
		},
		AI: AIConfig{
			Enabled:     true,
			Provider:    "gemini",
			OpenAIModel: "gpt-4o-mini",
			GeminiModel: "gemini-2.0-flash",
			Timeout:     60 * time.Second,
		},
		Report: ReportConfig{
			OutputDir: "report",
		},
	}
}

// Dir returns the directory holding gitday's own files (~/.gitday)
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gitday"
	}
	return filepath.Join(home, ".gitday")
}

// Load loads configuration from file, environment, and keychain
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	// Defaults are registered per dotted key so AutomaticEnv can bind
	// each of them; struct-valued defaults are invisible to env lookups
	cfg := Default()
	v.SetDefault("scan.directory", cfg.Scan.Directory)
	v.SetDefault("scan.max_depth", cfg.Scan.MaxDepth)
	v.SetDefault("scan.author", cfg.Scan.Author)
	v.SetDefault("scan.use_git_user", cfg.Scan.UseGitUser)
	v.SetDefault("ai.enabled", cfg.AI.Enabled)
	v.SetDefault("ai.provider", cfg.AI.Provider)
	v.SetDefault("ai.openai_key", cfg.AI.OpenAIKey)
	v.SetDefault("ai.openai_model", cfg.AI.OpenAIModel)
	v.SetDefault("ai.gemini_key", cfg.AI.GeminiKey)
	v.SetDefault("ai.gemini_model", cfg.AI.GeminiModel)
	v.SetDefault("ai.timeout", cfg.AI.Timeout)
	v.SetDefault("report.output_dir", cfg.Report.OutputDir)

	v.SetEnvPrefix("GITDAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".gitday")
		v.AddConfigPath(".")
		v.AddConfigPath(Dir())
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine, defaults apply
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}
	homeEnv := filepath.Join(Dir(), ".env")
	if _, err := os.Stat(homeEnv); err == nil {
		godotenv.Load(homeEnv)
	}
}

// applyEnvOverrides applies environment variable overrides.
// Credential precedence: env var (highest), OS keychain, config file.
func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.AI.OpenAIKey = key
	} else if cfg.AI.OpenAIKey == "" {
		km := NewKeyringManager()
		if km.IsAvailable() {
			if k, err := km.GetKey(KeyringOpenAIItem); err == nil && k != "" {
				cfg.AI.OpenAIKey = k
			}
		}
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.AI.GeminiKey = key
	} else if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		cfg.AI.GeminiKey = key
	} else if cfg.AI.GeminiKey == "" {
		km := NewKeyringManager()
		if km.IsAvailable() {
			if k, err := km.GetKey(KeyringGeminiItem); err == nil && k != "" {
				cfg.AI.GeminiKey = k
			}
		}
	}

	if provider := os.Getenv("GITDAY_AI_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.AI.OpenAIModel = model
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.AI.GeminiModel = model
	}
	if timeout := os.Getenv("GITDAY_AI_TIMEOUT_SECONDS"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil && secs > 0 {
			cfg.AI.Timeout = time.Duration(secs) * time.Second
		}
	}

	if author := os.Getenv("GITDAY_AUTHOR"); author != "" {
		cfg.Scan.Author = author
	}
	if dir := os.Getenv("GITDAY_OUTPUT_DIR"); dir != "" {
		cfg.Report.OutputDir = expandPath(dir)
	}
	if depth := os.Getenv("GITDAY_MAX_DEPTH"); depth != "" {
		if d, err := strconv.Atoi(depth); err == nil && d > 0 {
			cfg.Scan.MaxDepth = d
		}
	}
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// Credential returns the API key for the configured provider
func (c *Config) Credential() string {
	switch c.AI.Provider {
	case "openai":
		return c.AI.OpenAIKey
	case "gemini":
		return c.AI.GeminiKey
	}
	return ""
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("scan", c.Scan)
	v.Set("ai", c.AI)
	v.Set("report", c.Report)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
