package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Defaults for optional settings.
const (
	DefaultReportPath = "output.html"
	DefaultSMTPHost   = "smtp.gmail.com"
	DefaultSMTPPort   = 587
	DefaultScheduleAt = "08:00"
)

// Config holds the application configuration. Environment variables take
// precedence over file configuration.
type Config struct {
	SerpAPIKey      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GoogleAPIKey    string
	DeepSeekAPIKey  string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	Recipient    string

	ReportPath string
	RunsDir    string
	ScheduleAt string
	Query      string

	DefaultAdapter string
	DefaultModel   string

	ConfigDir string
}

// FileConfig represents the structure of <config-dir>/config.yaml.
type FileConfig struct {
	APIKeys struct {
		SerpAPI   string `yaml:"serpapi"`
		OpenAI    string `yaml:"openai"`
		Anthropic string `yaml:"anthropic"`
		Google    string `yaml:"google"`
		DeepSeek  string `yaml:"deepseek"`
	} `yaml:"api_keys"`
	Mail struct {
		Host      string `yaml:"host"`
		Port      int    `yaml:"port"`
		Username  string `yaml:"username"`
		Password  string `yaml:"password"`
		Recipient string `yaml:"recipient"`
	} `yaml:"mail"`
	Report struct {
		Path    string `yaml:"path"`
		RunsDir string `yaml:"runs_dir"`
	} `yaml:"report"`
	Schedule struct {
		At string `yaml:"at"`
	} `yaml:"schedule"`
	Pipeline struct {
		Adapter string `yaml:"adapter"`
		Model   string `yaml:"model"`
		Query   string `yaml:"query"`
	} `yaml:"pipeline"`
}

// Load reads configuration from the config file and environment variables.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	fileConfig := loadFileConfig(filepath.Join(configDir, "config.yaml"))

	cfg := &Config{
		SerpAPIKey:      getEnvOrDefault("SERPAPI_API_KEY", fileConfig.APIKeys.SerpAPI),
		OpenAIAPIKey:    getEnvOrDefault("OPENAI_API_KEY", fileConfig.APIKeys.OpenAI),
		AnthropicAPIKey: getEnvOrDefault("ANTHROPIC_API_KEY", fileConfig.APIKeys.Anthropic),
		GoogleAPIKey:    getEnvOrDefault("GOOGLE_API_KEY", fileConfig.APIKeys.Google),
		DeepSeekAPIKey:  getEnvOrDefault("DEEPSEEK_API_KEY", fileConfig.APIKeys.DeepSeek),

		SMTPHost:     getEnvOrDefault("SMTP_HOST", fileConfig.Mail.Host),
		SMTPUsername: getEnvOrDefault("SMTP_USERNAME", fileConfig.Mail.Username),
		SMTPPassword: getEnvOrDefault("SMTP_PASSWORD", fileConfig.Mail.Password),
		Recipient:    getEnvOrDefault("REPORT_RECIPIENT", fileConfig.Mail.Recipient),

		ReportPath: getEnvOrDefault("REPORT_PATH", fileConfig.Report.Path),
		RunsDir:    getEnvOrDefault("RUNS_DIR", fileConfig.Report.RunsDir),
		ScheduleAt: getEnvOrDefault("SCHEDULE_AT", fileConfig.Schedule.At),
		Query:      getEnvOrDefault("SEARCH_QUERY", fileConfig.Pipeline.Query),

		DefaultAdapter: getEnvOrDefault("LLM_ADAPTER", fileConfig.Pipeline.Adapter),
		DefaultModel:   getEnvOrDefault("LLM_MODEL", fileConfig.Pipeline.Model),

		ConfigDir: configDir,
	}

	cfg.SMTPPort = fileConfig.Mail.Port
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", v, err)
		}
		cfg.SMTPPort = port
	}

	if cfg.SMTPHost == "" {
		cfg.SMTPHost = DefaultSMTPHost
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = DefaultSMTPPort
	}
	if cfg.ReportPath == "" {
		cfg.ReportPath = DefaultReportPath
	}
	if cfg.ScheduleAt == "" {
		cfg.ScheduleAt = DefaultScheduleAt
	}

	return cfg, nil
}

// HasAdapter returns true if the API key for the given adapter is configured.
func (c *Config) HasAdapter(name string) bool {
	switch name {
	case "openai":
		return c.OpenAIAPIKey != ""
	case "anthropic":
		return c.AnthropicAPIKey != ""
	case "google":
		return c.GoogleAPIKey != ""
	case "deepseek":
		return c.DeepSeekAPIKey != ""
	default:
		return false
	}
}

// RequireSearch fails when the search provider credential is missing.
func (c *Config) RequireSearch() error {
	if c.SerpAPIKey == "" {
		return fmt.Errorf("SERPAPI_API_KEY not found in environment. Please add it")
	}
	return nil
}

// RequireLLM fails unless at least one LLM provider credential is present.
func (c *Config) RequireLLM() error {
	for _, name := range []string{"openai", "anthropic", "google", "deepseek"} {
		if c.HasAdapter(name) {
			return nil
		}
	}
	return fmt.Errorf("no LLM API key found: set OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY, or DEEPSEEK_API_KEY")
}

// RequireMail fails when any outbound mail setting needed for dispatch is
// missing, naming the variable.
func (c *Config) RequireMail() error {
	if c.SMTPUsername == "" {
		return fmt.Errorf("SMTP_USERNAME not found in environment. Please add it")
	}
	if c.SMTPPassword == "" {
		return fmt.Errorf("SMTP_PASSWORD not found in environment. Please add it")
	}
	if c.Recipient == "" {
		return fmt.Errorf("REPORT_RECIPIENT not found in environment. Please add it")
	}
	return nil
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, cfg)
	return cfg
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".analyst-bot")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
