package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func setHomeEnv(t *testing.T, home string) {
	t.Helper()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"SERPAPI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GOOGLE_API_KEY", "DEEPSEEK_API_KEY",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "REPORT_RECIPIENT",
		"REPORT_PATH", "RUNS_DIR", "SCHEDULE_AT", "SEARCH_QUERY", "LLM_ADAPTER", "LLM_MODEL",
	} {
		t.Setenv(v, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setHomeEnv(t, t.TempDir())
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ReportPath != DefaultReportPath {
		t.Fatalf("report path = %q, want %q", cfg.ReportPath, DefaultReportPath)
	}
	if cfg.SMTPHost != DefaultSMTPHost || cfg.SMTPPort != DefaultSMTPPort {
		t.Fatalf("smtp defaults wrong: %s:%d", cfg.SMTPHost, cfg.SMTPPort)
	}
	if cfg.ScheduleAt != DefaultScheduleAt {
		t.Fatalf("schedule default = %q", cfg.ScheduleAt)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)
	clearEnv(t)

	configDir := filepath.Join(home, ".analyst-bot")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	data := []byte("api_keys:\n  serpapi: file-serp\n  openai: file-openai\nmail:\n  host: file-host\n  port: 2525\n  recipient: file@example.com\n")
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SERPAPI_API_KEY", "env-serp")
	t.Setenv("SMTP_PORT", "465")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.SerpAPIKey != "env-serp" {
		t.Fatalf("env must win over file, got %q", cfg.SerpAPIKey)
	}
	if cfg.OpenAIAPIKey != "file-openai" {
		t.Fatalf("file value should be used when env is empty, got %q", cfg.OpenAIAPIKey)
	}
	if cfg.SMTPHost != "file-host" || cfg.SMTPPort != 465 {
		t.Fatalf("smtp = %s:%d, want file-host:465", cfg.SMTPHost, cfg.SMTPPort)
	}
	if cfg.Recipient != "file@example.com" {
		t.Fatalf("recipient = %q", cfg.Recipient)
	}
}

func TestRequireErrorsNameTheVariable(t *testing.T) {
	setHomeEnv(t, t.TempDir())
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := cfg.RequireSearch(); err == nil || !strings.Contains(err.Error(), "SERPAPI_API_KEY") {
		t.Fatalf("expected error naming SERPAPI_API_KEY, got %v", err)
	}
	if err := cfg.RequireLLM(); err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected error naming the LLM keys, got %v", err)
	}
	if err := cfg.RequireMail(); err == nil || !strings.Contains(err.Error(), "SMTP_USERNAME") {
		t.Fatalf("expected error naming SMTP_USERNAME, got %v", err)
	}

	cfg.SMTPUsername = "bot@example.com"
	if err := cfg.RequireMail(); err == nil || !strings.Contains(err.Error(), "SMTP_PASSWORD") {
		t.Fatalf("expected error naming SMTP_PASSWORD, got %v", err)
	}
	cfg.SMTPPassword = "secret"
	if err := cfg.RequireMail(); err == nil || !strings.Contains(err.Error(), "REPORT_RECIPIENT") {
		t.Fatalf("expected error naming REPORT_RECIPIENT, got %v", err)
	}
	cfg.Recipient = "reader@example.com"
	if err := cfg.RequireMail(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHasAdapter(t *testing.T) {
	setHomeEnv(t, t.TempDir())
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if !cfg.HasAdapter("openai") {
		t.Fatalf("expected openai adapter to be available")
	}
	if cfg.HasAdapter("anthropic") || cfg.HasAdapter("unknown") {
		t.Fatalf("unexpected adapter availability")
	}
	if err := cfg.RequireLLM(); err != nil {
		t.Fatalf("RequireLLM with openai key: %v", err)
	}
}
