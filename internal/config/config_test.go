package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("BEDROCK_MODEL_ID", "")
	t.Setenv("CONTEXT_WINDOW_SIZE", "")
	t.Setenv("DATASET_PATH", "")
	cfg := Load()
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.LLMProvider != "bedrock" {
		t.Fatalf("expected default provider, got %s", cfg.LLMProvider)
	}
	if cfg.BedrockModelID != "anthropic.claude-3-5-haiku-20241022-v1:0" {
		t.Fatalf("expected default bedrock model, got %s", cfg.BedrockModelID)
	}
	if cfg.ContextWindowSize != 6 {
		t.Fatalf("expected default window size, got %d", cfg.ContextWindowSize)
	}
	if cfg.ChatMaxTokens != 512 {
		t.Fatalf("expected default chat max tokens, got %d", cfg.ChatMaxTokens)
	}
	if cfg.ChatTemperature != 0.7 {
		t.Fatalf("expected default chat temperature, got %v", cfg.ChatTemperature)
	}
	if cfg.DatasetPath != "data/escalation_dataset.json" {
		t.Fatalf("expected default dataset path, got %s", cfg.DatasetPath)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LLM_PROVIDER", " Gemini ")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("CONTEXT_WINDOW_SIZE", "10")
	t.Setenv("CHAT_TEMPERATURE", "0.2")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	cfg := Load()
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log level override, got %s", cfg.LogLevel)
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected provider normalized to gemini, got %q", cfg.LLMProvider)
	}
	if cfg.GeminiAPIKey != "test-key" {
		t.Fatalf("expected gemini key override, got %s", cfg.GeminiAPIKey)
	}
	if cfg.ContextWindowSize != 10 {
		t.Fatalf("expected window size override, got %d", cfg.ContextWindowSize)
	}
	if cfg.ChatTemperature != 0.2 {
		t.Fatalf("expected temperature override, got %v", cfg.ChatTemperature)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("expected redis addr override, got %s", cfg.RedisAddr)
	}
}

func TestGetEnvAsIntIgnoresGarbage(t *testing.T) {
	t.Setenv("CONTEXT_WINDOW_SIZE", "not-a-number")
	cfg := Load()
	if cfg.ContextWindowSize != 6 {
		t.Fatalf("expected fallback to default, got %d", cfg.ContextWindowSize)
	}
}
