package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	Env               string
	LogLevel          string
	LLMProvider       string
	AWSRegion         string
	BedrockModelID    string
	GeminiAPIKey      string
	GeminiModelID     string
	ContextWindowSize int
	ChatMaxTokens     int
	ChatTemperature   float64
	DatasetPath       string
	EvalLogDir        string
	MetricsAddr       string
	RedisAddr         string
	RedisPassword     string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LLMProvider:       strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "bedrock"))),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		BedrockModelID:    getEnv("BEDROCK_MODEL_ID", "anthropic.claude-3-5-haiku-20241022-v1:0"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:     getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		ContextWindowSize: getEnvAsInt("CONTEXT_WINDOW_SIZE", 6),
		ChatMaxTokens:     getEnvAsInt("CHAT_MAX_TOKENS", 512),
		ChatTemperature:   getEnvAsFloat("CHAT_TEMPERATURE", 0.7),
		DatasetPath:       getEnv("DATASET_PATH", "data/escalation_dataset.json"),
		EvalLogDir:        getEnv("EVAL_LOG_DIR", "./logs"),
		MetricsAddr:       getEnv("METRICS_ADDR", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
