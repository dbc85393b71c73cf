package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`

	LLMGatewayURL string `yaml:"llm_gateway_url"`
	LLMAPIKey     string `yaml:"llm_api_key"`
	LLMModel      string `yaml:"llm_model"`
	UseMockLLM    bool   `yaml:"use_mock_llm"`

	UnitRate      float64 `yaml:"unit_rate"`
	PageSize      int     `yaml:"page_size"`
	EnrichWorkers int     `yaml:"enrich_workers"`

	Port string `yaml:"port"`
}

// Load reads config.yaml (or CONFIG_PATH), applies env overrides and
// defaults, and validates. A .env file is honored first so local runs can
// keep secrets out of the shell.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", configPath, err)
		}
	}

	// Env vars override YAML values
	envOverride(&cfg.MongoURI, "MONGO_URI")
	envOverride(&cfg.MongoDatabase, "MONGO_DATABASE")
	envOverride(&cfg.MongoCollection, "MONGO_COLLECTION")
	envOverride(&cfg.LLMGatewayURL, "LLM_GATEWAY_URL")
	envOverride(&cfg.LLMAPIKey, "LLM_API_KEY")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.Port, "PORT")
	if err := envOverrideFloat(&cfg.UnitRate, "UNIT_RATE"); err != nil {
		return Config{}, err
	}
	if err := envOverrideInt(&cfg.PageSize, "PAGE_SIZE"); err != nil {
		return Config{}, err
	}
	if err := envOverrideInt(&cfg.EnrichWorkers, "ENRICH_WORKERS"); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("USE_MOCK_LLM"); v != "" {
		cfg.UseMockLLM = v == "true" || v == "1"
	}

	// Defaults
	if cfg.UnitRate == 0 {
		cfg.UnitRate = 0.50
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = 25
	}
	if cfg.EnrichWorkers == 0 {
		cfg.EnrichWorkers = 4
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = "gpt-4o-mini"
	}

	if cfg.UnitRate < 0 {
		return Config{}, fmt.Errorf("unit_rate must be >= 0, got %f", cfg.UnitRate)
	}
	if cfg.PageSize < 1 {
		return Config{}, fmt.Errorf("page_size must be >= 1, got %d", cfg.PageSize)
	}
	if cfg.EnrichWorkers < 1 {
		return Config{}, fmt.Errorf("enrich_workers must be >= 1, got %d", cfg.EnrichWorkers)
	}
	if cfg.MongoURI == "" {
		return Config{}, fmt.Errorf("mongo_uri is required (config.yaml or MONGO_URI)")
	}
	if cfg.MongoDatabase == "" || cfg.MongoCollection == "" {
		return Config{}, fmt.Errorf("mongo_database and mongo_collection are required")
	}
	if !cfg.UseMockLLM && cfg.LLMGatewayURL != "" && cfg.LLMAPIKey == "" {
		return Config{}, fmt.Errorf("llm_api_key is required when llm_gateway_url is set")
	}

	return cfg, nil
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideFloat(field *float64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}
