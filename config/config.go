package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config aggregates all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	AI       AIConfig       `yaml:"ai"`
	Tools    ToolsConfig    `yaml:"tools"`
	Database DatabaseConfig `yaml:"database"`
}

type ServerConfig struct {
	Port string `yaml:"port" env:"PORT" env-default:"8000"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type DatasetConfig struct {
	Path string `yaml:"path" env:"DATASET_PATH" env-default:"dataset/building_413_data.csv"`
}

type AIConfig struct {
	// Plugin selects the agent model backend: ollama, gemini or openai.
	Plugin           string        `yaml:"plugin" env:"AI_PLUGIN" env-default:"ollama"`
	AgentTimeout     time.Duration `yaml:"agent_timeout" env:"AGENT_TIMEOUT" env-default:"30s"`
	NarrativeTimeout time.Duration `yaml:"narrative_timeout" env:"NARRATIVE_TIMEOUT" env-default:"60s"`
	Gemini           GeminiConfig  `yaml:"gemini"`
	Ollama           OllamaConfig  `yaml:"ollama"`
	OpenAI           OpenAIConfig  `yaml:"openai"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model  string `yaml:"model" env:"GEMINI_MODEL" env-default:"gemini-2.5-flash"`
}

type OllamaConfig struct {
	Model   string `yaml:"model" env:"OLLAMA_MODEL" env-default:"qwen3:4b"`
	BaseURL string `yaml:"base_url" env:"OLLAMA_BASE_URL" env-default:"http://localhost:11434"`
}

// OpenAIConfig targets any OpenAI-compatible chat completions endpoint.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1/"`
	Model   string `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
}

type ToolsConfig struct {
	// RemoteURL points at a streamable-HTTP tool server. Empty means tools
	// run in-process.
	RemoteURL  string        `yaml:"remote_url" env:"TOOLS_REMOTE_URL"`
	CatalogTTL time.Duration `yaml:"catalog_ttl" env:"TOOLS_CATALOG_TTL" env-default:"5m"`
}

type DatabaseConfig struct {
	Driver       string        `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
	DSN          string        `yaml:"dsn" env:"DB_DSN" env-default:"ecochat.db"`
	NarrativeTTL time.Duration `yaml:"narrative_ttl" env:"NARRATIVE_CACHE_TTL" env-default:"1h"`
}

// Load reads configuration from config.yaml and environment variables
// Priority: Env Vars > Config File > Defaults
func Load() (*Config, error) {
	return LoadFile("config.yaml")
}

// LoadFile is Load with an explicit config path. A .env file in the working
// directory is applied to the environment first when present.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	err := cleanenv.ReadConfig(path, &cfg)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env config: %w", err)
		}
	}

	return &cfg, nil
}
