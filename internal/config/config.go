package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI    LLMProvider = "openai"
	ProviderYandex    LLMProvider = "yandex"
	ProviderAnthropic LLMProvider = "anthropic"
)

type Config struct {
	// Persona
	AssistantName string `env:"ASSISTANT_NAME" envDefault:"BELLE"`
	Username      string `env:"USERNAME" envDefault:"User"`

	// LLM settings. OpenAI-compatible endpoints (Groq, OpenRouter) go through OPENAI_BASE_URL.
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"llama-3.1-8b-instant"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`
	AnthropicAPIKey  string      `env:"ANTHROPIC_API_KEY"`
	AnthropicModel   string      `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-haiku-latest"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Capability providers
	SerpAPIKey         string `env:"SERPAPI_API_KEY"`
	ApifyAPIKey        string `env:"APIFY_API_KEY"`
	HuggingFaceAPIKey  string `env:"HUGGINGFACE_API_KEY"`
	HFImageModelURL    string `env:"HF_IMAGE_MODEL_URL" envDefault:"https://router.huggingface.co/hf-inference/models/stabilityai/stable-diffusion-xl-base-1.0"`
	HFSummaryModelURL  string `env:"HF_SUMMARY_MODEL_URL" envDefault:"https://api-inference.huggingface.co/models/facebook/bart-large-cnn"`
	GeminiAPIKey       string `env:"GEMINI_API_KEY"`
	GeminiVisionModel  string `env:"GEMINI_VISION_MODEL" envDefault:"gemini-2.5-flash"`
	OpenImages         bool   `env:"OPEN_IMAGES" envDefault:"false"`
	ImageControlFile   string `env:"IMAGE_CONTROL_FILE" envDefault:"Data/ImageGeneration.data"`
	SearchResultsCount int    `env:"SEARCH_RESULTS" envDefault:"5"`

	// Storage
	DataDir            string `env:"DATA_DIR" envDefault:"Data"`
	InteractionLogPath string `env:"INTERACTION_LOG_PATH" envDefault:"logs/interactions.jsonl"`
	BackupDir          string `env:"BACKUP_DIR" envDefault:"Data/backups"`
	BackupSchedule     string `env:"BACKUP_SCHEDULE"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogPath  string `env:"LOG_PATH" envDefault:"logs/belle.log"`
}

// New parses the process environment. Callers load .env beforehand.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// ChatLogPath is the transcript location shared by every memory-aware provider.
func (c *Config) ChatLogPath() string {
	return filepath.Join(c.DataDir, "ChatLog.json")
}

// ImagesDir is where generated images are written.
func (c *Config) ImagesDir() string {
	return filepath.Join(c.DataDir, "images")
}
