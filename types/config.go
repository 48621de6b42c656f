// Package types holds shared configuration structures used across commands.
package types

// AppConfig is the root configuration structure, populated by Viper from the
// config file, environment variables, and flags.
type AppConfig struct {
	Verbose   bool            `mapstructure:"verbose"`
	Project   ProjectConfig   `mapstructure:"project"`
	LLM       LLMConfig       `mapstructure:"llm"`
	History   HistoryConfig   `mapstructure:"history"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ProjectConfig describes the on-disk layout of an agentify workspace.
type ProjectConfig struct {
	RootDir      string `mapstructure:"rootDir" validate:"required"`
	SteeringDir  string `mapstructure:"steeringDir" validate:"required"`
	TemplatesDir string `mapstructure:"templatesDir"`
}

// LLMConfig configures the model provider used for all AI calls.
type LLMConfig struct {
	Provider string  `mapstructure:"provider" validate:"required,oneof=openai anthropic gemini ollama"`
	Model    string  `mapstructure:"model"`
	APIKey   string  `mapstructure:"apiKey"`
	BaseURL  string  `mapstructure:"baseURL"`
	Temp     float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
}

// HistoryConfig bounds the persisted conversation history.
type HistoryConfig struct {
	Limit int `mapstructure:"limit" validate:"gte=0"`
}

// TelemetryConfig controls anonymous usage reporting.
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}
