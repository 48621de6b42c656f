package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/agentify-dev/agentify/internal/llm"
	"github.com/agentify-dev/agentify/internal/steering"
	"github.com/agentify-dev/agentify/internal/telemetry"
	"github.com/agentify-dev/agentify/internal/wizard"
	"github.com/agentify-dev/agentify/store"
	"github.com/agentify-dev/agentify/types"
)

const (
	configName = "config"
	envPrefix  = "AGENTIFY"
)

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// validate caches struct info across validations.
var validate = validator.New()

// InitConfig reads the config file and environment into GlobalAppConfig.
func InitConfig() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix) // e.g. AGENTIFY_LLM_PROVIDER
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfgFileFlag := viper.GetString("config")
	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		// Workspace config first, then a user-level fallback.
		viper.AddConfigPath(store.StateDirName)
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, store.StateDirName))
		}
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFileFlag != "" {
				fmt.Fprintln(os.Stderr, "Error: specified config file not found:", cfgFileFlag)
			}
		} else {
			fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
		}
	}

	viper.SetDefault("project.rootDir", ".")
	viper.SetDefault("project.steeringDir", filepath.Join(store.StateDirName, "steering"))
	viper.SetDefault("project.templatesDir", "")

	viper.SetDefault("llm.provider", string(llm.DefaultProvider))
	viper.SetDefault("llm.model", "")
	viper.SetDefault("llm.apiKey", "")
	viper.SetDefault("llm.baseURL", "")
	viper.SetDefault("llm.temperature", 0.7)

	viper.SetDefault("history.limit", wizard.DefaultHistoryLimit)

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.endpoint", "")

	if err := viper.Unmarshal(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling config: %s\n", err)
		os.Exit(1)
	}

	if err := validate.Struct(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation error: %s\n", err)
		os.Exit(1)
	}

	if err := telemetry.Init(GlobalAppConfig.Telemetry.Endpoint, version, !GlobalAppConfig.Telemetry.Enabled); err != nil && viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Telemetry disabled: %v\n", err)
	}
}

// GetConfig returns the populated application configuration.
func GetConfig() *types.AppConfig {
	return &GlobalAppConfig
}

// GetLLMConfig maps the app configuration onto the provider config.
func GetLLMConfig() llm.Config {
	cfg := GetConfig()
	return llm.Config{
		Provider:    llm.Provider(cfg.LLM.Provider),
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temp,
	}
}

// GetStateStore builds the wizard state store for the workspace.
func GetStateStore() *store.StateStore {
	cfg := GetConfig()
	return store.NewStateStore(afero.NewOsFs(), cfg.Project.RootDir, cfg.History.Limit)
}

// GetSteeringWriter builds the writer targeting the steering directory.
func GetSteeringWriter() *steering.Writer {
	cfg := GetConfig()
	dir := cfg.Project.SteeringDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cfg.Project.RootDir, dir)
	}
	return steering.NewWriter(afero.NewOsFs(), dir)
}
