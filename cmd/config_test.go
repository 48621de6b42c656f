package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentify-dev/agentify/internal/llm"
	"github.com/agentify-dev/agentify/types"
)

func TestGetLLMConfigMapsAppConfig(t *testing.T) {
	orig := GlobalAppConfig
	defer func() { GlobalAppConfig = orig }()

	GlobalAppConfig = types.AppConfig{
		LLM: types.LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			APIKey:   "sk-test",
			BaseURL:  "https://proxy.internal",
			Temp:     0.3,
		},
	}

	cfg := GetLLMConfig()
	assert.Equal(t, llm.Provider("openai"), cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "https://proxy.internal", cfg.BaseURL)
	assert.Equal(t, 0.3, cfg.Temperature)
}

func TestGetSteeringWriterResolvesRelativeDir(t *testing.T) {
	orig := GlobalAppConfig
	defer func() { GlobalAppConfig = orig }()

	GlobalAppConfig = types.AppConfig{
		Project: types.ProjectConfig{
			RootDir:     "/tmp/workspace",
			SteeringDir: filepath.Join(".agentify", "steering"),
		},
	}

	w := GetSteeringWriter()
	require.NotNil(t, w)
	assert.Equal(t, filepath.Join("/tmp/workspace", ".agentify", "steering"), w.Dir())
}

func TestGetSteeringWriterKeepsAbsoluteDir(t *testing.T) {
	orig := GlobalAppConfig
	defer func() { GlobalAppConfig = orig }()

	GlobalAppConfig = types.AppConfig{
		Project: types.ProjectConfig{
			RootDir:     "/tmp/workspace",
			SteeringDir: "/srv/steering",
		},
	}

	assert.Equal(t, "/srv/steering", GetSteeringWriter().Dir())
}

func TestAppConfigValidation(t *testing.T) {
	valid := types.AppConfig{
		Project: types.ProjectConfig{RootDir: ".", SteeringDir: ".agentify/steering"},
		LLM:     types.LLMConfig{Provider: "anthropic", Temp: 0.7},
	}
	require.NoError(t, validate.Struct(&valid))

	invalid := valid
	invalid.LLM.Provider = "bedrock"
	assert.Error(t, validate.Struct(&invalid))

	invalid = valid
	invalid.LLM.Temp = 3.5
	assert.Error(t, validate.Struct(&invalid))
}
