// Package prompts holds the default prompt templates and the registry that
// resolves them, optionally overridden by files in the project's templates
// directory.
package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Key identifies a specific prompt.
type Key string

const (
	// Wizard step prompts.
	KeyGapFilling   Key = "GapFilling"
	KeyOutcome      Key = "Outcome"
	KeyAgentDesign  Key = "AgentDesign"
	KeyMockData     Key = "MockData"
	KeyDemoStrategy Key = "DemoStrategy"

	// Steering document prompts, one per generated file.
	KeySteeringProduct     Key = "SteeringProduct"
	KeySteeringTech        Key = "SteeringTech"
	KeySteeringStructure   Key = "SteeringStructure"
	KeySteeringCustomer    Key = "SteeringCustomerContext"
	KeySteeringIntegration Key = "SteeringIntegrationLandscape"
	KeySteeringSecurity    Key = "SteeringSecurityPolicies"
	KeySteeringDemo        Key = "SteeringDemoStrategy"
	KeySteeringAgentify    Key = "SteeringAgentifyIntegration"
	KeySteeringCedar       Key = "SteeringCedarPolicies"
)

// promptConfig defines the default content and override filename for a prompt.
type promptConfig struct {
	defaultContent string
	filename       string
}

// promptRegistry maps a Key to its configuration.
var promptRegistry = map[Key]promptConfig{
	KeyGapFilling:   {GapFillingSystemPrompt, "gap_filling_prompt.txt"},
	KeyOutcome:      {OutcomeSystemPrompt, "outcome_prompt.txt"},
	KeyAgentDesign:  {AgentDesignSystemPrompt, "agent_design_prompt.txt"},
	KeyMockData:     {MockDataSystemPrompt, "mock_data_prompt.txt"},
	KeyDemoStrategy: {DemoStrategySystemPrompt, "demo_strategy_prompt.txt"},

	KeySteeringProduct:     {SteeringProductPrompt, "steering_product_prompt.txt"},
	KeySteeringTech:        {SteeringTechPrompt, "steering_tech_prompt.txt"},
	KeySteeringStructure:   {SteeringStructurePrompt, "steering_structure_prompt.txt"},
	KeySteeringCustomer:    {SteeringCustomerPrompt, "steering_customer_context_prompt.txt"},
	KeySteeringIntegration: {SteeringIntegrationPrompt, "steering_integration_landscape_prompt.txt"},
	KeySteeringSecurity:    {SteeringSecurityPrompt, "steering_security_policies_prompt.txt"},
	KeySteeringDemo:        {SteeringDemoPrompt, "steering_demo_strategy_prompt.txt"},
	KeySteeringAgentify:    {SteeringAgentifyPrompt, "steering_agentify_integration_prompt.txt"},
	KeySteeringCedar:       {SteeringCedarPrompt, "steering_cedar_policies_prompt.txt"},
}

// GetPrompt searches for a user-provided prompt file in the project's
// templates directory. If found, it returns the content of that file.
// Otherwise, it returns the bundled default prompt content.
func GetPrompt(key Key, templatesDir string) (string, error) {
	config, ok := promptRegistry[key]
	if !ok {
		return "", fmt.Errorf("unrecognized prompt key: %s", key)
	}

	if strings.TrimSpace(templatesDir) == "" {
		return config.defaultContent, nil
	}

	customPromptPath := filepath.Join(templatesDir, config.filename)
	if _, err := os.Stat(customPromptPath); err == nil {
		content, readErr := os.ReadFile(customPromptPath)
		if readErr != nil {
			return "", fmt.Errorf("failed to read custom prompt file at %s: %w", customPromptPath, readErr)
		}
		return string(content), nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("error checking for custom prompt file at %s: %w", customPromptPath, err)
	}

	return config.defaultContent, nil
}
