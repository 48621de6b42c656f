// Package steering turns a completed wizard session into the set of
// steering documents written under the workspace steering directory.
package steering

import (
	"github.com/agentify-dev/agentify/internal/wizard"
	"github.com/agentify-dev/agentify/prompts"
)

// Inclusion controls how a steering document is picked up by agents.
type Inclusion string

const (
	// InclusionAlways marks documents loaded into every agent context.
	InclusionAlways Inclusion = "always"
	// InclusionManual marks documents the user references explicitly.
	InclusionManual Inclusion = "manual"
)

// FileSpec describes one steering document to generate.
type FileSpec struct {
	// Name is the file name without the .md extension.
	Name      string
	Title     string
	Inclusion Inclusion
	Prompt    prompts.Key
}

// baseCatalog is the fixed set of documents every generation produces.
// agentify-integration is the only manual-inclusion document: it is a
// reference the user pulls in on demand rather than ambient context.
var baseCatalog = []FileSpec{
	{Name: "product", Title: "Product Overview", Inclusion: InclusionAlways, Prompt: prompts.KeySteeringProduct},
	{Name: "tech", Title: "Technology Stack", Inclusion: InclusionAlways, Prompt: prompts.KeySteeringTech},
	{Name: "structure", Title: "Project Structure", Inclusion: InclusionAlways, Prompt: prompts.KeySteeringStructure},
	{Name: "customer-context", Title: "Customer Context", Inclusion: InclusionAlways, Prompt: prompts.KeySteeringCustomer},
	{Name: "integration-landscape", Title: "Integration Landscape", Inclusion: InclusionAlways, Prompt: prompts.KeySteeringIntegration},
	{Name: "security-policies", Title: "Security Policies", Inclusion: InclusionAlways, Prompt: prompts.KeySteeringSecurity},
	{Name: "demo-strategy", Title: "Demo Strategy", Inclusion: InclusionAlways, Prompt: prompts.KeySteeringDemo},
	{Name: "agentify-integration", Title: "Agentify Integration", Inclusion: InclusionManual, Prompt: prompts.KeySteeringAgentify},
}

var cedarSpec = FileSpec{
	Name:      "cedar-policies",
	Title:     "Cedar Policies",
	Inclusion: InclusionAlways,
	Prompt:    prompts.KeySteeringCedar,
}

// Catalog returns the documents to generate for the given session. The
// cedar-policies document is included only when the security step produced
// enforceable material.
func Catalog(state *wizard.WizardState) []FileSpec {
	specs := make([]FileSpec, len(baseCatalog), len(baseCatalog)+1)
	copy(specs, baseCatalog)
	if ShouldGenerateCedarPolicies(state) {
		specs = append(specs, cedarSpec)
	}
	return specs
}

// ShouldGenerateCedarPolicies reports whether the session carries security
// requirements worth encoding as policies. A skipped security step always
// suppresses the document, even if stale frameworks remain in state.
func ShouldGenerateCedarPolicies(state *wizard.WizardState) bool {
	if state == nil || state.Security.Skipped {
		return false
	}
	return len(state.Security.Frameworks) > 0 || len(state.Security.ApprovalGates) > 0
}

// SpecByName resolves a document name (without extension) to its spec.
func SpecByName(name string) (FileSpec, bool) {
	for _, spec := range baseCatalog {
		if spec.Name == name {
			return spec, true
		}
	}
	if cedarSpec.Name == name {
		return cedarSpec, true
	}
	return FileSpec{}, false
}
