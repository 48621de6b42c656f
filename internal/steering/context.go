package steering

import (
	"fmt"
	"strings"

	"github.com/agentify-dev/agentify/internal/wizard"
)

// BuildContext renders the full wizard session into the text block every
// steering prompt receives as its user message. All documents share one
// context so they stay mutually consistent.
func BuildContext(state *wizard.WizardState) string {
	var sb strings.Builder

	sb.WriteString("## Business Context\n\n")
	fmt.Fprintf(&sb, "Objective: %s\n", orPlaceholder(state.BusinessObjective))
	fmt.Fprintf(&sb, "Industry: %s\n", orPlaceholder(state.Industry))

	sb.WriteString("\n## Enterprise Systems\n\n")
	if len(state.SelectedSystems) == 0 {
		sb.WriteString("None selected.\n")
	}
	for _, sys := range state.SelectedSystems {
		fmt.Fprintf(&sb, "- %s\n", sys)
	}

	if len(state.GapFilling.Assumptions) > 0 {
		sb.WriteString("\n## Confirmed System Assumptions\n\n")
		for _, a := range state.GapFilling.Assumptions {
			fmt.Fprintf(&sb, "- %s (modules: %s; integrations: %s)\n",
				a.System, joinOrNone(a.Modules), joinOrNone(a.Integrations))
		}
	}

	sb.WriteString("\n## Primary Outcome\n\n")
	fmt.Fprintf(&sb, "Statement: %s\n", orPlaceholder(state.Outcome.Statement))
	for _, kpi := range state.Outcome.KPIs {
		fmt.Fprintf(&sb, "- KPI: %s, target %s %s\n", kpi.Name, kpi.TargetValue, kpi.Unit)
	}
	if len(state.Outcome.Stakeholders) > 0 {
		fmt.Fprintf(&sb, "Stakeholders: %s\n", strings.Join(state.Outcome.Stakeholders, ", "))
	}

	sb.WriteString("\n## Security Posture\n\n")
	if state.Security.Skipped {
		sb.WriteString("The user skipped the security step.\n")
	} else {
		fmt.Fprintf(&sb, "Data sensitivity: %s\n", orPlaceholder(string(state.Security.DataSensitivity)))
		fmt.Fprintf(&sb, "Frameworks: %s\n", joinOrNone(state.Security.Frameworks))
		fmt.Fprintf(&sb, "Approval gates: %s\n", joinOrNone(state.Security.ApprovalGates))
		if state.Security.GuardrailNotes != "" {
			fmt.Fprintf(&sb, "Guardrail notes: %s\n", state.Security.GuardrailNotes)
		}
	}

	sb.WriteString("\n## Agent Design\n\n")
	fmt.Fprintf(&sb, "Orchestration pattern: %s\n", state.AgentDesign.EffectivePattern())
	for _, agent := range state.AgentDesign.EffectiveAgents() {
		fmt.Fprintf(&sb, "- %s (%s): %s; tools: %s\n", agent.Name, agent.ID, agent.Role, joinOrNone(agent.Tools))
	}
	for _, edge := range state.AgentDesign.EffectiveEdges() {
		if edge.Condition != "" {
			fmt.Fprintf(&sb, "- edge %s -> %s when %s\n", edge.From, edge.To, edge.Condition)
		} else {
			fmt.Fprintf(&sb, "- edge %s -> %s\n", edge.From, edge.To)
		}
	}

	if len(state.MockData.Mocks) > 0 {
		sb.WriteString("\n## Tool Mocks\n\n")
		for _, m := range state.MockData.Mocks {
			fmt.Fprintf(&sb, "- %s.%s on %s: %s\n", m.Tool, m.Operation, m.System, m.Description)
		}
	}

	sb.WriteString("\n## Demo Strategy\n\n")
	if p := state.DemoStrategy.Persona; p != nil {
		fmt.Fprintf(&sb, "Persona: %s, %s (pain point: %s)\n", p.Name, p.Role, p.PainPoint)
	}
	for _, m := range state.DemoStrategy.AhaMoments {
		fmt.Fprintf(&sb, "- Aha moment %q on %s %s: %s\n", m.Title, m.TriggerType, m.TriggerName, m.TalkingPoint)
	}
	for i, sc := range state.DemoStrategy.Scenes {
		fmt.Fprintf(&sb, "- Scene %d %q: %s\n", i+1, sc.Title, sc.Description)
	}

	return sb.String()
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not provided)"
	}
	return s
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
