package wizard

import (
	"fmt"
	"strings"

	"github.com/agentify-dev/agentify/internal/utils"
	"github.com/google/uuid"
)

// AgentDesign override mask fields.
const (
	FieldDesignAgents  = "agents"
	FieldDesignPattern = "pattern"
	FieldDesignEdges   = "edges"
)

// BuildAgentDesignContext formats the earlier steps' sections for the agent-design
// prompt: business context, assumptions, outcome, and security constraints.
func BuildAgentDesignContext(s *WizardState) string {
	var sb strings.Builder

	sb.WriteString(BuildOutcomeContext(s))

	sb.WriteString("\n## Target Outcome\n\n")
	if s.Outcome.Statement == "" {
		sb.WriteString("No outcome defined yet.\n")
	} else {
		fmt.Fprintf(&sb, "%s\n", s.Outcome.Statement)
		for _, k := range s.Outcome.KPIs {
			fmt.Fprintf(&sb, "- KPI: %s = %s %s\n", k.Name, k.TargetValue, k.Unit)
		}
	}

	sb.WriteString("\n## Security Constraints\n\n")
	if s.Security.Skipped {
		sb.WriteString("Security review was skipped.\n")
	} else {
		fmt.Fprintf(&sb, "Data sensitivity: %s\n", valueOrDefault(string(s.Security.DataSensitivity), "unspecified"))
		fmt.Fprintf(&sb, "Compliance frameworks: %s\n", joinOrNone(s.Security.Frameworks))
		fmt.Fprintf(&sb, "Approval gates: %s\n", joinOrNone(s.Security.ApprovalGates))
	}

	return sb.String()
}

func valueOrDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

type agentWire struct {
	ID    flexString  `json:"id"`
	Name  flexString  `json:"name" validate:"required"`
	Role  flexString  `json:"role" validate:"required"`
	Tools flexStrings `json:"tools"`
}

type edgeWire struct {
	From      flexString `json:"from" validate:"required"`
	To        flexString `json:"to" validate:"required"`
	Condition flexString `json:"condition"`
}

type agentDesignWire struct {
	Agents  []agentWire `json:"agents"`
	Pattern flexString  `json:"pattern"`
	Edges   []edgeWire  `json:"edges"`
}

// ParseAgentDesign extracts a proposed topology from a response. Agents or
// edges that fail validation are dropped individually; an unusable response
// returns nil. Missing agent IDs are filled in so the UI can track edits.
func ParseAgentDesign(response string) *AgentDesign {
	wire, ok := utils.ExtractJSON[agentDesignWire](response, func(w agentDesignWire) bool {
		return len(w.Agents) > 0
	})
	if !ok {
		return nil
	}

	design := &AgentDesign{}
	for _, a := range wire.Agents {
		if err := validate.Struct(a); err != nil {
			continue
		}
		id := a.ID.String()
		if id == "" {
			id = "agent-" + uuid.New().String()[:8]
		}
		design.ProposedAgents = append(design.ProposedAgents, Agent{
			ID:    id,
			Name:  a.Name.String(),
			Role:  a.Role.String(),
			Tools: a.Tools,
		})
	}
	if len(design.ProposedAgents) == 0 {
		return nil
	}

	switch OrchestrationPattern(strings.ToLower(wire.Pattern.String())) {
	case PatternGraph:
		design.ProposedPattern = PatternGraph
	case PatternSwarm:
		design.ProposedPattern = PatternSwarm
	case PatternWorkflow:
		design.ProposedPattern = PatternWorkflow
	default:
		design.ProposedPattern = PatternWorkflow
	}

	for _, e := range wire.Edges {
		if err := validate.Struct(e); err != nil {
			continue
		}
		design.ProposedEdges = append(design.ProposedEdges, Edge{
			From:      e.From.String(),
			To:        e.To.String(),
			Condition: e.Condition.String(),
		})
	}

	return design
}

// MergeAgentDesign applies a regenerated proposal while keeping any
// user-confirmed parts the mask protects.
func MergeAgentDesign(current, incoming AgentDesign) AgentDesign {
	mask := current.Overrides
	merged := current
	merged.ProposedAgents = Resolve(mask, FieldDesignAgents, current.ProposedAgents, incoming.ProposedAgents)
	merged.ProposedPattern = Resolve(mask, FieldDesignPattern, current.ProposedPattern, incoming.ProposedPattern)
	merged.ProposedEdges = Resolve(mask, FieldDesignEdges, current.ProposedEdges, incoming.ProposedEdges)
	return merged
}
