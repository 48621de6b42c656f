package wizard

import (
	"fmt"
	"strings"

	"github.com/agentify-dev/agentify/internal/utils"
	"github.com/google/uuid"
)

// BuildDemoContext summarizes the designed workflow for the demo-strategy
// prompt: who the agents are, what they call, and what outcome to dramatize.
func BuildDemoContext(s *WizardState) string {
	var sb strings.Builder

	sb.WriteString("## Workflow Summary\n\n")
	if s.Outcome.Statement == "" {
		sb.WriteString("Outcome: (not defined)\n")
	} else {
		fmt.Fprintf(&sb, "Outcome: %s\n", s.Outcome.Statement)
	}
	fmt.Fprintf(&sb, "Orchestration pattern: %s\n", valueOrDefault(string(s.AgentDesign.EffectivePattern()), "unspecified"))

	sb.WriteString("\n## Agents\n\n")
	agents := s.AgentDesign.EffectiveAgents()
	if len(agents) == 0 {
		sb.WriteString("No agents designed yet.\n")
	} else {
		for _, a := range agents {
			fmt.Fprintf(&sb, "- %s: %s (tools: %s)\n", a.Name, a.Role, joinOrNone(a.Tools))
		}
	}

	sb.WriteString("\n## Mocked Operations\n\n")
	if len(s.MockData.Mocks) == 0 {
		sb.WriteString("No mock data defined yet.\n")
	} else {
		for _, m := range s.MockData.Mocks {
			fmt.Fprintf(&sb, "- %s.%s on %s\n", m.Tool, m.Operation, valueOrDefault(m.System, "unknown system"))
		}
	}

	return sb.String()
}

type ahaMomentWire struct {
	ID           flexString `json:"id"`
	Title        flexString `json:"title" validate:"required"`
	TriggerType  flexString `json:"triggerType"`
	TriggerName  flexString `json:"triggerName"`
	TalkingPoint flexString `json:"talkingPoint"`
}

type personaWire struct {
	Name      flexString `json:"name" validate:"required"`
	Role      flexString `json:"role"`
	PainPoint flexString `json:"painPoint"`
}

type sceneWire struct {
	ID                flexString  `json:"id"`
	Title             flexString  `json:"title" validate:"required"`
	Description       flexString  `json:"description"`
	HighlightedAgents flexStrings `json:"highlightedAgents"`
}

type demoStrategyWire struct {
	AhaMoments []ahaMomentWire `json:"ahaMoments"`
	Persona    *personaWire    `json:"persona"`
	Scenes     []sceneWire     `json:"scenes"`
}

// ParseDemoStrategy extracts a demo plan from a response. Scene order is
// preserved as emitted. Entries missing their required fields are dropped;
// a response with nothing usable returns nil.
func ParseDemoStrategy(response string) *DemoStrategy {
	wire, ok := utils.ExtractJSON[demoStrategyWire](response, func(w demoStrategyWire) bool {
		return len(w.AhaMoments) > 0 || len(w.Scenes) > 0 || w.Persona != nil
	})
	if !ok {
		return nil
	}

	out := &DemoStrategy{}
	for _, m := range wire.AhaMoments {
		if err := validate.Struct(m); err != nil {
			continue
		}
		trigger := TriggerAgent
		if strings.EqualFold(m.TriggerType.String(), string(TriggerTool)) {
			trigger = TriggerTool
		}
		id := m.ID.String()
		if id == "" {
			id = "aha-" + uuid.New().String()[:8]
		}
		out.AhaMoments = append(out.AhaMoments, AhaMoment{
			ID:           id,
			Title:        m.Title.String(),
			TriggerType:  trigger,
			TriggerName:  m.TriggerName.String(),
			TalkingPoint: m.TalkingPoint.String(),
		})
	}

	if wire.Persona != nil {
		if err := validate.Struct(*wire.Persona); err == nil {
			out.Persona = &Persona{
				Name:      wire.Persona.Name.String(),
				Role:      wire.Persona.Role.String(),
				PainPoint: wire.Persona.PainPoint.String(),
			}
		}
	}

	for _, sc := range wire.Scenes {
		if err := validate.Struct(sc); err != nil {
			continue
		}
		id := sc.ID.String()
		if id == "" {
			id = "scene-" + uuid.New().String()[:8]
		}
		out.Scenes = append(out.Scenes, Scene{
			ID:                id,
			Title:             sc.Title.String(),
			Description:       sc.Description.String(),
			HighlightedAgents: sc.HighlightedAgents,
		})
	}

	if len(out.AhaMoments) == 0 && len(out.Scenes) == 0 && out.Persona == nil {
		return nil
	}
	return out
}
