package wizard

import (
	"fmt"
	"strings"

	"github.com/agentify-dev/agentify/internal/utils"
)

// BuildGapFillingContext formats the step-1 inputs into the text block the
// gap-filling prompt expects. Empty inputs get a readable placeholder so the
// model never sees a bare blank.
func BuildGapFillingContext(objective, industry string, systems []string) string {
	var sb strings.Builder

	sb.WriteString("## Business Context\n\n")
	if strings.TrimSpace(objective) == "" {
		sb.WriteString("Objective: (not provided yet)\n")
	} else {
		fmt.Fprintf(&sb, "Objective: %s\n", objective)
	}
	if strings.TrimSpace(industry) == "" {
		sb.WriteString("Industry: (not specified)\n")
	} else {
		fmt.Fprintf(&sb, "Industry: %s\n", industry)
	}

	sb.WriteString("\n## Selected Systems\n\n")
	if len(systems) == 0 {
		sb.WriteString("No systems selected yet.\n")
	} else {
		for _, s := range systems {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
	}

	return sb.String()
}

// assumptionWire is the decode target for one proposed assumption. Loose
// types absorb the model's habit of emitting numbers for names.
type assumptionWire struct {
	System       flexString  `json:"system" validate:"required"`
	Modules      flexStrings `json:"modules"`
	Integrations flexStrings `json:"integrations"`
}

type assumptionsWire struct {
	Assumptions []assumptionWire `json:"assumptions"`
}

// ParseAssumptions extracts the proposed system assumptions from a free-form
// response. Individual malformed entries are dropped; a response with no
// usable block returns nil, which callers treat as "ask again", never as a
// fatal error.
func ParseAssumptions(response string) []SystemAssumption {
	wire, ok := utils.ExtractJSON[assumptionsWire](response, func(w assumptionsWire) bool {
		return len(w.Assumptions) > 0
	})
	if !ok {
		// Some responses emit the bare array without the wrapper object.
		items, arrOK := utils.ExtractJSON[[]assumptionWire](response, func(ws []assumptionWire) bool {
			return len(ws) > 0
		})
		if !arrOK {
			return nil
		}
		wire.Assumptions = items
	}

	var out []SystemAssumption
	for _, w := range wire.Assumptions {
		if err := validate.Struct(w); err != nil {
			continue
		}
		out = append(out, SystemAssumption{
			System:       w.System.String(),
			Modules:      w.Modules,
			Integrations: w.Integrations,
			Source:       SourceAIProposed,
		})
	}
	return out
}
