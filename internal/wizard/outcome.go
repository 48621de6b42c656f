package wizard

import (
	"fmt"
	"strings"

	"github.com/agentify-dev/agentify/internal/utils"
)

// Outcome override mask fields.
const (
	FieldOutcomeStatement    = "statement"
	FieldOutcomeKPIs         = "kpis"
	FieldOutcomeStakeholders = "stakeholders"
)

// BuildOutcomeContext summarizes the earlier steps' answers for the outcome prompt.
func BuildOutcomeContext(s *WizardState) string {
	var sb strings.Builder

	sb.WriteString(BuildGapFillingContext(s.BusinessObjective, s.Industry, s.SelectedSystems))

	sb.WriteString("\n## Confirmed System Assumptions\n\n")
	if len(s.GapFilling.Assumptions) == 0 {
		sb.WriteString("No assumptions confirmed yet.\n")
	} else {
		for _, a := range s.GapFilling.Assumptions {
			fmt.Fprintf(&sb, "- %s (modules: %s; integrations: %s)\n",
				a.System, joinOrNone(a.Modules), joinOrNone(a.Integrations))
		}
	}

	return sb.String()
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

type kpiWire struct {
	Name        flexString `json:"name" validate:"required"`
	TargetValue flexString `json:"targetValue" validate:"required"`
	Unit        flexString `json:"unit"`
}

type outcomeWire struct {
	Statement    flexString  `json:"statement" validate:"required"`
	KPIs         []kpiWire   `json:"kpis"`
	Stakeholders flexStrings `json:"stakeholders"`
}

// ParseOutcome extracts an outcome refinement from a response. Returns nil
// when no valid structured block exists anywhere in the text.
func ParseOutcome(response string) *Outcome {
	wire, ok := utils.ExtractJSON[outcomeWire](response, func(w outcomeWire) bool {
		return w.Statement != ""
	})
	if !ok {
		return nil
	}

	out := &Outcome{
		Statement:    wire.Statement.String(),
		Stakeholders: wire.Stakeholders,
	}
	for _, k := range wire.KPIs {
		if err := validate.Struct(k); err != nil {
			continue
		}
		out.KPIs = append(out.KPIs, KPIMetric{
			Name:        k.Name.String(),
			TargetValue: k.TargetValue.String(),
			Unit:        k.Unit.String(),
		})
	}
	return out
}

// MergeOutcome applies an AI refinement on top of the current outcome while
// honoring the user's override mask: masked fields keep their current value.
func MergeOutcome(current, incoming Outcome) Outcome {
	mask := current.Overrides
	merged := Outcome{
		Statement:    Resolve(mask, FieldOutcomeStatement, current.Statement, incoming.Statement),
		KPIs:         Resolve(mask, FieldOutcomeKPIs, current.KPIs, incoming.KPIs),
		Stakeholders: Resolve(mask, FieldOutcomeStakeholders, current.Stakeholders, incoming.Stakeholders),
		Overrides:    mask,
	}
	return merged
}
