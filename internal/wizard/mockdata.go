package wizard

import (
	"fmt"
	"strings"

	"github.com/agentify-dev/agentify/internal/utils"
)

// ToolMock override mask fields.
const (
	FieldMockDescription = "description"
	FieldMockRequest     = "mockRequest"
	FieldMockResponse    = "mockResponse"
	FieldMockSampleData  = "sampleData"
)

// BuildMockDataContext lists every confirmed agent tool the mock-data prompt
// should cover, grouped by agent.
func BuildMockDataContext(s *WizardState) string {
	var sb strings.Builder

	sb.WriteString("## Agent Tools Requiring Mocks\n\n")
	agents := s.AgentDesign.EffectiveAgents()
	if len(agents) == 0 {
		sb.WriteString("No agents designed yet.\n")
		return sb.String()
	}

	for _, a := range agents {
		fmt.Fprintf(&sb, "### %s (%s)\n", a.Name, a.Role)
		if len(a.Tools) == 0 {
			sb.WriteString("- (no tools)\n")
			continue
		}
		for _, t := range a.Tools {
			fmt.Fprintf(&sb, "- %s\n", t)
		}
	}

	sb.WriteString("\n## Enterprise Systems\n\n")
	if len(s.SelectedSystems) == 0 {
		sb.WriteString("No systems selected yet.\n")
	} else {
		for _, sys := range s.SelectedSystems {
			fmt.Fprintf(&sb, "- %s\n", sys)
		}
	}

	return sb.String()
}

type toolMockWire struct {
	Tool         flexString  `json:"tool" validate:"required"`
	System       flexString  `json:"system"`
	Operation    flexString  `json:"operation" validate:"required"`
	Description  flexString  `json:"description"`
	MockRequest  flexString  `json:"mockRequest"`
	MockResponse flexString  `json:"mockResponse"`
	SampleData   flexStrings `json:"sampleData"`
}

type toolMocksWire struct {
	Mocks []toolMockWire `json:"mocks"`
}

// ParseToolMocks extracts tool mock definitions from a response, dropping
// malformed entries. Returns nil when nothing usable is found.
func ParseToolMocks(response string) []ToolMock {
	wire, ok := utils.ExtractJSON[toolMocksWire](response, func(w toolMocksWire) bool {
		return len(w.Mocks) > 0
	})
	if !ok {
		items, arrOK := utils.ExtractJSON[[]toolMockWire](response, func(ws []toolMockWire) bool {
			return len(ws) > 0
		})
		if !arrOK {
			return nil
		}
		wire.Mocks = items
	}

	var out []ToolMock
	for _, w := range wire.Mocks {
		if err := validate.Struct(w); err != nil {
			continue
		}
		out = append(out, ToolMock{
			Tool:         w.Tool.String(),
			System:       w.System.String(),
			Operation:    w.Operation.String(),
			Description:  w.Description.String(),
			MockRequest:  w.MockRequest.String(),
			MockResponse: w.MockResponse.String(),
			SampleData:   w.SampleData,
		})
	}
	return out
}

// MergeToolMocks replaces regenerated mocks while keeping the fields of any
// existing mock the user hand-edited. Mocks are matched by tool+operation.
func MergeToolMocks(current, incoming []ToolMock) []ToolMock {
	byKey := make(map[string]ToolMock, len(current))
	for _, m := range current {
		byKey[m.Tool+"\x1f"+m.Operation] = m
	}

	merged := make([]ToolMock, 0, len(incoming))
	for _, in := range incoming {
		cur, exists := byKey[in.Tool+"\x1f"+in.Operation]
		if !exists {
			merged = append(merged, in)
			continue
		}
		mask := cur.Overrides
		merged = append(merged, ToolMock{
			Tool:         cur.Tool,
			System:       cur.System,
			Operation:    cur.Operation,
			Description:  Resolve(mask, FieldMockDescription, cur.Description, in.Description),
			MockRequest:  Resolve(mask, FieldMockRequest, cur.MockRequest, in.MockRequest),
			MockResponse: Resolve(mask, FieldMockResponse, cur.MockResponse, in.MockResponse),
			SampleData:   Resolve(mask, FieldMockSampleData, cur.SampleData, in.SampleData),
			Overrides:    mask,
			Expanded:     cur.Expanded,
		})
	}
	return merged
}
