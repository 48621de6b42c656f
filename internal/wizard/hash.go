package wizard

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// fingerprint computes a short stable digest over the given parts. Callers
// are responsible for sorting any unordered inputs first so the result is
// invariant under reordering.
func fingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0x1f}) // unit separator, keeps "ab"+"c" distinct from "a"+"bc"
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// sortedJoin returns a canonical representation of an unordered string list.
func sortedJoin(items []string) string {
	cp := make([]string, len(items))
	copy(cp, items)
	sort.Strings(cp)
	return strings.Join(cp, "\x1e")
}

// GapFillingHash fingerprints the step-1 inputs that feed gap filling.
// Reordering the selected systems does not change the hash.
func GapFillingHash(objective, industry string, systems []string) string {
	return fingerprint(objective, industry, sortedJoin(systems))
}

// OutcomeHash fingerprints the inputs the outcome step depends on.
func OutcomeHash(objective, industry string, assumptions []SystemAssumption) string {
	keys := make([]string, 0, len(assumptions))
	for _, a := range assumptions {
		keys = append(keys, a.System+"|"+sortedJoin(a.Modules)+"|"+sortedJoin(a.Integrations))
	}
	return fingerprint(objective, industry, sortedJoin(keys))
}

// AgentDesignHash fingerprints the earlier-step state the agent-design step
// derives its proposal from.
func AgentDesignHash(s *WizardState) string {
	return fingerprint(
		s.BusinessObjective,
		sortedJoin(s.SelectedSystems),
		s.Outcome.Statement,
		string(s.Security.DataSensitivity),
	)
}

// MockDataHash fingerprints the confirmed agent tool surface. Mock
// regeneration is only warranted when the tool list itself changes.
func MockDataHash(agents []Agent) string {
	var tools []string
	for _, a := range agents {
		for _, t := range a.Tools {
			tools = append(tools, a.Name+"/"+t)
		}
	}
	return fingerprint(sortedJoin(tools))
}

// DemoStrategyHash fingerprints the agents and outcome the demo narrative
// is built around.
func DemoStrategyHash(agents []Agent, outcome Outcome) string {
	names := make([]string, 0, len(agents))
	for _, a := range agents {
		names = append(names, a.Name)
	}
	return fingerprint(sortedJoin(names), outcome.Statement)
}

// HasChanged reports whether the cached hash no longer matches the current
// fingerprint. An empty previous hash always counts as changed.
func HasChanged(previous, current string) bool {
	return previous == "" || previous != current
}
