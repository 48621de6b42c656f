package wizard

import "testing"

func TestGapFillingHashOrderIndependent(t *testing.T) {
	a := GapFillingHash("obj", "retail", []string{"SAP", "Stripe", "Salesforce"})
	b := GapFillingHash("obj", "retail", []string{"Salesforce", "SAP", "Stripe"})
	if a != b {
		t.Error("reordering systems changed the hash")
	}
}

func TestGapFillingHashSensitivity(t *testing.T) {
	base := GapFillingHash("obj", "retail", []string{"SAP"})
	if base == GapFillingHash("other obj", "retail", []string{"SAP"}) {
		t.Error("objective change not reflected")
	}
	if base == GapFillingHash("obj", "finance", []string{"SAP"}) {
		t.Error("industry change not reflected")
	}
	if base == GapFillingHash("obj", "retail", []string{"SAP", "Stripe"}) {
		t.Error("added system not reflected")
	}
}

func TestHashBoundariesAreUnambiguous(t *testing.T) {
	// Concatenation across fields must not collide.
	if GapFillingHash("ab", "c", nil) == GapFillingHash("a", "bc", nil) {
		t.Error("field boundary collision")
	}
}

func TestOutcomeHashIgnoresAssumptionOrder(t *testing.T) {
	one := []SystemAssumption{
		{System: "SAP", Modules: []string{"FI", "MM"}},
		{System: "Stripe", Integrations: []string{"webhooks"}},
	}
	two := []SystemAssumption{
		{System: "Stripe", Integrations: []string{"webhooks"}},
		{System: "SAP", Modules: []string{"MM", "FI"}},
	}
	if OutcomeHash("obj", "retail", one) != OutcomeHash("obj", "retail", two) {
		t.Error("assumption order changed the hash")
	}
}

func TestMockDataHashTracksToolSurface(t *testing.T) {
	agents := []Agent{{Name: "A", Tools: []string{"t1", "t2"}}, {Name: "B", Tools: []string{"t3"}}}
	reordered := []Agent{{Name: "B", Tools: []string{"t3"}}, {Name: "A", Tools: []string{"t2", "t1"}}}
	if MockDataHash(agents) != MockDataHash(reordered) {
		t.Error("agent/tool order changed the hash")
	}

	grown := []Agent{{Name: "A", Tools: []string{"t1", "t2", "t4"}}, {Name: "B", Tools: []string{"t3"}}}
	if MockDataHash(agents) == MockDataHash(grown) {
		t.Error("added tool not reflected")
	}

	// Renaming an agent's role or ID is irrelevant; only names and tools count.
	relabeled := []Agent{{Name: "A", ID: "x", Role: "y", Tools: []string{"t1", "t2"}}, {Name: "B", Tools: []string{"t3"}}}
	if MockDataHash(agents) != MockDataHash(relabeled) {
		t.Error("role/id changes should not affect the hash")
	}
}

func TestDemoStrategyHash(t *testing.T) {
	agents := []Agent{{Name: "A"}, {Name: "B"}}
	outcome := Outcome{Statement: "faster close"}
	if DemoStrategyHash(agents, outcome) != DemoStrategyHash([]Agent{{Name: "B"}, {Name: "A"}}, outcome) {
		t.Error("agent order changed the hash")
	}
	if DemoStrategyHash(agents, outcome) == DemoStrategyHash(agents, Outcome{Statement: "other"}) {
		t.Error("outcome change not reflected")
	}
}

func TestHashStableAcrossCalls(t *testing.T) {
	a := AgentDesignHash(&WizardState{BusinessObjective: "obj", Outcome: Outcome{Statement: "s"}})
	b := AgentDesignHash(&WizardState{BusinessObjective: "obj", Outcome: Outcome{Statement: "s"}})
	if a != b {
		t.Error("hash not deterministic")
	}
	if len(a) != 16 {
		t.Errorf("hash length = %d, want 16", len(a))
	}
}

func TestHasChanged(t *testing.T) {
	if !HasChanged("", "abc") {
		t.Error("empty previous must count as changed")
	}
	if HasChanged("abc", "abc") {
		t.Error("identical hashes reported as changed")
	}
	if !HasChanged("abc", "def") {
		t.Error("different hashes not reported as changed")
	}
}
