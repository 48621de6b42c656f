package steering

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agentify-dev/agentify/internal/conversation"
	"github.com/agentify-dev/agentify/internal/wizard"
	"github.com/agentify-dev/agentify/prompts"
)

// scriptedSender fails a fixed number of times before succeeding.
type scriptedSender struct {
	name      string
	failures  int
	permanent bool
	calls     *callCounter
}

type callCounter struct {
	mu    sync.Mutex
	count map[string]int
}

func newCallCounter() *callCounter {
	return &callCounter{count: make(map[string]int)}
}

func (c *callCounter) inc(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count[name]++
	return c.count[name]
}

func (c *callCounter) get(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count[name]
}

func (c *callCounter) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.count {
		n += v
	}
	return n
}

func (s *scriptedSender) SendMessage(ctx context.Context, text string, cb conversation.Callbacks) (string, error) {
	n := s.calls.inc(s.name)
	if s.permanent || n <= s.failures {
		return "", errors.New("503 service unavailable")
	}
	return "# Generated body for " + s.name, nil
}

// testGenerator wires a factory that hands each document its scripted
// sender, keyed by a recognizable fragment of the system prompt.
func testGenerator(t *testing.T, failPlan map[string]int, permanent map[string]bool, calls *callCounter) *Generator {
	t.Helper()
	factory := func(ctx context.Context, systemPrompt string) (Sender, error) {
		name := documentForPrompt(systemPrompt)
		if name == "" {
			t.Fatalf("factory could not place system prompt: %.80s", systemPrompt)
		}
		return &scriptedSender{
			name:      name,
			failures:  failPlan[name],
			permanent: permanent[name],
			calls:     calls,
		}, nil
	}
	g := NewGenerator(factory, "")
	g.retryBase = time.Millisecond
	return g
}

// documentForPrompt maps a steering system prompt back to its document by
// probing the catalog's own prompt texts.
func documentForPrompt(systemPrompt string) string {
	for _, spec := range append(append([]FileSpec{}, baseCatalog...), cedarSpec) {
		if text, err := prompts.GetPrompt(spec.Prompt, ""); err == nil && text == systemPrompt {
			return spec.Name
		}
	}
	return ""
}

func completedState() *wizard.WizardState {
	st := wizard.NewWizardState()
	st.BusinessObjective = "Automate order-to-cash reconciliation"
	st.Industry = "Retail"
	st.SelectedSystems = []string{"SAP ERP", "Stripe"}
	st.Outcome.Statement = "Close the books two days faster"
	st.Security.Frameworks = []string{"SOC 2"}
	st.AgentDesign.ConfirmedAgents = []wizard.Agent{{ID: "agent-1", Name: "Reconciler", Role: "matches payments to invoices"}}
	st.AdvanceTo(wizard.StepGenerate)
	return st
}

func TestGenerateAllDocuments(t *testing.T) {
	calls := newCallCounter()
	g := testGenerator(t, nil, nil, calls)

	res := g.Generate(context.Background(), completedState())
	if !res.Success {
		t.Fatalf("Success = false, errors: %v", res.Errors)
	}
	// Security step produced a framework, so cedar-policies is included.
	if len(res.Files) != 9 {
		t.Fatalf("generated %d documents, want 9", len(res.Files))
	}
	for name, body := range res.Files {
		if !strings.Contains(body, name) {
			t.Errorf("document %s has unexpected body %q", name, body)
		}
	}
}

func TestGenerateSkipsCedarWhenSecuritySkipped(t *testing.T) {
	calls := newCallCounter()
	g := testGenerator(t, nil, nil, calls)

	st := completedState()
	st.Security.Skipped = true
	res := g.Generate(context.Background(), st)
	if !res.Success {
		t.Fatalf("Success = false, errors: %v", res.Errors)
	}
	if _, ok := res.Files["cedar-policies"]; ok {
		t.Error("cedar-policies generated despite skipped security step")
	}
	if len(res.Files) != 8 {
		t.Errorf("generated %d documents, want 8", len(res.Files))
	}
}

func TestGeneratePartialSuccess(t *testing.T) {
	calls := newCallCounter()
	g := testGenerator(t, nil, map[string]bool{"structure": true, "demo-strategy": true}, calls)

	res := g.Generate(context.Background(), completedState())
	if res.Success {
		t.Fatal("Success = true with two failing documents")
	}
	if len(res.Errors) != 2 {
		t.Fatalf("errors = %v, want failures for structure and demo-strategy", res.Errors)
	}
	for _, name := range []string{"structure", "demo-strategy"} {
		if _, ok := res.Errors[name]; !ok {
			t.Errorf("missing error for %s", name)
		}
		if _, ok := res.Files[name]; ok {
			t.Errorf("failed document %s also present in Files", name)
		}
		// One initial attempt plus two retries.
		if n := calls.get(name); n != 3 {
			t.Errorf("%s attempts = %d, want 3", name, n)
		}
	}
	if len(res.Files) != 7 {
		t.Errorf("succeeded documents = %d, want 7", len(res.Files))
	}
}

func TestGenerateRetriesTransientFailure(t *testing.T) {
	calls := newCallCounter()
	g := testGenerator(t, map[string]int{"product": 2}, nil, calls)

	res := g.Generate(context.Background(), completedState())
	if !res.Success {
		t.Fatalf("Success = false, errors: %v", res.Errors)
	}
	if n := calls.get("product"); n != 3 {
		t.Errorf("product attempts = %d, want 3", n)
	}
	if n := calls.get("tech"); n != 1 {
		t.Errorf("tech attempts = %d, want 1", n)
	}
}

func TestGenerateEmitsOrderedProgressPerDocument(t *testing.T) {
	calls := newCallCounter()
	g := testGenerator(t, nil, map[string]bool{"tech": true}, calls)

	var mu sync.Mutex
	events := map[string][]ProgressType{}
	g.OnProgress(func(ev ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events[ev.FileName] = append(events[ev.FileName], ev.Type)
	})

	res := g.Generate(context.Background(), completedState())

	mu.Lock()
	defer mu.Unlock()
	if len(events) != len(res.Files)+len(res.Errors) {
		t.Fatalf("events for %d documents, want %d", len(events), len(res.Files)+len(res.Errors))
	}
	for name, seq := range events {
		if len(seq) != 2 || seq[0] != ProgressStart {
			t.Errorf("%s event sequence = %v, want start then terminal", name, seq)
			continue
		}
		want := ProgressComplete
		if name == "tech" {
			want = ProgressError
		}
		if seq[1] != want {
			t.Errorf("%s terminal event = %s, want %s", name, seq[1], want)
		}
	}
}

func TestRetryFilesOnlyTouchesNamed(t *testing.T) {
	calls := newCallCounter()
	g := testGenerator(t, nil, nil, calls)

	res := g.RetryFiles(context.Background(), completedState(), []string{"structure", "demo-strategy"})
	if !res.Success {
		t.Fatalf("Success = false, errors: %v", res.Errors)
	}
	if len(res.Files) != 2 {
		t.Errorf("regenerated %d documents, want 2", len(res.Files))
	}
	if calls.total() != 2 {
		t.Errorf("total AI calls = %d, want 2", calls.total())
	}
}

func TestRetryFilesRejectsUnknownName(t *testing.T) {
	calls := newCallCounter()
	g := testGenerator(t, nil, nil, calls)

	res := g.RetryFiles(context.Background(), completedState(), []string{"no-such-doc"})
	if res.Success {
		t.Error("Success = true for unknown document name")
	}
	if _, ok := res.Errors["no-such-doc"]; !ok {
		t.Errorf("errors = %v, want entry for no-such-doc", res.Errors)
	}
	if calls.total() != 0 {
		t.Errorf("AI calls = %d, want 0", calls.total())
	}
}

func TestShouldGenerateCedarPolicies(t *testing.T) {
	cases := []struct {
		name string
		sec  wizard.Security
		want bool
	}{
		{"no material", wizard.Security{}, false},
		{"frameworks", wizard.Security{Frameworks: []string{"HIPAA"}}, true},
		{"approval gates", wizard.Security{ApprovalGates: []string{"refunds over $500"}}, true},
		{"skipped wins", wizard.Security{Frameworks: []string{"HIPAA"}, Skipped: true}, false},
	}
	for _, tc := range cases {
		st := wizard.NewWizardState()
		st.Security = tc.sec
		if got := ShouldGenerateCedarPolicies(st); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCatalogHasSingleManualDocument(t *testing.T) {
	specs := Catalog(completedState())
	var manual []string
	for _, spec := range specs {
		if spec.Inclusion == InclusionManual {
			manual = append(manual, spec.Name)
		}
	}
	if len(manual) != 1 || manual[0] != "agentify-integration" {
		t.Errorf("manual-inclusion documents = %v, want only agentify-integration", manual)
	}
}
