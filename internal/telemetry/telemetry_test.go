package telemetry

import (
	"sync"
	"testing"

	"github.com/posthog/posthog-go"
)

// fakeEnqueuer captures events for testing.
type fakeEnqueuer struct {
	mu     sync.Mutex
	events []posthog.Capture
	closed bool
}

func (f *fakeEnqueuer) Enqueue(msg posthog.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if capture, ok := msg.(posthog.Capture); ok {
		f.events = append(f.events, capture)
	}
	return nil
}

func (f *fakeEnqueuer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeEnqueuer) getEvents() []posthog.Capture {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]posthog.Capture, len(f.events))
	copy(out, f.events)
	return out
}

func newTestClient() (*Client, *fakeEnqueuer) {
	fake := &fakeEnqueuer{}
	c := &Client{
		client:     fake,
		installID:  "install-123",
		enabled:    true,
		appVersion: "0.1.0",
	}
	return c, fake
}

func TestTrackWhenEnabled(t *testing.T) {
	c, fake := newTestClient()

	c.Track(NewEvent(EventStepCompleted).WithProp("step", 3))

	events := fake.getEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Event != EventStepCompleted {
		t.Errorf("event name = %q, want %q", ev.Event, EventStepCompleted)
	}
	if ev.DistinctId != "install-123" {
		t.Errorf("distinct id = %q, want install id", ev.DistinctId)
	}
	if got := ev.Properties["step"]; got != 3 {
		t.Errorf("step prop = %v, want 3", got)
	}
	if got := ev.Properties["app_version"]; got != "0.1.0" {
		t.Errorf("app_version prop = %v, want 0.1.0", got)
	}
	if got := ev.Properties["$process_person_profile"]; got != false {
		t.Errorf("person profile processing should be disabled, got %v", got)
	}
}

func TestTrackWhenDisabled(t *testing.T) {
	c, fake := newTestClient()
	c.SetEnabled(false)

	c.Track(NewEvent(EventSessionStart))

	if n := len(fake.getEvents()); n != 0 {
		t.Fatalf("disabled client recorded %d events", n)
	}
}

func TestTrackWithoutBackendIsNoop(t *testing.T) {
	c := &Client{enabled: true}

	// Must not panic with no PostHog client wired (empty API key build).
	c.Track(NewEvent(EventSessionStart))
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestTrackGenerationProps(t *testing.T) {
	c, fake := newTestClient()

	c.TrackGeneration(9, 7, 2, false, 4200)

	events := fake.getEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	props := events[0].Properties
	if props["total"] != 9 || props["succeeded"] != 7 || props["failed"] != 2 {
		t.Errorf("unexpected counts: %v", props)
	}
	if props["cancelled"] != false {
		t.Errorf("cancelled = %v, want false", props["cancelled"])
	}
}

func TestCloseFlushesBackend(t *testing.T) {
	c, fake := newTestClient()
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	fake.mu.Lock()
	closed := fake.closed
	fake.mu.Unlock()
	if !closed {
		t.Error("Close did not reach the backend")
	}
}
