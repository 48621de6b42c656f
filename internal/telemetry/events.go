package telemetry

import "time"

// Event is a single telemetry event.
type Event struct {
	Name      string
	Timestamp time.Time
	Props     map[string]any
}

// Common event names.
const (
	EventSessionStart       = "session_start"
	EventWizardResumed      = "wizard_resumed"
	EventStepCompleted      = "step_completed"
	EventGenerationComplete = "generation_complete"
	EventRetryRequested     = "retry_requested"
	EventAIError            = "ai_error"
)

// NewEvent creates an event with the given name.
func NewEvent(name string) Event {
	return Event{
		Name:      name,
		Timestamp: time.Now().UTC(),
		Props:     make(map[string]any),
	}
}

// WithProp adds a property to the event.
func (e Event) WithProp(key string, value any) Event {
	if e.Props == nil {
		e.Props = make(map[string]any)
	}
	e.Props[key] = value
	return e
}
