// Package telemetry provides anonymous, opt-in usage analytics.
//
// Events are dispatched through the PostHog SDK. Telemetry is disabled
// until the user consents; consent and the anonymous install ID live in
// ~/.agentify/telemetry.json. No wizard content ever leaves the machine,
// only event names, durations, and counts.
package telemetry

import (
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/posthog/posthog-go"
)

// apiKey is the PostHog project key, injected at build time via -ldflags.
// A release build without a key ships a permanently disabled client.
var apiKey = ""

// enqueuer is the subset of the PostHog client we use, extracted so tests
// can substitute a recording fake.
type enqueuer interface {
	io.Closer
	Enqueue(msg posthog.Message) error
}

// Client records anonymous events through PostHog.
type Client struct {
	mu         sync.RWMutex
	client     enqueuer
	installID  string
	enabled    bool
	appVersion string
}

// NewClient creates a telemetry client. With no API key the client is
// permanently disabled. A non-empty endpoint overrides the PostHog cloud
// endpoint for self-hosted deployments.
func NewClient(endpoint, appVersion string) (*Client, error) {
	c := &Client{appVersion: appVersion}
	if apiKey == "" {
		return c, nil
	}

	cfg := posthog.Config{
		// A CLI session produces a handful of events at most, so keep the
		// batch small and the interval short; the process exits quickly.
		BatchSize: 10,
		Interval:  time.Second,
		Logger:    quietLogger{},
	}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}

	ph, err := posthog.NewWithConfig(apiKey, cfg)
	if err != nil {
		return nil, err
	}
	c.client = ph
	return c, nil
}

// Initialize loads consent and the install ID. Without a consent file
// telemetry stays disabled.
func (c *Client) Initialize() error {
	consent, err := GetConsentStatus()
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if consent == nil {
		c.enabled = false
		return nil
	}
	c.enabled = consent.Enabled
	c.installID = consent.InstallID
	return nil
}

// IsEnabled reports whether events are recorded.
func (c *Client) IsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// SetEnabled toggles recording for this process.
func (c *Client) SetEnabled(enabled bool) {
	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()
}

// Track records an event. It never blocks on the network and never
// surfaces transport errors to the user.
func (c *Client) Track(event Event) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.enabled || c.client == nil {
		return
	}

	props := posthog.NewProperties()
	for k, v := range event.Props {
		props.Set(k, v)
	}
	props.Set("app_version", c.appVersion)
	props.Set("os", runtime.GOOS)
	props.Set("arch", runtime.GOARCH)
	// No person profiles; events stay tied to the anonymous install ID only.
	props.Set("$process_person_profile", false)

	_ = c.client.Enqueue(posthog.Capture{
		DistinctId: c.installID,
		Event:      event.Name,
		Timestamp:  event.Timestamp,
		Properties: props,
	})
}

// Close flushes pending events and shuts down the dispatcher.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// TrackStepCompleted records a wizard step transition.
func (c *Client) TrackStepCompleted(step int, durationMs int64) {
	c.Track(NewEvent(EventStepCompleted).
		WithProp("step", step).
		WithProp("duration_ms", durationMs))
}

// TrackGeneration records the outcome of a steering generation run.
func (c *Client) TrackGeneration(total, succeeded, failed int, cancelled bool, durationMs int64) {
	c.Track(NewEvent(EventGenerationComplete).
		WithProp("total", total).
		WithProp("succeeded", succeeded).
		WithProp("failed", failed).
		WithProp("cancelled", cancelled).
		WithProp("duration_ms", durationMs))
}

// TrackAIError records an AI failure by its classification only.
func (c *Client) TrackAIError(code string) {
	c.Track(NewEvent(EventAIError).WithProp("code", code))
}

var defaultClient *Client

// Init initializes the global client.
func Init(endpoint, appVersion string, disabled bool) error {
	c, err := NewClient(endpoint, appVersion)
	if err != nil {
		return err
	}
	defaultClient = c
	if disabled {
		c.SetEnabled(false)
		return nil
	}
	return c.Initialize()
}

// Get returns the global client, which may be nil before Init.
func Get() *Client { return defaultClient }

// Track records an event on the global client.
func Track(event Event) {
	if defaultClient != nil {
		defaultClient.Track(event)
	}
}

// Shutdown flushes any remaining events.
func Shutdown() {
	if defaultClient != nil {
		_ = defaultClient.Close()
	}
}

// quietLogger suppresses PostHog transport logs in normal CLI output.
type quietLogger struct{}

func (quietLogger) Debugf(string, ...interface{}) {}
func (quietLogger) Logf(string, ...interface{})   {}
func (quietLogger) Warnf(string, ...interface{})  {}
func (quietLogger) Errorf(string, ...interface{}) {}
