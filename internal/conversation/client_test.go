package conversation

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
)

// fakeStream replays scripted tokens, then a terminal error (io.EOF for success).
type fakeStream struct {
	tokens   []string
	terminal error
	pos      int
	closed   bool
}

func (s *fakeStream) Recv() (string, error) {
	if s.pos < len(s.tokens) {
		tok := s.tokens[s.pos]
		s.pos++
		return tok, nil
	}
	return "", s.terminal
}

func (s *fakeStream) Close() { s.closed = true }

// fakeModel returns one scripted outcome per attempt.
type fakeModel struct {
	mu       sync.Mutex
	attempts int
	script   []func() (*fakeStream, error)
	lastMsgs []*schema.Message
}

func (m *fakeModel) Stream(ctx context.Context, messages []*schema.Message) (TokenStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.attempts
	m.attempts++
	m.lastMsgs = messages
	if idx >= len(m.script) {
		idx = len(m.script) - 1
	}
	return m.script[idx]()
}

func success(tokens ...string) func() (*fakeStream, error) {
	return func() (*fakeStream, error) {
		return &fakeStream{tokens: tokens, terminal: io.EOF}, nil
	}
}

func failOpen(err error) func() (*fakeStream, error) {
	return func() (*fakeStream, error) { return nil, err }
}

func newTestClient(m *fakeModel) *Client {
	c := NewClient(m, "test-model", "You are a helpful assistant.")
	c.backoff = time.Millisecond
	return c
}

func TestSendMessageStreamsTokensInOrder(t *testing.T) {
	m := &fakeModel{script: []func() (*fakeStream, error){success("Hel", "lo ", "world")}}
	c := newTestClient(m)

	var got []string
	var completed string
	full, err := c.SendMessage(context.Background(), "hi", Callbacks{
		OnToken:    func(tok string) { got = append(got, tok) },
		OnComplete: func(f string) { completed = f },
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if full != "Hello world" {
		t.Errorf("full = %q, want %q", full, "Hello world")
	}
	if completed != full {
		t.Errorf("OnComplete got %q, want %q", completed, full)
	}
	if strings.Join(got, "") != full {
		t.Errorf("tokens %q do not assemble to %q", got, full)
	}
}

func TestSendMessageAppendsHistory(t *testing.T) {
	m := &fakeModel{script: []func() (*fakeStream, error){success("one"), success("two")}}
	c := newTestClient(m)

	if _, err := c.SendMessage(context.Background(), "first", Callbacks{}); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if _, err := c.SendMessage(context.Background(), "second", Callbacks{}); err != nil {
		t.Fatalf("second send: %v", err)
	}

	h := c.History()
	if len(h) != 4 {
		t.Fatalf("history length = %d, want 4", len(h))
	}
	if h[0].Role != schema.User || h[1].Role != schema.Assistant {
		t.Errorf("unexpected roles: %s, %s", h[0].Role, h[1].Role)
	}
	if h[3].Content != "two" {
		t.Errorf("last assistant turn = %q, want %q", h[3].Content, "two")
	}

	// Outgoing request carries the system prompt plus the full transcript.
	if len(m.lastMsgs) != 4 { // system + user + assistant + user
		t.Fatalf("outgoing messages = %d, want 4", len(m.lastMsgs))
	}
	if m.lastMsgs[0].Role != schema.System {
		t.Errorf("first outgoing role = %s, want system", m.lastMsgs[0].Role)
	}
}

func TestSendMessageRetriesThrottling(t *testing.T) {
	throttle := errors.New("429 too many requests")
	m := &fakeModel{script: []func() (*fakeStream, error){
		failOpen(throttle),
		failOpen(throttle),
		success("ok"),
	}}
	c := newTestClient(m)

	full, err := c.SendMessage(context.Background(), "hi", Callbacks{})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if full != "ok" {
		t.Errorf("full = %q, want %q", full, "ok")
	}
	if m.attempts != 3 {
		t.Errorf("attempts = %d, want 3", m.attempts)
	}
}

func TestSendMessageGivesUpAfterMaxRetries(t *testing.T) {
	m := &fakeModel{script: []func() (*fakeStream, error){
		failOpen(errors.New("rate limit exceeded")),
	}}
	c := newTestClient(m)

	var reported *Error
	_, err := c.SendMessage(context.Background(), "hi", Callbacks{
		OnError: func(e *Error) { reported = e },
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if m.attempts != 4 { // initial attempt + 3 retries
		t.Errorf("attempts = %d, want 4", m.attempts)
	}
	var ce *Error
	if !errors.As(err, &ce) || ce.Code != CodeThrottled {
		t.Errorf("error = %v, want THROTTLED", err)
	}
	if reported == nil || reported.Code != CodeThrottled {
		t.Errorf("OnError got %v, want THROTTLED", reported)
	}
}

func TestSendMessageDoesNotRetryAccessDenied(t *testing.T) {
	m := &fakeModel{script: []func() (*fakeStream, error){
		failOpen(errors.New("401 invalid api key")),
	}}
	c := newTestClient(m)

	_, err := c.SendMessage(context.Background(), "hi", Callbacks{})
	var ce *Error
	if !errors.As(err, &ce) || ce.Code != CodeAccessDenied {
		t.Fatalf("error = %v, want ACCESS_DENIED", err)
	}
	if m.attempts != 1 {
		t.Errorf("attempts = %d, want 1", m.attempts)
	}
}

func TestSendMessageMidStreamErrorRetries(t *testing.T) {
	m := &fakeModel{script: []func() (*fakeStream, error){
		func() (*fakeStream, error) {
			return &fakeStream{tokens: []string{"par"}, terminal: errors.New("throttled mid response")}, nil
		},
		success("full answer"),
	}}
	c := newTestClient(m)

	full, err := c.SendMessage(context.Background(), "hi", Callbacks{})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if full != "full answer" {
		t.Errorf("full = %q, want %q", full, "full answer")
	}
	if m.attempts != 2 {
		t.Errorf("attempts = %d, want 2", m.attempts)
	}
}

func TestSendMessageRejectsConcurrentCalls(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	m := &fakeModel{script: []func() (*fakeStream, error){
		func() (*fakeStream, error) {
			close(started)
			<-release
			return &fakeStream{tokens: []string{"slow"}, terminal: io.EOF}, nil
		},
	}}
	c := newTestClient(m)

	done := make(chan error, 1)
	go func() {
		_, err := c.SendMessage(context.Background(), "first", Callbacks{})
		done <- err
	}()
	<-started

	_, err := c.SendMessage(context.Background(), "second", Callbacks{})
	var ce *Error
	if !errors.As(err, &ce) || ce.Code != CodeInvalidRequest {
		t.Fatalf("concurrent call error = %v, want INVALID_REQUEST", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	// The rejected call must not have polluted the transcript.
	if len(c.History()) != 2 {
		t.Errorf("history length = %d, want 2", len(c.History()))
	}
}

func TestResetConversationClearsHistory(t *testing.T) {
	m := &fakeModel{script: []func() (*fakeStream, error){success("hi")}}
	c := newTestClient(m)
	if _, err := c.SendMessage(context.Background(), "hello", Callbacks{}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	c.ResetConversation()
	if len(c.History()) != 0 {
		t.Errorf("history not cleared: %d entries", len(c.History()))
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		in   string
		want ErrorCode
	}{
		{"429 too many requests", CodeThrottled},
		{"request throttled, back off", CodeThrottled},
		{"quota exceeded for project", CodeThrottled},
		{"403 forbidden", CodeAccessDenied},
		{"missing api key", CodeAccessDenied},
		{"model not found: claude-x", CodeModelNotAvailable},
		{"the requested resource is unavailable", CodeModelNotAvailable},
		{"400 bad request", CodeInvalidRequest},
		{"connection reset by peer", CodeUnknown},
	}
	for _, tc := range cases {
		got := Classify(errors.New(tc.in), "test-model")
		if got.Code != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.in, got.Code, tc.want)
		}
	}

	me := Classify(errors.New("model not found"), "claude-sonnet-4-20250514")
	if !strings.Contains(me.Message, "claude-sonnet-4-20250514") {
		t.Errorf("model-unavailable message %q does not name the model", me.Message)
	}
}
