package conversation

import (
	"context"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/agentify-dev/agentify/internal/llm"
)

const (
	// backoffBase is the first throttle backoff; each retry doubles it.
	backoffBase = 1000 * time.Millisecond
	// maxRetries bounds throttle retries, so at most maxRetries+1 attempts.
	maxRetries = 3
)

// TokenStream yields response content chunk by chunk. Recv returns io.EOF
// when the response is complete.
type TokenStream interface {
	Recv() (string, error)
	Close()
}

// ChatModel is the narrow surface the client needs from a provider. The
// eino chat models are adapted onto it; tests substitute scripted fakes.
type ChatModel interface {
	Stream(ctx context.Context, messages []*schema.Message) (TokenStream, error)
}

// Callbacks receives streaming progress. Any field may be nil.
type Callbacks struct {
	// OnToken is invoked for each content chunk, in order.
	OnToken func(token string)
	// OnComplete is invoked once with the full assembled response.
	OnComplete func(full string)
	// OnError is invoked once if the call fails after retries.
	OnError func(err *Error)
}

// Client drives a single multi-turn conversation against one chat model.
// It keeps the transcript, streams responses token by token, retries
// throttling with exponential backoff, and allows one in-flight message
// at a time.
type Client struct {
	chatModel    ChatModel
	modelID      string
	systemPrompt string
	history      []*schema.Message
	inFlight     atomic.Bool

	// overridable in tests to avoid real sleeps
	backoff    time.Duration
	maxRetries int
}

// NewClient builds a client around an already-constructed model. The
// system prompt is fixed for the lifetime of the conversation.
func NewClient(chatModel ChatModel, modelID, systemPrompt string) *Client {
	return &Client{
		chatModel:    chatModel,
		modelID:      modelID,
		systemPrompt: systemPrompt,
		backoff:      backoffBase,
		maxRetries:   maxRetries,
	}
}

// NewClientForConfig resolves the configured provider into an eino chat
// model and wraps it. Each conversation gets its own client.
func NewClientForConfig(ctx context.Context, cfg llm.Config, systemPrompt string) (*Client, error) {
	cm, err := llm.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, Classify(err, cfg.ResolvedModel())
	}
	return NewClient(&einoModel{inner: cm}, cfg.ResolvedModel(), systemPrompt), nil
}

// History returns the transcript accumulated so far. The slice is shared;
// callers must not mutate it.
func (c *Client) History() []*schema.Message { return c.history }

// ResetConversation drops the transcript while keeping the model and
// system prompt.
func (c *Client) ResetConversation() { c.history = nil }

// SendMessage appends text as a user turn, streams the model's reply
// through cb, and returns the full reply. Throttling is retried with
// exponential backoff; all other errors fail immediately. A second call
// while one is still streaming fails with INVALID_REQUEST without
// touching the transcript.
func (c *Client) SendMessage(ctx context.Context, text string, cb Callbacks) (string, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		err := &Error{Code: CodeInvalidRequest, Message: "a message is already in flight on this conversation"}
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return "", err
	}
	defer c.inFlight.Store(false)

	c.history = append(c.history, schema.UserMessage(text))

	messages := make([]*schema.Message, 0, len(c.history)+1)
	if c.systemPrompt != "" {
		messages = append(messages, schema.SystemMessage(c.systemPrompt))
	}
	messages = append(messages, c.history...)

	var lastErr *Error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.backoff<<(attempt-1)); err != nil {
				lastErr = Classify(err, c.modelID)
				break
			}
		}

		full, err := c.streamOnce(ctx, messages, cb)
		if err == nil {
			c.history = append(c.history, schema.AssistantMessage(full, nil))
			if cb.OnComplete != nil {
				cb.OnComplete(full)
			}
			return full, nil
		}

		lastErr = Classify(err, c.modelID)
		if !lastErr.Retriable() {
			break
		}
	}

	if cb.OnError != nil {
		cb.OnError(lastErr)
	}
	return "", lastErr
}

func (c *Client) streamOnce(ctx context.Context, messages []*schema.Message, cb Callbacks) (string, error) {
	stream, err := c.chatModel.Stream(ctx, messages)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		token, err := stream.Recv()
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
		if token == "" {
			continue
		}
		sb.WriteString(token)
		if cb.OnToken != nil {
			cb.OnToken(token)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// einoModel adapts an eino chat model onto the ChatModel interface.
type einoModel struct {
	inner model.BaseChatModel
}

func (m *einoModel) Stream(ctx context.Context, messages []*schema.Message) (TokenStream, error) {
	sr, err := m.inner.Stream(ctx, messages)
	if err != nil {
		return nil, err
	}
	return &einoStream{inner: sr}, nil
}

type einoStream struct {
	inner *schema.StreamReader[*schema.Message]
}

func (s *einoStream) Recv() (string, error) {
	chunk, err := s.inner.Recv()
	if err != nil {
		return "", err
	}
	return chunk.Content, nil
}

func (s *einoStream) Close() { s.inner.Close() }
