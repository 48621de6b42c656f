package steering

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentify-dev/agentify/internal/conversation"
	"github.com/agentify-dev/agentify/internal/wizard"
	"github.com/agentify-dev/agentify/prompts"
)

const (
	// maxAttempts bounds generation attempts per document.
	maxAttempts = 3
	// retryBase is the first per-document backoff; the second retry doubles it.
	retryBase = 1 * time.Second
)

// ProgressType labels a generation progress event.
type ProgressType string

const (
	ProgressStart    ProgressType = "start"
	ProgressComplete ProgressType = "complete"
	ProgressError    ProgressType = "error"
)

// ProgressEvent is emitted to observers as each document starts,
// completes, or fails.
type ProgressEvent struct {
	Type     ProgressType
	FileName string
	Index    int
	Total    int
	// Content is set on ProgressComplete.
	Content string
	// Err is set on ProgressError, after retries are exhausted.
	Err error
}

// GenerationResult is the outcome of one generation run. A run with some
// failures still reports the documents that succeeded: partial output is
// written and the failures offered for retry.
type GenerationResult struct {
	// Success means every requested document was generated.
	Success bool
	// Files maps document name to generated markdown body.
	Files map[string]string
	// Errors maps document name to its terminal error.
	Errors map[string]error
	// Cancelled means the run was aborted before or during generation.
	Cancelled bool
}

// Sender is the slice of the conversation client the generator uses.
type Sender interface {
	SendMessage(ctx context.Context, text string, cb conversation.Callbacks) (string, error)
}

// ClientFactory builds a fresh single-purpose conversation for one
// document attempt. Each document gets its own conversation so a long
// transcript in one cannot bleed into another.
type ClientFactory func(ctx context.Context, systemPrompt string) (Sender, error)

// Generator fans out steering-document generation, one goroutine per
// document, with independent per-document retries.
type Generator struct {
	factory      ClientFactory
	templatesDir string

	mu        sync.Mutex
	observers []func(ProgressEvent)

	// overridable in tests
	retryBase time.Duration
}

// NewGenerator builds a generator. templatesDir may be empty; it enables
// the user's prompt-file overrides when set.
func NewGenerator(factory ClientFactory, templatesDir string) *Generator {
	return &Generator{
		factory:      factory,
		templatesDir: templatesDir,
		retryBase:    retryBase,
	}
}

// OnProgress registers an observer. Observers are called serially; a slow
// observer backpressures event delivery but never loses events.
func (g *Generator) OnProgress(fn func(ProgressEvent)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observers = append(g.observers, fn)
}

func (g *Generator) emit(ev ProgressEvent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, fn := range g.observers {
		fn(ev)
	}
}

// Generate produces every document in the session's catalog.
func (g *Generator) Generate(ctx context.Context, state *wizard.WizardState) *GenerationResult {
	return g.generateSpecs(ctx, state, Catalog(state))
}

// RetryFiles regenerates only the named documents, typically the failures
// of a previous run. Unknown names fail without an AI call.
func (g *Generator) RetryFiles(ctx context.Context, state *wizard.WizardState, names []string) *GenerationResult {
	specs := make([]FileSpec, 0, len(names))
	unknown := map[string]error{}
	for _, name := range names {
		spec, ok := SpecByName(name)
		if !ok {
			unknown[name] = fmt.Errorf("unknown steering document %q", name)
			continue
		}
		specs = append(specs, spec)
	}

	result := g.generateSpecs(ctx, state, specs)
	for name, err := range unknown {
		result.Errors[name] = err
		result.Success = false
	}
	return result
}

func (g *Generator) generateSpecs(ctx context.Context, state *wizard.WizardState, specs []FileSpec) *GenerationResult {
	result := &GenerationResult{
		Files:  make(map[string]string),
		Errors: make(map[string]error),
	}
	if len(specs) == 0 {
		result.Success = true
		return result
	}

	userContext := BuildContext(state)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for i, spec := range specs {
		wg.Add(1)
		go func(index int, spec FileSpec) {
			defer wg.Done()

			g.emit(ProgressEvent{Type: ProgressStart, FileName: spec.Name, Index: index, Total: len(specs)})
			content, err := g.generateOne(ctx, spec, userContext)

			mu.Lock()
			if err != nil {
				result.Errors[spec.Name] = err
			} else {
				result.Files[spec.Name] = content
			}
			mu.Unlock()

			if err != nil {
				g.emit(ProgressEvent{Type: ProgressError, FileName: spec.Name, Index: index, Total: len(specs), Err: err})
			} else {
				g.emit(ProgressEvent{Type: ProgressComplete, FileName: spec.Name, Index: index, Total: len(specs), Content: content})
			}
		}(i, spec)
	}
	wg.Wait()

	result.Success = len(result.Errors) == 0
	result.Cancelled = ctx.Err() != nil
	return result
}

// generateOne runs up to maxAttempts for a single document, each attempt
// on a fresh conversation. Backoff between attempts grows linearly with
// the base doubling once (1s then 2s by default).
func (g *Generator) generateOne(ctx context.Context, spec FileSpec, userContext string) (string, error) {
	systemPrompt, err := prompts.GetPrompt(spec.Prompt, g.templatesDir)
	if err != nil {
		return "", fmt.Errorf("load prompt for %s: %w", spec.Name, err)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, g.retryBase<<(attempt-1)); err != nil {
				return "", err
			}
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		client, err := g.factory(ctx, systemPrompt)
		if err != nil {
			lastErr = err
			continue
		}
		content, err := client.SendMessage(ctx, userContext, conversation.Callbacks{})
		if err == nil {
			return content, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("generate %s: %w", spec.Name, lastErr)
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
