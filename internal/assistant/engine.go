// Package assistant runs chat turns against a model, executing the tools the
// model asks for and keeping per-conversation memory.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"costumedesk/internal/assistant/llm"
	"costumedesk/internal/assistant/memory"
	"costumedesk/internal/assistant/toolkit"
	"costumedesk/internal/platform/metrics"
	dErrors "costumedesk/pkg/domain-errors"
	"costumedesk/pkg/platform/circuit"
	"costumedesk/pkg/platform/tracer"
	"costumedesk/pkg/requestcontext"
	"costumedesk/pkg/validation"
)

// DefaultMaxToolRounds bounds model/tool round trips within one turn.
const DefaultMaxToolRounds = 5

// ErrToolLoop is returned when the model keeps calling tools past the limit.
var ErrToolLoop = errors.New("assistant exceeded tool call rounds")

// Engine executes turns for one assistant persona.
type Engine struct {
	name          string
	model         llm.Model
	systemPrompt  string
	tools         *toolkit.Registry
	memory        memory.Store
	breaker       *circuit.Breaker
	tracer        tracer.Tracer
	metrics       *metrics.Metrics
	logger        *slog.Logger
	maxToolRounds int
}

type Option func(*Engine)

func WithSystemPrompt(prompt string) Option {
	return func(e *Engine) { e.systemPrompt = prompt }
}

func WithTools(tools ...toolkit.Tool) Option {
	return func(e *Engine) { e.tools = toolkit.NewRegistry(tools...) }
}

// WithMemory keeps history per memory id. Without it every turn is stateless.
func WithMemory(store memory.Store) Option {
	return func(e *Engine) { e.memory = store }
}

// WithBreaker shares a circuit breaker across assistants using one model.
func WithBreaker(b *circuit.Breaker) Option {
	return func(e *Engine) { e.breaker = b }
}

func WithTracer(t tracer.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithMaxToolRounds(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxToolRounds = n
		}
	}
}

func NewEngine(name string, model llm.Model, opts ...Option) *Engine {
	e := &Engine{
		name:          name,
		model:         model,
		tracer:        tracer.NewNoop(),
		logger:        slog.New(slog.DiscardHandler),
		maxToolRounds: DefaultMaxToolRounds,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.breaker == nil {
		e.breaker = circuit.New(name)
	}
	return e
}

func (e *Engine) Name() string { return e.name }

type turnInput struct {
	Message string `json:"message" validate:"required,notblank,max=4000"`
}

// Turn sends text as the next user message of conversation memoryID and
// returns the model's final answer. Errors carry domain codes: validation
// for bad input, unavailable when the model cannot be reached.
func (e *Engine) Turn(ctx context.Context, memoryID, text string) (answer string, err error) {
	if err := validation.Validate(turnInput{Message: text}); err != nil {
		return "", err
	}

	ctx, span := e.tracer.Start(ctx, tracer.SpanAssistantTurn, tracer.String(tracer.AttrAssistant, e.name))
	defer func() { span.End(err) }()

	if e.metrics != nil {
		e.metrics.IncrementChatMessage(e.name)
	}

	history, err := e.loadHistory(ctx, memoryID)
	if err != nil {
		return "", err
	}
	user := llm.UserText(text)
	transcript := append(history, user)

	for round := 0; ; round++ {
		span.SetAttributes(tracer.Int(tracer.AttrRound, round))
		resp, err := e.generate(ctx, transcript)
		if err != nil {
			return "", err
		}
		if len(resp.ToolCalls) == 0 {
			answer = resp.Text
			break
		}
		if round >= e.maxToolRounds {
			e.logger.WarnContext(ctx, "assistant tool loop aborted",
				"assistant", e.name,
				"rounds", round,
				"request_id", requestcontext.RequestID(ctx),
			)
			return "", dErrors.Wrap(ErrToolLoop, dErrors.CodeUnavailable, "assistant could not complete the request")
		}
		transcript = append(transcript,
			llm.Message{Role: llm.RoleModel, ToolCalls: resp.ToolCalls},
			llm.Message{Role: llm.RoleUser, ToolResults: e.runTools(ctx, resp.ToolCalls)},
		)
	}

	if e.memory != nil && memoryID != "" {
		// tool exchanges are not persisted; the next turn sees question and answer only
		if err := e.memory.Append(ctx, memoryID, user, llm.ModelText(answer)); err != nil {
			e.logger.ErrorContext(ctx, "failed to store chat memory",
				"error", err,
				"assistant", e.name,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	return answer, nil
}

// Forget drops the history of memoryID.
func (e *Engine) Forget(ctx context.Context, memoryID string) error {
	if e.memory == nil || memoryID == "" {
		return nil
	}
	return e.memory.Clear(ctx, memoryID)
}

func (e *Engine) loadHistory(ctx context.Context, memoryID string) ([]llm.Message, error) {
	if e.memory == nil || memoryID == "" {
		return nil, nil
	}
	history, err := e.memory.Load(ctx, memoryID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "chat memory unavailable")
	}
	return history, nil
}

func (e *Engine) generate(ctx context.Context, transcript []llm.Message) (*llm.Response, error) {
	req := llm.Request{
		SystemPrompt: e.systemPrompt,
		Messages:     transcript,
		Tools:        e.tools.Definitions(),
	}

	ctx, span := e.tracer.Start(ctx, tracer.SpanModelGenerate,
		tracer.String(tracer.AttrAssistant, e.name),
		tracer.String(tracer.AttrModel, e.model.Name()),
	)
	start := time.Now()

	var resp *llm.Response
	err := e.breaker.Do(func() error {
		var genErr error
		resp, genErr = e.model.Generate(ctx, req)
		return genErr
	})
	if err == nil && resp == nil {
		err = errors.New("model returned no response")
	}
	if e.metrics != nil {
		e.metrics.ObserveModelLatency(e.name, time.Since(start).Seconds())
	}
	span.End(err)

	if err != nil {
		if e.metrics != nil {
			e.metrics.IncrementModelFailure(e.name)
		}
		if errors.Is(err, circuit.ErrOpen) {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "assistant temporarily unavailable")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "assistant timed out")
		}
		e.logger.ErrorContext(ctx, "model call failed",
			"error", err,
			"assistant", e.name,
			"model", e.model.Name(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "assistant unavailable")
	}
	span.SetAttributes(tracer.Int(tracer.AttrToolCalls, len(resp.ToolCalls)))
	return resp, nil
}

func (e *Engine) runTools(ctx context.Context, calls []llm.ToolCall) []llm.ToolResult {
	results := make([]llm.ToolResult, 0, len(calls))
	for _, call := range calls {
		results = append(results, llm.ToolResult{
			ID:       call.ID,
			Name:     call.Name,
			Response: e.runTool(ctx, call),
		})
	}
	return results
}

// runTool never fails the turn. Errors are reported to the model as an
// "error" field so it can explain the outcome to the user; internal details
// are logged and replaced by a generic message.
func (e *Engine) runTool(ctx context.Context, call llm.ToolCall) map[string]any {
	ctx, span := e.tracer.Start(ctx, tracer.SpanToolCall,
		tracer.String(tracer.AttrAssistant, e.name),
		tracer.String(tracer.AttrToolName, call.Name),
	)

	tool, ok := e.tools.Lookup(call.Name)
	if !ok {
		err := fmt.Errorf("unknown tool %q", call.Name)
		span.End(err)
		e.countTool(call.Name, metrics.OutcomeInvalid)
		return map[string]any{"error": err.Error()}
	}

	result, err := tool.Call(ctx, toolkit.Args(call.Args))
	outcome := toolOutcome(err)
	span.SetAttributes(tracer.String(tracer.AttrToolResult, outcome))
	span.End(err)
	e.countTool(call.Name, outcome)

	switch outcome {
	case metrics.OutcomeSuccess:
		return result
	case metrics.OutcomeNotFound, metrics.OutcomeInvalid:
		return map[string]any{"error": err.Error()}
	default:
		e.logger.ErrorContext(ctx, "tool call failed",
			"error", err,
			"tool", call.Name,
			"assistant", e.name,
			"request_id", requestcontext.RequestID(ctx),
		)
		return map[string]any{"error": "the tool failed, please try again later"}
	}
}

func toolOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		return metrics.OutcomeNotFound
	case dErrors.HasCode(err, dErrors.CodeInvalidInput), dErrors.HasCode(err, dErrors.CodeValidation):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}

func (e *Engine) countTool(name, outcome string) {
	if e.metrics != nil {
		e.metrics.IncrementToolCall(name, outcome)
	}
}
