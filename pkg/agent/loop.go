package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nadia/taskwise/internal/config"
	"github.com/nadia/taskwise/internal/observability"
	"github.com/nadia/taskwise/pkg/tools"
	"github.com/rs/zerolog"
)

// maxToolRounds caps the number of model round trips within a single
// turn so a misbehaving model cannot spin forever.
const maxToolRounds = 10

// roundCapResponse is returned when the cap is reached before the
// model produced a plain text answer.
const roundCapResponse = "I've completed several actions but had to stop. Please continue."

// Sentinel results fed back to the model in place of tool output.
const (
	errUnknownTool = "unknown_tool"
	errToolFailed  = "tool_execution_failed"
)

// dispatcher routes model-requested tool calls to the registry. It
// injects the acting user's identity into every call and keeps it out
// of the durable trace.
type dispatcher struct {
	registry *tools.Registry
	userID   string
	logger   zerolog.Logger
}

// dispatch executes one tool call and returns the result to feed back
// to the model along with its durable record. Failures never surface
// as errors; the model sees a sentinel result and decides how to
// proceed.
func (d *dispatcher) dispatch(ctx context.Context, call ToolCall) (interface{}, ToolCallRecord) {
	recorded := make(map[string]interface{}, len(call.Parameters))
	for k, v := range call.Parameters {
		if k != tools.UserIDParam {
			recorded[k] = v
		}
	}

	var result interface{}

	switch {
	case !d.registry.Has(call.Name):
		d.logger.Warn().Str("tool", call.Name).Msg("Model requested unknown tool")
		result = map[string]interface{}{"error": errUnknownTool}
	default:
		args := make(map[string]interface{}, len(recorded)+1)
		for k, v := range recorded {
			args[k] = v
		}
		args[tools.UserIDParam] = d.userID

		res := d.registry.Execute(ctx, call.Name, args)
		if res.Success {
			result = res.Output
		} else {
			d.logger.Error().
				Str("tool", call.Name).
				Str("error", res.Error).
				Msg("Tool execution failed")
			result = map[string]interface{}{"error": errToolFailed}
		}
	}

	return result, ToolCallRecord{Tool: call.Name, Arguments: recorded, Result: result}
}

// invocationLoop drives the bounded model/tool cycle for one turn.
type invocationLoop struct {
	provider ModelProvider
	registry *tools.Registry
	model    config.ModelConfig
	logger   zerolog.Logger
}

// run alternates model calls and tool dispatch until the model answers
// in plain text or the round cap is hit. Tool calls within a batch run
// sequentially in the order the model emitted them.
func (l *invocationLoop) run(ctx context.Context, messages []Message, disp *dispatcher) (string, []ToolCallRecord, *TokenUsage, error) {
	current := messages
	records := []ToolCallRecord{}

	systemPrompt := ""
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			systemPrompt = msg.Content
			break
		}
	}

	var usage *TokenUsage

	for round := 0; round < maxToolRounds; round++ {
		select {
		case <-ctx.Done():
			return "", records, usage, ctx.Err()
		default:
		}

		response, err := l.callModelWithRetry(ctx, current, systemPrompt)
		if err != nil {
			return "", records, usage, err
		}
		usage = response.Usage

		// No tool calls, the model is done
		if len(response.ToolCalls) == 0 {
			return strings.TrimSpace(response.Content), records, usage, nil
		}

		current = append(current, Message{
			Role:      RoleAssistant,
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		})

		for _, call := range response.ToolCalls {
			result, record := disp.dispatch(ctx, call)
			records = append(records, record)

			current = append(current, Message{
				Role:       RoleTool,
				Content:    encodeToolResult(result),
				ToolCallID: call.ID,
			})
		}
	}

	l.logger.Warn().
		Int("rounds", maxToolRounds).
		Int("tool_calls", len(records)).
		Msg("Tool round cap reached")

	return roundCapResponse, records, usage, nil
}

// callModelWithRetry calls the model with exponential backoff retry
func (l *invocationLoop) callModelWithRetry(ctx context.Context, messages []Message, systemPrompt string) (*ModelResponse, error) {
	maxRetries := l.model.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	request := ModelRequest{
		Model:        l.model.Name,
		Messages:     messages,
		Tools:        l.registry.Schemas(),
		Temperature:  l.model.Temperature,
		MaxTokens:    l.model.MaxTokens,
		SystemPrompt: systemPrompt,
	}

	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		start := time.Now()
		response, err := l.provider.Call(ctx, request)
		observability.RecordModelCall(l.provider.Provider(), time.Since(start), err == nil)
		if err == nil {
			return response, nil
		}

		lastErr = err

		// Don't retry on permanent errors
		if !IsRetryableError(err) {
			return nil, err
		}

		// Last attempt - don't wait
		if attempt == maxRetries-1 {
			break
		}

		// Exponential backoff: 1s, 2s, 4s
		delay := time.Duration(1000*(1<<attempt)) * time.Millisecond
		l.logger.Info().
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Retrying model call after error")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, lastErr)
}

// encodeToolResult serializes a tool result for the model. Results are
// arbitrary JSON-shaped values produced by tool handlers.
func encodeToolResult(result interface{}) string {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(data)
}
