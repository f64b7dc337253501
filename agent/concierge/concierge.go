// Package concierge runs the bounded model/tool loop for one user turn.
package concierge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/mall-concierge/agent/contract"
	"github.com/tanpawarit/mall-concierge/agent/tool"
)

// MaxRounds caps model calls per user turn.
const MaxRounds = 5

type Option func(*Concierge)

func WithMaxRounds(n int) Option {
	return func(c *Concierge) {
		if n > 0 {
			c.maxRounds = n
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Concierge) {
		c.logger = &logger
	}
}

type Request struct {
	UserID  string
	Message string
	History []*schema.Message
}

// Reply carries the final text and the full updated history. Converged is
// false when the round ceiling was reached before a plain-text answer.
type Reply struct {
	Text      string
	History   []*schema.Message
	Rounds    int
	Converged bool
}

type Concierge struct {
	runner       compose.Runnable[[]*schema.Message, *schema.Message]
	tools        contractx.ToolGateway
	systemPrompt string
	maxRounds    int
	logger       *zerolog.Logger
	unavailable  error
}

// New binds the tool schemas to chatModel. A nil model means no credential
// was configured.
func New(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	tools contractx.ToolGateway,
	systemPrompt string,
	opts ...Option,
) (*Concierge, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is not configured", contractx.ErrMissingCredential)
	}
	if tools == nil {
		return nil, fmt.Errorf("%w: tool gateway is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: system prompt is empty", contractx.ErrValidation)
	}

	toolModel, err := chatModel.WithTools(tools.Infos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools: %v", contractx.ErrModelInvoke, err)
	}

	runner, err := compose.NewChain[[]*schema.Message, *schema.Message]().
		AppendChatModel(toolModel).
		Compile(ctx, compose.WithGraphName("concierge.round"))
	if err != nil {
		return nil, fmt.Errorf("%w: compile round chain: %v", contractx.ErrModelInvoke, err)
	}

	c := &Concierge{
		runner:       runner,
		tools:        tools,
		systemPrompt: systemPrompt,
		maxRounds:    MaxRounds,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Unavailable returns a Concierge whose every Chat fails with err. The HTTP
// surface uses it to keep serving account routes without a credential.
func Unavailable(err error) *Concierge {
	if err == nil {
		err = contractx.ErrMissingCredential
	}
	return &Concierge{unavailable: err}
}

// Chat appends the user message to a copy of req.History and alternates
// model calls and tool executions until the model answers in plain text or
// the round ceiling is hit. req.History is never modified.
func (c *Concierge) Chat(ctx context.Context, req Request) (Reply, error) {
	if c.unavailable != nil {
		return Reply{}, c.unavailable
	}
	if c.runner == nil {
		return Reply{}, fmt.Errorf("%w: chat model is not configured", contractx.ErrMissingCredential)
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return Reply{}, fmt.Errorf("%w: user id is empty", contractx.ErrValidation)
	}
	if strings.TrimSpace(req.Message) == "" {
		return Reply{}, fmt.Errorf("%w: message is empty", contractx.ErrValidation)
	}

	logger := c.loggerFor(ctx).With().Str("user_id", userID).Logger()

	history := make([]*schema.Message, 0, len(req.History)+4)
	history = append(history, req.History...)
	history = append(history, schema.UserMessage(req.Message))

	reply := Reply{}
	for round := 1; round <= c.maxRounds; round++ {
		reply.Rounds = round
		logger.Debug().Int("round", round).Int("history", len(history)).Msg("model round")

		input := make([]*schema.Message, 0, len(history)+1)
		input = append(input, schema.SystemMessage(c.systemPrompt))
		input = append(input, history...)

		out, err := c.runner.Invoke(ctx, input)
		if err != nil {
			return Reply{}, fmt.Errorf("%w: round %d: %v", contractx.ErrModelInvoke, round, err)
		}
		if out == nil {
			return Reply{}, fmt.Errorf("%w: round %d: empty response", contractx.ErrModelInvoke, round)
		}

		if len(out.ToolCalls) == 0 {
			history = append(history, schema.AssistantMessage(out.Content, nil))
			reply.Text = out.Content
			reply.History = history
			reply.Converged = true
			return reply, nil
		}

		history = append(history, schema.AssistantMessage(out.Content, out.ToolCalls))
		for _, call := range out.ToolCalls {
			result := c.execute(ctx, logger, userID, call)
			history = append(history, schema.ToolMessage(result.Encode(), call.ID, schema.WithToolName(call.Function.Name)))
		}
	}

	logger.Warn().Int("max_rounds", c.maxRounds).Msg("round ceiling reached without a final answer")
	reply.History = history
	return reply, nil
}

// execute never fails: unknown tools, bad arguments and executor errors all
// become Success=false results so the model can recover.
func (c *Concierge) execute(ctx context.Context, logger zerolog.Logger, userID string, call schema.ToolCall) contractx.ToolResult {
	name := strings.TrimSpace(call.Function.Name)
	kind := tool.ParseKind(name)
	if kind == tool.KindUnknown {
		err := fmt.Errorf("%w: %s", contractx.ErrUnknownTool, name)
		logger.Warn().Str("tool", name).Str("call_id", call.ID).Msg("model requested unknown tool")
		return contractx.Failure(name, "unknown tool", err)
	}

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			err = fmt.Errorf("%w: %v", contractx.ErrToolArguments, err)
			logger.Warn().Err(err).Str("tool", name).Str("call_id", call.ID).Msg("tool arguments are not valid json")
			return contractx.Failure(name, "tool arguments could not be decoded", err)
		}
		if args == nil {
			args = map[string]any{}
		}
	}
	if kind.RequiresUser() {
		args[tool.UserIDArg] = userID
	}

	result, err := c.tools.Execute(ctx, contractx.ToolRequest{
		CallID: call.ID,
		Tool:   name,
		Args:   args,
	})
	if err != nil {
		event := logger.Warn()
		if !errors.Is(err, contractx.ErrToolArguments) {
			event = logger.Error()
		}
		event.Err(err).Str("tool", name).Str("call_id", call.ID).Msg("tool execution failed")
		return contractx.Failure(name, "tool execution failed", err)
	}

	logger.Info().
		Str("tool", name).
		Str("call_id", call.ID).
		Bool("success", result.Success).
		Msg("tool executed")
	return result
}

func (c *Concierge) loggerFor(ctx context.Context) *zerolog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return log.Ctx(ctx)
}
