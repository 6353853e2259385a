package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"
)

const systemPrompt = "You are an HR assistant for employees. Answer questions about leave, " +
	"policies, payroll and company events. Use the available tools when they can " +
	"answer the question; prefer KnowledgeBase for policy questions. Keep answers " +
	"short and practical. If you cannot answer, say so plainly."

const maxToolRounds = 5

// Confidence is not yet produced by the model; these constants mirror what the
// presentation layers expect until a real scorer is wired in.
const (
	ConfidenceDefault = 0.7
	confidenceAnswer  = 0.8
	confidenceError   = 0.3
)

// Result is what one agent turn reports back for the feedback record.
type Result struct {
	Response string
	// ToolsUsed is the ordered list of tool names the loop actually invoked,
	// populated directly rather than scraped from the response text.
	ToolsUsed    []string
	ResponseTime float64
	Confidence   float64
	Fallback     bool
}

// Agent runs the Claude-backed conversational loop. It is a thin collaborator:
// escalation decisions and feedback persistence happen outside of it.
type Agent struct {
	client anthropic.Client
	model  string
	tools  []Tool
	logger *logrus.Logger
}

func New(apiKey, model string, tools []Tool, logger *logrus.Logger, opts ...option.RequestOption) *Agent {
	clientOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Agent{
		client: anthropic.NewClient(clientOpts...),
		model:  model,
		tools:  tools,
		logger: logger,
	}
}

// Respond runs one turn: model call, tool dispatch rounds, final text.
// Errors are folded into a fallback result so the caller always has something
// to show and to rate.
func (a *Agent) Respond(ctx context.Context, userInput string) Result {
	start := time.Now()

	text, toolsUsed, err := a.converse(ctx, userInput)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		a.logger.WithError(err).Error("Agent turn failed")
		return Result{
			Response:     fmt.Sprintf("I'm sorry, I encountered an error: %v", err),
			ToolsUsed:    []string{},
			ResponseTime: elapsed,
			Confidence:   confidenceError,
			Fallback:     true,
		}
	}

	if text == "" {
		text = "I'm sorry, I couldn't process your request."
	}

	return Result{
		Response:     text,
		ToolsUsed:    toolsUsed,
		ResponseTime: elapsed,
		Confidence:   confidenceAnswer,
	}
}

func (a *Agent) converse(ctx context.Context, userInput string) (string, []string, error) {
	toolParams := make([]anthropic.ToolUnionParam, 0, len(a.tools))
	for _, tool := range a.tools {
		toolParams = append(toolParams, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name,
				Description: anthropic.String(tool.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: tool.InputSchema,
				},
			},
		})
	}

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(userInput)),
	}
	toolsUsed := []string{}

	for round := 0; round <= maxToolRounds; round++ {
		message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(a.model),
			MaxTokens: 1024,
			System: []anthropic.TextBlockParam{
				{Text: systemPrompt},
			},
			Messages: messages,
			Tools:    toolParams,
		})
		if err != nil {
			return "", nil, fmt.Errorf("anthropic API error: %w", err)
		}

		if message.StopReason != anthropic.StopReasonToolUse {
			return collectText(message), toolsUsed, nil
		}

		messages = append(messages, message.ToParam())

		var results []anthropic.ContentBlockParamUnion
		for _, block := range message.Content {
			toolUse, ok := block.AsAny().(anthropic.ToolUseBlock)
			if !ok {
				continue
			}

			toolsUsed = append(toolsUsed, toolUse.Name)

			output, err := a.runTool(ctx, toolUse.Name, toolUse.Input)
			isError := err != nil
			if isError {
				a.logger.WithError(err).WithField("tool", toolUse.Name).Warn("Tool invocation failed")
				output = fmt.Sprintf("tool error: %v", err)
			}

			results = append(results, anthropic.NewToolResultBlock(toolUse.ID, output, isError))
		}

		if len(results) == 0 {
			return collectText(message), toolsUsed, nil
		}

		messages = append(messages, anthropic.NewUserMessage(results...))
	}

	return "", toolsUsed, fmt.Errorf("tool loop exceeded %d rounds", maxToolRounds)
}

func (a *Agent) runTool(ctx context.Context, name string, input []byte) (string, error) {
	for _, tool := range a.tools {
		if tool.Name == name {
			return tool.Run(ctx, input)
		}
	}
	return "", fmt.Errorf("unknown tool: %s", name)
}

func collectText(message *anthropic.Message) string {
	text := ""
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text
}
