package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mkhalor/juno/internal/retrieval"
)

// Tool is one capability the assistant can invoke during a turn.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]interface{}
	Run         func(ctx context.Context, input json.RawMessage) (string, error)
}

func stringArg(input json.RawMessage, key string) string {
	var args map[string]interface{}
	if err := json.Unmarshal(input, &args); err != nil {
		return ""
	}
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func textInputSchema(name, description string) map[string]interface{} {
	return map[string]interface{}{
		name: map[string]interface{}{
			"type":        "string",
			"description": description,
		},
	}
}

// HRTools returns the assistant's tool set. The HRIS-backed tools are stubs
// answering with fixed data until the real integrations land; KnowledgeBase
// delegates to the external retrieval service.
func HRTools(kb *retrieval.Service) []Tool {
	tools := []Tool{
		{
			Name:        "GetLeaveBalance",
			Description: "Check remaining leave days for a user.",
			InputSchema: textInputSchema("user_id", "Identifier of the employee."),
			Run: func(ctx context.Context, input json.RawMessage) (string, error) {
				return "You have 8 leave days remaining.", nil
			},
		},
		{
			Name:        "SubmitLeaveRequest",
			Description: "Submit a leave request.",
			InputSchema: map[string]interface{}{
				"date": map[string]interface{}{
					"type":        "string",
					"description": "Requested leave date.",
				},
				"reason": map[string]interface{}{
					"type":        "string",
					"description": "Reason for the leave request.",
				},
			},
			Run: func(ctx context.Context, input json.RawMessage) (string, error) {
				date := stringArg(input, "date")
				reason := stringArg(input, "reason")
				return fmt.Sprintf("Leave request for %s (%s) submitted!", date, reason), nil
			},
		},
		{
			Name:        "LookupPolicy",
			Description: "Look up HR policy details.",
			InputSchema: textInputSchema("topic", "Policy topic to look up."),
			Run: func(ctx context.Context, input json.RawMessage) (string, error) {
				topic := stringArg(input, "topic")
				return fmt.Sprintf("Policy for %s: [Mock policy details here]", topic), nil
			},
		},
		{
			Name:        "EscalateToHR",
			Description: "Escalate complex queries to a human HR rep.",
			InputSchema: textInputSchema("request", "Summary of what the employee needs."),
			Run: func(ctx context.Context, input json.RawMessage) (string, error) {
				return "Your request has been escalated to HR. Someone will contact you soon.", nil
			},
		},
		{
			Name:        "CalendarAPI",
			Description: "Check company holidays and events.",
			InputSchema: textInputSchema("query", "Holiday or event to check."),
			Run: func(ctx context.Context, input json.RawMessage) (string, error) {
				return "Next company holiday is on July 4th.", nil
			},
		},
	}

	if kb != nil {
		tools = append(tools, Tool{
			Name:        "KnowledgeBase",
			Description: "Semantic search over HR documents.",
			InputSchema: textInputSchema("query", "Question to search the HR knowledge base for."),
			Run: func(ctx context.Context, input json.RawMessage) (string, error) {
				query := stringArg(input, "query")
				snippets, err := kb.Retrieve(ctx, query, 3)
				if err != nil {
					return "", err
				}
				if len(snippets) == 0 {
					return "No relevant information found in the knowledge base.", nil
				}
				out := ""
				for i, snippet := range snippets {
					if i > 0 {
						out += "\n"
					}
					out += snippet.Text
				}
				return out, nil
			},
		})
	}

	return tools
}
