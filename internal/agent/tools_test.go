package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkhalor/juno/internal/retrieval"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findTool(t *testing.T, tools []Tool, name string) Tool {
	t.Helper()
	for _, tool := range tools {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %s not found", name)
	return Tool{}
}

func TestHRTools_WithoutKnowledgeBase(t *testing.T) {
	tools := HRTools(nil)

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"GetLeaveBalance", "SubmitLeaveRequest", "LookupPolicy", "EscalateToHR", "CalendarAPI"}, names)
}

func TestHRTools_StubAnswers(t *testing.T) {
	tools := HRTools(nil)
	ctx := context.Background()

	out, err := findTool(t, tools, "GetLeaveBalance").Run(ctx, json.RawMessage(`{"user_id":"e-7"}`))
	require.NoError(t, err)
	assert.Equal(t, "You have 8 leave days remaining.", out)

	out, err = findTool(t, tools, "SubmitLeaveRequest").Run(ctx, json.RawMessage(`{"date":"2026-09-14","reason":"vacation"}`))
	require.NoError(t, err)
	assert.Equal(t, "Leave request for 2026-09-14 (vacation) submitted!", out)

	out, err = findTool(t, tools, "CalendarAPI").Run(ctx, json.RawMessage(`{"query":"next holiday"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "July 4th")
}

func TestHRTools_KnowledgeBase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := retrieval.SearchResponse{
			Results: []retrieval.SearchResult{
				{Text: "Leave accrues at 1.5 days per month.", Score: 0.9},
				{Text: "Unused leave carries over up to 10 days.", Score: 0.7},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	kb := retrieval.NewService(retrieval.NewClient(server.URL, "test-key", logrus.New()), logrus.New())
	tools := HRTools(kb)

	out, err := findTool(t, tools, "KnowledgeBase").Run(context.Background(), json.RawMessage(`{"query":"leave accrual"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "1.5 days per month")
	assert.Contains(t, out, "carries over")
}

func TestHRTools_KnowledgeBaseEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(retrieval.SearchResponse{})
	}))
	defer server.Close()

	kb := retrieval.NewService(retrieval.NewClient(server.URL, "test-key", logrus.New()), logrus.New())
	tools := HRTools(kb)

	out, err := findTool(t, tools, "KnowledgeBase").Run(context.Background(), json.RawMessage(`{"query":"unknown topic"}`))
	require.NoError(t, err)
	assert.Equal(t, "No relevant information found in the knowledge base.", out)
}

func TestStringArg(t *testing.T) {
	assert.Equal(t, "x", stringArg(json.RawMessage(`{"topic":"x"}`), "topic"))
	assert.Equal(t, "", stringArg(json.RawMessage(`{"topic":3}`), "topic"))
	assert.Equal(t, "", stringArg(json.RawMessage(`not json`), "topic"))
}
