package retrieval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_AddDocuments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/documents", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", logrus.New())

	req := AddDocumentsRequest{
		Documents: []Document{{
			Content: "Employees accrue 1.5 leave days per month.",
		}},
		Source: "test",
	}

	err := client.AddDocuments(req)
	require.NoError(t, err)
}

func TestClient_Search(t *testing.T) {
	expectedResponse := SearchResponse{
		Results: []SearchResult{{
			DocumentID: "doc-123",
			Text:       "Leave policy details",
			Score:      0.91,
		}},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/search", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expectedResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", logrus.New())

	response, err := client.Search(SearchRequest{
		Query:               "leave policy",
		SimilarityThreshold: 0.3,
		TopK:                3,
	})
	require.NoError(t, err)
	assert.Equal(t, expectedResponse.Results[0].DocumentID, response.Results[0].DocumentID)
	assert.Equal(t, expectedResponse.Results[0].Score, response.Results[0].Score)
}

func TestClient_ErrorHandling(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("Invalid request"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", logrus.New())

	err := client.AddDocuments(AddDocumentsRequest{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestService_RetrieveMapsSnippets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := SearchResponse{
			Results: []SearchResult{
				{DocumentID: "a", Text: "first", Score: 0.9},
				{DocumentID: "b", Text: "second", Score: 0.6},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	service := NewService(NewClient(server.URL, "test-key", logrus.New()), logrus.New())

	snippets, err := service.Retrieve(context.Background(), "leave policy", 3)
	require.NoError(t, err)
	require.Len(t, snippets, 2)
	assert.Equal(t, "first", snippets[0].Text)
	assert.Equal(t, 0.6, snippets[1].Score)
}
