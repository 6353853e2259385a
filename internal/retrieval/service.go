package retrieval

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Service wraps the client with the two operations the rest of the system
// needs: uploading HR policy content and retrieving ranked snippets.
type Service struct {
	client *Client
	logger *logrus.Logger
}

func NewService(client *Client, logger *logrus.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

func (s *Service) AddPolicyContent(ctx context.Context, title, content, sourceURL string) error {
	req := AddDocumentsRequest{
		Documents: []Document{{
			Content:  content,
			FileName: title + ".txt",
			FileType: "text/plain",
		}},
		Source: fmt.Sprintf("hr-policies/%s", title),
		Scope:  "internal",
		Metadata: map[string]interface{}{
			"policy_title": title,
			"policy_url":   sourceURL,
			"source":       "hr_policy_pages",
		},
	}

	return s.client.AddDocumentsWithRetry(ctx, req)
}

// Retrieve returns the top ranked snippets for a query.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) ([]Snippet, error) {
	req := SearchRequest{
		Query:               query,
		SimilarityThreshold: 0.3,
		TopK:                topK,
		Scope:               "internal",
	}

	response, err := s.client.SearchWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}

	snippets := make([]Snippet, 0, len(response.Results))
	for _, result := range response.Results {
		snippets = append(snippets, Snippet{
			Text:   result.Text,
			Source: result.Metadata.FileName,
			Score:  result.Score,
		})
	}

	s.logger.WithFields(logrus.Fields{
		"query":   query,
		"results": len(snippets),
	}).Debug("Knowledge base retrieval completed")

	return snippets, nil
}

func (s *Service) DeletePolicyContent(ctx context.Context, title string) error {
	req := DeleteSourceRequest{
		Source: fmt.Sprintf("hr-policies/%s", title),
		ByDoc:  true,
	}

	return s.client.DeleteSource(req)
}
