package retrieval

// Request models
type AddDocumentsRequest struct {
	Documents []Document  `json:"documents,omitempty"`
	Source    string      `json:"source,omitempty"`
	Scope     string      `json:"scope,omitempty"`
	Metadata  interface{} `json:"metadata,omitempty"`
}

type Document struct {
	Content  string `json:"content"`
	FileName string `json:"fileName,omitempty"`
	FileType string `json:"fileType,omitempty"`
}

type SearchRequest struct {
	Query               string  `json:"query"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	TopK                int     `json:"top_k,omitempty"`
	Scope               string  `json:"scope,omitempty"`
}

type DeleteSourceRequest struct {
	Source string `json:"source,omitempty"`
	ByDoc  bool   `json:"by_doc,omitempty"`
}

// Response models
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

type SearchResult struct {
	DocumentID string  `json:"document_id"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	Metadata   struct {
		FileName string `json:"file_name"`
		Source   string `json:"source"`
	} `json:"metadata"`
}

// Snippet is one retrieved passage handed to the agent as tool output.
type Snippet struct {
	Text   string
	Source string
	Score  float64
}
