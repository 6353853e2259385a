package models

type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
	// Intent is supplied by an external classifier when one is wired in; the
	// core only counts consecutive repeats of whatever label arrives here.
	Intent string `json:"intent"`
}

type ChatResponse struct {
	Response            string   `json:"response"`
	SessionID           string   `json:"session_id"`
	ResponseTime        float64  `json:"response_time"`
	EscalationTriggered bool     `json:"escalation_triggered"`
	ToolsUsed           []string `json:"tools_used"`
	Confidence          float64  `json:"confidence"`
}

type FeedbackRequest struct {
	SessionID           string   `json:"session_id" binding:"required"`
	UserQuery           string   `json:"user_query" binding:"required"`
	BotResponse         string   `json:"bot_response"`
	Rating              int      `json:"rating" binding:"required"`
	FeedbackText        string   `json:"feedback_text"`
	ToolsUsed           []string `json:"tools_used"`
	ResponseTime        float64  `json:"response_time"`
	EscalationTriggered bool     `json:"escalation_triggered"`
}

type ExportRequest struct {
	Destination string `json:"destination"`
}

type ExportResponse struct {
	Path string `json:"path"`
}

type StatusResponse struct {
	AgentStatus      string `json:"agent_status"`
	RetrievalStatus  string `json:"retrieval_status"`
	FeedbackStatus   string `json:"feedback_status"`
	EscalationStatus string `json:"escalation_status"`
	Uptime           string `json:"uptime"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
