package models

// OutboundMessageRequest represents requests to send a message manually via the API.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// DigestResult reports what a digest delivery sent.
type DigestResult struct {
	To       string `json:"to"`
	Text     string `json:"text"`
	Messages int    `json:"messages"`
}
