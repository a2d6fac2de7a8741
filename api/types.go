package api

import "fmt"

// Session is the server-issued handle to one indexed document plus its
// metadata. It is produced exactly once per successful upload and is
// immutable for its lifetime.
type Session struct {
	SessionID   string `json:"session_id"`
	Filename    string `json:"filename"`
	TotalPages  int    `json:"total_pages"`
	TotalChunks int    `json:"total_chunks"`
}

// HistoryEntry is one prior conversation turn replayed to the backend.
// Citations are derived data, not conversational state, so they are
// never part of the history payload.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat on the document deployment.
type ChatRequest struct {
	SessionID   string         `json:"session_id"`
	Question    string         `json:"question"`
	ChatHistory []HistoryEntry `json:"chat_history"`
}

// ChatResponse is one complete answer with the page numbers cited as
// evidence. SourcePages may be empty.
type ChatResponse struct {
	Answer      string `json:"answer"`
	SourcePages []int  `json:"source_pages"`
}

// TokenResponse is returned by POST /api/login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
}

// Error is a backend failure: a non-2xx response with its decoded
// {"detail": ...} body. When the body carries no detail, Detail holds
// a generic description of the HTTP status.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
}
