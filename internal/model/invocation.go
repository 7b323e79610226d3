package model

import "time"

// Invocation is the history record of one assistant request.
type Invocation struct {
	ID               int64     `json:"id,string"`
	Feature          string    `json:"feature"`
	Model            string    `json:"model"`
	Source           string    `json:"source"`
	FallbackReason   *string   `json:"fallback_reason,omitempty"`
	InputText        string    `json:"input_text"`
	OutputJSON       []byte    `json:"output_json"`
	Attempts         int       `json:"attempts"`
	LatencyMs        int64     `json:"latency_ms"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	CreatedAt        time.Time `json:"created_at"`
}

const (
	InvocationSourceLive     = "live"
	InvocationSourceFallback = "fallback"
)
