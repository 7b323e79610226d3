package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"basegraph.app/assist/internal/assistant"
	"basegraph.app/assist/internal/model"
)

// AssistantRequest keeps input and context raw so the feature can be resolved
// before either is interpreted.
type AssistantRequest struct {
	Feature json.RawMessage `json:"feature"`
	Input   json.RawMessage `json:"input"`
	Context json.RawMessage `json:"context,omitempty"`
}

// FeatureName returns the feature when it was sent as a JSON string, and ""
// for anything else, which no feature matches.
func (r AssistantRequest) FeatureName() string {
	var name string
	if err := json.Unmarshal(r.Feature, &name); err != nil {
		return ""
	}
	return name
}

type AssistantContext struct {
	Priority     string                  `json:"priority,omitempty"`
	Assignee     string                  `json:"assignee,omitempty" binding:"max=255"`
	SubtaskCount *int                    `json:"subtask_count,omitempty" binding:"omitempty,min=0,max=100"`
	Tasks        []assistant.TaskSummary `json:"tasks,omitempty" binding:"max=200"`
	Team         []assistant.TeamMember  `json:"team,omitempty" binding:"max=100"`
}

// InputText renders input as prompt text. JSON strings are unquoted; any other
// value is used in its compact JSON form, and a missing input is empty.
func (r AssistantRequest) InputText() string {
	raw := bytes.TrimSpace(r.Input)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}

// DecodeContext returns nil when no context was sent.
func (r AssistantRequest) DecodeContext() (*AssistantContext, error) {
	raw := bytes.TrimSpace(r.Context)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var reqCtx AssistantContext
	if err := json.Unmarshal(raw, &reqCtx); err != nil {
		return nil, err
	}
	return &reqCtx, nil
}

func (c *AssistantContext) ToRequestContext() *assistant.RequestContext {
	if c == nil {
		return nil
	}
	return &assistant.RequestContext{
		Priority:     c.Priority,
		Assignee:     c.Assignee,
		SubtaskCount: c.SubtaskCount,
		Tasks:        c.Tasks,
		Team:         c.Team,
	}
}

type InvocationResponse struct {
	ID               int64     `json:"id,string"`
	Feature          string    `json:"feature"`
	Model            string    `json:"model"`
	Source           string    `json:"source"`
	FallbackReason   *string   `json:"fallback_reason,omitempty"`
	Input            string    `json:"input"`
	Output           any       `json:"output"`
	Attempts         int       `json:"attempts"`
	LatencyMs        int64     `json:"latency_ms"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	CreatedAt        time.Time `json:"created_at"`
}

type rawJSON []byte

func (r rawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func ToInvocationResponse(inv model.Invocation) InvocationResponse {
	return InvocationResponse{
		ID:               inv.ID,
		Feature:          inv.Feature,
		Model:            inv.Model,
		Source:           inv.Source,
		FallbackReason:   inv.FallbackReason,
		Input:            inv.InputText,
		Output:           rawJSON(inv.OutputJSON),
		Attempts:         inv.Attempts,
		LatencyMs:        inv.LatencyMs,
		PromptTokens:     inv.PromptTokens,
		CompletionTokens: inv.CompletionTokens,
		CreatedAt:        inv.CreatedAt,
	}
}

func ToInvocationResponses(invocations []model.Invocation) []InvocationResponse {
	responses := make([]InvocationResponse, len(invocations))
	for i, inv := range invocations {
		responses[i] = ToInvocationResponse(inv)
	}
	return responses
}
