package assistant

// Request is one assistant call. Context is optional; missing pieces are
// filled with the defaults in defaults.go.
type Request struct {
	Feature Feature
	Input   string
	Context *RequestContext
}

// RequestContext carries caller-sourced data (team roster, task list, task
// attributes). The assistant never fetches it itself.
type RequestContext struct {
	Priority     string
	Assignee     string
	SubtaskCount *int
	Tasks        []TaskSummary
	// nil selects the default roster, an empty slice is an empty roster.
	Team []TeamMember
}

// TaskData is the input of a completion-time prediction.
type TaskData struct {
	Description  string
	Priority     string
	Assignee     string
	SubtaskCount int
}

type TaskSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Assignee string `json:"assignee"`
	Priority string `json:"priority"`
	DueDate  string `json:"due_date"`
}

type TeamMember struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Workload int    `json:"workload"` // 0-10
}

type Subtask struct {
	Title          string  `json:"title"`
	EstimatedHours float64 `json:"estimated_hours"`
}

type AnalyzeOutput struct {
	Subtasks []Subtask `json:"subtasks"`
}

type PredictOutput struct {
	Hours int `json:"hours"`
}

type Bottleneck struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

type BottleneckReport struct {
	Bottlenecks []Bottleneck `json:"bottlenecks"`
}

type AssignOutput struct {
	Assignee string `json:"assignee"`
}
