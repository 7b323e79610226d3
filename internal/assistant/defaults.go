package assistant

const (
	defaultPriority     = "medium"
	defaultAssignee     = "team member"
	defaultSubtaskCount = 3
)

// DefaultTeam is the roster used when the caller does not send one.
var DefaultTeam = []TeamMember{
	{Name: "Hasan Aufar", Role: "Project Manager", Workload: 7},
	{Name: "Tegar Pratama", Role: "Frontend Developer", Workload: 5},
	{Name: "Rafi Hidayat", Role: "Backend Engineer", Workload: 6},
	{Name: "Fito Ananda", Role: "AI Engineer", Workload: 4},
	{Name: "Andre Saputra", Role: "UI/UX Designer", Workload: 3},
}

func (r Request) taskData() TaskData {
	data := TaskData{
		Description:  r.Input,
		Priority:     defaultPriority,
		Assignee:     defaultAssignee,
		SubtaskCount: defaultSubtaskCount,
	}
	if r.Context == nil {
		return data
	}
	if r.Context.Priority != "" {
		data.Priority = r.Context.Priority
	}
	if r.Context.Assignee != "" {
		data.Assignee = r.Context.Assignee
	}
	if r.Context.SubtaskCount != nil {
		data.SubtaskCount = *r.Context.SubtaskCount
	}
	return data
}

// tasks falls back to a single in-progress task titled with the input.
func (r Request) tasks() []TaskSummary {
	if r.Context != nil && len(r.Context.Tasks) > 0 {
		return r.Context.Tasks
	}
	return []TaskSummary{{
		ID:       "1",
		Title:    r.Input,
		Status:   "in_progress",
		Assignee: "Tegar Pratama",
		Priority: "high",
		DueDate:  "2025-01-15",
	}}
}

func (r Request) roster() []TeamMember {
	if r.Context != nil && r.Context.Team != nil {
		return r.Context.Team
	}
	return DefaultTeam
}
