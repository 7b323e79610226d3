package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Prompt is the system/user instruction pair sent to the model.
type Prompt struct {
	System string
	User   string
}

const analyzeSystemPrompt = `You are Shuri, the brilliant AI assistant from Wakanda. Analyze project tasks and break them down into actionable subtasks.
Return a JSON array of subtask objects with 'title' and 'estimated_hours' fields. Keep subtasks specific and actionable.`

const predictSystemPrompt = `You are Shuri's AI system analyzing project timelines. Based on task complexity, priority, and team member workload,
predict realistic completion times. Return only a number representing estimated hours.`

const bottleneckSystemPrompt = `You are Shuri's project analysis AI. Identify potential bottlenecks and risks in project workflows.
Return a JSON object with a 'bottlenecks' array containing objects with 'type', 'description', and 'severity' fields.`

const assignSystemPrompt = `You are Shuri's team optimization AI. Recommend the best team member for a task based on their role,
skills, and current workload. Return only the team member's name.`

// BuildAnalyzePrompt asks for 3-5 subtasks of the description as a JSON array.
func BuildAnalyzePrompt(description string) Prompt {
	return Prompt{
		System: analyzeSystemPrompt,
		User:   fmt.Sprintf("Break down this task into 3-5 subtasks: \"%s\"", description),
	}
}

// BuildPredictPrompt asks for a single integer number of hours.
func BuildPredictPrompt(task TaskData) Prompt {
	var b strings.Builder
	b.WriteString("Estimate completion time for:\n")
	fmt.Fprintf(&b, "Task: %s\n", task.Description)
	fmt.Fprintf(&b, "Priority: %s\n", task.Priority)
	fmt.Fprintf(&b, "Assignee: %s\n", task.Assignee)
	fmt.Fprintf(&b, "Subtasks: %d\n\n", task.SubtaskCount)
	b.WriteString("Consider: High priority = faster completion, more subtasks = longer time.\n")
	b.WriteString("Return only the estimated hours as a number.")

	return Prompt{System: predictSystemPrompt, User: b.String()}
}

// BuildBottleneckPrompt serializes the task list as indented JSON.
func BuildBottleneckPrompt(tasks []TaskSummary) Prompt {
	if tasks == nil {
		tasks = []TaskSummary{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		data = []byte(fmt.Sprintf("%+v", tasks))
	}

	var b strings.Builder
	b.WriteString("Analyze this project data for bottlenecks:\n")
	b.Write(data)
	b.WriteString("\n\nLook for: overloaded assignees, missed deadlines, too many high-priority tasks, blocked dependencies.")

	return Prompt{System: bottleneckSystemPrompt, User: b.String()}
}

// BuildAssignPrompt lists the roster as "name - role (workload: N/10)" lines.
func BuildAssignPrompt(description string, roster []TeamMember) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Recommend assignee for: \"%s\"\n\n", description)
	b.WriteString("Team members:\n")
	for _, m := range roster {
		fmt.Fprintf(&b, "%s - %s (workload: %d/10)\n", m.Name, m.Role, m.Workload)
	}
	b.WriteString("\nConsider role relevance and workload balance. Return only the name.")

	return Prompt{System: assignSystemPrompt, User: b.String()}
}
