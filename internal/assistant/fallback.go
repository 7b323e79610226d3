package assistant

import (
	"fmt"
	"slices"
)

const (
	MinHours     = 1
	MaxHours     = 40
	DefaultHours = 8

	Unassigned = "Unassigned"
)

var defaultSubtasks = []Subtask{
	{Title: "Research and planning", EstimatedHours: 2},
	{Title: "Implementation", EstimatedHours: 4},
	{Title: "Testing and review", EstimatedHours: 1},
}

// fallbacks depend only on the feature and, for assign, the caller's roster.
// They never look at partial model output.
var fallbacks = map[Feature]func(Request) any{
	FeatureAnalyze: func(Request) any {
		return AnalyzeOutput{Subtasks: slices.Clone(defaultSubtasks)}
	},
	FeaturePredict: func(Request) any {
		return PredictOutput{Hours: DefaultHours}
	},
	FeatureBottleneck: func(Request) any {
		return BottleneckReport{Bottlenecks: []Bottleneck{}}
	},
	FeatureAssign: func(r Request) any {
		roster := r.roster()
		if len(roster) == 0 {
			return AssignOutput{Assignee: Unassigned}
		}
		return AssignOutput{Assignee: roster[0].Name}
	},
}

// Fallback returns the deterministic default output for the request's feature.
func Fallback(req Request) (any, error) {
	fn, ok := fallbacks[req.Feature]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, req.Feature)
	}
	return fn(req), nil
}

func clampHours(h int) int {
	return min(max(h, MinHours), MaxHours)
}
