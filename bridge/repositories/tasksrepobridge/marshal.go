package tasksrepobridge

import (
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
)

func MarshalToBridge(task tasksrepo.Task) Task {
	return Task{
		ID:        task.ID,
		Text:      task.Text,
		StartTime: task.StartTime.String(),
		EndTime:   task.EndTime.String(),
		Color:     task.Color,
		Span:      task.Span(),
	}
}

// MarshalTimelineToBridge converts timeline entries, keeping their order.
func MarshalTimelineToBridge(entries []tasksrepo.TimelineEntry) []Task {
	out := make([]Task, len(entries))
	for i, e := range entries {
		out[i] = MarshalToBridge(e.Task)
		out[i].Completed = e.Completed
	}
	return out
}
