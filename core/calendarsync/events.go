package calendarsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
)

// PropertyKey is the private extended property holding the task id on
// mirrored events.
const PropertyKey = "taskclock_id"

// ErrNoCredentials means the session that made a change has not signed in.
// Such jobs are skipped, not retried.
var ErrNoCredentials = errors.New("no calendar credentials for session")

// Event is a task placed on a concrete day.
type Event struct {
	TaskID      int64
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// EventFor places task on the date of day, in day's location.
func EventFor(task tasksrepo.Task, day time.Time) Event {
	return Event{
		TaskID:      task.ID,
		Summary:     task.Text,
		Description: fmt.Sprintf("Scheduled on taskclock, %s.\nColor: %s", task.Span(), task.Color),
		Start:       task.StartTime.On(day),
		End:         task.EndTime.On(day),
	}
}

// EventsAPI writes mirrored events to one calendar.
type EventsAPI interface {
	Upsert(ctx context.Context, ev Event) error
	Delete(ctx context.Context, taskID int64) error
}

// Source resolves the calendar API acting for a viewer session.
type Source interface {
	For(ctx context.Context, session string) (EventsAPI, error)
}
