package tasksrepo

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jrazmi/taskclock/core/clockface"
	"github.com/jrazmi/taskclock/core/scaffolding/fop"
	"github.com/jrazmi/taskclock/sdk/validation"
)

// ========================================
// MODEL
// ========================================

// Task is one time boxed activity drawn as an arc on the clock.
type Task struct {
	ID        int64               `json:"id"`
	Text      string              `json:"text"`
	StartTime clockface.TimeOfDay `json:"startTime"`
	EndTime   clockface.TimeOfDay `json:"endTime"`
	Color     string              `json:"color"`
}

// Span renders "9:00 AM to 10:30 AM".
func (t Task) Span() string {
	return fmt.Sprintf("%s to %s", t.StartTime.Clock12(), t.EndTime.Clock12())
}

// CreateTask is the submitted form. Field names match the browser form.
type CreateTask struct {
	Task      string `json:"task"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Color     string `json:"color,omitempty"`
}

// Form validation messages.
const (
	MsgTaskTooShort   = "Task must be at least 2 characters."
	MsgInvalidTime    = "Invalid time. Use HH:MM"
	MsgInvalidColor   = "Invalid color format. Use #RRGGBB"
	MsgEndBeforeStart = "End time must be after start time."
)

// Validate checks every field and reports all failures together. The
// returned task carries no ID; a blank color stays blank.
func (c CreateTask) Validate() (Task, error) {
	var fe validation.FieldErrors

	text := strings.TrimSpace(c.Task)
	if !validation.MinRunes(text, 2) {
		fe.Add("task", MsgTaskTooShort)
	}

	start, err := clockface.ParseTimeOfDay(c.StartTime)
	if err != nil {
		fe.Add("startTime", MsgInvalidTime)
	}

	end, err := clockface.ParseTimeOfDay(c.EndTime)
	if err != nil {
		fe.Add("endTime", MsgInvalidTime)
	}

	if !fe.Has("startTime") && !fe.Has("endTime") && !start.Before(end) {
		fe.Add("endTime", MsgEndBeforeStart)
	}

	color := strings.TrimSpace(c.Color)
	if color != "" && !validation.HexColor(color) {
		fe.Add("color", MsgInvalidColor)
	}

	if err := fe.Err(); err != nil {
		return Task{}, err
	}

	return Task{
		Text:      text,
		StartTime: start,
		EndTime:   end,
		Color:     color,
	}, nil
}

// TimelineEntry is a task as listed beside the clock.
type TimelineEntry struct {
	Task
	Completed bool `json:"completed"`
}

// ========================================
// ORDER
// ========================================

const (
	OrderByID        = "id"
	OrderByStartTime = "start_time"
	OrderByEndTime   = "end_time"
	OrderByText      = "text"
)

var DefaultOrderBy = fop.NewBy(OrderByStartTime, fop.ASC)

// ========================================
// DOCUMENT
// ========================================

// EncodeDocument serializes the whole list the way every store persists it.
func EncodeDocument(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return b, nil
}

// DecodeDocument parses a persisted list. Empty input is an empty list.
// Anything unparsable wraps ErrCorruptDocument.
func DecodeDocument(b []byte) ([]Task, error) {
	if len(strings.TrimSpace(string(b))) == 0 {
		return []Task{}, nil
	}

	var tasks []Task
	if err := json.Unmarshal(b, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptDocument, err)
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}
