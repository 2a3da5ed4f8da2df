package tasksrepobridge

// Task is a task as the browser lists it.
type Task struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Color     string `json:"color"`
	Span      string `json:"span"`
	Completed bool   `json:"completed"`
}
