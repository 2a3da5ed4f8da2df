package tasksrepobridge

import (
	"net/http"
	"strconv"

	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
	"github.com/jrazmi/taskclock/infrastructure/web"
	"github.com/jrazmi/taskclock/sdk/validation"
)

// PATH
type queryPath struct {
	TaskID int64
}

func parsePath(r *http.Request) (queryPath, error) {
	raw := web.Param(r, "task_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		var fe validation.FieldErrors
		fe.Add("task_id", "must be a positive integer")
		return queryPath{}, fe.Err()
	}
	return queryPath{TaskID: id}, nil
}

// ORDER
var orderByFields = map[string]string{
	"id":         tasksrepo.OrderByID,
	"start_time": tasksrepo.OrderByStartTime,
	"end_time":   tasksrepo.OrderByEndTime,
	"text":       tasksrepo.OrderByText,
}
