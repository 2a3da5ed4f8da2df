package tasksrepobridge

import (
	"time"

	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
	"github.com/jrazmi/taskclock/sdk/logger"
)

// bridge provides HTTP handlers for task operations.
type bridge struct {
	log             *logger.Logger
	tasksRepository *tasksrepo.Repository
	now             func() time.Time
}

func newBridge(log *logger.Logger, tasksRepository *tasksrepo.Repository, now func() time.Time) *bridge {
	if now == nil {
		now = time.Now
	}
	return &bridge{
		log:             log,
		tasksRepository: tasksRepository,
		now:             now,
	}
}
