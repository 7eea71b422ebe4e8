package events

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"taskmanager/backend/models"
)

// TaskEvent describes a mutation of a high-priority task.
type TaskEvent struct {
	Task   models.Task
	Action string // "created", "updated" or "deleted"
	Actor  string
}

// TaskEventService is a synchronous in-process fan-out. It is not a queue:
// nothing is persisted and a notification lost to a crash stays lost.
type TaskEventService struct {
	mu          sync.RWMutex
	subscribers []func(TaskEvent)
}

func NewTaskEventService() *TaskEventService {
	return &TaskEventService{}
}

func (s *TaskEventService) Subscribe(fn func(TaskEvent)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// Notify dispatches to all subscribers when the task is high priority.
// Calls for low/medium tasks are no-ops, so callers may call
// unconditionally after any mutation.
func (s *TaskEventService) Notify(task models.Task, action, actor string) {
	if task.Priority != models.PriorityHigh {
		return
	}
	if actor == "" {
		actor = "system"
	}
	ev := TaskEvent{Task: task, Action: action, Actor: actor}

	s.mu.RLock()
	subs := make([]func(TaskEvent), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// CriticalUpdateSubscriber returns the default subscriber: it emits a
// warning log record and appends the same line to the critical updates
// file. File errors are logged and swallowed.
func CriticalUpdateSubscriber(path string) func(TaskEvent) {
	return func(ev TaskEvent) {
		message := fmt.Sprintf("%s - [HIGH PRIORITY] - User '%s' %s task '%s'",
			time.Now().Format("2006-01-02 15:04:05"), ev.Actor, ev.Action, ev.Task.Title)

		slog.Warn(message, "source", "events")

		if err := appendLine(path, message); err != nil {
			slog.Error("failed to write critical updates log", "source", "events", "error", err.Error())
		}
	}
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line + "\n")
	return err
}
