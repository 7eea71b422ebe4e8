package middleware

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/gorm"

	"taskmanager/backend/database"
	"taskmanager/backend/models"
)

// taskBody is the subset of a task payload the audit classifier cares
// about. A nil Priority means the field was absent or the body unparseable.
type taskBody struct {
	Title    string `json:"title"`
	Priority *int   `json:"priority"`
}

type authBody struct {
	Username string `json:"username"`
}

// RequestAudit records every inbound request before it reaches the rest of
// the pipeline: one info log line, one line in the request log file and one
// LogEntry row. Classification is best effort; every failure degrades to a
// default and the request itself is never blocked or rejected.
func RequestAudit(requestLogPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := bufferBody(r)

			actor := deriveActor(r, body)
			priority, action := classify(r, database.DB, body)
			ip := ClientIP(r)

			message := fmt.Sprintf("HTTP %s %s requested from %s", r.Method, r.URL.Path, ip)
			slog.Info(message, "source", "audit", "user", actor, "action", action)

			line := fmt.Sprintf("%s - %s", time.Now().Format("2006-01-02 15:04:05"), message)
			if err := appendLine(requestLogPath, line); err != nil {
				slog.Error("failed to write request log", "source", "audit", "error", err.Error())
			}

			entry := models.LogEntry{
				Timestamp: time.Now(),
				User:      actor,
				Method:    r.Method,
				Endpoint:  r.URL.Path,
				IP:        ip,
				Priority:  priority,
				Action:    action,
			}
			if err := database.DB.Create(&entry).Error; err != nil {
				slog.Error("failed to persist log entry", "source", "audit", "error", err.Error())
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bufferBody reads and restores the request body so downstream handlers can
// still decode it. Returns nil when there is nothing to read.
func bufferBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		r.Body = http.NoBody
		return nil
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body
}

// deriveActor labels the requester. Authenticated requests use the token's
// username. Unauthenticated login/register requests are tagged with the
// username found in the body, when one can be extracted; everything else is
// "anonymous".
func deriveActor(r *http.Request, body []byte) string {
	if claims := ClaimsFromContext(r.Context()); claims != nil && claims.Username != "" {
		return claims.Username
	}

	switch r.URL.Path {
	case "/api/auth/login", "/api/auth/register":
		var payload authBody
		if err := json.Unmarshal(body, &payload); err == nil && payload.Username != "" {
			return payload.Username + " (login attempt)"
		}
	}
	return "anonymous"
}

func classify(r *http.Request, db *gorm.DB, body []byte) (priority, action string) {
	path := r.URL.Path

	if path == "/api/tasks" || strings.HasPrefix(path, "/api/tasks/") {
		return classifyTask(r, db, body)
	}

	switch path {
	case "/api/auth/login":
		return "normal", "attempted login"
	case "/api/auth/register":
		return "normal", "new user registration"
	case "/api/logs":
		return "normal", "viewed logs"
	case "/api/logs/highpriority":
		return "normal", "viewed high priority logs"
	case "/api/logs/daterange":
		return "normal", "viewed logs by date range"
	case "/api/logs/export":
		return "normal", "exported logs"
	}
	return "normal", strings.ToLower(r.Method) + " " + path
}

func classifyTask(r *http.Request, db *gorm.DB, body []byte) (priority, action string) {
	priority = "normal"
	id, hasID := taskIDFromPath(r.URL.Path)

	switch r.Method {
	case http.MethodGet:
		if !hasID {
			return priority, "viewed all tasks"
		}
		return priority, "viewed task '" + titleOrID(db, id) + "'"

	case http.MethodPost:
		payload := sniffTaskBody(body)
		if payload.Priority != nil && *payload.Priority == int(models.PriorityHigh) {
			priority = "high"
		}
		if payload.Title != "" {
			return priority, "created a new task '" + payload.Title + "'"
		}
		return priority, "created a new task"

	case http.MethodPut:
		payload := sniffTaskBody(body)
		if payload.Priority != nil && *payload.Priority == int(models.PriorityHigh) {
			priority = "high"
		}
		if hasID {
			return priority, "updated task '" + titleOrID(db, id) + "'"
		}
		return priority, "updated task"

	case http.MethodDelete:
		// No body on DELETE: the stored task decides the priority tag.
		if hasID {
			var task models.Task
			if err := db.First(&task, id).Error; err == nil {
				if task.Priority == models.PriorityHigh {
					priority = "high"
				}
				return priority, "deleted task '" + task.Title + "'"
			}
		}
		return priority, "deleted task"
	}

	return priority, strings.ToLower(r.Method) + " " + r.URL.Path
}

// sniffTaskBody parses the buffered body. An unparseable body yields the
// zero value, which classifies as a normal-priority, untitled task.
func sniffTaskBody(body []byte) taskBody {
	var payload taskBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return taskBody{}
	}
	return payload
}

func taskIDFromPath(path string) (uint, bool) {
	rest, ok := strings.CutPrefix(path, "/api/tasks/")
	if !ok || rest == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(rest, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func titleOrID(db *gorm.DB, id uint) string {
	var task models.Task
	if err := db.First(&task, id).Error; err == nil {
		return task.Title
	}
	return strconv.FormatUint(uint64(id), 10)
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
