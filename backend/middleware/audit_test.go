package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taskmanager/backend/database"
	"taskmanager/backend/models"
	"taskmanager/backend/services"
)

func setupTestDB(t *testing.T) {
	var err error
	database.DB, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := database.DB.AutoMigrate(&models.User{}, &models.Task{}, &models.LogEntry{}); err != nil {
		t.Fatal(err)
	}
}

// runAudit sends the request through the audit middleware and returns the
// persisted LogEntry together with the body seen by the downstream handler.
func runAudit(t *testing.T, req *http.Request) (models.LogEntry, string) {
	t.Helper()

	var downstreamBody string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			b, _ := io.ReadAll(r.Body)
			downstreamBody = string(b)
		}
		w.WriteHeader(http.StatusOK)
	})

	logPath := filepath.Join(t.TempDir(), "api_requests.log")
	handler := RequestAudit(logPath)(next)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry models.LogEntry
	if err := database.DB.Last(&entry).Error; err != nil {
		t.Fatal(err)
	}
	return entry, downstreamBody
}

func TestRequestAudit_AnonymousGetAllTasks(t *testing.T) {
	setupTestDB(t)
	req := httptest.NewRequest("GET", "/api/tasks", nil)
	req.RemoteAddr = "127.0.0.1:54321"

	entry, _ := runAudit(t, req)

	if entry.User != "anonymous" {
		t.Errorf("expected actor anonymous, got %q", entry.User)
	}
	if entry.Action != "viewed all tasks" {
		t.Errorf("expected action 'viewed all tasks', got %q", entry.Action)
	}
	if entry.Priority != "normal" {
		t.Errorf("expected priority normal, got %q", entry.Priority)
	}
	if entry.Method != "GET" || entry.Endpoint != "/api/tasks" || entry.IP != "127.0.0.1" {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestRequestAudit_AuthenticatedUsername(t *testing.T) {
	setupTestDB(t)
	req := httptest.NewRequest("GET", "/api/tasks", nil)
	req = req.WithContext(WithClaims(req.Context(), &services.Claims{Username: "test_user", UserID: 1}))

	entry, _ := runAudit(t, req)

	if entry.User != "test_user" {
		t.Errorf("expected actor test_user, got %q", entry.User)
	}
}

func TestRequestAudit_LoginAttemptActor(t *testing.T) {
	setupTestDB(t)
	body := `{"username":"mallory","password":"guess"}`
	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(body))

	entry, downstream := runAudit(t, req)

	if entry.User != "mallory (login attempt)" {
		t.Errorf("expected login-attempt actor, got %q", entry.User)
	}
	if entry.Action != "attempted login" {
		t.Errorf("expected action 'attempted login', got %q", entry.Action)
	}
	// The body must still be readable by the login handler.
	if downstream != body {
		t.Errorf("body not restored for downstream, got %q", downstream)
	}
}

func TestRequestAudit_RegisterActorTagged(t *testing.T) {
	setupTestDB(t)
	body := `{"username":"newbie","email":"n@example.com","password":"pw"}`
	req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(body))

	entry, _ := runAudit(t, req)

	if entry.User != "newbie (login attempt)" {
		t.Errorf("expected tagged actor, got %q", entry.User)
	}
	if entry.Action != "new user registration" {
		t.Errorf("expected action 'new user registration', got %q", entry.Action)
	}
}

func TestRequestAudit_MalformedBodyFallsBackToAnonymous(t *testing.T) {
	setupTestDB(t)
	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"username": truncated`))

	entry, _ := runAudit(t, req)

	if entry.User != "anonymous" {
		t.Errorf("expected anonymous for unparseable body, got %q", entry.User)
	}
}

func TestRequestAudit_PostHighPriorityTask(t *testing.T) {
	setupTestDB(t)
	body := `{"title":"Critical Task","description":"Important","priority":2,"status":0}`
	req := httptest.NewRequest("POST", "/api/tasks", strings.NewReader(body))

	entry, _ := runAudit(t, req)

	if entry.Priority != "high" {
		t.Errorf("expected priority high, got %q", entry.Priority)
	}
	if entry.Action != "created a new task 'Critical Task'" {
		t.Errorf("unexpected action %q", entry.Action)
	}
}

func TestRequestAudit_PostMediumPriorityTask(t *testing.T) {
	setupTestDB(t)
	body := `{"title":"Routine","priority":1}`
	req := httptest.NewRequest("POST", "/api/tasks", strings.NewReader(body))

	entry, _ := runAudit(t, req)

	if entry.Priority != "normal" {
		t.Errorf("expected priority normal, got %q", entry.Priority)
	}
}

func TestRequestAudit_PostUnparseableBodyDefaults(t *testing.T) {
	setupTestDB(t)
	req := httptest.NewRequest("POST", "/api/tasks", strings.NewReader("not json"))

	entry, _ := runAudit(t, req)

	if entry.Priority != "normal" {
		t.Errorf("expected priority normal, got %q", entry.Priority)
	}
	if entry.Action != "created a new task" {
		t.Errorf("expected default create action, got %q", entry.Action)
	}
}

func TestRequestAudit_GetSingleTaskLooksUpTitle(t *testing.T) {
	setupTestDB(t)
	task := models.Task{Title: "Write report", Priority: models.PriorityLow}
	database.DB.Create(&task)

	req := httptest.NewRequest("GET", "/api/tasks/1", nil)
	entry, _ := runAudit(t, req)

	if entry.Action != "viewed task 'Write report'" {
		t.Errorf("unexpected action %q", entry.Action)
	}
}

func TestRequestAudit_GetUnknownTaskFallsBackToID(t *testing.T) {
	setupTestDB(t)
	req := httptest.NewRequest("GET", "/api/tasks/42", nil)

	entry, _ := runAudit(t, req)

	if entry.Action != "viewed task '42'" {
		t.Errorf("unexpected action %q", entry.Action)
	}
}

func TestRequestAudit_PutSniffsBodyPriorityAndStoreTitle(t *testing.T) {
	setupTestDB(t)
	task := models.Task{Title: "Prepare release", Priority: models.PriorityMedium}
	database.DB.Create(&task)

	body := `{"id":1,"title":"Prepare release","priority":2}`
	req := httptest.NewRequest("PUT", "/api/tasks/1", strings.NewReader(body))

	entry, _ := runAudit(t, req)

	if entry.Priority != "high" {
		t.Errorf("expected priority high, got %q", entry.Priority)
	}
	if entry.Action != "updated task 'Prepare release'" {
		t.Errorf("unexpected action %q", entry.Action)
	}
}

func TestRequestAudit_DeleteUsesStoredPriority(t *testing.T) {
	setupTestDB(t)
	task := models.Task{Title: "Escalation", Priority: models.PriorityHigh}
	database.DB.Create(&task)

	req := httptest.NewRequest("DELETE", "/api/tasks/1", nil)
	entry, _ := runAudit(t, req)

	if entry.Priority != "high" {
		t.Errorf("expected priority high from store, got %q", entry.Priority)
	}
	if entry.Action != "deleted task 'Escalation'" {
		t.Errorf("unexpected action %q", entry.Action)
	}
}

func TestRequestAudit_DeleteUnknownTaskDefaults(t *testing.T) {
	setupTestDB(t)
	req := httptest.NewRequest("DELETE", "/api/tasks/99", nil)

	entry, _ := runAudit(t, req)

	if entry.Priority != "normal" || entry.Action != "deleted task" {
		t.Errorf("unexpected entry: priority=%q action=%q", entry.Priority, entry.Action)
	}
}

func TestRequestAudit_UnmatchedPathFallback(t *testing.T) {
	setupTestDB(t)
	req := httptest.NewRequest("PATCH", "/api/unknown", nil)

	entry, _ := runAudit(t, req)

	if entry.Action != "patch /api/unknown" {
		t.Errorf("unexpected fallback action %q", entry.Action)
	}
}

func TestRequestAudit_LogsEndpointsFixedActions(t *testing.T) {
	setupTestDB(t)
	cases := map[string]string{
		"/api/logs":              "viewed logs",
		"/api/logs/highpriority": "viewed high priority logs",
		"/api/logs/daterange":    "viewed logs by date range",
		"/api/logs/export":       "exported logs",
	}
	for path, want := range cases {
		entry, _ := runAudit(t, httptest.NewRequest("GET", path, nil))
		if entry.Action != want {
			t.Errorf("path %s: expected action %q, got %q", path, want, entry.Action)
		}
	}
}
