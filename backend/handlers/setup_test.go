package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taskmanager/backend/config"
	"taskmanager/backend/database"
	"taskmanager/backend/events"
	"taskmanager/backend/models"
	"taskmanager/backend/services"
)

// setupTest wires an in-memory database, test config and a fresh event
// service, and returns the full router so tests exercise the real
// middleware stack.
func setupTest(t *testing.T) http.Handler {
	t.Helper()

	dir := t.TempDir()
	config.C = config.Config{
		Listen:       ":0",
		DatabasePath: ":memory:",
		JWT:          config.JWTConfig{Secret: "test-secret", Expiry: time.Hour},
		CORS:         config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Logs: config.LogsConfig{
			RequestLogPath:  filepath.Join(dir, "api_requests.log"),
			CriticalLogPath: filepath.Join(dir, "critical_updates.log"),
		},
	}

	var err error
	database.DB, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := database.DB.AutoMigrate(&models.User{}, &models.Task{}, &models.LogEntry{}); err != nil {
		t.Fatal(err)
	}

	TaskEvents = events.NewTaskEventService()

	return NewRouter()
}

func createUser(t *testing.T, username, role string) *models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: services.HashPassword("password"),
		Role:         role,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	return &user
}

func bearer(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := services.GenerateToken(user)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + token
}

// doJSON performs a request against the router, marshaling body when given.
func doJSON(t *testing.T, router http.Handler, method, path, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

// captureEvents subscribes a recorder to the current event service.
func captureEvents() *[]events.TaskEvent {
	var captured []events.TaskEvent
	TaskEvents.Subscribe(func(ev events.TaskEvent) {
		captured = append(captured, ev)
	})
	return &captured
}
