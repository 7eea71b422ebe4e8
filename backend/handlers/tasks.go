package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"gorm.io/gorm"

	"taskmanager/backend/database"
	"taskmanager/backend/events"
	"taskmanager/backend/middleware"
	"taskmanager/backend/models"
	"taskmanager/backend/services"
)

// TaskEvents receives high-priority task notifications. Wired in main,
// replaced with a fresh service in tests.
var TaskEvents = events.NewTaskEventService()

func GetTasks(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil || claims.UserID == 0 {
		respondError(w, http.StatusUnauthorized, "User not properly authenticated")
		return
	}

	tasks := []models.Task{}
	q := database.DB
	if !services.IsAdmin(claims) {
		q = q.Where("user_id = ?", claims.UserID)
	}
	if err := q.Find(&tasks).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load tasks")
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

func GetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := findTask(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func CreateTask(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if task.Title == "" {
		respondError(w, http.StatusBadRequest, "Title is required")
		return
	}

	// Ownership is always the requester, regardless of the payload.
	task.ID = 0
	userID := claims.UserID
	task.UserID = &userID

	if err := database.DB.Create(&task).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create task")
		return
	}

	TaskEvents.Notify(task, "created", claims.Username)

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%d", task.ID))
	respondJSON(w, http.StatusCreated, task)
}

func UpdateTask(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	id, err := taskID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if task.ID != id {
		respondError(w, http.StatusBadRequest, "Task ID mismatch")
		return
	}

	var existing models.Task
	if err := database.DB.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "Task not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to load task")
		return
	}
	if !services.CanAccessTask(claims, &existing) {
		respondError(w, http.StatusForbidden, "You do not have access to this task")
		return
	}

	// Preserve the stored owner; the payload never reassigns ownership.
	task.UserID = existing.UserID

	// Fires only on the transition into High, not on every edit of an
	// already-High task.
	isHighPriorityUpdate := task.Priority == models.PriorityHigh && existing.Priority != models.PriorityHigh

	// Update in place rather than Save: a row deleted between the load
	// above and this statement must surface as 404, not be re-inserted.
	result := database.DB.Model(&models.Task{}).Where("id = ?", id).Select("*").Updates(&task)
	if result.Error != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update task")
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, "Task not found")
		return
	}

	if isHighPriorityUpdate {
		TaskEvents.Notify(task, "updated", claims.Username)
	}

	w.WriteHeader(http.StatusNoContent)
}

func DeleteTask(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	task, ok := findTask(w, r)
	if !ok {
		return
	}

	wasHighPriority := task.Priority == models.PriorityHigh

	if err := database.DB.Delete(&models.Task{}, task.ID).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete task")
		return
	}

	if wasHighPriority {
		TaskEvents.Notify(*task, "deleted", claims.Username)
	}

	w.WriteHeader(http.StatusNoContent)
}

// findTask loads the task from the path id and runs the access policy.
// Existence is checked before ownership so an unknown id is 404 and a
// foreign one 403, never the other way around.
func findTask(w http.ResponseWriter, r *http.Request) (*models.Task, bool) {
	id, err := taskID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid task ID")
		return nil, false
	}

	var task models.Task
	if err := database.DB.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "Task not found")
			return nil, false
		}
		respondError(w, http.StatusInternalServerError, "Failed to load task")
		return nil, false
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if !services.CanAccessTask(claims, &task) {
		respondError(w, http.StatusForbidden, "You do not have access to this task")
		return nil, false
	}
	return &task, true
}

func taskID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	return uint(id), err
}
