package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"taskmanager/backend/database"
	"taskmanager/backend/models"
)

const csvHeader = "Timestamp,User,Method,Endpoint,IP,Priority,Action"

func GetLogs(w http.ResponseWriter, r *http.Request) {
	logs := []models.LogEntry{}
	// Capped until the log viewer grows pagination.
	if err := database.DB.Order("timestamp DESC").Limit(1000).Find(&logs).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load logs")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

func GetHighPriorityLogs(w http.ResponseWriter, r *http.Request) {
	logs := []models.LogEntry{}
	if err := database.DB.Where("priority = ?", "high").Order("timestamp DESC").Find(&logs).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load logs")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

func GetLogsByDateRange(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.URL.Query().Get("start"), false)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid start date")
		return
	}
	end, err := parseDate(r.URL.Query().Get("end"), true)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid end date")
		return
	}

	logs := []models.LogEntry{}
	if err := database.DB.
		Where("timestamp >= ? AND timestamp <= ?", start, end).
		Order("timestamp DESC").
		Find(&logs).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load logs")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

func ExportLogs(w http.ResponseWriter, r *http.Request) {
	var logs []models.LogEntry
	if err := database.DB.Order("timestamp DESC").Find(&logs).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load logs")
		return
	}

	var b strings.Builder
	b.WriteString(csvHeader + "\n")
	for _, log := range logs {
		b.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s\n",
			log.Timestamp.Format("2006-01-02 15:04:05"),
			log.User, log.Method, log.Endpoint, log.IP, log.Priority, log.Action))
	}

	filename := fmt.Sprintf("logs-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Write([]byte(b.String()))
}

// parseDate accepts YYYY-MM-DD or RFC 3339. A date-only end bound is
// extended to end of day so whole-day ranges are inclusive.
func parseDate(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
