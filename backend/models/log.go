package models

import "time"

// LogEntry is one audit record per inbound HTTP request. The actor is
// denormalized as free text so entries survive user deletion.
type LogEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
	User      string    `json:"user"`
	Method    string    `json:"method"`
	Endpoint  string    `json:"endpoint"`
	IP        string    `json:"ip"`
	Priority  string    `json:"priority" gorm:"index"` // "high" or "normal"
	Action    string    `json:"action"`
}
