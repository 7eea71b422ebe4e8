package models

import "time"

type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

type Status int

const (
	StatusPending Status = iota
	StatusInProgress
	StatusCompleted
	StatusArchived
)

type Task struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	DueDate     time.Time `json:"dueDate"`
	Status      Status    `json:"status"`
	UserID      *uint     `json:"userId" gorm:"index"`
	User        *User     `json:"-" gorm:"foreignKey:UserID"`
}
