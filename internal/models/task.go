// Package models contains data models for the task service.
package models

import "time"

// TaskStatus tracks a task through its lifecycle.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// Valid reports whether the status is one of the recognized values.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// TaskPriority orders tasks by urgency.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether the priority is one of the recognized values.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task represents a work item owned by exactly one user. Ownership never
// transfers. CompletedAt is set the first time the status becomes completed
// and is never cleared automatically.
type Task struct {
	ID          int64        `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"size:200;not null"`
	Description string       `json:"description" gorm:"size:1000;not null"`
	UserID      int64        `json:"user_id" gorm:"index;not null"`
	User        User         `json:"-" gorm:"foreignKey:UserID"`
	Status      TaskStatus   `json:"status" gorm:"not null;default:pending"`
	Priority    TaskPriority `json:"priority" gorm:"not null;default:medium"`
	DueDate     *time.Time   `json:"due_date"`
	CompletedAt *time.Time   `json:"completed_at"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TableName returns the database table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}
