package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/taskhive/task-service/internal/models"
)

// TaskFilter narrows a scoped task listing. Zero values mean "no filter".
type TaskFilter struct {
	Status   models.TaskStatus
	Priority models.TaskPriority
}

// TaskStats aggregates a user's tasks by status. Overdue counts tasks whose
// due date has passed and whose status is neither completed nor cancelled.
type TaskStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
	Overdue    int64 `json:"overdue"`
}

// TaskRepository defines the interface for task data operations. Every
// owner-scoped method takes the owner's id; a task owned by someone else is
// indistinguishable from a missing one.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, ownerID, taskID int64) (*models.Task, error)
	List(ctx context.Context, ownerID int64, filter TaskFilter, page, limit int) ([]models.Task, int64, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, ownerID, taskID int64) error
	Stats(ctx context.Context, ownerID int64, now time.Time) (*TaskStats, error)
	ListAll(ctx context.Context, page, limit int) ([]models.Task, int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository instance.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *taskRepository) FindByID(ctx context.Context, ownerID, taskID int64) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", ownerID, taskID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find task %d: %w", taskID, err)
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, ownerID int64, filter TaskFilter, page, limit int) ([]models.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{}).Where("user_id = ?", ownerID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	var tasks []models.Task
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, total, nil
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("update task %d: %w", task.ID, err)
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, ownerID, taskID int64) error {
	result := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", ownerID, taskID).Delete(&models.Task{})
	if result.Error != nil {
		return fmt.Errorf("delete task %d: %w", taskID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *taskRepository) Stats(ctx context.Context, ownerID int64, now time.Time) (*TaskStats, error) {
	stats := &TaskStats{}

	type statusCount struct {
		Status models.TaskStatus
		Count  int64
	}
	var counts []statusCount
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Select("status, count(*) as count").
		Where("user_id = ?", ownerID).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}

	for _, c := range counts {
		stats.Total += c.Count
		switch c.Status {
		case models.StatusPending:
			stats.Pending = c.Count
		case models.StatusInProgress:
			stats.InProgress = c.Count
		case models.StatusCompleted:
			stats.Completed = c.Count
		case models.StatusCancelled:
			stats.Cancelled = c.Count
		}
	}

	err = r.db.WithContext(ctx).Model(&models.Task{}).
		Where("user_id = ? AND due_date < ? AND status NOT IN ?",
			ownerID, now, []models.TaskStatus{models.StatusCompleted, models.StatusCancelled}).
		Count(&stats.Overdue).Error
	if err != nil {
		return nil, fmt.Errorf("count overdue tasks: %w", err)
	}

	return stats, nil
}

// ListAll returns tasks across all owners with the owner association loaded
// for display. Role enforcement happens upstream in the middleware.
func (r *taskRepository) ListAll(ctx context.Context, page, limit int) ([]models.Task, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Task{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count all tasks: %w", err)
	}

	var tasks []models.Task
	err := r.db.WithContext(ctx).Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list all tasks: %w", err)
	}
	return tasks, total, nil
}
