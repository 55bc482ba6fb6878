package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"

	"github.com/taskhive/task-service/internal/models"
	"github.com/taskhive/task-service/internal/repository"
)

var (
	// ErrTaskNotFound is returned when a task does not exist for the owner.
	ErrTaskNotFound = errors.New("task not found")
	// ErrInvalidTitle is returned for a missing or over-length title.
	ErrInvalidTitle = errors.New("title is required and must be at most 200 characters")
	// ErrInvalidDescription is returned for a missing or over-length description.
	ErrInvalidDescription = errors.New("description is required and must be at most 1000 characters")
	// ErrInvalidStatus is returned for an unrecognized status value.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidPriority is returned for an unrecognized priority value.
	ErrInvalidPriority = errors.New("invalid priority")
	// ErrInvalidDueDate is returned when the due date does not parse.
	ErrInvalidDueDate = errors.New("invalid due_date format, use ISO 8601")
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 1000

	statsCacheTTL = time.Minute
)

// CreateTaskInput carries the fields accepted when creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     string
}

// UpdateTaskInput carries a partial update. Nil pointers mean "leave as is".
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *string
}

// ListTasksInput carries filters and pagination for a scoped listing.
type ListTasksInput struct {
	Status   string
	Priority string
	Page     int
	Limit    int
}

// TaskService owns task validation and scoping. Every operation takes the
// resolved owner, never a client-supplied user id.
type TaskService interface {
	Create(ctx context.Context, owner *models.User, input CreateTaskInput) (*models.Task, error)
	List(ctx context.Context, owner *models.User, input ListTasksInput) ([]models.Task, int64, error)
	Get(ctx context.Context, owner *models.User, taskID int64) (*models.Task, error)
	Update(ctx context.Context, owner *models.User, taskID int64, input UpdateTaskInput) (*models.Task, error)
	Delete(ctx context.Context, owner *models.User, taskID int64) error
	Stats(ctx context.Context, owner *models.User) (*repository.TaskStats, error)
	ListAll(ctx context.Context, page, limit int) ([]models.Task, int64, error)
}

type taskService struct {
	taskRepo repository.TaskRepository
	cache    *redis.Client
}

// NewTaskService creates a new TaskService. The redis client backs the stats
// cache and may be nil, in which case stats always hit the store.
func NewTaskService(taskRepo repository.TaskRepository, cache *redis.Client) TaskService {
	return &taskService{taskRepo: taskRepo, cache: cache}
}

func (s *taskService) Create(ctx context.Context, owner *models.User, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	// Bounds are in characters, not bytes, so multi-byte text is not penalized.
	if title == "" || utf8.RuneCountInString(title) > maxTitleLength {
		return nil, ErrInvalidTitle
	}
	if description == "" || utf8.RuneCountInString(description) > maxDescriptionLength {
		return nil, ErrInvalidDescription
	}

	status := models.StatusPending
	if input.Status != "" {
		status = models.TaskStatus(input.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
	}

	priority := models.PriorityMedium
	if input.Priority != "" {
		priority = models.TaskPriority(input.Priority)
		if !priority.Valid() {
			return nil, ErrInvalidPriority
		}
	}

	var dueDate *time.Time
	if input.DueDate != "" {
		parsed, err := parseDueDate(input.DueDate)
		if err != nil {
			return nil, ErrInvalidDueDate
		}
		dueDate = &parsed
	}

	task := &models.Task{
		Title:       title,
		Description: description,
		UserID:      owner.ID,
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
	}
	if status == models.StatusCompleted {
		now := time.Now().UTC()
		task.CompletedAt = &now
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, owner.ID)
	return task, nil
}

func (s *taskService) List(ctx context.Context, owner *models.User, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{}
	if input.Status != "" {
		status := models.TaskStatus(input.Status)
		if !status.Valid() {
			return nil, 0, ErrInvalidStatus
		}
		filter.Status = status
	}
	if input.Priority != "" {
		priority := models.TaskPriority(input.Priority)
		if !priority.Valid() {
			return nil, 0, ErrInvalidPriority
		}
		filter.Priority = priority
	}

	page, limit := normalizePage(input.Page, input.Limit)
	return s.taskRepo.List(ctx, owner.ID, filter, page, limit)
}

func (s *taskService) Get(ctx context.Context, owner *models.User, taskID int64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, owner.ID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// Update applies the supplied fields only. The first transition into
// completed stamps CompletedAt; later completed updates leave it untouched.
func (s *taskService) Update(ctx context.Context, owner *models.User, taskID int64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, owner.ID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" || utf8.RuneCountInString(title) > maxTitleLength {
			return nil, ErrInvalidTitle
		}
		task.Title = title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" || utf8.RuneCountInString(description) > maxDescriptionLength {
			return nil, ErrInvalidDescription
		}
		task.Description = description
	}
	if input.Status != nil {
		status := models.TaskStatus(*input.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = status
		if status == models.StatusCompleted && task.CompletedAt == nil {
			now := time.Now().UTC()
			task.CompletedAt = &now
		}
	}
	if input.Priority != nil {
		priority := models.TaskPriority(*input.Priority)
		if !priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = priority
	}
	if input.DueDate != nil {
		if *input.DueDate == "" {
			task.DueDate = nil
		} else {
			parsed, err := parseDueDate(*input.DueDate)
			if err != nil {
				return nil, ErrInvalidDueDate
			}
			task.DueDate = &parsed
		}
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, owner.ID)
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, owner *models.User, taskID int64) error {
	err := s.taskRepo.Delete(ctx, owner.ID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	s.invalidateStats(ctx, owner.ID)
	return nil
}

// Stats reads through the redis cache. Cache failures degrade to a direct
// store query.
func (s *taskService) Stats(ctx context.Context, owner *models.User) (*repository.TaskStats, error) {
	key := statsCacheKey(owner.ID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
			var stats repository.TaskStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.taskRepo.Stats(ctx, owner.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, key, encoded, statsCacheTTL).Err(); err != nil {
				log.Printf("stats cache set failed for user %d: %v", owner.ID, err)
			}
		}
	}
	return stats, nil
}

func (s *taskService) ListAll(ctx context.Context, page, limit int) ([]models.Task, int64, error) {
	page, limit = normalizePage(page, limit)
	return s.taskRepo.ListAll(ctx, page, limit)
}

func (s *taskService) invalidateStats(ctx context.Context, ownerID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsCacheKey(ownerID)).Err(); err != nil {
		log.Printf("stats cache invalidation failed for user %d: %v", ownerID, err)
	}
}

func statsCacheKey(ownerID int64) string {
	return fmt.Sprintf("task_stats:%d", ownerID)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

// parseDueDate accepts RFC 3339 timestamps, with a trailing Z or offset, and
// bare dates.
func parseDueDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDueDate
}
