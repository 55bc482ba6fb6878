package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/task-service/internal/middleware"
	"github.com/taskhive/task-service/internal/models"
	"github.com/taskhive/task-service/internal/service"
)

// TaskHandler handles task HTTP requests.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new TaskHandler instance.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTaskRequest represents the task creation payload.
type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

// UpdateTaskRequest represents a partial task update. Absent fields are
// left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
}

// OwnerSummary is the owner shape embedded in the admin listing.
type OwnerSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AdminTaskResponse is a task with its owner summary, for the admin listing.
type AdminTaskResponse struct {
	models.Task
	User OwnerSummary `json:"user"`
}

func pagination(page, limit int, total int64) gin.H {
	pages := (total + int64(limit) - 1) / int64(limit)
	return gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"pages": pages,
	}
}

func pageParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	return page, limit
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		respondError(c, http.StatusNotFound, "task not found")
	case errors.Is(err, service.ErrInvalidTitle),
		errors.Is(err, service.ErrInvalidDescription),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidPriority),
		errors.Is(err, service.ErrInvalidDueDate):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondInternal(c, err, "task operation failed")
	}
}

// Create godoc
// @Summary Create task
// @Description Create a task owned by the authenticated user
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body CreateTaskRequest true "Task fields"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication token required")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), user, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully",
		"task":    task,
	})
}

// List godoc
// @Summary List tasks
// @Description List the authenticated user's tasks, newest first
// @Tags tasks
// @Produce json
// @Param status query string false "Status filter"
// @Param priority query string false "Priority filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication token required")
		return
	}

	page, limit := pageParams(c)
	tasks, total, err := h.taskService.List(c.Request.Context(), user, service.ListTasksInput{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":      tasks,
		"pagination": pagination(page, limit, total),
	})
}

// Get godoc
// @Summary Get task
// @Description Fetch one of the authenticated user's tasks by id
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication token required")
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), user, taskID)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

// Update godoc
// @Summary Update task
// @Description Apply a partial update to one of the authenticated user's tasks
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param request body UpdateTaskRequest true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication token required")
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), user, taskID, service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    task,
	})
}

// Delete godoc
// @Summary Delete task
// @Description Delete one of the authenticated user's tasks
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication token required")
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), user, taskID); err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// Stats godoc
// @Summary Task statistics
// @Description Per-status counts and overdue count for the authenticated user
// @Tags tasks
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /tasks/stats [get]
func (h *TaskHandler) Stats(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication token required")
		return
	}

	stats, err := h.taskService.Stats(c.Request.Context(), user)
	if err != nil {
		respondInternal(c, err, "failed to get task stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// ListAll godoc
// @Summary List all tasks
// @Description List every user's tasks with owner summaries. Admin only.
// @Tags tasks
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /tasks/admin/all [get]
func (h *TaskHandler) ListAll(c *gin.Context) {
	page, limit := pageParams(c)
	tasks, total, err := h.taskService.ListAll(c.Request.Context(), page, limit)
	if err != nil {
		respondInternal(c, err, "failed to list tasks")
		return
	}

	items := make([]AdminTaskResponse, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, AdminTaskResponse{
			Task: task,
			User: OwnerSummary{
				ID:       task.User.ID,
				Username: task.User.Username,
				Email:    task.User.Email,
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":      items,
		"pagination": pagination(page, limit, total),
	})
}

func taskIDParam(c *gin.Context) (int64, bool) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		// Malformed ids behave like missing tasks, not validation errors.
		respondError(c, http.StatusNotFound, "task not found")
		return 0, false
	}
	return taskID, true
}
