package handlers

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"TASKMANAGER_BACK-END/internal/dto"
	"TASKMANAGER_BACK-END/internal/models"
	"TASKMANAGER_BACK-END/internal/repository"
	"TASKMANAGER_BACK-END/internal/utils"
)

// TasksHandler manages task-related endpoints
type TasksHandler struct {
	tasks repository.TaskStore
}

// NewTasksHandler creates a new TasksHandler
func NewTasksHandler(tasks repository.TaskStore) *TasksHandler {
	return &TasksHandler{tasks: tasks}
}

// Tasks dispatches by HTTP method for /api/tasks
func (h *TasksHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.CreateTask(w, r)
	case http.MethodGet:
		h.ListTasks(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// TaskByID dispatches requests under /api/tasks/
func (h *TasksHandler) TaskByID(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/tasks/export/") {
		h.ExportTasks(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.GetTask(w, r)
	case http.MethodPut, http.MethodPatch:
		h.UpdateTask(w, r)
	case http.MethodDelete:
		h.DeleteTask(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// CreateTask handles POST /api/tasks
// @Summary Create a new task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateTaskRequest true "Task payload"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/tasks [post]
func (h *TasksHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteUnauthorizedResponse(w, "Invalid user context")
		return
	}

	var req dto.CreateTaskRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return // Error already handled by DecodeJSONRequest
	}

	// Limits count characters, not bytes
	req.Title = strings.TrimSpace(req.Title)
	if n := utf8.RuneCountInString(req.Title); n == 0 || n > 200 {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "title must be 1-200 characters")
		return
	}
	if utf8.RuneCountInString(req.Description) > 1000 {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "description must be at most 1000 characters")
		return
	}

	// Defaults for omitted enum fields
	if req.Status == "" {
		req.Status = models.TaskStatusPending
	}
	if req.Priority == "" {
		req.Priority = models.TaskPriorityMedium
	}
	if req.Category == "" {
		req.Category = "general"
	}
	if !models.ValidTaskStatus(req.Status) {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "status must be pending, in-progress, or completed")
		return
	}
	if !models.ValidTaskPriority(req.Priority) {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "priority must be low, medium, or high")
		return
	}
	if !models.ValidTaskCategory(req.Category) {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "category must be general, product, marketing, support, inventory, or quality")
		return
	}

	now := time.Now()
	task := &models.Task{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Category:    req.Category,
		OwnerID:     userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.tasks.Create(r.Context(), task); err != nil {
		log.Error().Err(err).Msg("create task failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", "Failed to create task")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, taskResponse(task))
}

// ListTasks handles GET /api/tasks
// @Summary List the caller's tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.TaskResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/tasks [get]
func (h *TasksHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteUnauthorizedResponse(w, "Invalid user context")
		return
	}

	tasks, err := h.tasks.ListByOwner(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("list tasks failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", "Failed to list tasks")
		return
	}

	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, taskResponse(&tasks[i]))
	}
	utils.WriteJSONResponse(w, http.StatusOK, items)
}

// GetTask handles GET /api/tasks/{task_id}
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param task_id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/tasks/{task_id} [get]
func (h *TasksHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteUnauthorizedResponse(w, "Invalid user context")
		return
	}

	taskID, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	// Owner-scoped lookup: someone else's task id answers 404, never 403
	task, err := h.tasks.GetByID(r.Context(), taskID, userID)
	if err != nil {
		h.writeTaskLookupError(w, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, taskResponse(task))
}

// UpdateTask handles PUT/PATCH /api/tasks/{task_id}
// @Summary Update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param task_id path string true "Task ID"
// @Param payload body dto.UpdateTaskRequest true "Partial update payload"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/tasks/{task_id} [put]
func (h *TasksHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteUnauthorizedResponse(w, "Invalid user context")
		return
	}

	taskID, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	cur, err := h.tasks.GetByID(r.Context(), taskID, userID)
	if err != nil {
		h.writeTaskLookupError(w, err)
		return
	}

	var req dto.UpdateTaskRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return // Error already handled by DecodeJSONRequest
	}

	// Merge patch over current values, nil means keep
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if n := utf8.RuneCountInString(title); n == 0 || n > 200 {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "title must be 1-200 characters")
			return
		}
		cur.Title = title
	}
	if req.Description != nil {
		if utf8.RuneCountInString(*req.Description) > 1000 {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "description must be at most 1000 characters")
			return
		}
		cur.Description = *req.Description
	}
	if req.Status != nil {
		if !models.ValidTaskStatus(*req.Status) {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "status must be pending, in-progress, or completed")
			return
		}
		cur.Status = *req.Status
	}
	if req.Priority != nil {
		if !models.ValidTaskPriority(*req.Priority) {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "priority must be low, medium, or high")
			return
		}
		cur.Priority = *req.Priority
	}
	if req.Category != nil {
		if !models.ValidTaskCategory(*req.Category) {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "category must be general, product, marketing, support, inventory, or quality")
			return
		}
		cur.Category = *req.Category
	}

	cur.UpdatedAt = time.Now()

	// Patched fields and updated_at land in a single statement
	if err := h.tasks.Update(r.Context(), cur); err != nil {
		h.writeTaskLookupError(w, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, taskResponse(cur))
}

// DeleteTask handles DELETE /api/tasks/{task_id}
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param task_id path string true "Task ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/tasks/{task_id} [delete]
func (h *TasksHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteUnauthorizedResponse(w, "Invalid user context")
		return
	}

	taskID, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), taskID, userID); err != nil {
		h.writeTaskLookupError(w, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

// ExportTasks handles GET /api/tasks/export/{format}
// @Summary Export the caller's tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param format path string true "csv or json"
// @Success 200 {array} dto.ExportedTask
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/tasks/export/{format} [get]
func (h *TasksHandler) ExportTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteUnauthorizedResponse(w, "Invalid user context")
		return
	}

	format := strings.TrimPrefix(r.URL.Path, "/api/tasks/export/")
	if format != "csv" && format != "json" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "format must be 'csv' or 'json'")
		return
	}

	tasks, err := h.tasks.ListByOwner(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("export tasks failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", "Failed to export tasks")
		return
	}

	exported := make([]dto.ExportedTask, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		exported = append(exported, dto.ExportedTask{
			ID:          t.ID.String(),
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status,
			Priority:    t.Priority,
			Category:    t.Category,
			CreatedAt:   utils.FormatTimestamp(t.CreatedAt),
			UpdatedAt:   utils.FormatTimestamp(t.UpdatedAt),
		})
	}

	if format == "json" {
		utils.WriteJSONResponse(w, http.StatusOK, exported)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := writeTasksCSV(w, exported); err != nil {
		// Status is already on the wire; the truncated export can only be logged
		log.Error().Err(err).Msg("csv export write failed")
	}
}

func writeTasksCSV(w io.Writer, tasks []dto.ExportedTask) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "title", "description", "status", "priority", "category", "created_at", "updated_at"})
	for _, t := range tasks {
		cw.Write([]string{t.ID, t.Title, t.Description, t.Status, t.Priority, t.Category, t.CreatedAt, t.UpdatedAt})
	}
	cw.Flush()
	return cw.Error()
}

func (h *TasksHandler) taskIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	taskID, err := uuid.Parse(idStr)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid task id", "task_id must be UUID")
		return uuid.Nil, false
	}
	return taskID, true
}

func (h *TasksHandler) writeTaskLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}
	log.Error().Err(err).Msg("task store error")
	utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", "Task operation failed")
}

func taskResponse(t *models.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Category:    t.Category,
		UserID:      t.OwnerID.String(),
		CreatedAt:   utils.FormatTimestamp(t.CreatedAt),
		UpdatedAt:   utils.FormatTimestamp(t.UpdatedAt),
	}
}
