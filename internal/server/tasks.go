package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskflow/internal/models"
)

// handleListTasks returns a filtered, sorted, paginated task listing.
func (s *Server) handleListTasks(c *gin.Context) {
	filter := models.TaskFilter{
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      atoiOrZero(c.Query("page")),
		Limit:     atoiOrZero(c.Query("limit")),
	}

	page, err := s.store.ListTasks(c.Request.Context(), filter)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// handleGetTask fetches a single task, consulting the cache first when enabled.
func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if s.cache != nil {
		if task, hit := s.cache.GetTask(ctx, id); hit {
			c.JSON(http.StatusOK, task)
			return
		}
	}

	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	if s.cache != nil {
		s.cache.SetTask(ctx, task)
	}
	c.JSON(http.StatusOK, task)
}

// handleCreateTask inserts a new task from the provided fields only; everything
// omitted takes the store's column defaults.
func (s *Server) handleCreateTask(c *gin.Context) {
	patch, ok := s.bindPatch(c)
	if !ok {
		return
	}

	task, err := s.store.CreateTask(c.Request.Context(), patch)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// handleUpdateTask applies a partial update; an empty body is valid and only
// refreshes updated_at.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}

	patch, ok := s.bindPatch(c)
	if !ok {
		return
	}

	task, err := s.store.UpdateTask(c.Request.Context(), id, patch)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	if s.cache != nil {
		s.cache.InvalidateTask(c.Request.Context(), id)
	}
	c.JSON(http.StatusOK, task)
}

// handleDeleteTask removes a task permanently.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}

	if err := s.store.DeleteTask(c.Request.Context(), id); err != nil {
		s.respondStoreError(c, err)
		return
	}
	if s.cache != nil {
		s.cache.InvalidateTask(c.Request.Context(), id)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// bindPatch decodes a partial task payload. A missing body is treated as an
// empty patch; malformed JSON is a bad request.
func (s *Server) bindPatch(c *gin.Context) (models.TaskPatch, bool) {
	var patch models.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.TaskPatch{}, false
	}
	return patch, true
}

// atoiOrZero parses a numeric query parameter; anything unparseable becomes zero
// and is clamped to the defaults downstream.
func atoiOrZero(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
