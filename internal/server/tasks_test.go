package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskflow/internal/models"
	"taskflow/internal/storage/postgres"
)

// fakeStore is an in-memory TaskStore that mirrors the database constraints the
// handlers rely on: NOT NULL title, enum checks, date parsing.
type fakeStore struct {
	tasks  map[int64]models.Task
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{tasks: map[int64]models.Task{}, nextID: 1}
}

func member(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func (f *fakeStore) apply(t *models.Task, p models.TaskPatch) error {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = p.Description
	}
	if p.DueDate != nil {
		d, err := time.Parse("2006-01-02", *p.DueDate)
		if err != nil {
			return fmt.Errorf("invalid input syntax for type date: %q", *p.DueDate)
		}
		t.DueDate = &d
	}
	if p.Status != nil {
		if !member(models.Statuses, *p.Status) {
			return fmt.Errorf("violates check constraint %q", "tasks_status_check")
		}
		t.Status = *p.Status
	}
	if p.Priority != nil {
		if !member(models.Priorities, *p.Priority) {
			return fmt.Errorf("violates check constraint %q", "tasks_priority_check")
		}
		t.Priority = *p.Priority
	}
	return nil
}

func (f *fakeStore) CreateTask(_ context.Context, p models.TaskPatch) (models.Task, error) {
	if p.Title == nil {
		return models.Task{}, fmt.Errorf("null value in column %q violates not-null constraint", "title")
	}
	now := time.Now()
	t := models.Task{ID: f.nextID, Status: "Not Started", Priority: "Medium", CreatedAt: now, UpdatedAt: now}
	if err := f.apply(&t, p); err != nil {
		return models.Task{}, err
	}
	f.nextID++
	f.tasks[t.ID] = t
	return t, nil
}

func (f *fakeStore) GetTask(_ context.Context, id int64) (models.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return models.Task{}, postgres.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) UpdateTask(_ context.Context, id int64, p models.TaskPatch) (models.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return models.Task{}, postgres.ErrNotFound
	}
	if err := f.apply(&t, p); err != nil {
		return models.Task{}, err
	}
	t.UpdatedAt = time.Now()
	f.tasks[id] = t
	return t, nil
}

func (f *fakeStore) DeleteTask(_ context.Context, id int64) error {
	if _, ok := f.tasks[id]; !ok {
		return postgres.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeStore) ListTasks(_ context.Context, filter models.TaskFilter) (models.TaskPage, error) {
	filter = filter.Normalized()
	tasks := []models.Task{}
	for id := int64(1); id < f.nextID; id++ {
		if t, ok := f.tasks[id]; ok {
			tasks = append(tasks, t)
		}
	}
	total := len(tasks)
	pages := 0
	if total > 0 {
		pages = (total + filter.Limit - 1) / filter.Limit
	}
	return models.TaskPage{
		Tasks: tasks,
		Pagination: models.Pagination{
			Total:      total,
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalPages: pages,
		},
	}, nil
}

func newTestServer() (*fakeStore, *Server) {
	store := newFakeStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return store, New(store, nil, logger)
}

func perform(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeTask(t *testing.T, rec *httptest.ResponseRecorder) models.Task {
	t.Helper()
	var task models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &task); err != nil {
		t.Fatalf("decode task: %v (body %s)", err, rec.Body.String())
	}
	return task
}

func TestWelcomeRoute(t *testing.T) {
	_, srv := newTestServer()

	rec := perform(srv, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != "Welcome to TaskFlow API" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestListTasksEmptyEnvelope(t *testing.T) {
	_, srv := newTestServer()

	rec := perform(srv, http.MethodGet, "/api/tasks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// The contract is an empty array, never null.
	if !strings.Contains(rec.Body.String(), `"tasks":[]`) {
		t.Errorf("body = %s, want an empty tasks array", rec.Body.String())
	}

	var page models.TaskPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	p := page.Pagination
	if p.Total != 0 || p.Page != 1 || p.Limit != 10 || p.TotalPages != 0 {
		t.Errorf("pagination = %+v, want defaults with zero totals", p)
	}
}

func TestListTasksNonNumericPaginationClampsToDefaults(t *testing.T) {
	_, srv := newTestServer()

	rec := perform(srv, http.MethodGet, "/api/tasks?page=abc&limit=xyz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var page models.TaskPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Pagination.Page != 1 {
		t.Errorf("page = %d, want 1", page.Pagination.Page)
	}
	if page.Pagination.Limit != 10 {
		t.Errorf("limit = %d, want the default 10", page.Pagination.Limit)
	}
}

func TestListTasksOversizedLimitClamped(t *testing.T) {
	_, srv := newTestServer()

	rec := perform(srv, http.MethodGet, "/api/tasks?limit=500&page=0", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var page models.TaskPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Pagination.Limit != models.MaxLimit {
		t.Errorf("limit = %d, want %d", page.Pagination.Limit, models.MaxLimit)
	}
	if page.Pagination.Page != 1 {
		t.Errorf("page = %d, want 1", page.Pagination.Page)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	_, srv := newTestServer()

	rec := perform(srv, http.MethodGet, "/api/tasks/123", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"Task not found"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestGetTaskMalformedID(t *testing.T) {
	_, srv := newTestServer()

	rec := perform(srv, http.MethodGet, "/api/tasks/abc", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"Internal server error"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCreateTaskMinimalDefaults(t *testing.T) {
	_, srv := newTestServer()

	rec := perform(srv, http.MethodPost, "/api/tasks", `{"title":"Minimal Task"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	task := decodeTask(t, rec)
	if task.ID == 0 {
		t.Error("expected a generated id")
	}
	if task.Title != "Minimal Task" {
		t.Errorf("title = %q", task.Title)
	}
	if task.Status != "Not Started" || task.Priority != "Medium" {
		t.Errorf("defaults = %q/%q, want Not Started/Medium", task.Status, task.Priority)
	}
	if task.Description != nil || task.DueDate != nil {
		t.Error("optional fields should default to null")
	}
}

func TestCreateTaskMissingTitle(t *testing.T) {
	store, srv := newTestServer()

	rec := perform(srv, http.MethodPost, "/api/tasks", `{"priority":"Low"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if len(store.tasks) != 0 {
		t.Error("no row should be persisted")
	}
}

func TestCreateTaskInvalidStatus(t *testing.T) {
	store, srv := newTestServer()

	rec := perform(srv, http.MethodPost, "/api/tasks", `{"title":"x","status":"InvalidStatus"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"Internal server error"`) {
		t.Errorf("body = %s, cause must not leak", rec.Body.String())
	}
	if len(store.tasks) != 0 {
		t.Error("no row should be persisted")
	}
}

func TestUpdateTaskPartial(t *testing.T) {
	store, srv := newTestServer()

	desc := "keep me"
	created, err := store.CreateTask(context.Background(), models.TaskPatch{
		Title:       ptr("before"),
		Description: &desc,
		Priority:    ptr("High"),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := perform(srv, http.MethodPut, fmt.Sprintf("/api/tasks/%d", created.ID), `{"title":"X"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	task := decodeTask(t, rec)
	if task.Title != "X" {
		t.Errorf("title = %q, want %q", task.Title, "X")
	}
	if task.Description == nil || *task.Description != "keep me" {
		t.Errorf("description changed: %v", task.Description)
	}
	if task.Priority != "High" {
		t.Errorf("priority changed: %q", task.Priority)
	}
}

func TestUpdateTaskEmptyBody(t *testing.T) {
	store, srv := newTestServer()

	created, err := store.CreateTask(context.Background(), models.TaskPatch{Title: ptr("still here")})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := perform(srv, http.MethodPut, fmt.Sprintf("/api/tasks/%d", created.ID), `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if task := decodeTask(t, rec); task.Title != "still here" {
		t.Errorf("title = %q, want unchanged", task.Title)
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	_, srv := newTestServer()

	rec := perform(srv, http.MethodPut, "/api/tasks/999999", `{"title":"X"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"Task not found"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestUpdateTaskMalformedJSON(t *testing.T) {
	store, srv := newTestServer()

	created, err := store.CreateTask(context.Background(), models.TaskPatch{Title: ptr("x")})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := perform(srv, http.MethodPut, fmt.Sprintf("/api/tasks/%d", created.ID), `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteTaskTwice(t *testing.T) {
	store, srv := newTestServer()

	created, err := store.CreateTask(context.Background(), models.TaskPatch{Title: ptr("doomed")})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	path := fmt.Sprintf("/api/tasks/%d", created.ID)

	rec := perform(srv, http.MethodDelete, path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("first delete status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"message":"Task deleted successfully"`) {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = perform(srv, http.MethodDelete, path, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func ptr(s string) *string { return &s }
