package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"taskflow/internal/cache"
	"taskflow/internal/models"
	"taskflow/internal/storage/postgres"
)

// TaskStore abstracts the persistence operations the handlers need, so tests can
// inject an in-memory implementation.
type TaskStore interface {
	ListTasks(ctx context.Context, f models.TaskFilter) (models.TaskPage, error)
	GetTask(ctx context.Context, id int64) (models.Task, error)
	CreateTask(ctx context.Context, p models.TaskPatch) (models.Task, error)
	UpdateTask(ctx context.Context, id int64, p models.TaskPatch) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// Server provides the HTTP handlers for the TaskFlow API.
type Server struct {
	engine *gin.Engine
	store  TaskStore
	cache  *cache.Cache
	logger *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured. The cache
// may be nil, in which case every read goes to the store.
func New(store TaskStore, taskCache *cache.Cache, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(cors.Default())

	srv := &Server{
		engine: router,
		store:  store,
		cache:  taskCache,
		logger: logger,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.handleWelcome)

	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		tasks := api.Group("/tasks")
		{
			tasks.GET("", s.handleListTasks)
			tasks.POST("", s.handleCreateTask)
			tasks.GET(":id", s.handleGetTask)
			tasks.PUT(":id", s.handleUpdateTask)
			tasks.DELETE(":id", s.handleDeleteTask)
		}
	}
}

func (s *Server) handleWelcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to TaskFlow API"})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID converts the :id path parameter to int64. A malformed id is reported
// the same way a store failure would be: logged, then surfaced as the generic
// internal error.
func (s *Server) parseID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.Error("invalid task id", slog.String("id", raw), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return 0, false
	}
	return id, true
}

// respondStoreError maps store failures onto the API contract: a missing row is
// the only 404, everything else is logged server-side and reported generically.
func (s *Server) respondStoreError(c *gin.Context, err error) {
	if errors.Is(err, postgres.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
