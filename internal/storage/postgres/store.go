package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskflow/internal/models"
)

// ErrNotFound is returned when a targeted task does not exist.
var ErrNotFound = errors.New("task not found")

// Store wraps access to the PostgreSQL database and exposes high level helpers.
// Each operation borrows a connection from the pool for its duration; there are
// no multi-statement transactions.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open connects to the database and runs the required migrations.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty database url")
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Store{pool: pool, logger: logger}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tasks (
            id SERIAL PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT,
            status TEXT NOT NULL DEFAULT 'Not Started' CHECK (status IN (%s)),
            priority TEXT NOT NULL DEFAULT 'Medium' CHECK (priority IN (%s)),
            due_date DATE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`, quoteList(models.Statuses), quoteList(models.Priorities)),
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks(priority);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// ListTasks runs the count and page queries for the given filter and returns the
// matching page together with its pagination summary.
func (s *Store) ListTasks(ctx context.Context, f models.TaskFilter) (models.TaskPage, error) {
	f = f.Normalized()
	countSQL, pageSQL, countArgs, pageArgs := listQuery(f)

	var total int
	if err := s.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return models.TaskPage{}, fmt.Errorf("count tasks: %w", err)
	}

	rows, err := s.pool.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return models.TaskPage{}, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return models.TaskPage{}, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return models.TaskPage{}, fmt.Errorf("list tasks: %w", err)
	}

	return models.TaskPage{
		Tasks: tasks,
		Pagination: models.Pagination{
			Total:      total,
			Page:       f.Page,
			Limit:      f.Limit,
			TotalPages: totalPages(total, f.Limit),
		},
	}, nil
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// CreateTask inserts a new task from the provided fields and returns the persisted
// row. Constraint violations (missing title, invalid status or priority) surface
// as plain errors from the database.
func (s *Store) CreateTask(ctx context.Context, p models.TaskPatch) (models.Task, error) {
	sql, args := insertQuery(p)
	t, err := scanTask(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// UpdateTask applies a partial update to the task with the given id. An empty
// patch is valid and refreshes updated_at only.
func (s *Store) UpdateTask(ctx context.Context, id int64, p models.TaskPatch) (models.Task, error) {
	sql, args := updateQuery(id, p)
	t, err := scanTask(s.pool.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

// DeleteTask removes a task by id.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	var deleted int64
	err := s.pool.QueryRow(ctx, "DELETE FROM tasks WHERE id = $1 RETURNING id", id).Scan(&deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
