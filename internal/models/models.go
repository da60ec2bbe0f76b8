package models

import "time"

// Task represents a single work item persisted by the API.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Statuses enumerates the valid task statuses in display order.
var Statuses = []string{"Not Started", "In Progress", "Completed"}

// Priorities enumerates the valid task priorities in display order.
var Priorities = []string{"Low", "Medium", "High"}

// Pagination summarises a listing result for the client.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// TaskPage is the envelope returned by the listing endpoint.
type TaskPage struct {
	Tasks      []Task     `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// TaskFilter carries the optional listing parameters. Zero values mean the caller
// did not supply the parameter; an absent filter contributes no predicate.
type TaskFilter struct {
	Search    string
	Status    string
	Priority  string
	StartDate string
	EndDate   string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// Normalized clamps the pagination parameters: page is at least 1, limit falls back
// to the default when missing or non-positive and is capped at MaxLimit.
func (f TaskFilter) Normalized() TaskFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

// TaskPatch is a partial task payload for create and update operations. A nil
// pointer means the field was omitted and must not be written, which is distinct
// from a pointer to a zero value.
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
}
