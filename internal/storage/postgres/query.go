package postgres

import (
	"fmt"
	"strings"

	"taskflow/internal/models"
)

// taskColumns is the column list every task query selects, in scan order.
const taskColumns = "id, title, description, status, priority, due_date, created_at, updated_at"

// sortColumns is the allow-list for ORDER BY. Anything outside it falls back to
// the default ordering instead of erroring.
var sortColumns = map[string]struct{}{
	"due_date":   {},
	"priority":   {},
	"status":     {},
	"created_at": {},
}

// listQuery builds the count and page queries for a task listing. Filters are
// combined conjunctively and every value binds through a positional parameter;
// the counter advances left to right across all predicates, so the count query
// and the page query share one WHERE clause and one argument prefix. The page
// query appends LIMIT and OFFSET as the final two parameters.
//
// The filter is expected to be normalized already.
func listQuery(f models.TaskFilter) (countSQL, pageSQL string, countArgs, pageArgs []any) {
	var conditions []string
	var args []any
	param := 1

	if f.Search != "" {
		// One parameter referenced by both arms; the counter advances once.
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", param, param))
		args = append(args, "%"+f.Search+"%")
		param++
	}
	if f.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", param))
		args = append(args, f.Status)
		param++
	}
	if f.Priority != "" {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", param))
		args = append(args, f.Priority)
		param++
	}
	if f.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("due_date >= $%d", param))
		args = append(args, f.StartDate)
		param++
	}
	if f.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("due_date <= $%d", param))
		args = append(args, f.EndDate)
		param++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	countSQL = "SELECT COUNT(*) FROM tasks" + where
	countArgs = args

	pageSQL = "SELECT " + taskColumns + " FROM tasks" + where +
		orderClause(f.SortBy, f.SortOrder) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", param, param+1)
	pageArgs = append(append([]any{}, args...), f.Limit, (f.Page-1)*f.Limit)

	return countSQL, pageSQL, countArgs, pageArgs
}

// orderClause resolves the sort column against the allow-list. Unknown columns
// degrade to created_at descending; unknown orders degrade to ascending.
func orderClause(sortBy, sortOrder string) string {
	if _, ok := sortColumns[sortBy]; !ok {
		return " ORDER BY created_at DESC"
	}
	order := strings.ToLower(sortOrder)
	if order != "asc" && order != "desc" {
		order = "asc"
	}
	return fmt.Sprintf(" ORDER BY %s %s", sortBy, order)
}

// totalPages computes the page count for a listing; zero rows means zero pages.
func totalPages(total, limit int) int {
	if total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
