package postgres

import (
	"fmt"
	"strings"

	"taskflow/internal/models"
)

// insertQuery resolves a create patch into an INSERT statement plus its argument
// list. Title is always written, even when the payload omitted it, so that the
// store's NOT NULL constraint is the thing that rejects a missing title. Optional
// fields are written only when the payload provided them; omitted fields take the
// column defaults. The Nth placeholder always binds the Nth argument.
func insertQuery(p models.TaskPatch) (string, []any) {
	fields := []string{"title"}
	args := []any{p.Title}

	if p.Description != nil {
		fields = append(fields, "description")
		args = append(args, p.Description)
	}
	if p.DueDate != nil {
		fields = append(fields, "due_date")
		args = append(args, p.DueDate)
	}
	if p.Status != nil {
		fields = append(fields, "status")
		args = append(args, p.Status)
	}
	if p.Priority != nil {
		fields = append(fields, "priority")
		args = append(args, p.Priority)
	}

	placeholders := make([]string, len(fields))
	for i := range fields {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	sql := fmt.Sprintf("INSERT INTO tasks (%s) VALUES (%s) RETURNING %s",
		strings.Join(fields, ", "), strings.Join(placeholders, ", "), taskColumns)
	return sql, args
}

// updateQuery resolves an update patch into an UPDATE statement touching only the
// provided fields. updated_at is refreshed unconditionally, so an empty patch is
// still a valid statement. The target id binds as the final parameter.
func updateQuery(id int64, p models.TaskPatch) (string, []any) {
	var assignments []string
	var args []any
	param := 1

	set := func(column string, value any) {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, param))
		args = append(args, value)
		param++
	}

	if p.Title != nil {
		set("title", p.Title)
	}
	if p.Description != nil {
		set("description", p.Description)
	}
	if p.DueDate != nil {
		set("due_date", p.DueDate)
	}
	if p.Status != nil {
		set("status", p.Status)
	}
	if p.Priority != nil {
		set("priority", p.Priority)
	}

	assignments = append(assignments, "updated_at = NOW()")
	args = append(args, id)

	sql := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d RETURNING %s",
		strings.Join(assignments, ", "), param, taskColumns)
	return sql, args
}
