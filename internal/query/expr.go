package query

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/runoshun/whatstask/internal/domain"
)

// Expr is a compiled CEL predicate over task fields, e.g.
//
//	priority == "urgent" && !overdue
//	external && checklist_ratio < 0.5
//	"u1" in watchers
type Expr struct {
	prg cel.Program
	src string
}

var exprEnv = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("title", cel.StringType),
		cel.Variable("description", cel.StringType),
		cel.Variable("status", cel.StringType),
		cel.Variable("priority", cel.StringType),
		cel.Variable("priority_rank", cel.IntType),
		cel.Variable("project", cel.StringType),
		cel.Variable("assignee", cel.StringType),
		cel.Variable("assignee_id", cel.StringType),
		cel.Variable("assigned", cel.BoolType),
		cel.Variable("external", cel.BoolType),
		cel.Variable("accepted", cel.BoolType),
		cel.Variable("declined", cel.BoolType),
		cel.Variable("overdue", cel.BoolType),
		cel.Variable("has_due_date", cel.BoolType),
		cel.Variable("due_in_days", cel.IntType),
		cel.Variable("age_days", cel.IntType),
		cel.Variable("checklist_total", cel.IntType),
		cel.Variable("checklist_done", cel.IntType),
		cel.Variable("checklist_ratio", cel.DoubleType),
		cel.Variable("watchers", cel.ListType(cel.StringType)),
		cel.Variable("created_by", cel.StringType),
	)
})

// Compile parses and type-checks src. The expression must yield a bool.
func Compile(src string) (*Expr, error) {
	env, err := exprEnv()
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	ast, issues := env.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w: %w", src, issues.Err(), domain.ErrValidationFailed)
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression %q yields %s, want bool: %w", src, ast.OutputType(), domain.ErrValidationFailed)
	}
	prg, err := env.Program(ast,
		cel.InterruptCheckFrequency(100),
		cel.CostLimit(10000),
	)
	if err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}
	return &Expr{prg: prg, src: src}, nil
}

// String returns the source expression.
func (e *Expr) String() string {
	return e.src
}

// Match evaluates the expression against t at now.
func (e *Expr) Match(t *domain.Task, now time.Time) (bool, error) {
	out, _, err := e.prg.Eval(Activation(t, now))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", e.src, err)
	}
	val, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: result not bool", e.src)
	}
	return val, nil
}

// Where returns the tasks matching e, preserving order.
func Where(tasks []*domain.Task, e *Expr, now time.Time) ([]*domain.Task, error) {
	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		ok, err := e.Match(t, now)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// Activation returns the variables an expression sees for t.
func Activation(t *domain.Task, now time.Time) map[string]any {
	done, total := t.ChecklistProgress()
	today := domain.DayOf(now)
	dueIn := int64(0)
	if t.DueDate != nil {
		dueIn = int64(domain.DayOf(t.DueDate.In(now.Location())).Sub(today) / (24 * time.Hour))
	}
	watchers := t.Watchers
	if watchers == nil {
		watchers = []string{}
	}
	return map[string]any{
		"id":              t.ID,
		"title":           t.Title,
		"description":     t.Description,
		"status":          string(t.Status),
		"priority":        string(t.Priority),
		"priority_rank":   int64(t.Priority.Rank()),
		"project":         t.ProjectID,
		"assignee":        t.Assignee.Name,
		"assignee_id":     t.Assignee.UserID,
		"assigned":        t.Assignee.IsAssigned(),
		"external":        t.Assignee.IsExternal(),
		"accepted":        t.AcceptedAt != nil,
		"declined":        t.DeclinedAt != nil,
		"overdue":         t.IsOverdue(now),
		"has_due_date":    t.DueDate != nil,
		"due_in_days":     dueIn,
		"age_days":        int64(today.Sub(domain.DayOf(t.CreatedAt.In(now.Location()))) / (24 * time.Hour)),
		"checklist_total": int64(total),
		"checklist_done":  int64(done),
		"checklist_ratio": t.ChecklistRatio(),
		"watchers":        watchers,
		"created_by":      t.CreatedBy,
	}
}
