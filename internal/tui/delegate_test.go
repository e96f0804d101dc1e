package tui

import (
	"bytes"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/stretchr/testify/assert"

	"github.com/runoshun/whatstask/internal/domain"
)

func TestEscapeNewlines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no newlines",
			input: "simple text",
			want:  "simple text",
		},
		{
			name:  "single LF",
			input: "line1\nline2",
			want:  "line1 line2",
		},
		{
			name:  "multiple LF",
			input: "line1\nline2\nline3",
			want:  "line1 line2 line3",
		},
		{
			name:  "CRLF",
			input: "line1\r\nline2",
			want:  "line1 line2",
		},
		{
			name:  "single CR",
			input: "line1\rline2",
			want:  "line1 line2",
		},
		{
			name:  "mixed newlines",
			input: "line1\nline2\r\nline3\rline4",
			want:  "line1 line2 line3 line4",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only newlines",
			input: "\n\r\n\r",
			want:  "   ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := escapeNewlines(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0195f0c2", shortID("0195f0c2-7a4b-7c3d-9e8f-0123456789ab"))
	assert.Equal(t, "task-1", shortID("task-1"))
}

func TestSubtitle(t *testing.T) {
	due := time.Date(2026, 3, 9, 17, 0, 0, 0, time.UTC)
	accepted := time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		task    *domain.Task
		overdue bool
		want    string
	}{
		{
			name: "unassigned",
			task: &domain.Task{},
			want: "unassigned",
		},
		{
			name: "internal accepted",
			task: &domain.Task{
				Assignee:   domain.InternalAssignee("alice", "Alice", ""),
				AcceptedAt: &accepted,
			},
			want: "@Alice ✓",
		},
		{
			name: "external declined",
			task: &domain.Task{
				Assignee:   domain.ExternalAssignee("Carlos", "+5511999990000"),
				DeclinedAt: &accepted,
			},
			want: "@Carlos (ext) ✗ declined",
		},
		{
			name:    "overdue with checklist",
			task:    &domain.Task{DueDate: &due, Checklist: []domain.ChecklistItem{{Text: "a", Completed: true}, {Text: "b"}}},
			overdue: true,
			want:    "unassigned · due Mar 9 (overdue) · ☑ 1/2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, subtitle(tt.task, tt.overdue))
		})
	}
}

func TestTaskItem_FilterValue(t *testing.T) {
	item := taskItem{task: &domain.Task{
		Title:    "Fix pump",
		Assignee: domain.InternalAssignee("bob", "Bob", ""),
	}}

	assert.Equal(t, "Fix pump Bob", item.FilterValue())
}

func TestTaskDelegate_Render(t *testing.T) {
	// Setup
	task := &domain.Task{
		ID:       "0195f0c2-7a4b-7c3d-9e8f-0123456789ab",
		Title:    "Replace\nfilters",
		Status:   domain.StatusPending,
		Priority: domain.PriorityUrgent,
		Assignee: domain.InternalAssignee("alice", "Alice", ""),
	}
	d := newTaskDelegate(DefaultStyles())
	m := list.New([]list.Item{taskItem{task: task}}, d, 80, 10)

	// Execute
	var buf bytes.Buffer
	d.Render(&buf, m, 0, taskItem{task: task})

	// Assert
	out := buf.String()
	assert.Contains(t, out, "0195f0c2")
	assert.NotContains(t, out, "7a4b")
	assert.Contains(t, out, "Replace filters")
	assert.Contains(t, out, "!!")
	assert.Contains(t, out, "@Alice")
}

func TestTaskDelegate_Render_WrongItem(t *testing.T) {
	d := newTaskDelegate(DefaultStyles())
	m := list.New(nil, d, 80, 10)

	var buf bytes.Buffer
	d.Render(&buf, m, 0, nil)

	assert.Empty(t, buf.String())
}
