package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/runoshun/whatstask/internal/domain"
)

func TestStyles_StatusStyle(t *testing.T) {
	styles := DefaultStyles()

	statuses := append(domain.AllStatuses(), domain.StatusOverdue, domain.Status("unknown"))
	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			rendered := styles.StatusStyle(status).Render(status.Display())
			assert.NotEmpty(t, rendered)
		})
	}
}

func TestStatusIcon(t *testing.T) {
	tests := []struct {
		status domain.Status
		want   string
	}{
		{domain.StatusPending, "○"},
		{domain.StatusInProgress, "●"},
		{domain.StatusNeedsApproval, "◉"},
		{domain.StatusCompleted, "✓"},
		{domain.StatusClosed, "−"},
		{domain.StatusOverdue, "!"},
		{domain.Status("unknown"), "?"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusIcon(tt.status))
		})
	}
}

func TestPriorityMark(t *testing.T) {
	tests := []struct {
		priority domain.Priority
		want     string
	}{
		{domain.PriorityUrgent, "!!"},
		{domain.PriorityHigh, "!"},
		{domain.PriorityMedium, ""},
		{domain.PriorityLow, "↓"},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			assert.Equal(t, tt.want, PriorityMark(tt.priority))
		})
	}
}
