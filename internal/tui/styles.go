package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/runoshun/whatstask/internal/domain"
)

// Colors defines the color palette for the board.
var Colors = struct {
	// Base colors
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Error      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Background lipgloss.Color

	// Title/text colors
	TitleNormal   lipgloss.Color
	TitleSelected lipgloss.Color
	DescNormal    lipgloss.Color

	// Status colors
	Pending       lipgloss.Color
	InProgress    lipgloss.Color
	NeedsApproval lipgloss.Color
	Completed     lipgloss.Color
	Closed        lipgloss.Color
	Overdue       lipgloss.Color

	// Priority colors
	Urgent lipgloss.Color
	High   lipgloss.Color
}{
	Primary:    lipgloss.Color("#25D366"), // WhatsApp green
	Secondary:  lipgloss.Color("#A29BFE"), // Lavender
	Muted:      lipgloss.Color("#636E72"), // Gray
	Error:      lipgloss.Color("#D63031"), // Red
	Success:    lipgloss.Color("#00B894"), // Green
	Warning:    lipgloss.Color("#FDCB6E"), // Yellow
	Background: lipgloss.Color("#2D3436"), // Dark gray

	TitleNormal:   lipgloss.Color("#DFE6E9"), // Light gray
	TitleSelected: lipgloss.Color("#FFEAA7"), // Yellow (selected)
	DescNormal:    lipgloss.Color("#636E72"), // Gray

	Pending:       lipgloss.Color("#74B9FF"), // Light blue
	InProgress:    lipgloss.Color("#FDCB6E"), // Yellow
	NeedsApproval: lipgloss.Color("#A29BFE"), // Lavender
	Completed:     lipgloss.Color("#00B894"), // Green
	Closed:        lipgloss.Color("#636E72"), // Gray
	Overdue:       lipgloss.Color("#D63031"), // Red

	Urgent: lipgloss.Color("#D63031"), // Red
	High:   lipgloss.Color("#E17055"), // Orange
}

// Styles contains all the lipgloss styles for the board.
type Styles struct {
	// App
	App lipgloss.Style

	// Header
	Header     lipgloss.Style
	HeaderText lipgloss.Style
	HeaderUser lipgloss.Style

	// Column tabs
	Tab       lipgloss.Style
	TabActive lipgloss.Style

	// Task list
	TaskID             lipgloss.Style
	TaskTitle          lipgloss.Style
	TaskTitleSelected  lipgloss.Style
	TaskDesc           lipgloss.Style
	TaskAssignee       lipgloss.Style
	SelectionIndicator lipgloss.Style
	PriorityUrgent     lipgloss.Style
	PriorityHigh       lipgloss.Style
	PriorityNormal     lipgloss.Style
	Overdue            lipgloss.Style

	// Status badges
	StatusPending       lipgloss.Style
	StatusInProgress    lipgloss.Style
	StatusNeedsApproval lipgloss.Style
	StatusCompleted     lipgloss.Style
	StatusClosed        lipgloss.Style
	StatusOverdue       lipgloss.Style

	// Help
	Help lipgloss.Style

	// Footer
	Footer lipgloss.Style
	Notice lipgloss.Style

	// Input
	Input       lipgloss.Style
	InputPrompt lipgloss.Style

	// Error
	ErrorMsg lipgloss.Style

	// Detail view
	DetailTitle lipgloss.Style
	DetailLabel lipgloss.Style
	DetailValue lipgloss.Style
	DetailDesc  lipgloss.Style
}

// DefaultStyles returns the default styles for the board.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary).
			MarginBottom(1),

		HeaderText: lipgloss.NewStyle().
			Bold(true),

		HeaderUser: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		Tab: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Padding(0, 1),

		TabActive: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected).
			Bold(true).
			Underline(true).
			Padding(0, 1),

		TaskID: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		TaskTitle: lipgloss.NewStyle().
			Foreground(Colors.TitleNormal),

		TaskTitleSelected: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected).
			Bold(true),

		TaskDesc: lipgloss.NewStyle().
			Foreground(Colors.DescNormal),

		TaskAssignee: lipgloss.NewStyle().
			Foreground(Colors.Secondary).
			Italic(true),

		SelectionIndicator: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected),

		PriorityUrgent: lipgloss.NewStyle().
			Foreground(Colors.Urgent).
			Bold(true),

		PriorityHigh: lipgloss.NewStyle().
			Foreground(Colors.High),

		PriorityNormal: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		Overdue: lipgloss.NewStyle().
			Foreground(Colors.Overdue).
			Bold(true),

		StatusPending: lipgloss.NewStyle().
			Foreground(Colors.Pending),

		StatusInProgress: lipgloss.NewStyle().
			Foreground(Colors.InProgress),

		StatusNeedsApproval: lipgloss.NewStyle().
			Foreground(Colors.NeedsApproval),

		StatusCompleted: lipgloss.NewStyle().
			Foreground(Colors.Completed),

		StatusClosed: lipgloss.NewStyle().
			Foreground(Colors.Closed),

		StatusOverdue: lipgloss.NewStyle().
			Foreground(Colors.Overdue),

		Help: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Muted),

		Footer: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		Notice: lipgloss.NewStyle().
			Foreground(Colors.Success),

		Input: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Primary),

		InputPrompt: lipgloss.NewStyle().
			Foreground(Colors.Primary).
			Bold(true),

		ErrorMsg: lipgloss.NewStyle().
			Foreground(Colors.Error).
			Bold(true),

		DetailTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary).
			MarginBottom(1),

		DetailLabel: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Width(12),

		DetailValue: lipgloss.NewStyle(),

		DetailDesc: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			MarginTop(1),
	}
}

// StatusStyle returns the style for a given status.
func (s Styles) StatusStyle(status domain.Status) lipgloss.Style {
	switch status {
	case domain.StatusPending:
		return s.StatusPending
	case domain.StatusInProgress:
		return s.StatusInProgress
	case domain.StatusNeedsApproval:
		return s.StatusNeedsApproval
	case domain.StatusCompleted:
		return s.StatusCompleted
	case domain.StatusClosed:
		return s.StatusClosed
	case domain.StatusOverdue:
		return s.StatusOverdue
	default:
		return s.StatusPending
	}
}

// PriorityStyle returns the style for a given priority.
func (s Styles) PriorityStyle(p domain.Priority) lipgloss.Style {
	switch p {
	case domain.PriorityUrgent:
		return s.PriorityUrgent
	case domain.PriorityHigh:
		return s.PriorityHigh
	case domain.PriorityLow, domain.PriorityMedium:
		return s.PriorityNormal
	default:
		return s.PriorityNormal
	}
}

// StatusIcon returns an icon for a given status.
func StatusIcon(status domain.Status) string {
	switch status {
	case domain.StatusPending:
		return "○"
	case domain.StatusInProgress:
		return "●"
	case domain.StatusNeedsApproval:
		return "◉"
	case domain.StatusCompleted:
		return "✓"
	case domain.StatusClosed:
		return "−"
	case domain.StatusOverdue:
		return "!"
	default:
		return "?"
	}
}

// PriorityMark returns a short marker for a priority; medium has none.
func PriorityMark(p domain.Priority) string {
	switch p {
	case domain.PriorityUrgent:
		return "!!"
	case domain.PriorityHigh:
		return "!"
	case domain.PriorityLow:
		return "↓"
	case domain.PriorityMedium:
		return ""
	default:
		return ""
	}
}
