// Package tui provides the interactive task board for whatstask.
package tui

// Mode represents the current UI mode.
type Mode int

const (
	ModeNormal     Mode = iota // Board navigation
	ModeDetail                 // Task detail view
	ModeHelp                   // Help overlay
	ModeInputTitle             // Title input for a new task
	ModeInputNote              // Free-text input for a pending action
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeDetail:
		return "detail"
	case ModeHelp:
		return "help"
	case ModeInputTitle:
		return "input_title"
	case ModeInputNote:
		return "input_note"
	default:
		return "unknown"
	}
}

// IsInputMode returns true if the mode accepts text input.
func (m Mode) IsInputMode() bool {
	switch m {
	case ModeInputTitle, ModeInputNote:
		return true
	case ModeNormal, ModeDetail, ModeHelp:
		return false
	}
	return false
}

// NoteAction is the action waiting for the text typed in ModeInputNote.
type NoteAction int

const (
	NoteNone    NoteAction = iota
	NoteDecline            // Decline reason (optional)
	NoteDelete             // Delete reason (required)
	NoteComment            // Comment message
)

// String returns a human-readable description of the action.
func (a NoteAction) String() string {
	switch a {
	case NoteNone:
		return ""
	case NoteDecline:
		return "decline"
	case NoteDelete:
		return "delete"
	case NoteComment:
		return "comment"
	}
	return ""
}

// Prompt returns the input label shown for the action.
func (a NoteAction) Prompt() string {
	switch a {
	case NoteDecline:
		return "Reason for declining (optional): "
	case NoteDelete:
		return "Reason for deleting: "
	case NoteComment:
		return "Comment: "
	case NoteNone:
		return ""
	}
	return ""
}
