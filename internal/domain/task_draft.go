package domain

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Draft parsing errors.
var (
	ErrEmptyFile     = fmt.Errorf("file is empty: %w", ErrValidationFailed)
	ErrNoTasksInFile = fmt.Errorf("no tasks found in file: %w", ErrValidationFailed)
	ErrInvalidDate   = fmt.Errorf("invalid date, expected YYYY-MM-DD: %w", ErrValidationFailed)
)

// DraftContact is an external assignee given inline in a draft.
type DraftContact struct {
	Name  string `yaml:"name"`
	Phone string `yaml:"phone"`
}

// TaskDraft represents a task to be created from file input.
// Fields are ordered to minimize memory padding.
type TaskDraft struct {
	DueDate     *time.Time    `yaml:"-"`
	Contact     *DraftContact `yaml:"contact"`
	Title       string        `yaml:"title"`
	Description string        `yaml:"-"`
	Priority    Priority      `yaml:"priority"`
	Project     string        `yaml:"project"`
	Assignee    string        `yaml:"assignee"` // Internal user ID
	Due         string        `yaml:"due"`
	Checklist   []string      `yaml:"checklist"`
	Watchers    []string      `yaml:"watchers"`
}

// ParseTaskDrafts parses a markdown file containing one or more task definitions.
// Each task is a YAML frontmatter block followed by its description.
//
// Format:
//
//	---
//	title: Replace pump seal
//	priority: high
//	assignee: alice
//	due: 2026-03-14
//	checklist: [Order part, Fit seal]
//	---
//	Description here.
//
//	---
//	title: Call plumber
//	contact: {name: Joe, phone: "+1 555 010 2000"}
//	---
func ParseTaskDrafts(content string) ([]TaskDraft, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyFile
	}

	blocks := splitTaskBlocks(content)
	if len(blocks) == 0 {
		return nil, ErrNoTasksInFile
	}

	drafts := make([]TaskDraft, 0, len(blocks))
	for i, block := range blocks {
		draft, err := parseTaskBlock(block)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

type taskBlock struct {
	front []string
	body  []string
}

// splitTaskBlocks splits content into frontmatter and body pairs.
// A "---" line inside a body only starts a new block when the next line
// looks like a frontmatter key.
func splitTaskBlocks(content string) []taskBlock {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	var blocks []taskBlock
	var cur *taskBlock
	inFront := false
	for i, line := range lines {
		if strings.TrimRight(line, " ") == "---" {
			switch {
			case cur == nil:
				cur, inFront = &taskBlock{}, true
				continue
			case inFront:
				inFront = false
				continue
			case i+1 < len(lines) && isFrontmatterKey(lines[i+1]):
				blocks = append(blocks, *cur)
				cur, inFront = &taskBlock{}, true
				continue
			}
		}
		if cur == nil {
			continue
		}
		if inFront {
			cur.front = append(cur.front, line)
		} else {
			cur.body = append(cur.body, line)
		}
	}
	if cur != nil {
		blocks = append(blocks, *cur)
	}
	return blocks
}

func isFrontmatterKey(line string) bool {
	for _, key := range []string{"title:", "priority:", "project:", "assignee:", "contact:", "due:", "checklist:", "watchers:"} {
		if strings.HasPrefix(line, key) {
			return true
		}
	}
	return false
}

func parseTaskBlock(block taskBlock) (TaskDraft, error) {
	var draft TaskDraft
	dec := yaml.NewDecoder(bytes.NewReader([]byte(strings.Join(block.front, "\n"))))
	dec.KnownFields(true)
	if err := dec.Decode(&draft); err != nil && !errors.Is(err, io.EOF) {
		return TaskDraft{}, fmt.Errorf("frontmatter: %v: %w", err, ErrValidationFailed)
	}

	draft.Title = strings.TrimSpace(draft.Title)
	if draft.Title == "" {
		return TaskDraft{}, ErrEmptyTitle
	}
	if draft.Priority != "" && !draft.Priority.IsValid() {
		return TaskDraft{}, fmt.Errorf("%q: %w", draft.Priority, ErrInvalidPriority)
	}
	if draft.Assignee != "" && draft.Contact != nil {
		return TaskDraft{}, fmt.Errorf("assignee and contact are exclusive: %w", ErrValidationFailed)
	}
	if draft.Due != "" {
		due, err := time.Parse(time.DateOnly, strings.TrimSpace(draft.Due))
		if err != nil {
			return TaskDraft{}, fmt.Errorf("%q: %w", draft.Due, ErrInvalidDate)
		}
		draft.DueDate = &due
	}
	draft.Description = strings.Trim(strings.Join(block.body, "\n"), "\n")
	return draft, nil
}
