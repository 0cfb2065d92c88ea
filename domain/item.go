package domain

import (
	"errors"
	"strings"
)

// Progress is the workflow state of an item. The string value is what the
// row store holds in the progress column.
type Progress string

const (
	NotStarted Progress = "Not Started"
	InProgress Progress = "In Progress"
	InReview   Progress = "In Review"
	Done       Progress = "Done"
)

// Progresses lists the workflow states in board column order.
var Progresses = []Progress{NotStarted, InProgress, InReview, Done}

// ErrUnknownProgress is returned by ParseProgress for values outside the enum.
var ErrUnknownProgress = errors.New("unknown progress")

// ParseProgress matches s against the progress values ignoring case and
// surrounding whitespace.
func ParseProgress(s string) (Progress, error) {
	s = strings.TrimSpace(s)
	for _, p := range Progresses {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", ErrUnknownProgress
}

// NormalizeProgress maps stored values onto the enum; anything unrecognised,
// including an empty cell, reads as NotStarted.
func NormalizeProgress(s string) Progress {
	p, err := ParseProgress(s)
	if err != nil {
		return NotStarted
	}
	return p
}

// Key is the short identifier used for kanban column ids.
func (p Progress) Key() string {
	switch p {
	case InProgress:
		return "inProgress"
	case InReview:
		return "inReview"
	case Done:
		return "done"
	default:
		return "notStarted"
	}
}

type Priority string

const (
	Low    Priority = "Low"
	Medium Priority = "Medium"
	High   Priority = "High"
)

// PriorityOrDefault keeps s as given and only fills in Medium for an empty
// value. Priorities are free text in the sheet; Low, Medium and High are the
// values the board offers.
func PriorityOrDefault(s string) Priority {
	if s == "" {
		return Medium
	}
	return Priority(s)
}

// Class is the lower-cased display form of the priority, so "HIGH" and
// "high" style the same.
func (p Priority) Class() string {
	return strings.ToLower(string(p))
}

// Item represents a single row of the tracker sheet.
type Item struct {
	ID            int      `json:"id"`
	Project       string   `json:"project"`
	Description   string   `json:"description"`
	DueDate       string   `json:"dueDate"`
	Progress      Progress `json:"progress"`
	Priority      Priority `json:"priority"`
	Requester     string   `json:"requester"`
	Assignee      string   `json:"assignee"`
	Category      string   `json:"category"`
	DateSubmitted string   `json:"dateSubmitted"`
}

// NewItem carries the user supplied fields of a create request. Progress and
// submission date are decided by the store.
type NewItem struct {
	Project     string `json:"project"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Priority    string `json:"priority"`
	Requester   string `json:"requester"`
	Assignee    string `json:"assignee"`
	Category    string `json:"category"`
}
