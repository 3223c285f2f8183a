package models

import "time"

// Issue represents a GitHub issue as returned by the repository issues
// endpoints.
type Issue struct {
	ID        int64      `json:"id"`
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Body      *string    `json:"body,omitempty"`
	State     string     `json:"state"`
	Comments  int        `json:"comments"`
	User      User       `json:"user"`
	Labels    []Label    `json:"labels,omitempty"`
	Assignees []User     `json:"assignees,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// Label represents an issue label.
type Label struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Description *string `json:"description,omitempty"`
}
