package models

import "time"

// Repository represents a GitHub repository as returned by /repos/{owner}/{name}
// and the repository list/search endpoints.
type Repository struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Owner           User      `json:"owner"`
	Description     *string   `json:"description,omitempty"`
	Private         bool      `json:"private"`
	Fork            bool      `json:"fork"`
	HTMLURL         string    `json:"html_url"`
	Language        *string   `json:"language,omitempty"`
	StargazersCount int       `json:"stargazers_count"`
	WatchersCount   int       `json:"watchers_count"`
	ForksCount      int       `json:"forks_count"`
	OpenIssuesCount int       `json:"open_issues_count"`
	Size            int       `json:"size"`
	License         *License  `json:"license,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	PushedAt        *time.Time `json:"pushed_at,omitempty"`
}

// License represents a repository license summary.
type License struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	SPDXID string `json:"spdx_id"`
}

// Readme represents the /repos/{owner}/{name}/readme response. Content is
// delivered base64-encoded by the API.
type Readme struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}
