// Package models defines the data shapes exchanged with the GitHub REST
// API, along with the typed error taxonomies used across the client.
package models

// User represents a GitHub user profile as returned by /user and
// /users/{username}. Optional profile fields are pointers so an absent
// field is distinguishable from an empty one.
type User struct {
	ID          int64   `json:"id"`
	Login       string  `json:"login"`
	AvatarURL   string  `json:"avatar_url"`
	Name        *string `json:"name,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	Email       *string `json:"email,omitempty"`
	Location    *string `json:"location,omitempty"`
	Company     *string `json:"company,omitempty"`
	Followers   int     `json:"followers,omitempty"`
	Following   int     `json:"following,omitempty"`
	PublicRepos int     `json:"public_repos,omitempty"`
}

// Organization represents a GitHub organization summary.
type Organization struct {
	ID          int64   `json:"id"`
	Login       string  `json:"login"`
	AvatarURL   string  `json:"avatar_url"`
	Description *string `json:"description,omitempty"`
}
