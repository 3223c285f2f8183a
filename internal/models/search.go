package models

// SearchRepositoriesResponse is the envelope returned by
// /search/repositories.
type SearchRepositoriesResponse struct {
	TotalCount        int          `json:"total_count"`
	IncompleteResults bool         `json:"incomplete_results"`
	Items             []Repository `json:"items"`
}

// SearchUsersResponse is the envelope returned by /search/users.
type SearchUsersResponse struct {
	TotalCount        int    `json:"total_count"`
	IncompleteResults bool   `json:"incomplete_results"`
	Items             []User `json:"items"`
}
