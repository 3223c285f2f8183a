package config

import "fmt"

// Endpoint builders for the GitHub REST API surface the client consumes.
// Query parameters are supplied per call; these helpers only build paths.

// AuthenticatedUserURL returns the endpoint for the authenticated user's
// profile.
func (c *GitHubConfig) AuthenticatedUserURL() string {
	return c.APIBaseURL + "/user"
}

// UserURL returns the endpoint for a public user profile.
func (c *GitHubConfig) UserURL(username string) string {
	return fmt.Sprintf("%s/users/%s", c.APIBaseURL, username)
}

// UserReposURL returns the endpoint listing a user's repositories.
func (c *GitHubConfig) UserReposURL(username string) string {
	return fmt.Sprintf("%s/users/%s/repos", c.APIBaseURL, username)
}

// RepoURL returns the endpoint for repository details.
func (c *GitHubConfig) RepoURL(owner, name string) string {
	return fmt.Sprintf("%s/repos/%s/%s", c.APIBaseURL, owner, name)
}

// ReadmeURL returns the endpoint for a repository's readme.
func (c *GitHubConfig) ReadmeURL(owner, name string) string {
	return fmt.Sprintf("%s/repos/%s/%s/readme", c.APIBaseURL, owner, name)
}

// IssuesURL returns the endpoint listing a repository's issues.
func (c *GitHubConfig) IssuesURL(owner, name string) string {
	return fmt.Sprintf("%s/repos/%s/%s/issues", c.APIBaseURL, owner, name)
}

// IssueURL returns the endpoint for a single issue.
func (c *GitHubConfig) IssueURL(owner, name string, number int) string {
	return fmt.Sprintf("%s/repos/%s/%s/issues/%d", c.APIBaseURL, owner, name, number)
}

// SearchRepositoriesURL returns the repository search endpoint.
func (c *GitHubConfig) SearchRepositoriesURL() string {
	return c.APIBaseURL + "/search/repositories"
}

// SearchUsersURL returns the user search endpoint.
func (c *GitHubConfig) SearchUsersURL() string {
	return c.APIBaseURL + "/search/users"
}
