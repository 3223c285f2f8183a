package services

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/dishcool/github-go/internal/client"
	"github.com/dishcool/github-go/internal/config"
	"github.com/dishcool/github-go/internal/constants"
	"github.com/dishcool/github-go/internal/models"
)

// UserService queries user profile and search endpoints.
type UserService struct {
	api    *client.Client
	github *config.GitHubConfig
	logger *logrus.Logger
}

// NewUserService creates a UserService.
func NewUserService(cfg *config.Config, api *client.Client, logger *logrus.Logger) *UserService {
	return &UserService{api: api, github: &cfg.GitHub, logger: logger}
}

// AuthenticatedUser fetches the profile of the user the stored token
// belongs to.
func (s *UserService) AuthenticatedUser(ctx context.Context) (models.User, error) {
	return client.JSON[models.User](ctx, s.api, client.Descriptor{
		Endpoint: s.github.AuthenticatedUserURL(),
		Method:   http.MethodGet,
		UseCache: true,
	})
}

// Profile fetches a public user profile.
func (s *UserService) Profile(ctx context.Context, username string) (models.User, error) {
	return client.JSON[models.User](ctx, s.api, client.Descriptor{
		Endpoint: s.github.UserURL(username),
		Method:   http.MethodGet,
		UseCache: true,
	})
}

// Search searches users by query. An empty query returns no results
// without a network call.
func (s *UserService) Search(
	ctx context.Context,
	query string,
	page, perPage int,
) ([]models.User, bool, error) {
	if query == "" {
		return nil, false, nil
	}

	params := paginationParams(page, perPage)
	params.Set(constants.ParamQuery, query)

	resp, stale, err := client.JSONAllowStale[models.SearchUsersResponse](ctx, s.api, client.Descriptor{
		Endpoint: s.github.SearchUsersURL(),
		Method:   http.MethodGet,
		Params:   params,
		UseCache: true,
	})
	if err != nil {
		return nil, false, err
	}
	return resp.Items, stale, nil
}
