// Package services provides thin, stateless query services over the
// caching HTTP client for the GitHub endpoints the application consumes.
// List and search operations degrade to stale cached data when the API
// rate limit rejects the live call; the stale indicator is returned so
// the presentation layer can flag possibly out-of-date results.
package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dishcool/github-go/internal/client"
	"github.com/dishcool/github-go/internal/config"
	"github.com/dishcool/github-go/internal/constants"
	"github.com/dishcool/github-go/internal/models"
)

// DefaultPerPage is the default page size for paginated requests.
const DefaultPerPage = 30

// RepositoryService queries repository endpoints.
type RepositoryService struct {
	api    *client.Client
	github *config.GitHubConfig
	logger *logrus.Logger
}

// NewRepositoryService creates a RepositoryService.
func NewRepositoryService(cfg *config.Config, api *client.Client, logger *logrus.Logger) *RepositoryService {
	return &RepositoryService{api: api, github: &cfg.GitHub, logger: logger}
}

// Trending returns repositories with recent traction: starred above a
// floor and created within the given span ("day", "week", "month",
// "year"), optionally filtered by language. The stale flag reports
// whether cached data was served due to rate limiting.
func (s *RepositoryService) Trending(
	ctx context.Context,
	language, span string,
) ([]models.Repository, bool, error) {
	query := "stars:>100 created:>" + trendingWindowStart(span).Format("2006-01-02")
	if language != "" {
		query += " language:" + language
	}

	params := url.Values{}
	params.Set(constants.ParamQuery, query)
	params.Set(constants.ParamSort, "stars")
	params.Set(constants.ParamOrder, "desc")

	resp, stale, err := client.JSONAllowStale[models.SearchRepositoriesResponse](ctx, s.api, client.Descriptor{
		Endpoint: s.github.SearchRepositoriesURL(),
		Method:   http.MethodGet,
		Params:   params,
		UseCache: true,
	})
	if err != nil {
		return nil, false, err
	}
	return resp.Items, stale, nil
}

// ForUser lists a user's repositories sorted by last update.
func (s *RepositoryService) ForUser(
	ctx context.Context,
	username string,
	page, perPage int,
) ([]models.Repository, bool, error) {
	params := paginationParams(page, perPage)
	params.Set(constants.ParamSort, "updated")

	return client.JSONAllowStale[[]models.Repository](ctx, s.api, client.Descriptor{
		Endpoint: s.github.UserReposURL(username),
		Method:   http.MethodGet,
		Params:   params,
		UseCache: true,
	})
}

// Details fetches a single repository.
func (s *RepositoryService) Details(ctx context.Context, owner, name string) (models.Repository, error) {
	return client.JSON[models.Repository](ctx, s.api, client.Descriptor{
		Endpoint: s.github.RepoURL(owner, name),
		Method:   http.MethodGet,
		UseCache: true,
	})
}

// Search searches repositories by query. An empty query returns no
// results without a network call.
func (s *RepositoryService) Search(
	ctx context.Context,
	query string,
	page, perPage int,
) ([]models.Repository, bool, error) {
	if query == "" {
		return nil, false, nil
	}

	params := paginationParams(page, perPage)
	params.Set(constants.ParamQuery, query)

	resp, stale, err := client.JSONAllowStale[models.SearchRepositoriesResponse](ctx, s.api, client.Descriptor{
		Endpoint: s.github.SearchRepositoriesURL(),
		Method:   http.MethodGet,
		Params:   params,
		UseCache: true,
	})
	if err != nil {
		return nil, false, err
	}
	return resp.Items, stale, nil
}

// Readme fetches a repository's readme and returns its decoded content.
// The API delivers the content base64-encoded with embedded newlines.
func (s *RepositoryService) Readme(ctx context.Context, owner, name string) (string, error) {
	readme, err := client.JSON[models.Readme](ctx, s.api, client.Descriptor{
		Endpoint: s.github.ReadmeURL(owner, name),
		Method:   http.MethodGet,
		UseCache: true,
	})
	if err != nil {
		return "", err
	}

	if !strings.EqualFold(readme.Encoding, "base64") {
		return readme.Content, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(readme.Content, "\n", ""))
	if err != nil {
		return "", models.NewDecodingError(fmt.Errorf("failed to decode readme content: %w", err))
	}
	return string(decoded), nil
}

// trendingWindowStart returns the start of the trending date window.
func trendingWindowStart(span string) time.Time {
	now := time.Now()
	switch span {
	case "day":
		return now.AddDate(0, 0, -1)
	case "month":
		return now.AddDate(0, -1, 0)
	case "year":
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -7)
	}
}

// paginationParams builds page/per_page query parameters with defaults.
func paginationParams(page, perPage int) url.Values {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	params := url.Values{}
	params.Set(constants.ParamPage, strconv.Itoa(page))
	params.Set(constants.ParamPerPage, strconv.Itoa(perPage))
	return params
}
