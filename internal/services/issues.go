package services

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/dishcool/github-go/internal/client"
	"github.com/dishcool/github-go/internal/config"
	"github.com/dishcool/github-go/internal/constants"
	"github.com/dishcool/github-go/internal/models"
)

// IssueService queries repository issue endpoints.
type IssueService struct {
	api    *client.Client
	github *config.GitHubConfig
	logger *logrus.Logger
}

// NewIssueService creates an IssueService.
func NewIssueService(cfg *config.Config, api *client.Client, logger *logrus.Logger) *IssueService {
	return &IssueService{api: api, github: &cfg.GitHub, logger: logger}
}

// List returns a repository's issues in every state.
func (s *IssueService) List(ctx context.Context, owner, repo string) ([]models.Issue, bool, error) {
	params := url.Values{}
	params.Set(constants.ParamState, "all")

	return client.JSONAllowStale[[]models.Issue](ctx, s.api, client.Descriptor{
		Endpoint: s.github.IssuesURL(owner, repo),
		Method:   http.MethodGet,
		Params:   params,
		UseCache: true,
	})
}

// Detail fetches a single issue by number.
func (s *IssueService) Detail(ctx context.Context, owner, repo string, number int) (models.Issue, error) {
	return client.JSON[models.Issue](ctx, s.api, client.Descriptor{
		Endpoint: s.github.IssueURL(owner, repo, number),
		Method:   http.MethodGet,
		UseCache: true,
	})
}
