package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dishcool/github-go/internal/cache"
	"github.com/dishcool/github-go/internal/client"
	"github.com/dishcool/github-go/internal/config"
	"github.com/dishcool/github-go/internal/credentials"
	"github.com/dishcool/github-go/internal/metrics"
	"github.com/dishcool/github-go/internal/models"
	"github.com/dishcool/github-go/internal/services"
	"github.com/dishcool/github-go/pkg/logger"
)

// apiStub replays canned responses by path and records each request for
// parameter assertions.
type apiStub struct {
	mu        sync.Mutex
	server    *httptest.Server
	responses map[string]string
	requests  []*url.URL
}

func newAPIStub() *apiStub {
	stub := &apiStub{responses: map[string]string{}}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		stub.requests = append(stub.requests, r.URL)
		body, ok := stub.responses[r.URL.Path]
		stub.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Not Found"}`))
			return
		}
		w.Write([]byte(body))
	}))
	return stub
}

func (s *apiStub) respond(path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = body
}

func (s *apiStub) lastRequest(t *testing.T) *url.URL {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.requests, "expected at least one API request")
	return s.requests[len(s.requests)-1]
}

func (s *apiStub) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *apiStub) config() *config.Config {
	return &config.Config{
		GitHub: config.GitHubConfig{
			ClientID:     "test-client-id",
			ClientSecret: "test-client-secret",
			APIBaseURL:   s.server.URL,
		},
		HTTP:  config.HTTPConfig{Timeout: 5 * time.Second},
		Cache: config.CacheConfig{TTL: 300 * time.Second, Capacity: 100},
	}
}

func (s *apiStub) client(cfg *config.Config) *client.Client {
	log := logger.NewNop()
	creds := credentials.NewMemoryStore()
	creds.StoreToken("test-token")
	return client.New(cfg, creds, cache.New(cfg.Cache.Capacity, log), metrics.New(prometheus.NewRegistry()), log)
}

func TestRepositoryService_Trending(t *testing.T) {
	stub := newAPIStub()
	defer stub.server.Close()
	stub.respond("/search/repositories",
		`{"total_count":2,"incomplete_results":false,"items":[
			{"id":1,"name":"alpha","full_name":"a/alpha","owner":{"id":1,"login":"a","avatar_url":""},"stargazers_count":900},
			{"id":2,"name":"beta","full_name":"b/beta","owner":{"id":2,"login":"b","avatar_url":""},"stargazers_count":500}
		]}`)

	cfg := stub.config()
	svc := services.NewRepositoryService(cfg, stub.client(cfg), logger.NewNop())

	repos, stale, err := svc.Trending(context.Background(), "go", "week")
	require.NoError(t, err)
	assert.False(t, stale)
	require.Len(t, repos, 2)
	assert.Equal(t, "a/alpha", repos[0].FullName)

	query := stub.lastRequest(t).Query()
	assert.Contains(t, query.Get("q"), "stars:>100")
	assert.Contains(t, query.Get("q"), "created:>")
	assert.Contains(t, query.Get("q"), "language:go")
	assert.Equal(t, "stars", query.Get("sort"))
	assert.Equal(t, "desc", query.Get("order"))
}

func TestRepositoryService_TrendingWithoutLanguage(t *testing.T) {
	stub := newAPIStub()
	defer stub.server.Close()
	stub.respond("/search/repositories", `{"total_count":0,"incomplete_results":false,"items":[]}`)

	cfg := stub.config()
	svc := services.NewRepositoryService(cfg, stub.client(cfg), logger.NewNop())

	_, _, err := svc.Trending(context.Background(), "", "month")
	require.NoError(t, err)

	assert.NotContains(t, stub.lastRequest(t).Query().Get("q"), "language:")
}

func TestRepositoryService_ForUser(t *testing.T) {
	stub := newAPIStub()
	defer stub.server.Close()
	stub.respond("/users/octocat/repos",
		`[{"id":1,"name":"hello","full_name":"octocat/hello","owner":{"id":1,"login":"octocat","avatar_url":""}}]`)

	cfg := stub.config()
	svc := services.NewRepositoryService(cfg, stub.client(cfg), logger.NewNop())

	repos, stale, err := svc.ForUser(context.Background(), "octocat", 0, 0)
	require.NoError(t, err)
	assert.False(t, stale)
	require.Len(t, repos, 1)

	query := stub.lastRequest(t).Query()
	assert.Equal(t, "1", query.Get("page"))
	assert.Equal(t, "30", query.Get("per_page"))
	assert.Equal(t, "updated", query.Get("sort"))
}

func TestRepositoryService_Details(t *testing.T) {
	stub := newAPIStub()
	defer stub.server.Close()
	stub.respond("/repos/octocat/hello",
		`{"id":1,"name":"hello","full_name":"octocat/hello","owner":{"id":1,"login":"octocat","avatar_url":""},"stargazers_count":42}`)

	cfg := stub.config()
	svc := services.NewRepositoryService(cfg, stub.client(cfg), logger.NewNop())

	repo, err := svc.Details(context.Background(), "octocat", "hello")
	require.NoError(t, err)
	assert.Equal(t, "octocat/hello", repo.FullName)
	assert.Equal(t, 42, repo.StargazersCount)
}

func TestRepositoryService_SearchEmptyQuery(t *testing.T) {
	stub := newAPIStub()
	defer stub.server.Close()

	cfg := stub.config()
	svc := services.NewRepositoryService(cfg, stub.client(cfg), logger.NewNop())

	repos, stale, err := svc.Search(context.Background(), "", 1, 30)
	require.NoError(t, err)
	assert.Nil(t, repos)
	assert.False(t, stale)
	assert.Equal(t, 0, stub.requestCount(), "empty query must not hit the network")
}

func TestRepositoryService_Search(t *testing.T) {
	stub := newAPIStub()
	defer stub.server.Close()
	stub.respond("/search/repositories",
		`{"total_count":1,"incomplete_results":false,"items":[
			{"id":1,"name":"kit","full_name":"go-kit/kit","owner":{"id":1,"login":"go-kit","avatar_url":""}}
		]}`)

	cfg := stub.config()
	svc := services.NewRepositoryService(cfg, stub.client(cfg), logger.NewNop())

	repos, _, err := svc.Search(context.Background(), "microservice", 2, 50)
	require.NoError(t, err)
	require.Len(t, repos, 1)

	query := stub.lastRequest(t).Query()
	assert.Equal(t, "microservice", query.Get("q"))
	assert.Equal(t, "2", query.Get("page"))
	assert.Equal(t, "50", query.Get("per_page"))
}

func TestRepositoryService_ReadmeBase64(t *testing.T) {
	stub := newAPIStub()
	defer stub.server.Close()
	// The API wraps base64 content with embedded newlines.
	stub.respond("/repos/octocat/hello/readme",
		`{"name":"README.md","path":"README.md","encoding":"base64","content":"SGVsbG8s\nIHdvcmxk\n"}`)

	cfg := stub.config()
	svc := services.NewRepositoryService(cfg, stub.client(cfg), logger.NewNop())

	content, err := svc.Readme(context.Background(), "octocat", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", content)
}

func TestRepositoryService_ReadmePlainEncoding(t *testing.T) {
	stub := newAPIStub()
	defer stub.server.Close()
	stub.respond("/repos/octocat/hello/readme",
		`{"name":"README.md","path":"README.md","encoding":"utf-8","content":"# Hello"}`)

	cfg := stub.config()
	svc := services.NewRepositoryService(cfg, stub.client(cfg), logger.NewNop())

	content, err := svc.Readme(context.Background(), "octocat", "hello")
	require.NoError(t, err)
	assert.Equal(t, "# Hello", content)
}

func TestRepositoryService_ReadmeInvalidBase64(t *testing.T) {
	stub := newAPIStub()
	defer stub.server.Close()
	stub.respond("/repos/octocat/hello/readme",
		`{"name":"README.md","path":"README.md","encoding":"base64","content":"%%%not-base64%%%"}`)

	cfg := stub.config()
	svc := services.NewRepositoryService(cfg, stub.client(cfg), logger.NewNop())

	_, err := svc.Readme(context.Background(), "octocat", "hello")
	assert.Equal(t, models.KindDecoding, models.KindOf(err))
}

func TestUserService_AuthenticatedUser(t *testing.T) {
	stub := newAPIStub()
	defer stub.server.Close()
	stub.respond("/user", `{"id":1,"login":"octocat","avatar_url":"","public_repos":8}`)

	cfg := stub.config()
	svc := services.NewUserService(cfg, stub.client(cfg), logger.NewNop())

	user, err := svc.AuthenticatedUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "octocat", user.Login)
	assert.Equal(t, 8, user.PublicRepos)
}

func TestUserService_Profile(t *testing.T) {
	stub := newAPIStub()
	defer stub.server.Close()
	stub.respond("/users/defunkt", `{"id":2,"login":"defunkt","avatar_url":""}`)

	cfg := stub.config()
	svc := services.NewUserService(cfg, stub.client(cfg), logger.NewNop())

	user, err := svc.Profile(context.Background(), "defunkt")
	require.NoError(t, err)
	assert.Equal(t, "defunkt", user.Login)
}

func TestUserService_ProfileNotFound(t *testing.T) {
	stub := newAPIStub()
	defer stub.server.Close()

	cfg := stub.config()
	svc := services.NewUserService(cfg, stub.client(cfg), logger.NewNop())

	_, err := svc.Profile(context.Background(), "nobody")
	require.Error(t, err)

	var reqErr *models.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
}

func TestUserService_SearchEmptyQuery(t *testing.T) {
	stub := newAPIStub()
	defer stub.server.Close()

	cfg := stub.config()
	svc := services.NewUserService(cfg, stub.client(cfg), logger.NewNop())

	users, stale, err := svc.Search(context.Background(), "", 1, 30)
	require.NoError(t, err)
	assert.Nil(t, users)
	assert.False(t, stale)
	assert.Equal(t, 0, stub.requestCount())
}

func TestUserService_Search(t *testing.T) {
	stub := newAPIStub()
	defer stub.server.Close()
	stub.respond("/search/users",
		`{"total_count":1,"incomplete_results":false,"items":[{"id":1,"login":"octocat","avatar_url":""}]}`)

	cfg := stub.config()
	svc := services.NewUserService(cfg, stub.client(cfg), logger.NewNop())

	users, _, err := svc.Search(context.Background(), "octocat", 1, 30)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "octocat", users[0].Login)
}

func TestIssueService_List(t *testing.T) {
	stub := newAPIStub()
	defer stub.server.Close()
	stub.respond("/repos/octocat/hello/issues",
		`[{"id":1,"number":7,"title":"Broken build","state":"open","user":{"id":1,"login":"octocat","avatar_url":""}},
		  {"id":2,"number":3,"title":"Old bug","state":"closed","user":{"id":2,"login":"defunkt","avatar_url":""}}]`)

	cfg := stub.config()
	svc := services.NewIssueService(cfg, stub.client(cfg), logger.NewNop())

	issues, stale, err := svc.List(context.Background(), "octocat", "hello")
	require.NoError(t, err)
	assert.False(t, stale)
	require.Len(t, issues, 2)
	assert.Equal(t, 7, issues[0].Number)

	assert.Equal(t, "all", stub.lastRequest(t).Query().Get("state"))
}

func TestIssueService_Detail(t *testing.T) {
	stub := newAPIStub()
	defer stub.server.Close()
	stub.respond("/repos/octocat/hello/issues/7",
		`{"id":1,"number":7,"title":"Broken build","state":"open","user":{"id":1,"login":"octocat","avatar_url":""}}`)

	cfg := stub.config()
	svc := services.NewIssueService(cfg, stub.client(cfg), logger.NewNop())

	issue, err := svc.Detail(context.Background(), "octocat", "hello", 7)
	require.NoError(t, err)
	assert.Equal(t, "Broken build", issue.Title)
	assert.Equal(t, "open", issue.State)
}
