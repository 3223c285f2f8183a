// Package main provides a reference binary for the GitHub client core. It
// wires the credential store, response cache, HTTP client, authentication
// controller, and domain services together, establishes a session, and
// runs a few representative queries.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/dishcool/github-go/internal/auth"
	"github.com/dishcool/github-go/internal/cache"
	"github.com/dishcool/github-go/internal/client"
	"github.com/dishcool/github-go/internal/config"
	"github.com/dishcool/github-go/internal/credentials"
	"github.com/dishcool/github-go/internal/metrics"
	"github.com/dishcool/github-go/internal/services"
	"github.com/dishcool/github-go/pkg/logger"
)

func main() {
	// Load .env.local only in development (when GO_ENV is unset or "development")
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" || goEnv == "development" {
		if err := godotenv.Load(".env.local"); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env.local file: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log.WithFields(logrus.Fields{
		"api_base_url": cfg.GitHub.APIBaseURL,
		"cache_ttl":    cfg.Cache.TTL.String(),
		"trusted_env":  cfg.Auth.TrustedEnvironment,
	}).Info("Starting GitHub client")

	m := metrics.New(prometheus.DefaultRegisterer)
	startMetricsServer(cfg, log)

	creds := credentials.NewKeyringStore(cfg.Auth.CredentialKey, log)
	respCache := cache.New(cfg.Cache.Capacity, log)
	apiClient := client.New(cfg, creds, respCache, m, log)

	authorizer := auth.NewBrowserAuthorizer(cfg.GitHub.CallbackPort, log)
	controller := auth.NewController(cfg, creds, apiClient, authorizer, log)

	ctx := context.Background()
	if err := establishSession(ctx, controller, log); err != nil {
		log.WithError(err).Fatal("Failed to establish a session")
	}

	runQueries(ctx, cfg, apiClient, log)
}

// establishSession restores or creates an authenticated session: trusted
// environments restore from the stored token, otherwise a silent
// validation is attempted before falling back to the interactive login.
func establishSession(ctx context.Context, controller *auth.Controller, log *logrus.Logger) error {
	controller.CheckSessionOnStart()
	if controller.Session().Authenticated {
		log.Info("Session restored from stored token")
		return nil
	}

	if ok, err := controller.ValidateSession(ctx); ok {
		log.WithField("login", controller.Session().User.Login).Info("Session validated")
		return nil
	} else if err != nil {
		log.WithError(err).Debug("Silent validation failed; starting interactive login")
	}

	user, err := controller.Login(ctx)
	if err != nil {
		return err
	}
	log.WithField("login", user.Login).Info("Authenticated")
	return nil
}

// runQueries exercises the domain services against the live session.
func runQueries(ctx context.Context, cfg *config.Config, apiClient *client.Client, log *logrus.Logger) {
	repoSvc := services.NewRepositoryService(cfg, apiClient, log)
	userSvc := services.NewUserService(cfg, apiClient, log)

	me, err := userSvc.AuthenticatedUser(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to fetch authenticated profile")
		return
	}
	log.WithFields(logrus.Fields{
		"login":        me.Login,
		"public_repos": me.PublicRepos,
	}).Info("Authenticated user")

	trending, stale, err := repoSvc.Trending(ctx, "", "week")
	if err != nil {
		log.WithError(err).Error("Failed to fetch trending repositories")
		return
	}
	log.WithFields(logrus.Fields{
		"count": len(trending),
		"stale": stale,
	}).Info("Trending repositories this week")
	for i, repo := range trending {
		if i >= 10 {
			break
		}
		fmt.Printf("%-40s %8d stars  %s\n", repo.FullName, repo.StargazersCount, repo.HTMLURL)
	}
}

// startMetricsServer exposes the Prometheus endpoint when configured.
func startMetricsServer(cfg *config.Config, log *logrus.Logger) {
	if cfg.HTTP.MetricsPort == 0 {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf("127.0.0.1:%d", cfg.HTTP.MetricsPort)

	go func() {
		log.WithField("addr", addr).Info("Serving metrics")
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Metrics server failed")
		}
	}()
}
