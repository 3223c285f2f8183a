package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Callback carries the provider's redirect back into the login flow: the
// authorization code tied to the anti-forgery state, or the provider's
// error report when the user denied access.
type Callback struct {
	// Code is the authorization code.
	Code string
	// State is the echoed anti-forgery state parameter. The controller
	// verifies it against the value generated for this login attempt.
	State string
	// ErrorCode is the provider's error code when authorization failed.
	ErrorCode string
	// ErrorDescription is the provider's human-readable error text.
	ErrorDescription string
}

// IsError reports whether the callback represents a provider-side failure.
func (c *Callback) IsError() bool {
	return c.ErrorCode != ""
}

// Authorizer runs the interactive authorization step of the OAuth
// authorization-code flow. buildURL receives the redirect URL the
// implementation will answer on and returns the full authorization URL to
// present to the user. Implementations deliver exactly one callback or
// one error per invocation.
//
// Tests substitute an Authorizer that echoes a canned code and state.
type Authorizer interface {
	Authorize(ctx context.Context, buildURL func(redirectURL string) string) (*Callback, error)
}

// readHeaderTimeout bounds header reads on the loopback callback server.
const readHeaderTimeout = 10 * time.Second

// BrowserAuthorizer is the production Authorizer. It starts a temporary
// loopback HTTP server, presents the authorization URL for the user's
// browser, and waits for the provider to redirect back with the
// authorization code.
type BrowserAuthorizer struct {
	port   int
	logger *logrus.Logger
}

// NewBrowserAuthorizer creates a BrowserAuthorizer listening on the given
// loopback port. Port zero selects a random available port.
func NewBrowserAuthorizer(port int, logger *logrus.Logger) *BrowserAuthorizer {
	return &BrowserAuthorizer{port: port, logger: logger}
}

// Authorize starts the callback server, logs the authorization URL for
// the user to open, and blocks until the callback arrives or ctx is done.
func (a *BrowserAuthorizer) Authorize(
	ctx context.Context,
	buildURL func(redirectURL string) string,
) (*Callback, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", a.port))
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	port := listener.Addr().(*net.TCPAddr).Port
	redirectURL := fmt.Sprintf("http://127.0.0.1:%d/callback", port)

	resultCh := make(chan *Callback, 1)
	var once sync.Once

	router := mux.NewRouter()
	router.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		result := &Callback{
			Code:             query.Get("code"),
			State:            query.Get("state"),
			ErrorCode:        query.Get("error"),
			ErrorDescription: query.Get("error_description"),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if result.IsError() {
			fmt.Fprint(w, "<html><body><h2>Authorization failed</h2>You can close this window.</body></html>")
		} else {
			fmt.Fprint(w, "<html><body><h2>Authorization complete</h2>You can close this window.</body></html>")
		}

		once.Do(func() { resultCh <- result })
	}).Methods(http.MethodGet)

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			a.logger.WithError(serveErr).Error("Callback server failed")
		}
	}()
	defer server.Close()

	authorizeURL := buildURL(redirectURL)
	a.logger.WithField("url", authorizeURL).Info("Open the authorization URL in your browser to continue")

	select {
	case result := <-resultCh:
		return result, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization callback not received: %w", ctx.Err())
	}
}
