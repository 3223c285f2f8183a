// Package auth implements the authentication state machine: the OAuth
// authorization-code login flow, token persistence through the credential
// store, silent session re-validation, and logout. The controller is the
// only writer of session state; the UI layer reads snapshots.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/dishcool/github-go/internal/client"
	"github.com/dishcool/github-go/internal/config"
	"github.com/dishcool/github-go/internal/constants"
	"github.com/dishcool/github-go/internal/credentials"
	"github.com/dishcool/github-go/internal/models"
)

// State identifies the controller's position in the authentication
// lifecycle.
type State int

const (
	// StateSignedOut is the initial state: no trusted session exists.
	StateSignedOut State = iota
	// StateAuthenticating means a login flow is in flight.
	StateAuthenticating
	// StateSignedIn means a session was established and the profile
	// fetched.
	StateSignedIn
)

// String returns a log-friendly name for the state.
func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateSignedIn:
		return "signed_in"
	default:
		return "signed_out"
	}
}

// Session is a point-in-time snapshot of the process-wide session state.
// Authenticated implies a token existed in the credential store when the
// flag was last set; the token may have since been revoked remotely, which
// the next validation detects.
type Session struct {
	Authenticated bool
	User          *models.User
	LastError     error
}

// Controller orchestrates the OAuth authorization-code exchange, token
// persistence, and session validation. All state transitions happen under
// one mutex so concurrent observers never see torn session fields.
type Controller struct {
	mu      sync.Mutex
	state   State
	user    *models.User
	lastErr error

	creds      credentials.Store
	api        *client.Client
	authorizer Authorizer
	github     *config.GitHubConfig
	trusted    bool
	timeout    time.Duration
	localCheck func() error
	logger     *logrus.Logger
}

// NewController creates the authentication controller. All collaborators
// are injected; the controller starts signed out.
func NewController(
	cfg *config.Config,
	creds credentials.Store,
	api *client.Client,
	authorizer Authorizer,
	logger *logrus.Logger,
) *Controller {
	return &Controller{
		state:      StateSignedOut,
		creds:      creds,
		api:        api,
		authorizer: authorizer,
		github:     &cfg.GitHub,
		trusted:    cfg.Auth.TrustedEnvironment,
		timeout:    cfg.Auth.LoginTimeout,
		logger:     logger,
	}
}

// SetLocalCheck installs the platform's local identity check (biometric or
// equivalent) used to re-validate a stored token in untrusted
// environments.
func (c *Controller) SetLocalCheck(check func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.localCheck = check
}

// Session returns a snapshot of the current session state.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Session{
		Authenticated: c.state == StateSignedIn,
		User:          c.user,
		LastError:     c.lastErr,
	}
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CheckSessionOnStart establishes the initial session state at process
// start. In a trusted environment the presence of a stored token is
// enough to mark the session authenticated; everywhere else the session
// stays signed out until an explicit re-validation, so a stolen device
// cannot auto-authenticate on token presence alone.
func (c *Controller) CheckSessionOnStart() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.trusted {
		c.logger.Debug("Untrusted environment; stored token requires re-validation")
		return
	}

	if c.creds.HasToken() {
		c.state = StateSignedIn
		c.logger.Info("Trusted environment; session restored from stored token")
	} else {
		c.state = StateSignedOut
	}
}

// Login runs the OAuth authorization-code flow: generate the anti-forgery
// state, run the interactive authorization, verify the echoed state,
// exchange the code for an access token, persist it, and fetch the
// authenticated user's profile. Only one login flow may be in flight;
// concurrent attempts fail with ErrLoginInProgress.
func (c *Controller) Login(ctx context.Context) (*models.User, error) {
	c.mu.Lock()
	if c.state == StateAuthenticating {
		c.mu.Unlock()
		c.logger.Warn("Login rejected; another login flow is in flight")
		return nil, models.ErrLoginInProgress
	}
	c.state = StateAuthenticating
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	state, err := GenerateState(StateLength)
	if err != nil {
		return nil, c.fail(models.ErrAuthUnknown.WithDescription(err.Error()))
	}

	oauthCfg := c.oauthConfig()
	callback, err := c.authorizer.Authorize(ctx, func(redirectURL string) string {
		oauthCfg.RedirectURL = redirectURL
		return oauthCfg.AuthCodeURL(state)
	})
	if err != nil {
		return nil, c.fail(models.ErrAuthorizationFailed.WithDescription(err.Error()))
	}
	if callback.IsError() {
		return nil, c.fail(models.ErrAuthorizationFailed.WithDescription(callback.ErrorDescription))
	}
	if subtle.ConstantTimeCompare([]byte(callback.State), []byte(state)) != 1 {
		c.logger.Warn("Authorization callback state mismatch")
		return nil, c.fail(models.ErrAuthorizationFailed.WithDescription("state parameter mismatch"))
	}

	token, err := oauthCfg.Exchange(ctx, callback.Code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, c.fail(models.ErrAuthorizationFailed.WithDescription(err.Error()))
		}
		return nil, c.fail(models.ErrNetwork.WithDescription(err.Error()))
	}
	if token.AccessToken == "" {
		return nil, c.fail(models.ErrAuthorizationFailed.WithDescription("token endpoint returned no access token"))
	}

	if !c.creds.StoreToken(token.AccessToken) {
		return nil, c.fail(models.ErrAuthUnknown.WithDescription("failed to store access token"))
	}

	user, err := c.fetchProfile(ctx, token.AccessToken)
	if err != nil {
		return nil, c.fail(c.translateRequestError(err))
	}

	c.mu.Lock()
	c.state = StateSignedIn
	c.user = user
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.WithField("login", user.Login).Info("Login complete")
	return user, nil
}

// ValidateSession silently re-validates a stored token by fetching the
// authenticated user's profile. Any failure invalidates the stored token:
// retrying a dead token on every launch only burns rate limit.
func (c *Controller) ValidateSession(ctx context.Context) (bool, error) {
	if !c.creds.HasToken() {
		c.setSignedOut(models.ErrTokenNotFound)
		return false, models.ErrTokenNotFound
	}

	user, err := c.fetchProfile(ctx, "")
	if err != nil {
		c.creds.DeleteToken()
		authErr := c.translateRequestError(err)
		c.setSignedOut(authErr)
		c.logger.WithError(authErr).Info("Session validation failed; stored token deleted")
		return false, authErr
	}

	c.mu.Lock()
	c.state = StateSignedIn
	c.user = user
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.WithField("login", user.Login).Debug("Session validated")
	return true, nil
}

// RevalidateWithLocalCheck runs the platform's local identity check and,
// when it passes, validates the stored token. Used on startup in
// untrusted environments instead of silently trusting token presence.
func (c *Controller) RevalidateWithLocalCheck(ctx context.Context) (bool, error) {
	c.mu.Lock()
	check := c.localCheck
	c.mu.Unlock()

	if check == nil {
		return false, models.ErrBiometricUnavailable
	}
	if err := check(); err != nil {
		c.setSignedOut(models.ErrBiometricUnavailable.WithDescription(err.Error()))
		return false, models.ErrBiometricUnavailable.WithDescription(err.Error())
	}
	return c.ValidateSession(ctx)
}

// Logout deletes the stored token and signs the session out. It always
// succeeds from the local client's perspective; the provider is not
// notified and relies on its own token expiry.
func (c *Controller) Logout() {
	c.creds.DeleteToken()
	c.setSignedOut(nil)
	c.logger.Info("Logged out")
}

// ResetPendingState forces the controller out of a stuck Authenticating
// state, e.g. after the user abandoned the interactive authorization.
// Safe to call at any time and from any state.
func (c *Controller) ResetPendingState() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateAuthenticating {
		c.state = StateSignedOut
		c.logger.Debug("Pending authentication state reset")
	}
}

// fail records the error, returns the controller to SignedOut, and passes
// the error through for the caller.
func (c *Controller) fail(authErr *models.AuthError) error {
	c.setSignedOut(authErr)
	c.logger.WithError(authErr).Warn("Authentication failed")
	return authErr
}

func (c *Controller) setSignedOut(authErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateSignedOut
	c.user = nil
	c.lastErr = authErr
}

// fetchProfile loads the authenticated user's profile. A non-empty token
// overrides the Authorization header for the single call; otherwise the
// client injects the stored token. The cache is bypassed so validation
// reflects the token's live status rather than a cached success.
func (c *Controller) fetchProfile(ctx context.Context, token string) (*models.User, error) {
	d := client.Descriptor{
		Endpoint: c.github.AuthenticatedUserURL(),
		Method:   http.MethodGet,
		UseCache: false,
	}
	if token != "" {
		d.Headers = map[string]string{
			constants.HeaderAuthorization: "token " + token,
		}
	}

	user, err := client.JSON[models.User](ctx, c.api, d)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// translateRequestError maps the HTTP client's taxonomy onto the
// authentication error taxonomy. An unauthorized rejection means the token
// is dead: it is deleted here so no caller keeps retrying it.
func (c *Controller) translateRequestError(err error) *models.AuthError {
	switch models.KindOf(err) {
	case models.KindUnauthorized:
		c.creds.DeleteToken()
		return models.ErrTokenNotFound.WithDescription("stored token rejected by the API")
	case models.KindTransport, models.KindRateLimited, models.KindServer:
		return models.ErrNetwork.WithDescription(err.Error())
	default:
		return models.ErrAuthUnknown.WithDescription(err.Error())
	}
}

// oauthConfig builds the per-login OAuth2 configuration. RedirectURL is
// filled in by the authorizer once its callback listener is bound.
func (c *Controller) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.github.ClientID,
		ClientSecret: c.github.ClientSecret,
		Scopes:       c.github.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.github.AuthorizeURL,
			TokenURL: c.github.TokenURL,
		},
	}
}
