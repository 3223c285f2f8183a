// Package constants contains shared HTTP header names, content types,
// and GitHub API query parameter names used across the client.
package constants

// Header names commonly used across the client.
const (
	// HeaderAccept is the HTTP "Accept" header name.
	HeaderAccept = "Accept"

	// HeaderAuthorization is the HTTP "Authorization" header name.
	HeaderAuthorization = "Authorization"

	// HeaderContentType is the HTTP "Content-Type" header name.
	HeaderContentType = "Content-Type"

	// HeaderRateLimitRemaining is GitHub's remaining-quota header name.
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"

	// HeaderRateLimitReset is GitHub's quota-reset-timestamp header name.
	HeaderRateLimitReset = "X-RateLimit-Reset"
)

// Common media / content types used in requests and responses.
const (
	// ContentTypeJSON represents "application/json".
	ContentTypeJSON = "application/json"

	// ContentTypeFormURLEncoded represents
	// "application/x-www-form-urlencoded".
	ContentTypeFormURLEncoded = "application/x-www-form-urlencoded"
)

// Query parameter names used by the GitHub API.
const (
	// ParamClientID carries the OAuth application client ID on
	// unauthenticated requests.
	ParamClientID = "client_id"

	// ParamClientSecret carries the OAuth application client secret on
	// unauthenticated requests.
	ParamClientSecret = "client_secret"

	// ParamQuery is the search query parameter.
	ParamQuery = "q"

	// ParamSort selects the sort field on list/search endpoints.
	ParamSort = "sort"

	// ParamOrder selects ascending or descending order on search endpoints.
	ParamOrder = "order"

	// ParamPage selects the page on paginated endpoints.
	ParamPage = "page"

	// ParamPerPage sets the page size on paginated endpoints.
	ParamPerPage = "per_page"

	// ParamState filters issues by state.
	ParamState = "state"
)

// TokenFormat is the Authorization header value format for GitHub OAuth
// tokens, e.g. "token abc123".
const TokenFormat = "token %s"
