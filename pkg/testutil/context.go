package testutil

import (
	"net/http"

	"masjid/pkg/domain"
	"masjid/pkg/requestcontext"
)

// WithPrincipal attaches p to the request context, as the auth middleware
// does for a request with a valid bearer token.
func WithPrincipal(req *http.Request, p domain.Principal) *http.Request {
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), p))
}

// AsMember attaches an authenticated principal with the given user id.
func AsMember(req *http.Request, userID int64) *http.Request {
	return WithPrincipal(req, domain.Principal{UserID: domain.UserID(userID), Role: domain.RoleAuthenticated})
}

// AsModerator attaches a moderator principal with the given user id.
func AsModerator(req *http.Request, userID int64) *http.Request {
	return WithPrincipal(req, domain.Principal{UserID: domain.UserID(userID), Role: domain.RoleModerator})
}
