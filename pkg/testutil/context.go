package testutil

import (
	"net/http"

	id "walletreg/pkg/domain"
	"walletreg/pkg/requestcontext"
)

// WithCaller places an authenticated caller on the request context, the way
// the auth middleware does after validating a bearer token. Invalid account
// ids leave the request unauthenticated.
func WithCaller(req *http.Request, account string) *http.Request {
	caller, err := id.ParseAccountID(account)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}

// WithBearer sets the Authorization header.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
