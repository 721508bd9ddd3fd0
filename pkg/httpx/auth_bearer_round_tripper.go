package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var ErrNoBearerToken = errors.New("no bearer token")

type tokenHolder interface {
	BearerToken() string
	// Expire is told which token the backend rejected.
	Expire(ctx context.Context, token string) error
}

// AuthBearerRoundTripper attaches the session token to every request and
// expires the session of the token it sent when the backend answers 401. The 401 response itself
// is passed through so callers can classify it.
type AuthBearerRoundTripper struct {
	next   http.RoundTripper
	tokens tokenHolder
}

func NewAuthBearerRoundTripper(
	next http.RoundTripper,
	tokens tokenHolder,
) AuthBearerRoundTripper {
	return AuthBearerRoundTripper{
		next:   next,
		tokens: tokens,
	}
}

func (rt AuthBearerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	token := rt.tokens.BearerToken()
	if token == "" {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, ErrNoBearerToken)
	}

	// RoundTrip must not modify the caller's request.
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("next.RoundTrip: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if err = rt.tokens.Expire(req.Context(), token); err != nil {
			logger(req.Context()).Error("tokens.Expire", "error", err)
		}
	}

	return resp, nil
}
