package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"smartdeals/pkg/httpx"
)

type tokenHolderStub struct {
	token    string
	expired  int
	rejected []string
}

func (s *tokenHolderStub) BearerToken() string {
	return s.token
}

func (s *tokenHolderStub) Expire(_ context.Context, token string) error {
	s.expired++
	s.rejected = append(s.rejected, token)
	s.token = ""

	return nil
}

func TestAuthBearerRoundTripper(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name        string
		token       string
		statusCode  int
		wantErr     error
		wantHeader  string
		wantExpired int
	}{
		{
			name:       "Token attached",
			token:      "abc",
			statusCode: http.StatusOK,
			wantHeader: "Bearer abc",
		},
		{
			name:        "Unauthorized expires session",
			token:       "stale",
			statusCode:  http.StatusUnauthorized,
			wantHeader:  "Bearer stale",
			wantExpired: 1,
		},
		{
			name:    "No token",
			wantErr: httpx.ErrNoBearerToken,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			var gotHeader string

			httpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotHeader = r.Header.Get("Authorization")
				w.WriteHeader(tc.statusCode)
			}))
			defer httpServer.Close()

			tokens := &tokenHolderStub{token: tc.token}
			client := &http.Client{Transport: httpx.NewAuthBearerRoundTripper(http.DefaultTransport, tokens)}

			req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, httpServer.URL+"/deals", http.NoBody)
			rq.NoError(err)

			resp, err := client.Do(req)
			if tc.wantErr != nil {
				rq.ErrorIs(err, tc.wantErr)
				rq.Empty(gotHeader)

				return
			}

			rq.NoError(err)
			defer resp.Body.Close()

			rq.Equal(tc.statusCode, resp.StatusCode)
			rq.Equal(tc.wantHeader, gotHeader)
			rq.Equal(tc.wantExpired, tokens.expired)
			if tc.wantExpired > 0 {
				rq.Equal([]string{tc.token}, tokens.rejected)
			}
			rq.Empty(req.Header.Get("Authorization"))
		})
	}
}
