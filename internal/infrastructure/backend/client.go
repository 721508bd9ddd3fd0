// Package backend is the typed client of the SmartDeals REST API.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"smartdeals/internal/domain"
	"smartdeals/internal/domain/entity"
	"smartdeals/internal/domain/value"
	"smartdeals/pkg/errcodes"
	"smartdeals/pkg/httpx"
	"smartdeals/pkg/rest"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const maxErrorBody = 4096

type tokenHolder interface {
	BearerToken() string
	Expire(ctx context.Context, token string) error
}

type Options struct {
	BaseURL        string
	RequestTimeout time.Duration
	HTTPOptions    []httpx.Option
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

type caller struct {
	baseURL    string
	httpClient *http.Client
}

// Client issues every authenticated call of the contract.
type Client struct {
	caller
}

func NewClient(opts Options, tokens tokenHolder) *Client {
	next := httpx.NewLoggingRoundTripper(transport(opts), opts.HTTPOptions...)

	return &Client{
		caller: caller{
			baseURL: strings.TrimRight(opts.BaseURL, "/"),
			httpClient: &http.Client{
				Transport: httpx.NewAuthBearerRoundTripper(next, tokens),
				Timeout:   opts.RequestTimeout,
			},
		},
	}
}

// Auth performs the unauthenticated login call.
type Auth struct {
	caller
}

func NewAuth(opts Options) *Auth {
	return &Auth{
		caller: caller{
			baseURL: strings.TrimRight(opts.BaseURL, "/"),
			httpClient: &http.Client{
				Transport: httpx.NewLoggingRoundTripper(transport(opts), opts.HTTPOptions...),
				Timeout:   opts.RequestTimeout,
			},
		},
	}
}

func transport(opts Options) http.RoundTripper {
	if opts.Transport != nil {
		return opts.Transport
	}

	return http.DefaultTransport
}

// Login returns "" without error when the backend refused the credentials.
func (a *Auth) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")

	var response rest.LoginResponse

	err := a.call(ctx, http.MethodPost, "/auth/login", header, strings.NewReader(form.Encode()), &response)

	switch {
	case err == nil:
		return response.AccessToken, nil
	case domain.HasCode(err, errcodes.AccessTokenInvalid), domain.HasCode(err, errcodes.ValidationError):
		return "", nil
	default:
		return "", err
	}
}

func (c *Client) GetConfig(ctx context.Context) (entity.ScannerConfig, error) {
	var cfg rest.Config

	if err := c.call(ctx, http.MethodGet, "/config", nil, http.NoBody, &cfg); err != nil {
		return entity.ScannerConfig{}, err
	}

	return newDomainConfig(cfg), nil
}

func (c *Client) PutConfig(ctx context.Context, cfg entity.ScannerConfig) error {
	b, err := json.Marshal(newRESTConfig(cfg))
	if err != nil {
		return domain.WrapError(err, errcodes.InvalidConfig, "encode config")
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")

	return c.call(ctx, http.MethodPut, "/config", header, bytes.NewReader(b), nil)
}

func (c *Client) ListDeals(ctx context.Context, filter entity.DealFilter) ([]entity.Deal, error) {
	var deals []rest.Deal

	if err := c.call(ctx, http.MethodGet, "/deals"+dealQuery(filter), nil, http.NoBody, &deals); err != nil {
		return nil, err
	}

	return newDomainDeals(deals), nil
}

func (c *Client) ApproveDeal(ctx context.Context, id value.DealID) error {
	return c.call(ctx, http.MethodPost, "/deals/"+id.String()+"/approve", nil, http.NoBody, nil)
}

func (c *Client) RejectDeal(ctx context.Context, id value.DealID) error {
	return c.call(ctx, http.MethodPost, "/deals/"+id.String()+"/reject", nil, http.NoBody, nil)
}

func (c *Client) RunScan(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/scan/run", nil, http.NoBody, nil)
}

func (c *Client) ListRuns(ctx context.Context) ([]entity.Run, error) {
	var runs []rest.Run

	if err := c.call(ctx, http.MethodGet, "/runs", nil, http.NoBody, &runs); err != nil {
		return nil, err
	}

	return newDomainRuns(runs), nil
}

func dealQuery(filter entity.DealFilter) string {
	q := url.Values{}

	if filter.Status != "" {
		q.Set("status", filter.Status.String())
	}

	if filter.Source != "" {
		q.Set("source", filter.Source)
	}

	if filter.Query != "" {
		q.Set("q", filter.Query)
	}

	if filter.MinScore != nil {
		q.Set("min_score", strconv.Itoa(*filter.MinScore))
	}

	if len(q) == 0 {
		return ""
	}

	return "?" + q.Encode()
}

// call sends one request and decodes a 2xx body into dest when dest is not nil.
func (c caller) call(
	ctx context.Context,
	method string,
	endpoint string,
	header http.Header,
	body io.Reader,
	dest any,
) error {
	op := method + " " + endpoint

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, op)
	}

	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err, op)
	}

	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(resp, op)
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return domain.WrapError(fmt.Errorf("json.Decode: %w", err), errcodes.InvalidResponse, op)
	}

	return nil
}

func transportError(err error, op string) error {
	switch {
	case errors.Is(err, httpx.ErrNoBearerToken):
		return domain.WrapError(err, errcodes.AccessTokenExpired, op)
	case errors.Is(err, context.DeadlineExceeded):
		return domain.WrapError(err, errcodes.TimeoutExceeded, op)
	default:
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return domain.WrapError(err, errcodes.TimeoutExceeded, op)
		}

		return domain.WrapError(err, errcodes.BackendUnavailable, op)
	}
}

func statusError(resp *http.Response, op string) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	detail := resp.Status

	var body rest.Error
	if json.Unmarshal(b, &body) == nil && body.Detail != "" {
		detail = fmt.Sprintf("%s: %s", resp.Status, body.Detail)
	}

	cause := errors.New(detail)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.WrapError(cause, errcodes.AccessTokenInvalid, op)
	case resp.StatusCode == http.StatusNotFound:
		return domain.WrapError(cause, errcodes.NotFound, op)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return domain.WrapError(cause, errcodes.ValidationError, op)
	default:
		return domain.WrapError(cause, errcodes.InternalServerError, op)
	}
}
