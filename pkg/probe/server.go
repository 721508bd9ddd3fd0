package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"smartdeals/pkg/contextx"
	"smartdeals/pkg/logx"
	"smartdeals/pkg/middlewarex"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	httpServerReadHeaderTimeout = 5 * time.Second
	logFieldMaxLen              = 2048
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Readiness reports whether the process can serve operators and a short
// human readable reason.
type Readiness func() (bool, string)

type Server struct {
	listenAddress string
	options       Options
	readiness     Readiness
}

type Options struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type readyBody struct {
	Options
	Ready  bool   `json:"ready"`
	Reason string `json:"reason,omitempty"`
}

func NewServer(
	listenAddress string,
	options Options,
) Server {
	return Server{
		listenAddress: listenAddress,
		options:       options,
	}
}

// WithReadiness makes /ready answer 503 while the check fails.
func (s Server) WithReadiness(r Readiness) Server {
	s.readiness = r

	return s
}

func (s Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handlerHealthz)
	mux.HandleFunc("/ready", s.handlerReady)

	masker := logx.NewNopSensitiveDataMasker()

	return middlewarex.Chain(mux,
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.Recovery,
		middlewarex.RequestLogging(masker, logFieldMaxLen),
		middlewarex.ResponseLogging(masker, logFieldMaxLen),
	)
}

func (s Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		//nolint:exhaustruct
		Addr:              s.listenAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: httpServerReadHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()

		if err := httpServer.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger(ctx).Error("httpServer.Shutdown", logx.Error(err))
		}
	}()

	logger(ctx).Info("probe server started", slog.String("address", s.listenAddress))

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("httpServer.ListenAndServe: %w", err)
	}

	logger(ctx).Info("probe server stopped")

	return nil
}

func (s Server) handlerHealthz(w http.ResponseWriter, _ *http.Request) {
	state, _ := json.Marshal(s.options) //nolint:errcheck,errchkjson

	w.WriteHeader(http.StatusOK)
	w.Write(state) //nolint:errcheck
}

func (s Server) handlerReady(w http.ResponseWriter, _ *http.Request) {
	body := readyBody{Options: s.options, Ready: true}

	if s.readiness != nil {
		body.Ready, body.Reason = s.readiness()
	}

	state, _ := json.Marshal(body) //nolint:errcheck,errchkjson

	w.Header().Set("Content-Type", "application/json")

	if !body.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	w.Write(state) //nolint:errcheck
}
