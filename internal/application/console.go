// Package application wires the console and its surfaces from configuration.
package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"smartdeals/internal/config"
	"smartdeals/internal/console"
	"smartdeals/internal/infrastructure/backend"
	"smartdeals/internal/infrastructure/persistence"
	"smartdeals/internal/session"
	"smartdeals/pkg/application/connectors"
	"smartdeals/pkg/contextx"
	"smartdeals/pkg/httpx"
	"smartdeals/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Resources are the connections opened for a console; Close releases them.
type Resources struct {
	redis    *connectors.Redis
	postgres *connectors.Postgres
}

func (r *Resources) Close(ctx context.Context) {
	if r.redis != nil {
		r.redis.Close(ctx)
	}

	if r.postgres != nil {
		r.postgres.Close(ctx)
	}
}

// OpenConsole builds a console from cfg and restores its stored session.
// reg may be nil when no metrics are served.
func OpenConsole(
	ctx context.Context,
	cfg config.Config,
	reg prometheus.Registerer,
) (*console.Console, *Resources, error) {
	res := &Resources{}

	storage, err := res.sessionStorage(ctx, cfg.Session)
	if err != nil {
		res.Close(ctx)
		return nil, nil, err
	}

	opts := console.Options{
		Backend: backend.Options{
			BaseURL:        cfg.Backend.URL,
			RequestTimeout: cfg.Backend.RequestTimeout,
			HTTPOptions: []httpx.Option{
				httpx.WithLogFieldMaxLen(cfg.Backend.LogFieldMaxLen),
				httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
				httpx.WithSlowThreshold(cfg.Backend.SlowRequest),
			},
		},
		Storage:         storage,
		DuplicateWindow: cfg.Worker.DuplicateWindow,
	}

	if reg != nil {
		opts.Metrics = console.NewMetrics(reg)
	}

	if cfg.Postgres.Enabled() {
		res.postgres = &connectors.Postgres{
			DSN:             cfg.Postgres.DSN,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		}

		db, err := res.postgres.Client(ctx)
		if err != nil {
			res.Close(ctx)
			return nil, nil, fmt.Errorf("postgres.Client: %w", err)
		}

		opts.Journal = persistence.NewActionJournal(db)
	}

	c, err := console.Open(ctx, opts)
	if err != nil {
		res.Close(ctx)
		return nil, nil, fmt.Errorf("console.Open: %w", err)
	}

	logger(ctx).Info(
		"console ready",
		slog.String("backend", cfg.Backend.URL),
		logx.Stringer(logx.FieldSessionState, c.SessionState()),
		slog.Bool("journal", opts.Journal != nil),
	)

	return c, res, nil
}

func (r *Resources) sessionStorage(ctx context.Context, cfg config.Session) (session.TokenStorage, error) {
	switch cfg.Storage {
	case config.SessionStorageFile:
		return session.NewFileStorage(cfg.FilePath), nil
	case config.SessionStorageRedis:
		r.redis = &connectors.Redis{
			Address:        cfg.Redis.Address,
			Username:       cfg.Redis.Username,
			Password:       cfg.Redis.Password,
			DatabaseNumber: cfg.Redis.DatabaseNumber,
		}

		client, err := r.redis.Client(ctx)
		if err != nil {
			return nil, fmt.Errorf("redis.Client: %w", err)
		}

		return session.NewRedisStorage(client, cfg.Redis.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown session storage %q", cfg.Storage)
	}
}
