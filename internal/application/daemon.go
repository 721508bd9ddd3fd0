package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"smartdeals/internal/config"
	"smartdeals/internal/console"
	"smartdeals/internal/domain/entity"
	"smartdeals/internal/infrastructure/notifier"
	"smartdeals/internal/state"
	"smartdeals/internal/transport/bot"
	"smartdeals/internal/worker"
	"smartdeals/pkg/application/modules"
	"smartdeals/pkg/contextx"
	"smartdeals/pkg/logx"
)

const dealsBuffer = 100

// Run is the daemon: refresher, operator bot, notifier, metrics and probe
// servers. It returns when ctx is done or a server fails.
func Run(ctx context.Context, cfg config.Config) error {
	ctx = contextx.WithOperator(ctx, "daemon")

	// 1. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// 2. Console
	c, res, err := OpenConsole(ctx, cfg, reg)
	if err != nil {
		return err
	}
	defer res.Close(context.WithoutCancel(ctx))

	if c.Gate() == console.ViewDashboard {
		if report := c.Refresh(ctx); !report.OK() {
			logger(ctx).Warn("initial load incomplete", logx.Error(report.Err()))
		}
	} else {
		logger(ctx).Warn("no stored session, log in through the bot or the terminal console")
	}

	// 3. Refresher and operator bot
	var dealsCh chan entity.Deal
	if cfg.Bot.Enabled() {
		dealsCh = make(chan entity.Deal, dealsBuffer)
	}

	refresher := worker.NewRefresher(c, dealsCh, cfg.Worker.RefreshInterval)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Bot.Enabled() {
		operatorBot, err := bot.New(cfg.Bot, c, refresher)
		if err != nil {
			return fmt.Errorf("bot.New: %w", err)
		}

		alerts := notifier.NewTelegramBot(operatorBot.API(), cfg.Bot.NotifyChatID()).
			OnFailure(refresher.Forget)

		g.Go(func() error {
			return operatorBot.Run(ctx)
		})

		g.Go(func() error {
			if err := alerts.Run(ctx, dealsCh); err != nil && ctx.Err() == nil {
				return fmt.Errorf("notifier.Run: %w", err)
			}

			return nil
		})

		logger(ctx).Info("operator bot enabled", slog.Int64("admin-id", cfg.Bot.AdminID))
	} else {
		logger(ctx).Warn("operator bot disabled: BOT_TOKEN or BOT_ADMIN_ID not set")
	}

	if err := refresher.Start(ctx); err != nil {
		return fmt.Errorf("refresher.Start: %w", err)
	}
	defer refresher.Stop()

	// 4. Servers
	modules.MetricServer{
		ListenAddress: cfg.Server.MetricsAddress,
		Gatherer:      reg,
	}.Run(ctx, g)

	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.Server.ProbeAddress,
		Readiness:     readiness(c),
	}.Run(ctx, g)

	logger(ctx).Info("daemon started", slog.Duration("refresh-interval", cfg.Worker.RefreshInterval))

	if err := g.Wait(); err != nil {
		return fmt.Errorf("errgroup.Wait: %w", err)
	}

	logger(ctx).Info("daemon stopping")

	return nil
}

// readiness is ready once logged in with every resource loaded.
func readiness(c *console.Console) func() (bool, string) {
	return func() (bool, string) {
		if c.Gate() != console.ViewDashboard {
			return false, "session " + c.SessionState().String()
		}

		st := c.State()
		loaded := map[state.Resource]bool{
			state.ResourceConfig: st.Config.Snapshot().Loaded,
			state.ResourceDeals:  st.Deals.Snapshot().Loaded,
			state.ResourceRuns:   st.Runs.Snapshot().Loaded,
		}

		for _, r := range state.Resources {
			if !loaded[r] {
				return false, r.String() + " not loaded"
			}
		}

		return true, ""
	}
}
