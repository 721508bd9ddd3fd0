// Package tui is the interactive terminal console: a login form, then the
// config, deals and runs panes with a status line.
package tui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"smartdeals/internal/console"
	"smartdeals/internal/datasync"
	"smartdeals/internal/domain/entity"
	"smartdeals/internal/domain/value"
	"smartdeals/internal/session"
	"smartdeals/internal/state"
	"smartdeals/pkg/contextx"
	"smartdeals/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	pageLogin     = "login"
	pageDashboard = "dashboard"

	operator contextx.Operator = "tui"
)

type App struct {
	app     *tview.Application
	pages   *tview.Pages
	console *console.Console

	login  *loginView
	config *configView
	deals  *dealsView
	runs   *runsView
	status *tview.TextView
	help   *tview.TextView

	ctx    context.Context //nolint:containedctx
	cancel context.CancelFunc
}

func NewApp(ctx context.Context, c *console.Console) *App {
	ctx, cancel := context.WithCancel(contextx.WithOperator(ctx, operator))

	a := &App{
		app:     tview.NewApplication(),
		pages:   tview.NewPages(),
		console: c,
		status:  tview.NewTextView().SetDynamicColors(true),
		help:    tview.NewTextView().SetDynamicColors(true).SetText(helpLine),
		ctx:     ctx,
		cancel:  cancel,
	}

	st := c.State()

	a.login = newLoginView(a.submitLogin, a.Stop)
	a.config = newConfigView(c.Editor(), a.saveConfig, a.showError)
	a.deals = newDealsView(st.Deals)
	a.runs = newRunsView(st.Runs, c.History())

	a.setupLayout()
	a.setupKeyboard()
	a.subscribe()

	return a
}

func (a *App) setupLayout() {
	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.deals.Widget(), 0, 3, true).
		AddItem(a.runs.Widget(), 0, 2, false)

	panes := tview.NewFlex().
		AddItem(a.config.Widget(), 0, 2, false).
		AddItem(right, 0, 3, true)

	dashboard := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(panes, 0, 1, true).
		AddItem(a.status, 1, 0, false).
		AddItem(a.help, 1, 0, false)

	a.pages.
		AddPage(pageLogin, a.login.Widget(), true, false).
		AddPage(pageDashboard, dashboard, true, false)

	a.app.SetRoot(a.pages, true)
	a.showGate()
}

func (a *App) setupKeyboard() {
	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			a.Stop()
			return nil
		}

		name, _ := a.pages.GetFrontPage()
		if name != pageDashboard {
			return event
		}

		if event.Key() == tcell.KeyEscape {
			a.app.SetFocus(a.deals.Widget())
			return nil
		}

		if event.Key() != tcell.KeyRune || a.typing() {
			return event
		}

		cmd := commandFor(event.Rune())
		if cmd == commandNone {
			return event
		}

		a.dispatch(cmd)

		return nil
	})
}

// typing reports whether the focus is in a form field that takes letters.
// An open drop down focuses its list.
func (a *App) typing() bool {
	switch a.app.GetFocus().(type) {
	case *tview.InputField, *tview.TextArea, *tview.DropDown, *tview.List:
		return true
	default:
		return false
	}
}

func (a *App) dispatch(cmd command) {
	switch cmd {
	case commandRefresh:
		a.background(func(ctx context.Context) { _ = a.console.Refresh(ctx) })
	case commandScan:
		a.background(func(ctx context.Context) { _ = a.console.RunScan(ctx) })
	case commandQuit:
		a.Stop()
	case commandLogout:
		a.background(func(ctx context.Context) { _ = a.console.Logout(ctx) })
	case commandApprove:
		a.decide(a.console.Approve)
	case commandReject:
		a.decide(a.console.Reject)
	case commandFocusConfig:
		a.app.SetFocus(a.config.Widget())
	case commandFocusDeals:
		a.app.SetFocus(a.deals.Widget())
	case commandFocusRuns:
		a.app.SetFocus(a.runs.Widget())
	case commandNone:
	}
}

func (a *App) decide(f func(context.Context, value.DealID) error) {
	id, ok := a.deals.Selected()
	if !ok {
		a.status.SetText("[yellow]select a deal first[-]")
		return
	}

	a.background(func(ctx context.Context) { _ = f(ctx, id) })
}

// background runs an action off the UI goroutine. Its outcome comes back
// through the console's outcome subscription.
func (a *App) background(f func(ctx context.Context)) {
	a.status.SetText("[gray]working...[-]")

	go f(a.ctx)
}

func (a *App) subscribe() {
	a.console.OnOutcome(func(o entity.Outcome) {
		a.app.QueueUpdateDraw(func() {
			a.status.SetText(outcomeLine(o))

			if o.Action == entity.ActionLogin && !o.OK() {
				a.login.SetMessage(outcomeLine(o))
			}
		})
	})

	a.console.OnSync(func(e datasync.Event) {
		a.app.QueueUpdateDraw(func() {
			switch e.Resource {
			case state.ResourceConfig:
				a.config.Rebuild()
			case state.ResourceDeals:
				a.deals.Update()
			case state.ResourceRuns:
				a.runs.Update()
			}
		})
	})

	a.console.OnSessionChange(func(s session.State) {
		logger(a.ctx).Info("session changed", logx.Stringer(logx.FieldSessionState, s))

		a.app.QueueUpdateDraw(func() {
			if s == session.StateExpired {
				a.login.SetMessage("[yellow]session expired, log in again[-]")
			}

			a.config.Rebuild()
			a.deals.Update()
			a.runs.Update()
			a.showGate()
		})
	})
}

func (a *App) showGate() {
	if a.console.Gate() == console.ViewDashboard {
		a.pages.SwitchToPage(pageDashboard)
		a.app.SetFocus(a.deals.Widget())

		return
	}

	a.pages.SwitchToPage(pageLogin)
}

func (a *App) submitLogin(username, password string) {
	a.login.SetMessage("[gray]logging in...[-]")
	a.login.Reset()

	go func() {
		if err := a.console.Login(a.ctx, username, password); err != nil {
			logger(a.ctx).Warn("login failed", logx.Error(err))
		}
	}()
}

func (a *App) saveConfig() {
	a.background(func(ctx context.Context) { _ = a.console.SaveConfig(ctx) })
}

func (a *App) showError(err error) {
	a.status.SetText("[red]" + tview.Escape(err.Error()) + "[-]")
}

// Run blocks until the operator quits. A restored session is loaded first.
func (a *App) Run() error {
	if a.console.Gate() == console.ViewDashboard {
		a.background(func(ctx context.Context) { _ = a.console.Refresh(ctx) })
	}

	if err := a.app.Run(); err != nil {
		return fmt.Errorf("app.Run: %w", err)
	}

	return nil
}

func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
