// Package app wires the request client, the store and the terminal
// collaborators for the CLI commands.
package app

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/0w0mewo/lsctl/internal/config"
	"github.com/0w0mewo/lsctl/internal/localsend/api"
	"github.com/0w0mewo/lsctl/internal/localsend/devices"
	"github.com/0w0mewo/lsctl/internal/localsend/events"
	"github.com/0w0mewo/lsctl/internal/localsend/send"
	"github.com/0w0mewo/lsctl/internal/localsend/share"
	"github.com/0w0mewo/lsctl/internal/notify"
	"github.com/0w0mewo/lsctl/internal/store"
	"github.com/0w0mewo/lsctl/internal/ui"
)

var ErrNoApp = errors.New("app not initialised")

type App struct {
	Config   config.Config
	Client   *api.Client
	Store    *store.Store
	Notifier notify.Notifier
	Terminal ui.Terminal
	Registry *devices.Registry
}

func New(conf config.Config) (*App, error) {
	client, err := api.NewClient(conf.BackendURL,
		api.WithTimeout(conf.HTTPTimeout),
		api.WithInsecureTLS(conf.InsecureTLS),
	)
	if err != nil {
		return nil, err
	}

	st := store.New()
	return &App{
		Config:   conf,
		Client:   client,
		Store:    st,
		Notifier: ui.NewNotifier(os.Stderr),
		Terminal: ui.Terminal{In: os.Stdin, Out: os.Stderr},
		Registry: devices.NewRegistry(client, st),
	}, nil
}

func (a *App) Orchestrator(opts ...send.Option) *send.Orchestrator {
	base := []send.Option{
		send.WithNotifier(a.Notifier),
		send.WithPrompter(a.Terminal),
		send.WithSafetyTimeout(a.Config.SafetyTimeout),
	}
	return send.NewOrchestrator(a.Client, a.Store, append(base, opts...)...)
}

func (a *App) Reconciler(opts ...events.Option) *events.Reconciler {
	base := []events.Option{
		events.WithNotifier(a.Notifier),
		events.WithDecider(a.Terminal),
		events.WithPresenter(ui.NewPresenter(os.Stdout)),
	}
	return events.NewReconciler(a.Client, a.Store, append(base, opts...)...)
}

func (a *App) ShareManager() *share.Manager {
	return share.NewManager(a.Client, a.Store,
		share.WithNotifier(a.Notifier),
		share.WithLifetime(a.Config.ShareLifetime),
		share.WithSweepInterval(a.Config.ShareSweep),
	)
}

// Stream returns the push channel. Connection changes drive the registry's
// backend state, and connected is closed after the first successful dial.
func (a *App) Stream(ctx context.Context) (stream *events.Stream, connected <-chan struct{}, err error) {
	ready := make(chan struct{})
	first := true

	stream, err = events.NewStream(a.Config.BackendURL,
		events.WithStreamInsecureTLS(a.Config.InsecureTLS),
		events.WithConnState(func(up bool) {
			a.Registry.OnBackendState(ctx, up)
			if up && first {
				first = false
				close(ready)
			}
		}),
	)
	if err != nil {
		return nil, nil, err
	}
	return stream, ready, nil
}

// WaitConnected blocks until connected is closed, ctx is done or timeout passes.
func WaitConnected(ctx context.Context, connected <-chan struct{}, timeout time.Duration) bool {
	select {
	case <-connected:
		return true
	case <-ctx.Done():
		return false
	case <-time.After(timeout):
		return false
	}
}

type ctxKey struct{}

func NewContext(ctx context.Context, a *App) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func FromContext(ctx context.Context) (*App, error) {
	if ctx == nil {
		return nil, ErrNoApp
	}
	a, ok := ctx.Value(ctxKey{}).(*App)
	if !ok {
		return nil, ErrNoApp
	}
	return a, nil
}
