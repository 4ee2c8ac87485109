package send

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/0w0mewo/lsctl/internal/app"
	"github.com/0w0mewo/lsctl/internal/localsend/events"
	"github.com/0w0mewo/lsctl/internal/localsend/pin"
	lssend "github.com/0w0mewo/lsctl/internal/localsend/send"
	"github.com/0w0mewo/lsctl/internal/models"
	"github.com/0w0mewo/lsctl/internal/notify"
	"github.com/0w0mewo/lsctl/internal/store"
	"github.com/0w0mewo/lsctl/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const connectTimeout = 3 * time.Second

var (
	to           string
	ip           string
	favorite     string
	texts        []string
	pinCode      string
	showProgress bool
)

var Cmd = &cobra.Command{
	Use:   "send [files]...",
	Short: "Send files, folders and text to a device",
	Long:  "Send files, folders and text to a device known to the backend, a favorite, or an address",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := app.FromContext(ctx)
		if err != nil {
			return err
		}

		// try to add every path
		for _, p := range args {
			item, err := models.ItemFromPath(p)
			if err != nil {
				slog.Error("Fail to probe file, skipping...", "file", p, "error", err)
				continue
			}
			if err := a.Store.AddItem(item); err != nil {
				slog.Warn("Skip duplicate", "file", p)
			}
		}
		for _, t := range texts {
			if err := a.Store.AddItem(models.NewTextItem("", t)); err != nil {
				slog.Warn("Skip duplicate text")
			}
		}

		var opts []lssend.Option
		if pinCode != "" {
			opts = append(opts, lssend.WithPrompter(pin.Static(pinCode)))
		}
		orch := a.Orchestrator(opts...)
		defer orch.Close()

		g, gctx := errgroup.WithContext(ctx)
		streamCtx, stopStream := context.WithCancel(gctx)
		defer stopStream()

		stream, connected, err := a.Stream(streamCtx)
		if err != nil {
			return err
		}
		rec := a.Reconciler()
		g.Go(func() error {
			return stream.Run(streamCtx, func(ctx context.Context, ev events.Event) {
				if err := rec.Apply(ctx, ev); err != nil {
					slog.Error("Fail to apply event", "type", ev.Type(), "error", err)
				}
			})
		})

		if showProgress {
			view := ui.NewProgressView(40)
			unsubscribe := a.Store.Subscribe(func(st store.State) {
				if st.Upload != nil {
					fmt.Fprint(os.Stderr, view.Upload(st.Upload))
				}
			})
			defer unsubscribe()
		}

		g.Go(func() error {
			defer stopStream()

			if !app.WaitConnected(gctx, connected, connectTimeout) {
				slog.Warn("Event stream not connected, completion relies on the safety timeout")
			}

			target, err := resolveTarget(gctx, a)
			if err != nil {
				a.Notifier.Notify(notify.Failure("Cannot send", err))
				return err
			}

			report, err := orch.SendSelection(gctx, target)
			if err != nil {
				return err
			}
			for _, ie := range report.ItemErrors() {
				slog.Error("Fail to send", "fileId", ie.FileID, "error", ie.Message)
			}
			if report.Outcome != lssend.OutcomeAwaiting {
				return nil
			}

			return waitUpload(gctx, a, orch, report.SessionID)
		})

		return g.Wait()
	},
}

// resolveTarget picks the send target from the flags.
func resolveTarget(ctx context.Context, a *app.App) (lssend.Target, error) {
	switch {
	case ip != "":
		return lssend.ToAddress(ip), nil
	case favorite != "":
		if _, err := a.Registry.Refresh(ctx); err != nil {
			return lssend.Target{}, err
		}
		if _, err := a.Registry.Scan(ctx, false); err != nil {
			return lssend.Target{}, err
		}
		dev, err := a.Registry.ResolveFavorite(favorite)
		if err != nil {
			return lssend.Target{}, err
		}
		return lssend.ToFavorite(models.FavoriteDevice{Fingerprint: dev.Fingerprint, Alias: dev.Alias}), nil
	case to != "":
		if _, err := a.Registry.Scan(ctx, false); err != nil {
			return lssend.Target{}, err
		}
		if err := a.Store.SelectDevice(to); err != nil {
			return lssend.Target{}, fmt.Errorf("%w: %s", err, to)
		}
		return lssend.ToDevice(*a.Store.Get().SelectedDevice), nil
	default:
		return lssend.Target{}, errors.New("one of --to, --fav or --ip is required")
	}
}

// waitUpload blocks until the upload of sessionID is cleared by an event or
// the safety timeout. An interrupt asks the backend to cancel first.
func waitUpload(ctx context.Context, a *app.App, orch *lssend.Orchestrator, sessionID string) error {
	cleared := make(chan struct{})
	var once sync.Once
	unsubscribe := a.Store.Subscribe(func(st store.State) {
		if st.Upload == nil || st.Upload.SessionID != sessionID {
			once.Do(func() { close(cleared) })
		}
	})
	defer unsubscribe()

	if up := a.Store.Upload(); up == nil || up.SessionID != sessionID {
		return nil
	}

	select {
	case <-cleared:
		return nil
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Abort")
		if err := orch.Cancel(cctx); err != nil {
			slog.Error("Fail to cancel", "error", err)
		}
		return nil
	}
}

func init() {
	Cmd.PersistentFlags().StringVar(&to, "to", "", "Fingerprint of a discovered device")
	Cmd.PersistentFlags().StringVar(&favorite, "fav", "", "Fingerprint of a favorite device")
	Cmd.PersistentFlags().StringVar(&ip, "ip", "", "Fast send to an IPv4 address or its trailing octets")
	Cmd.PersistentFlags().StringArrayVarP(&texts, "text", "t", nil, "Text to send, repeatable")
	Cmd.PersistentFlags().StringVarP(&pinCode, "pin", "p", "", "PIN code, prompted for when omitted and required")
	Cmd.PersistentFlags().BoolVar(&showProgress, "progress", false, "Print progress on every change")
}
