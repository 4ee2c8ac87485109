package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/0w0mewo/lsctl/internal/app"
	"github.com/0w0mewo/lsctl/internal/localsend/events"
	"github.com/0w0mewo/lsctl/internal/models"
	"github.com/0w0mewo/lsctl/internal/store"
	"github.com/0w0mewo/lsctl/internal/ui"
	"github.com/spf13/cobra"
)

var (
	acceptAll    bool
	showProgress bool
)

// acceptor answers every confirmation with yes.
type acceptor struct{}

func (acceptor) AcceptReceive(context.Context, events.ConfirmRecv) (bool, error) {
	return true, nil
}

func (acceptor) AcceptDownload(context.Context, events.ConfirmDownload) (bool, error) {
	return true, nil
}

var Cmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow backend events and answer incoming transfers",
	Long:  "Follow backend events: discovered devices, incoming transfers and received text",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := app.FromContext(ctx)
		if err != nil {
			return err
		}

		var opts []events.Option
		if acceptAll {
			opts = append(opts, events.WithDecider(acceptor{}))
		}
		rec := a.Reconciler(opts...)

		if showProgress {
			view := ui.NewProgressView(40)
			var last *models.ReceiveProgress
			unsubscribe := a.Store.Subscribe(func(st store.State) {
				if st.Receive != nil && (last == nil || *last != *st.Receive) {
					fmt.Fprint(os.Stderr, view.Receive(st.Receive))
				}
				last = st.Receive
			})
			defer unsubscribe()
		}

		stream, _, err := a.Stream(ctx)
		if err != nil {
			return err
		}

		slog.Info("Watching events", "url", stream.URL())
		err = stream.Run(ctx, func(ctx context.Context, ev events.Event) {
			if err := rec.Apply(ctx, ev); err != nil {
				slog.Error("Fail to apply event", "type", ev.Type(), "error", err)
			}
		})

		// interrupted mid-transfer: cancel our side
		if recv := a.Store.Get().Receive; recv != nil {
			cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := rec.CancelReceive(cctx, recv.SessionID); err != nil {
				slog.Error("Fail to cancel receive", "session", recv.SessionID, "error", err)
			}
		}
		return err
	},
}

func init() {
	Cmd.PersistentFlags().BoolVarP(&acceptAll, "yes", "y", false, "Accept every incoming transfer without asking")
	Cmd.PersistentFlags().BoolVar(&showProgress, "progress", false, "Print receive progress")
}
