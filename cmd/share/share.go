package share

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/0w0mewo/lsctl/internal/app"
	"github.com/0w0mewo/lsctl/internal/localsend/events"
	"github.com/0w0mewo/lsctl/internal/models"
	"github.com/0w0mewo/lsctl/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	texts      []string
	pinCode    string
	autoAccept bool
)

var Cmd = &cobra.Command{
	Use:   "share [files]...",
	Short: "Publish files as a download link",
	Long:  "Publish files, folders and text as a download link until interrupted or expired",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := app.FromContext(ctx)
		if err != nil {
			return err
		}

		var items []models.SelectedItem
		for _, p := range args {
			item, err := models.ItemFromPath(p)
			if err != nil {
				slog.Error("Fail to probe file, skipping...", "file", p, "error", err)
				continue
			}
			items = append(items, item)
		}
		for _, t := range texts {
			items = append(items, models.NewTextItem("", t))
		}

		mgr := a.ShareManager()
		if err := mgr.Stage(items); err != nil {
			return err
		}
		sess, err := mgr.Commit(ctx, pinCode, autoAccept)
		if err != nil {
			return err
		}
		fmt.Println(sess.DownloadURL)

		defer func() {
			cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			mgr.CloseAll(cctx)
		}()

		g, gctx := errgroup.WithContext(ctx)
		runCtx, stop := context.WithCancel(gctx)
		defer stop()

		// the link is done once it expired
		unsubscribe := a.Store.Subscribe(func(st store.State) {
			if len(st.Shares) == 0 {
				stop()
			}
		})
		defer unsubscribe()

		stream, _, err := a.Stream(runCtx)
		if err != nil {
			return err
		}
		rec := a.Reconciler()

		g.Go(func() error {
			return mgr.Run(runCtx)
		})
		g.Go(func() error {
			return stream.Run(runCtx, func(ctx context.Context, ev events.Event) {
				if err := rec.Apply(ctx, ev); err != nil {
					slog.Error("Fail to apply event", "type", ev.Type(), "error", err)
				}
			})
		})

		return g.Wait()
	},
}

func init() {
	Cmd.PersistentFlags().StringArrayVarP(&texts, "text", "t", nil, "Text to share, repeatable")
	Cmd.PersistentFlags().StringVarP(&pinCode, "pin", "p", "", "PIN required to download")
	Cmd.PersistentFlags().BoolVarP(&autoAccept, "auto-accept", "y", false, "Accept download requests without asking")
}
