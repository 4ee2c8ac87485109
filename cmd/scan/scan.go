package scan

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/0w0mewo/lsctl/internal/app"
	"github.com/spf13/cobra"
)

var fresh bool

var Cmd = &cobra.Command{
	Use:   "scan",
	Short: "List devices discovered by the backend",
	Long:  "List devices discovered by the backend, optionally triggering a new scan",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := app.FromContext(ctx)
		if err != nil {
			return err
		}

		slog.Info("Start Scanning", "fresh", fresh)
		devlist, err := a.Registry.Scan(ctx, fresh)
		if err != nil {
			return err
		}

		if _, err := a.Registry.Refresh(ctx); err != nil {
			slog.Warn("Fail to load favorites", "error", err)
		}
		favs := make(map[string]bool)
		for _, fs := range a.Registry.Reconcile() {
			favs[fs.Fingerprint] = true
		}

		if len(devlist) == 0 {
			fmt.Fprintln(os.Stderr, "No device found")
			return nil
		}

		fmt.Fprintf(os.Stdout, "Found Devices: \n")
		for _, info := range devlist {
			star := " "
			if favs[info.Fingerprint] {
				star = "*"
			}
			fmt.Fprintf(os.Stdout, "\t%s Name: %s, Model: %s, Address: %s:%d, Protocol: %s, Fingerprint: %s\n",
				star, info.Alias, info.DeviceModel, info.IPAddress, info.Port, info.Protocol, info.Fingerprint)
		}
		return nil
	},
}

func init() {
	Cmd.PersistentFlags().BoolVarP(&fresh, "fresh", "f", false, "trigger a new discovery round first")
}
