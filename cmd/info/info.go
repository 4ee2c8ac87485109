package info

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/0w0mewo/lsctl/internal/app"
	"github.com/spf13/cobra"
)

var (
	alias          string
	downloadFolder string
	pinCode        string
	autoAccept     bool
)

var Cmd = &cobra.Command{
	Use:   "info",
	Short: "Show backend network information and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := app.FromContext(ctx)
		if err != nil {
			return err
		}

		infos, err := a.Client.NetworkInfo(ctx)
		if err != nil {
			return err
		}
		intfs, err := a.Client.NetworkInterfaces(ctx)
		if err != nil {
			return err
		}
		conf, err := a.Client.BackendConfig(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"backend":    a.Client.BaseURL(),
			"network":    infos,
			"interfaces": intfs,
			"config":     conf,
		})
	},
}

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change backend configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := app.FromContext(ctx)
		if err != nil {
			return err
		}

		conf, err := a.Client.BackendConfig(ctx)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("alias") {
			conf.Alias = alias
		}
		if flags.Changed("dir") {
			conf.DownloadFolder = downloadFolder
		}
		if flags.Changed("pin") {
			conf.Pin = pinCode
		}
		if flags.Changed("auto-accept") {
			conf.AutoAccept = autoAccept
		}

		if err := a.Client.SetBackendConfig(ctx, conf); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Backend configuration updated")
		return nil
	},
}

func init() {
	setCmd.Flags().StringVarP(&alias, "alias", "n", "", "Device alias")
	setCmd.Flags().StringVarP(&downloadFolder, "dir", "d", "", "Directory for received files")
	setCmd.Flags().StringVarP(&pinCode, "pin", "p", "", "PIN required from senders, empty to disable")
	setCmd.Flags().BoolVar(&autoAccept, "auto-accept", false, "Accept incoming transfers without asking")

	Cmd.AddCommand(setCmd)
}
