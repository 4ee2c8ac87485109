package fav

import (
	"fmt"
	"os"

	"github.com/0w0mewo/lsctl/internal/app"
	"github.com/0w0mewo/lsctl/internal/models"
	"github.com/spf13/cobra"
)

var alias string

var Cmd = &cobra.Command{
	Use:   "fav",
	Short: "Manage favorite devices",
	Long:  "List, add and remove favorite devices stored by the backend",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorites and whether they are online",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := app.FromContext(ctx)
		if err != nil {
			return err
		}

		if _, err := a.Registry.Refresh(ctx); err != nil {
			return err
		}
		if _, err := a.Registry.Scan(ctx, false); err != nil {
			return err
		}

		statuses := a.Registry.Reconcile()
		if len(statuses) == 0 {
			fmt.Fprintln(os.Stderr, "No favorites")
			return nil
		}
		for _, fs := range statuses {
			state := "offline"
			if fs.Online() {
				state = fmt.Sprintf("online %s:%d", fs.Device.IPAddress, fs.Device.Port)
			}
			fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", fs.Fingerprint, fs.Alias, state)
		}
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <fingerprint>",
	Short: "Add a device to favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := app.FromContext(ctx)
		if err != nil {
			return err
		}

		dev := models.Device{Fingerprint: args[0], Alias: alias}
		if dev.Alias == "" {
			// borrow the alias from discovery when known
			if _, err := a.Registry.Scan(ctx, false); err == nil {
				if known, ok := a.Store.Device(args[0]); ok {
					dev.Alias = known.Alias
				}
			}
		}

		return a.Registry.Add(ctx, dev)
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <fingerprint>",
	Short: "Remove a device from favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := app.FromContext(ctx)
		if err != nil {
			return err
		}
		return a.Registry.Remove(ctx, args[0])
	},
}

func init() {
	addCmd.Flags().StringVar(&alias, "alias", "", "Alias to store with the favorite")

	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(rmCmd)
}
