package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/0w0mewo/lsctl/cmd/fav"
	"github.com/0w0mewo/lsctl/cmd/info"
	"github.com/0w0mewo/lsctl/cmd/scan"
	"github.com/0w0mewo/lsctl/cmd/send"
	"github.com/0w0mewo/lsctl/cmd/share"
	"github.com/0w0mewo/lsctl/cmd/watch"
	"github.com/0w0mewo/lsctl/internal/app"
	"github.com/0w0mewo/lsctl/internal/config"
	"github.com/0w0mewo/lsctl/internal/utils"
	"github.com/spf13/cobra"
)

var (
	backendURL string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "lsctl",
	Short:         "LocalSend backend client",
	Long:          "Drive a LocalSend backend: send, share, receive and manage devices",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		conf := config.Load()
		if cmd.Flags().Changed("backend") {
			conf.BackendURL = backendURL
		}
		if cmd.Flags().Changed("log-level") {
			conf.LogLevel = config.ParseLevel(logLevel)
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: conf.LogLevel})))

		a, err := app.New(conf)
		if err != nil {
			return err
		}
		cmd.SetContext(app.NewContext(cmd.Context(), a))
		return nil
	},
}

func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-utils.WaitForSignal()

		slog.Info("Abort")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		slog.Error("Fail to execute", "error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", config.DefaultBackendURL, "Backend base URL (overrides LSCTL_BACKEND_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error (overrides LSCTL_LOG_LEVEL)")

	rootCmd.AddCommand(scan.Cmd)
	rootCmd.AddCommand(send.Cmd)
	rootCmd.AddCommand(share.Cmd)
	rootCmd.AddCommand(watch.Cmd)
	rootCmd.AddCommand(fav.Cmd)
	rootCmd.AddCommand(info.Cmd)
}
