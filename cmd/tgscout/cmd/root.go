package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"tgscout/cmd/tgscout/cmd/history"
	"tgscout/cmd/tgscout/globals"
	"tgscout/internal/components/telemetry"
	"tgscout/internal/config"
	"tgscout/lib/serviceutil"
	libtelemetry "tgscout/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool

	otel libtelemetry.Telemetry
)

var rootCmd = &cobra.Command{
	Use:          "tgscout",
	Short:        "tgscout finds Telegram channels on tgstat listings and ranks them for advertising.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		libtelemetry.InitSlog(verbose)

		cfg, path, err := config.Load(configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		otel, err = libtelemetry.SetupFromEnv(cmd.Context(), "tgscout")
		if err != nil {
			serviceutil.Fatal("failed to set up telemetry", err)
		}

		var tel telemetry.API = telemetry.SlogAPI{}
		if otel.Enabled() {
			meterApi, err := telemetry.NewMeterAPI(tel)
			if err != nil {
				serviceutil.Fatal("failed to create meter", err)
			}
			tel = meterApi
			libtelemetry.InstrumentPerfStats(cmd.Context(), 5*time.Second)
		}

		cmd.SetContext(globals.Set(cmd.Context(), &globals.Value{
			Config:     cfg,
			ConfigPath: path,
			Telemetry:  tel,
		}))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := otel.Shutdown(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to flush telemetry:", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a tgscout.json5 config (default: searched from the working directory up)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs")

	rootCmd.AddCommand(history.RootCmd)
}

func Execute() {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
