package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ytget/m3u8-downloader/internal/config"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func main() {
	if err := newRootCmd(config.LoadRuntime()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(rt config.Runtime) *cobra.Command {
	opts := &globalOptions{runtime: rt}

	rootCmd := &cobra.Command{
		Use:           "m3u8ctl",
		Short:         "Command-line client for the m3u8 download service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.server, "server", "s", rt.APIURL, "Service base URL (env M3U8_API_URL)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", rt.CommandTimeout, "Timeout for each service call")

	rootCmd.AddCommand(listCmd(opts))
	rootCmd.AddCommand(infoCmd(opts))
	rootCmd.AddCommand(addCmd(opts))
	rootCmd.AddCommand(probeCmd(opts))
	rootCmd.AddCommand(lifecycleCmds(opts)...)
	rootCmd.AddCommand(emptyBinCmd(opts))
	rootCmd.AddCommand(saveCmd(opts))
	rootCmd.AddCommand(concurrencyCmd(opts))
	rootCmd.AddCommand(cleanupCmd(opts))
	return rootCmd
}
