// SPDX-License-Identifier: Unlicense OR MIT

// Command gesturetester replays recorded pointer traces through the
// gesture engine and serves it to websocket clients.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:          "gesturetester",
	Short:        "Exercise the gesture engine",
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Gesture configuration file (.toml, .yaml or .ini)")
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if verbose {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
