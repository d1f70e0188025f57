// Command gradkit fits the gradkit models to CSV data and prints the fitted
// weights and fit metrics as JSON.
//
//	gradkit train --data train.csv --model binary_logistic --zero-one-labels --plot loss.png
//	gradkit gram --data points.csv --kernel gaussian --sigma 0.5 --stable
//	gradkit version
//
// Every setting can also come from a YAML file (--config) or a GRADKIT_*
// environment variable; see package config.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/gradkit/pkg/config"
	"github.com/YuminosukeSato/gradkit/pkg/log"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "gradkit",
		Short:         "gradient descent on kernel and linear models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "YAML configuration file")
	config.RegisterFlags(flags)

	root.AddCommand(trainCmd(), gramCmd(), versionCmd())
	return root
}

// loadConfig resolves the configuration of cmd and installs the logger on
// stderr so that stdout carries only the JSON result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := log.SetupLoggerTo(cmd.ErrOrStderr(), cfg.Log.Level); err != nil {
		return nil, err
	}
	return cfg, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the gradkit version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "gradkit %s\n", version)
			return err
		},
	}
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gradkit: %v\n", err)
		os.Exit(1)
	}
}
