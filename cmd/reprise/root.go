package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	serverURL  string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "reprise",
	Short: "Course video player with resumable progress",
	Long: `reprise - course video player with resumable progress

Imports folders of lesson videos as courses, resolves them to playable
sources and remembers where you stopped watching.

Run 'reprise serve' to start the daemon the browser UI talks to.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: discovered)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:8686", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("reprise {{.Version}}\n")
}
