package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/reprise/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Long:  "Writes the commented default config.toml. The path defaults to the per-user config location.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, required fields and environment variable substitution without starting the server.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file that would be used",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Discover(configPath)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configTestCmd, configPathCmd)
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	if err := config.WriteDefault(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	explicit := configPath
	if len(args) > 0 {
		explicit = args[0]
	}
	path, err := config.Discover(explicit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(w, configErr)
			return errors.New("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(w, cfg)
	if warns := cfg.Warnings(); len(warns) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, warn := range warns {
			fmt.Fprintf(w, "  - %s\n", warn)
		}
	}
	fmt.Fprintln(w, "\nConfiguration valid!")
	return nil
}

func printConfigErrors(w io.Writer, e *config.ConfigError) {
	if len(e.Missing) > 0 {
		fmt.Fprintln(w, "Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Fprintf(w, "  - %s\n", m)
		}
		fmt.Fprintln(w)
	}

	if len(e.Errors) > 0 {
		fmt.Fprintln(w, "Validation errors:")
		for _, err := range e.Errors {
			fmt.Fprintf(w, "  - %s\n", err)
		}
		fmt.Fprintln(w)
	}
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Configuration Summary:")
	fmt.Fprintf(w, "  Server:        %s (log: %s)\n", cfg.Addr(), cfg.Server.LogLevel)
	fmt.Fprintf(w, "  Public URL:    %s\n", cfg.Server.PublicURL)
	fmt.Fprintf(w, "  Database:      %s\n", cfg.Database.Path)
	if len(cfg.Library.Roots) > 0 {
		fmt.Fprintf(w, "  Library roots: %s\n", strings.Join(cfg.Library.Roots, ", "))
	}

	p := cfg.Playback
	fmt.Fprintf(w, "  Playback:      resume=%t complete at %d%% shortcuts=%t auto-advance=%t save every %s\n",
		p.ResumeOnReopen, p.CompletionThreshold, p.KeyboardShortcuts, p.AutoAdvance, p.ProgressInterval)

	if cfg.Transcription.Enabled {
		fmt.Fprintf(w, "  Transcription: %s\n", strings.TrimSpace(cfg.Transcription.Command+" "+strings.Join(cfg.Transcription.Args, " ")))
	}
	if cfg.Events.Retention.Duration > 0 {
		fmt.Fprintf(w, "  Events kept:   %s\n", cfg.Events.Retention)
	}
}
