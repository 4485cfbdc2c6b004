package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE:  runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	status, err := client.Status()
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}

	if jsonOutput {
		printJSON(cmd.OutOrStdout(), status)
		return nil
	}
	printStatus(cmd.OutOrStdout(), serverURL, status)
	return nil
}

func printStatus(w io.Writer, server string, s *StatusResponse) {
	transcription := "disabled"
	if s.Transcription {
		transcription = "enabled"
	}
	fmt.Fprintf(w, "reprise %s | Server: %s (%s)\n\n", s.Version, server, s.Status)
	fmt.Fprintf(w, "  %-16s %d\n", "Courses:", s.Courses)
	fmt.Fprintf(w, "  %-16s %s\n", "Player:", s.Player)
	fmt.Fprintf(w, "  %-16s %d\n", "Media leases:", s.ActiveLeases)
	fmt.Fprintf(w, "  %-16s %d\n", "Indexed folders:", s.IndexedFolders)
	fmt.Fprintf(w, "  %-16s %d\n", "Grants:", s.Grants)
	fmt.Fprintf(w, "  %-16s %s\n", "Transcription:", transcription)
}
