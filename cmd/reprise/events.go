package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent events",
	Args:  cobra.NoArgs,
	RunE:  runEventsCmd,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsCmd.Flags().StringSliceP("type", "t", nil, "Only show these event types (e.g. playback.completed)")
}

func runEventsCmd(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	types, _ := cmd.Flags().GetStringSlice("type")

	client := NewClient(serverURL)
	events, err := client.Events(limit, types...)
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}

	if jsonOutput {
		printJSON(cmd.OutOrStdout(), events)
		return nil
	}
	printEvents(cmd.OutOrStdout(), events, time.Now())
	return nil
}

func printEvents(w io.Writer, events *ListEventsResponse, now time.Time) {
	if len(events.Items) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}

	fmt.Fprintf(w, "Recent Events (%d of %d):\n\n", len(events.Items), events.Total)
	fmt.Fprintf(w, "  %-10s %-26s %-15s\n", "AGE", "TYPE", "ENTITY")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 53))

	for _, e := range events.Items {
		age := "-"
		if t, err := time.Parse(time.RFC3339, e.OccurredAt); err == nil {
			age = formatAge(now.Sub(t))
		}
		entity := fmt.Sprintf("%s/%d", e.EntityType, e.EntityID)
		fmt.Fprintf(w, "  %-10s %-26s %-15s\n", age, e.EventType, entity)
	}
}

// formatAge renders a duration as a short relative age.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
