package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vmunix/reprise/internal/access"
	"github.com/vmunix/reprise/internal/library"
	"github.com/vmunix/reprise/internal/media"
	"github.com/vmunix/reprise/internal/resolve"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <video-id>",
	Short: "Show how a video would be resolved",
	Long: `Runs source resolution for one video against the local database and
reports which strategy found it. Remembered folders and library roots are
indexed first, as the daemon does at start.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolveCmd,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().Bool("grant", false, "Grant direct file handles without asking")
	resolveCmd.Flags().String("folder", "", "Pick this course folder before resolving")
	resolveCmd.Flags().String("root", "", "Open this folder as the traversal root")
}

// resolveReport describes a resolution outcome.
type resolveReport struct {
	VideoID int64  `json:"video_id"`
	Title   string `json:"title"`
	Kind    string `json:"kind"`
	Origin  string `json:"origin,omitempty"`
	Name    string `json:"name,omitempty"`
	URL     string `json:"url,omitempty"`
	Folder  string `json:"folder,omitempty"`
	Error   string `json:"error,omitempty"`
}

func runResolveCmd(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	grant, _ := cmd.Flags().GetBool("grant")
	folder, _ := cmd.Flags().GetString("folder")
	root, _ := cmd.Flags().GetString("root")

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Server.LogLevel)

	db, err := openDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store := library.NewStore(db)
	session := access.NewSession(access.NewPermissionCache(store), access.StaticPrompter(grant || cfg.Library.AutoGrant), access.WithLogger(logger))
	defer session.Clear()
	restoreFolders(ctx, session, cfg.Library.Roots, logger)
	if folder != "" {
		if _, err := session.PickFolder(ctx, folder, ""); err != nil {
			return err
		}
	}
	if root != "" {
		if _, err := session.OpenRoot(ctx, root); err != nil {
			return err
		}
	}

	v, err := store.GetVideo(id)
	if err != nil {
		return fmt.Errorf("video %d: %w", id, err)
	}

	resolver := resolve.New(store, session, media.NewRegistry(cfg.Server.PublicURL+"/media", logger), logger)
	report := resolveVideo(ctx, resolver, v)

	if jsonOutput {
		printJSON(cmd.OutOrStdout(), report)
	} else {
		printResolveReport(cmd.OutOrStdout(), report)
	}
	if report.Error != "" {
		return errors.New(report.Error)
	}
	return nil
}

// resolveVideo resolves v once and releases whatever it produced.
func resolveVideo(ctx context.Context, r *resolve.Resolver, v *library.Video) resolveReport {
	report := resolveReport{VideoID: v.ID, Title: v.Title}

	src, err := r.Resolve(ctx, v, v.CourseID)
	if err != nil {
		report.Kind = "error"
		report.Error = err.Error()
		return report
	}
	defer func() { _ = resolve.Release(src) }()

	report.Kind = src.Kind()
	report.URL = resolve.URL(src)
	switch s := src.(type) {
	case resolve.Local:
		report.Origin = string(s.Origin)
		report.Name = s.Name
	case resolve.Remote:
		report.Origin = string(s.Provider)
	case resolve.NeedsFolderAccess:
		report.Folder = s.Folder
	}
	return report
}

func printResolveReport(w io.Writer, r resolveReport) {
	fmt.Fprintf(w, "Video #%d: %s\n\n", r.VideoID, r.Title)
	fmt.Fprintf(w, "  %-8s %s\n", "Result:", r.Kind)
	switch r.Kind {
	case "local":
		fmt.Fprintf(w, "  %-8s %s\n", "Via:", r.Origin)
		fmt.Fprintf(w, "  %-8s %s\n", "File:", r.Name)
	case "remote":
		fmt.Fprintf(w, "  %-8s %s\n", "Via:", r.Origin)
		fmt.Fprintf(w, "  %-8s %s\n", "URL:", r.URL)
	case "folder-access":
		folder := r.Folder
		if folder == "" {
			folder = "(unknown course folder)"
		}
		fmt.Fprintf(w, "  %-8s %s\n", "Pick:", folder)
	case "error":
		fmt.Fprintf(w, "  %-8s %s\n", "Error:", r.Error)
	}
}
