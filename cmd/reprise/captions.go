package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vmunix/reprise/internal/captions"
	"github.com/vmunix/reprise/internal/config"
	"github.com/vmunix/reprise/internal/library"
)

var errNoCaptions = errors.New("video has no captions")

func init() {
	captionsCmd := &cobra.Command{
		Use:   "captions",
		Short: "Caption tools",
	}

	exportCmd := &cobra.Command{
		Use:   "export <video-id>",
		Short: "Export a video's captions as SRT or WebVTT",
		Long: `Writes the video's grouped caption segments.

The output goes to --output when given (its extension picks the format),
otherwise into captions.export_dir, otherwise to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: runCaptionsExport,
	}
	exportCmd.Flags().StringP("format", "f", "vtt", "Caption format (srt, vtt)")
	exportCmd.Flags().StringP("output", "o", "", "Output file, or - for stdout")

	captionsCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(captionsCmd)
}

func runCaptionsExport(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	formatFlag, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	format, err := captions.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	v, err := library.NewStore(db).GetVideo(id)
	if err != nil {
		return fmt.Errorf("video %d: %w", id, err)
	}

	path := exportPath(cfg.Captions, v, format, output)
	if path == "" {
		segments := captions.Group(v.Captions)
		if len(segments) == 0 {
			return errNoCaptions
		}
		return captions.Write(cmd.OutOrStdout(), segments, format)
	}

	n, err := exportCaptions(v, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d cues to %s\n", n, path)
	return nil
}

// exportPath picks the destination file. "" means stdout.
func exportPath(cfg config.CaptionsConfig, v *library.Video, format captions.Format, output string) string {
	switch {
	case output == "-":
		return ""
	case output != "":
		return output
	case cfg.ExportDir != "":
		return filepath.Join(cfg.ExportDir, v.BaseName()+"."+string(format))
	default:
		return ""
	}
}

// exportCaptions writes v's captions to path and returns the cue count.
func exportCaptions(v *library.Video, path string) (int, error) {
	segments := captions.Group(v.Captions)
	if len(segments) == 0 {
		return 0, errNoCaptions
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}
	if err := captions.ExportFile(path, segments); err != nil {
		return 0, err
	}
	return len(segments), nil
}
