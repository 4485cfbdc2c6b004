package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vmunix/reprise/internal/library"
)

var importCmd = &cobra.Command{
	Use:   "import [dir...]",
	Short: "Scan course folders into the library",
	Long: `Walks each course folder and records one video per video file in path
order. Without arguments every folder below the configured library roots is
imported. Folders already in the library are skipped.

Works directly on the database; the daemon does not need to be running.`,
	RunE: runImportCmd,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().Bool("handles", false, "Record direct file handles for each video")
	importCmd.Flags().IntP("jobs", "j", 4, "Folders scanned in parallel")
}

// importResult is the outcome of importing one folder.
type importResult struct {
	Dir      string `json:"dir"`
	CourseID int64  `json:"course_id,omitempty"`
	Title    string `json:"title,omitempty"`
	Videos   int    `json:"videos"`
	Skipped  bool   `json:"skipped,omitempty"`
	Error    string `json:"error,omitempty"`
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	handles, _ := cmd.Flags().GetBool("handles")
	jobs, _ := cmd.Flags().GetInt("jobs")

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	dirs := args
	if len(dirs) == 0 {
		for _, root := range cfg.Library.Roots {
			found, err := courseDirs(root)
			if err != nil {
				return fmt.Errorf("library root %s: %w", root, err)
			}
			dirs = append(dirs, found...)
		}
	}
	if len(dirs) == 0 {
		return errors.New("nothing to import: pass a folder or configure library.roots")
	}

	db, err := openDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	results, err := importCourses(cmd.Context(), library.NewStore(db), dirs, library.ImportOptions{Handles: handles}, jobs)
	if jsonOutput {
		printJSON(cmd.OutOrStdout(), results)
	} else {
		printImportResults(cmd.OutOrStdout(), results)
	}
	return err
}

// importCourses imports dirs with at most jobs scans in flight. Duplicates
// are reported as skipped. Other failures are collected; the first one is
// returned after every folder has been tried.
func importCourses(ctx context.Context, store *library.Store, dirs []string, opts library.ImportOptions, jobs int) ([]importResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if jobs < 1 {
		jobs = 1
	}

	var (
		mu       sync.Mutex
		results  = make([]importResult, 0, len(dirs))
		firstErr error
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, dir := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := importResult{Dir: dir}
			course, videos, err := store.ImportCourse(dir, opts)
			switch {
			case errors.Is(err, library.ErrDuplicate):
				res.Skipped = true
			case err != nil:
				res.Error = err.Error()
			default:
				res.CourseID = course.ID
				res.Title = course.Title
				res.Videos = len(videos)
			}

			mu.Lock()
			defer mu.Unlock()
			results = append(results, res)
			if err != nil && !res.Skipped && firstErr == nil {
				firstErr = fmt.Errorf("import %s: %w", dir, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Dir < results[j].Dir })
	return results, firstErr
}

func printImportResults(w io.Writer, results []importResult) {
	var imported, skipped, failed int
	for _, r := range results {
		name := filepath.Base(r.Dir)
		switch {
		case r.Error != "":
			failed++
			fmt.Fprintf(w, "  FAIL  %s: %s\n", name, r.Error)
		case r.Skipped:
			skipped++
			fmt.Fprintf(w, "  SKIP  %s (already imported)\n", name)
		default:
			imported++
			fmt.Fprintf(w, "  OK    %s -> course #%d (%d videos)\n", name, r.CourseID, r.Videos)
		}
	}
	fmt.Fprintf(w, "\nImported %d, skipped %d, failed %d\n", imported, skipped, failed)
}
