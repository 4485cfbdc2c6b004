package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	coursesCmd := &cobra.Command{
		Use:   "courses",
		Short: "List and manage courses",
		Args:  cobra.NoArgs,
		RunE:  runCoursesList,
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a course and its videos",
		Args:  cobra.ExactArgs(1),
		RunE:  runCoursesShow,
	}

	addCmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Import a course folder through the daemon",
		Long:  "Asks the running daemon to import a folder on its own filesystem. Use 'reprise import' to scan without a daemon.",
		Args:  cobra.ExactArgs(1),
		RunE:  runCoursesAdd,
	}
	addCmd.Flags().Bool("handles", false, "Record direct file handles")

	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a course from the library",
		Long:  "Removes the course and its video records. Files on disk are not touched.",
		Args:  cobra.ExactArgs(1),
		RunE:  runCoursesRemove,
	}

	coursesCmd.AddCommand(showCmd, addCmd, rmCmd)
	rootCmd.AddCommand(coursesCmd)

	videosCmd := &cobra.Command{
		Use:   "videos",
		Short: "Inspect and manage videos",
	}
	videosCmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a video",
		Args:  cobra.ExactArgs(1),
		RunE:  runVideosShow,
	}, &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a video from its course",
		Args:  cobra.ExactArgs(1),
		RunE:  runVideosRemove,
	})
	rootCmd.AddCommand(videosCmd)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID: %s", s)
	}
	return id, nil
}

func runCoursesList(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	courses, err := client.Courses()
	if err != nil {
		return fmt.Errorf("failed to list courses: %w", err)
	}

	if jsonOutput {
		printJSON(cmd.OutOrStdout(), courses)
		return nil
	}
	printCourses(cmd.OutOrStdout(), courses)
	return nil
}

func printCourses(w io.Writer, courses *ListCoursesResponse) {
	if len(courses.Items) == 0 {
		fmt.Fprintln(w, "No courses")
		return
	}

	fmt.Fprintf(w, "Courses (%d):\n\n", courses.Total)
	fmt.Fprintf(w, "  %-5s %-40s %s\n", "ID", "TITLE", "FOLDER")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 70))
	for _, c := range courses.Items {
		fmt.Fprintf(w, "  %-5d %-40s %s\n", c.ID, truncate(c.Title, 40), c.OriginalTitle)
	}
}

func runCoursesShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	client := NewClient(serverURL)
	course, err := client.Course(id)
	if err != nil {
		return fmt.Errorf("failed to fetch course: %w", err)
	}

	if jsonOutput {
		printJSON(cmd.OutOrStdout(), course)
		return nil
	}
	printCourse(cmd.OutOrStdout(), course)
	return nil
}

func printCourse(w io.Writer, c *CourseResponse) {
	fmt.Fprintf(w, "Course #%d: %s\n", c.ID, c.Title)
	fmt.Fprintf(w, "  %-8s %s\n", "Folder:", c.OriginalTitle)
	if c.RootPath != "" {
		fmt.Fprintf(w, "  %-8s %s\n", "Root:", c.RootPath)
	}
	fmt.Fprintln(w)

	if len(c.Videos) == 0 {
		fmt.Fprintln(w, "  No videos")
		return
	}
	fmt.Fprintf(w, "  %-3s %-5s %-44s %s\n", "#", "ID", "TITLE", "PROGRESS")
	for _, v := range c.Videos {
		fmt.Fprintf(w, "  %-3d %-5d %-44s %s\n", v.Position, v.ID, truncate(v.Title, 44), formatProgress(v))
	}
}

func runCoursesAdd(cmd *cobra.Command, args []string) error {
	handles, _ := cmd.Flags().GetBool("handles")

	client := NewClient(serverURL)
	course, err := client.ImportCourse(args[0], handles)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if jsonOutput {
		printJSON(cmd.OutOrStdout(), course)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported course #%d: %s (%d videos)\n", course.ID, course.Title, len(course.Videos))
	return nil
}

func runCoursesRemove(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := NewClient(serverURL).DeleteCourse(id); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed course #%d\n", id)
	return nil
}

func runVideosShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	client := NewClient(serverURL)
	v, err := client.Video(id)
	if err != nil {
		return fmt.Errorf("failed to fetch video: %w", err)
	}

	if jsonOutput {
		printJSON(cmd.OutOrStdout(), v)
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Video #%d: %s\n\n", v.ID, v.Title)
	fmt.Fprintf(w, "  %-10s #%d, position %d\n", "Course:", v.CourseID, v.Position)
	fmt.Fprintf(w, "  %-10s %s\n", "Source:", videoSource(v))
	fmt.Fprintf(w, "  %-10s %s\n", "Progress:", formatProgress(*v))
	if v.HasCaptions {
		fmt.Fprintf(w, "  %-10s yes\n", "Captions:")
	}
	return nil
}

func runVideosRemove(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := NewClient(serverURL).DeleteVideo(id); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed video #%d\n", id)
	return nil
}

func videoSource(v *VideoResponse) string {
	switch {
	case v.YouTubeID != "":
		return "youtube " + v.YouTubeID
	case v.DriveFileID != "":
		return "drive " + v.DriveFileID
	case v.URL != "":
		return v.URL
	case v.RelativePath != "":
		return v.RelativePath
	default:
		return v.FileName
	}
}

// formatProgress renders watch progress as "12:30 / 45:00 (27%)".
func formatProgress(v VideoResponse) string {
	if v.IsCompleted {
		return "completed"
	}
	if v.LastPosition <= 0 {
		return "not started"
	}
	if v.Duration <= 0 {
		return formatClock(v.LastPosition)
	}
	return fmt.Sprintf("%s / %s (%d%%)", formatClock(v.LastPosition), formatClock(v.Duration), int(v.WatchProgress*100))
}

// formatClock renders seconds as m:ss or h:mm:ss.
func formatClock(seconds float64) string {
	s := int(seconds)
	if s < 0 {
		s = 0
	}
	if s >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", s/3600, (s/60)%60, s%60)
	}
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
