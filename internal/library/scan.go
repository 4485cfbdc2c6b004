package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

var videoExtensions = map[string]bool{
	".mp4": true, ".m4v": true, ".mkv": true, ".webm": true, ".mov": true,
	".avi": true, ".wmv": true, ".flv": true, ".ogv": true, ".ts": true,
}

// IsVideoFile checks if a path has a video file extension.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// FindVideos finds all video files below root (recursive) and returns their
// slash-separated paths relative to root, in natural lesson order.
// Hidden files and directories are skipped.
func FindVideos(root string) ([]string, error) {
	var videos []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsVideoFile(path) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		videos = append(videos, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	sort.SliceStable(videos, func(i, j int) bool { return naturalLess(videos[i], videos[j]) })
	return videos, nil
}

// naturalLess orders "2 intro" before "10 outro".
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		ra, rb := rune(a[0]), rune(b[0])
		if unicode.IsDigit(ra) && unicode.IsDigit(rb) {
			na, restA := leadingNumber(a)
			nb, restB := leadingNumber(b)
			if na != nb {
				return na < nb
			}
			a, b = restA, restB
			continue
		}
		la, lb := unicode.ToLower(ra), unicode.ToLower(rb)
		if la != lb {
			return la < lb
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func leadingNumber(s string) (int, string) {
	n, i := 0, 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	return n, s[i:]
}

// TitleFromFileName turns "01_intro-to_go.mp4" into "01 intro to go".
func TitleFromFileName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}

// ImportOptions controls how imported videos reference their files.
type ImportOptions struct {
	// Handles records each file's absolute path as a direct handle. Without
	// it videos are located only through their relative path, which survives
	// the folder moving between sessions.
	Handles bool
}

// ImportCourse creates a course for dir and one video per video file below it.
// Returns ErrDuplicate if a course with the same folder name exists.
func (s *Store) ImportCourse(dir string, opts ImportOptions) (*Course, []*Video, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("import %s: not a directory", abs)
	}

	files, err := FindVideos(abs)
	if err != nil {
		return nil, nil, err
	}

	folder := filepath.Base(abs)
	tx, err := s.Begin()
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	course := &Course{Title: TitleFromFileName(folder), OriginalTitle: folder, RootPath: filepath.Dir(abs)}
	if course.Title == "" {
		course.Title = folder
	}
	if err := tx.AddCourse(course); err != nil {
		return nil, nil, err
	}

	videos := make([]*Video, 0, len(files))
	for i, rel := range files {
		v := &Video{
			CourseID:     course.ID,
			Position:     i + 1,
			Title:        TitleFromFileName(rel),
			RelativePath: folder + "/" + rel,
			FileName:     filepath.Base(rel),
		}
		if opts.Handles {
			v.HandlePath = filepath.Join(abs, filepath.FromSlash(rel))
		}
		if err := tx.AddVideo(v); err != nil {
			return nil, nil, err
		}
		videos = append(videos, v)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit import: %w", err)
	}
	return course, videos, nil
}

// IsEndOfCourse reports whether err means there is no next video.
func IsEndOfCourse(err error) bool {
	return errors.Is(err, ErrEndOfCourse)
}
