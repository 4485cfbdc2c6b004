package captions

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

// Format is a cue-list subtitle format.
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

// ParseFormat accepts "srt", "vtt" or "webvtt", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "srt":
		return FormatSRT, nil
	case "vtt", "webvtt":
		return FormatVTT, nil
	default:
		return "", fmt.Errorf("unsupported caption format %q", s)
	}
}

// FormatForPath infers the format from a file extension, defaulting to SRT.
func FormatForPath(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return FormatSRT
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatVTT {
		return "text/vtt; charset=utf-8"
	}
	return "application/x-subrip; charset=utf-8"
}

// Write serializes segments as numbered cues.
func Write(w io.Writer, segments []Segment, f Format) error {
	bw := bufio.NewWriter(w)
	sep := ","
	if f == FormatVTT {
		sep = "."
		if _, err := bw.WriteString("WEBVTT\n\n"); err != nil {
			return err
		}
	}

	for i, s := range segments {
		_, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
			i+1, cueTime(s.Start, sep), cueTime(s.End, sep), s.Text)
		if err != nil {
			return fmt.Errorf("write cue %d: %w", i+1, err)
		}
	}
	return bw.Flush()
}

// cueTime formats seconds as HH:MM:SS<sep>mmm.
func cueTime(seconds float64, sep string) string {
	ms := int64(math.Round(seconds * 1000))
	if ms < 0 {
		ms = 0
	}
	h := ms / 3_600_000
	m := (ms / 60_000) % 60
	s := (ms / 1000) % 60
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", h, m, s, sep, ms%1000)
}

// ExportFile writes the segments to path atomically. The format follows the
// file extension.
func ExportFile(path string, segments []Segment) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending caption file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if err := Write(pending, segments, FormatForPath(path)); err != nil {
		return fmt.Errorf("write captions: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace caption file: %w", err)
	}
	return nil
}
