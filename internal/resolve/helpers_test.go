package resolve_test

import (
	"io"
	"strings"
	"time"
)

// memBlob is an in-memory access.Blob whose content is its own string value.
type memBlob string

func (b memBlob) Name() string       { return "mem.mp4" }
func (b memBlob) Size() int64        { return int64(len(b)) }
func (b memBlob) ModTime() time.Time { return time.Time{} }
func (b memBlob) Open() (io.ReadSeekCloser, error) {
	return readSeekNopCloser{strings.NewReader(string(b))}, nil
}

type readSeekNopCloser struct{ io.ReadSeeker }

func (readSeekNopCloser) Close() error { return nil }
