// Package access tracks which local files and folders the session may read,
// and keeps the fallback index of files picked without durable handles.
package access

//go:generate mockgen -source=handle.go -destination=mocks/handle.go -package=mocks

import (
	"context"
	"io"
	"time"
)

// Permission is the state of a read capability.
type Permission int

const (
	// PermissionPrompt means the capability exists but must be requested.
	PermissionPrompt Permission = iota
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "prompt"
	}
}

// Blob is a readable file object.
type Blob interface {
	Name() string
	Size() int64
	ModTime() time.Time
	Open() (io.ReadSeekCloser, error)
}

// FileHandle is a capability for one file whose permission may lapse.
type FileHandle interface {
	Name() string
	QueryPermission(ctx context.Context) (Permission, error)
	RequestPermission(ctx context.Context) (Permission, error)
	// Blob dereferences the handle. It fails if the file is gone.
	Blob(ctx context.Context) (Blob, error)
}

// EntryKind distinguishes files from directories in a listing.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDirectory
)

// Entry is an immediate child of a directory.
type Entry struct {
	Name string
	Kind EntryKind
}

// DirHandle is a capability for one directory.
type DirHandle interface {
	Name() string
	Entries(ctx context.Context) ([]Entry, error)
	Dir(ctx context.Context, name string) (DirHandle, error)
	File(ctx context.Context, name string) (FileHandle, error)
}

// Prompter asks the user to confirm read access to path. Returning an error
// means the prompt was abandoned, which callers treat as denial.
type Prompter interface {
	Confirm(ctx context.Context, path string) (bool, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, path string) (bool, error)

// Confirm calls f.
func (f PrompterFunc) Confirm(ctx context.Context, path string) (bool, error) { return f(ctx, path) }

// StaticPrompter answers every prompt the same way.
type StaticPrompter bool

// Confirm returns the static answer.
func (p StaticPrompter) Confirm(ctx context.Context, _ string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return bool(p), nil
}
