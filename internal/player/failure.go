package player

import (
	"context"
	"errors"
	"io/fs"
	"net"

	"github.com/vmunix/reprise/internal/library"
	"github.com/vmunix/reprise/internal/resolve"
)

// FailureKind classifies why a load ended in the error phase.
type FailureKind string

const (
	// FailurePermissionDenied: a file handle exists but access was refused.
	// Recovered by granting access again, not by picking a folder.
	FailurePermissionDenied FailureKind = "permission_denied"
	// FailureNotFound: the file is gone. Recovered by picking the folder.
	FailureNotFound FailureKind = "not_found"
	// FailureUnsupportedFormat: local media could not be decoded.
	FailureUnsupportedFormat FailureKind = "unsupported_format"
	// FailureNetwork: a remote embed failed to load.
	FailureNetwork FailureKind = "network"
	FailureUnknown FailureKind = "unknown"
)

// Failure describes the error phase.
type Failure struct {
	Kind      FailureKind `json:"kind"`
	Message   string      `json:"message"`
	Retryable bool        `json:"retryable"`
}

// Classify maps a resolver error to a failure kind.
func Classify(err error) FailureKind {
	var netErr net.Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, resolve.ErrPermissionDenied), errors.Is(err, fs.ErrPermission):
		return FailurePermissionDenied
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, library.ErrNotFound):
		return FailureNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr):
		return FailureNetwork
	default:
		return FailureUnknown
	}
}

// retryable reports whether the user should be offered a retry. Unknown
// failures get one retry per video.
func retryable(kind FailureKind, retries int) bool {
	switch kind {
	case FailureUnsupportedFormat:
		return false
	case FailureUnknown:
		return retries < 1
	default:
		return true
	}
}
