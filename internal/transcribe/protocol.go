// Package transcribe runs speech-to-text requests off the caller's goroutine
// and reports their progress as a stream of protocol messages.
package transcribe

import (
	"errors"
	"fmt"

	"github.com/vmunix/reprise/internal/captions"
)

// Message types.
const (
	TypeTranscribe = "transcribe"
	TypeProgress   = "progress"
	TypeResult     = "result"
	TypeError      = "error"
)

var (
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("transcription worker closed")
	// ErrQueueFull is returned when too many requests are waiting.
	ErrQueueFull = errors.New("transcription queue full")
	// ErrNoAudio is returned for a request without samples.
	ErrNoAudio = errors.New("no audio samples")
)

// Request asks for a transcript of mono 16 kHz PCM samples.
type Request struct {
	Type         string    `json:"type"`
	RequestID    string    `json:"requestId"`
	AudioSamples []float32 `json:"audioSamples"`
}

// Message is a worker response. Zero or more progress messages precede
// exactly one result or error message.
type Message struct {
	Type      string           `json:"type"`
	RequestID string           `json:"requestId"`
	Stage     string           `json:"stage,omitempty"`
	Progress  float64          `json:"progress,omitempty"`
	Message   string           `json:"message,omitempty"`
	Text      string           `json:"text,omitempty"`
	Chunks    []captions.Chunk `json:"chunks,omitempty"`
}

// Terminal reports whether m ends its request.
func (m Message) Terminal() bool {
	return m.Type == TypeResult || m.Type == TypeError
}

// Err returns the failure carried by an error message, or nil.
func (m Message) Err() error {
	if m.Type != TypeError {
		return nil
	}
	return &Error{RequestID: m.RequestID, Message: m.Message}
}

// Error is a failure reported by the engine.
type Error struct {
	RequestID string
	Message   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("transcription %s: %s", e.RequestID, e.Message)
}

// Result is a finished transcript.
type Result struct {
	Text   string
	Chunks []captions.Chunk
}

// Collect drains ch and returns the terminal outcome. progress, if set,
// sees every progress message.
func Collect(ch <-chan Message, progress func(Message)) (Result, error) {
	for m := range ch {
		switch m.Type {
		case TypeProgress:
			if progress != nil {
				progress(m)
			}
		case TypeResult:
			return Result{Text: m.Text, Chunks: m.Chunks}, nil
		case TypeError:
			return Result{}, m.Err()
		}
	}
	return Result{}, errors.New("transcription stream ended without a result")
}
