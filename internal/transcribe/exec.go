package transcribe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// maxLine bounds one JSON line from the engine process. Result lines carry
// every chunk of a transcript.
const maxLine = 16 << 20

// ExecEngine runs an external program per request. The request is written
// to its stdin as one JSON line; the program answers on stdout with JSON
// line messages ending in a result or error message.
type ExecEngine struct {
	Command string
	Args    []string
	Log     *slog.Logger
}

// NewExecEngine returns an engine running command with args.
func NewExecEngine(command string, args []string, log *slog.Logger) *ExecEngine {
	if log == nil {
		log = slog.Default()
	}
	return &ExecEngine{Command: command, Args: args, Log: log.With("component", "transcribe-exec")}
}

// Transcribe implements Engine.
func (e *ExecEngine) Transcribe(ctx context.Context, samples []float32, progress ProgressFunc) (Result, error) {
	if e.Command == "" {
		return Result{}, errors.New("transcription command is empty")
	}

	id := requestIDFrom(ctx)
	req, err := json.Marshal(Request{Type: TypeTranscribe, RequestID: id, AudioSamples: samples})
	if err != nil {
		return Result{}, fmt.Errorf("encode request: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.Command, e.Args...)
	cmd.Stdin = bytes.NewReader(append(req, '\n'))
	var stderr bytes.Buffer
	cmd.Stderr = &limitedWriter{w: &stderr, n: 64 << 10}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start %s: %w", e.Command, err)
	}

	res, found, readErr := readMessages(stdout, id, progress)
	// Drain so the process is never blocked writing.
	_, _ = io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()

	switch {
	case ctx.Err() != nil:
		return Result{}, ctx.Err()
	case readErr != nil:
		return Result{}, readErr
	case found:
		return res, nil
	case waitErr != nil:
		e.Log.Warn("transcription process failed", "command", e.Command, "stderr", strings.TrimSpace(stderr.String()))
		return Result{}, fmt.Errorf("%s: %w", e.Command, waitErr)
	default:
		return Result{}, fmt.Errorf("%s exited without a result", e.Command)
	}
}

// readMessages consumes engine output up to the terminal message. When id is
// set, a message for any other request fails the read.
func readMessages(r io.Reader, id string, progress ProgressFunc) (Result, bool, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLine)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var m Message
		if err := json.Unmarshal(line, &m); err != nil {
			return Result{}, false, fmt.Errorf("decode engine message: %w", err)
		}
		if id != "" && m.RequestID != id {
			return Result{}, false, fmt.Errorf("engine answered request %q, want %q", m.RequestID, id)
		}
		switch m.Type {
		case TypeProgress:
			if progress != nil {
				progress(m.Stage, m.Progress, m.Message)
			}
		case TypeResult:
			return Result{Text: m.Text, Chunks: m.Chunks}, true, nil
		case TypeError:
			return Result{}, false, m.Err()
		default:
			return Result{}, false, fmt.Errorf("unexpected engine message type %q", m.Type)
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, false, fmt.Errorf("read engine output: %w", err)
	}
	return Result{}, false, nil
}

type requestIDKey struct{}

// WithRequestID attaches a request id that ExecEngine forwards to the process.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// limitedWriter keeps the first n bytes and discards the rest.
type limitedWriter struct {
	w io.Writer
	n int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if l.n <= 0 {
		return len(p), nil
	}
	keep := p
	if len(keep) > l.n {
		keep = keep[:l.n]
	}
	if _, err := l.w.Write(keep); err != nil {
		return 0, err
	}
	l.n -= len(keep)
	return len(p), nil
}
