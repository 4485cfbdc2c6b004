package v1

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"net/http"

	"github.com/vmunix/reprise/internal/events"
	"github.com/vmunix/reprise/internal/transcribe"
)

type transcribeResponse struct {
	RequestID string `json:"request_id"`
	VideoID   int64  `json:"video_id"`
	Samples   int    `json:"samples"`
}

// decodePCM reads little-endian float32 samples.
func decodePCM(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, errors.New("body is not a whole number of float32 samples")
	}
	samples := make([]float32, len(b)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return samples, nil
}

// transcribeVideo accepts mono 16 kHz float32 PCM for a video and queues it.
// The captions are stored and pushed to the player when the worker finishes.
func (s *Server) transcribeVideo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	if _, err := s.deps.Library.GetVideo(id); err != nil {
		writeStoreError(w, err, "Video")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	samples, err := decodePCM(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PCM", err.Error())
		return
	}

	requestID, ch, err := s.deps.Transcriber.Submit(s.ctx, samples)
	switch {
	case errors.Is(err, transcribe.ErrNoAudio):
		writeError(w, http.StatusBadRequest, "NO_AUDIO", err.Error())
		return
	case errors.Is(err, transcribe.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "QUEUE_FULL", err.Error())
		return
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, "TRANSCRIPTION_UNAVAILABLE", err.Error())
		return
	}

	s.publish(r.Context(), &events.TranscriptionStarted{
		BaseEvent: events.NewBaseEvent(events.EventTranscriptionStarted, events.EntityVideo, id),
		RequestID: requestID,
		Samples:   len(samples),
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.finishTranscription(id, requestID, ch)
	}()

	writeJSON(w, http.StatusAccepted, transcribeResponse{RequestID: requestID, VideoID: id, Samples: len(samples)})
}

// finishTranscription relays worker progress as events and stores the result.
func (s *Server) finishTranscription(videoID int64, requestID string, ch <-chan transcribe.Message) {
	log := s.log.With("video_id", videoID, "request_id", requestID)
	// Outcomes are published even when Close cancelled the server context.
	ctx := context.WithoutCancel(s.ctx)

	res, err := transcribe.Collect(ch, func(m transcribe.Message) {
		s.publish(ctx, &events.TranscriptionProgressed{
			BaseEvent: events.NewBaseEvent(events.EventTranscriptionStep, events.EntityVideo, videoID),
			RequestID: requestID,
			Stage:     m.Stage,
			Progress:  m.Progress,
		})
	})
	if err == nil {
		err = s.deps.Library.SetCaptions(videoID, res.Chunks)
	}
	if err != nil {
		log.Warn("transcription failed", "error", err)
		reason := err.Error()
		var terr *transcribe.Error
		if errors.As(err, &terr) {
			reason = terr.Message
		}
		s.publish(ctx, &events.TranscriptionFailed{
			BaseEvent: events.NewBaseEvent(events.EventTranscriptionFailed, events.EntityVideo, videoID),
			RequestID: requestID,
			Reason:    reason,
		})
		return
	}

	s.deps.Player.SetCaptions(videoID, res.Chunks)
	log.Info("captions stored", "chunks", len(res.Chunks))
	s.publish(ctx, &events.TranscriptionCompleted{
		BaseEvent: events.NewBaseEvent(events.EventTranscriptionDone, events.EntityVideo, videoID),
		RequestID: requestID,
		Chunks:    len(res.Chunks),
	})
}
