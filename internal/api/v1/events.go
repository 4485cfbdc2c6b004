package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vmunix/reprise/internal/events"
)

// streamBuffer is the per-client event buffer. A client that falls this far
// behind misses events rather than stalling the bus.
const streamBuffer = 64

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit < 0 || offset < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit and offset must be non-negative")
		return
	}
	const maxLimit = 1000
	switch {
	case limit == 0:
		limit = 50
	case limit > maxLimit:
		limit = maxLimit
	}

	q := events.Query{
		EntityType: r.URL.Query().Get("entity_type"),
		Limit:      limit,
		Offset:     offset,
	}
	for _, t := range r.URL.Query()["type"] {
		for _, name := range strings.Split(t, ",") {
			if name = strings.TrimSpace(name); name != "" {
				q.Types = append(q.Types, name)
			}
		}
	}
	if q.EntityType != "" {
		q.EntityID = int64(queryInt(r, "entity_id", 0))
	}
	if since := r.URL.Query().Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_SINCE", "since must be an RFC 3339 timestamp")
			return
		}
		q.Since = t
	}

	evs, err := s.deps.EventLog.Find(q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}
	total, err := s.deps.EventLog.Count(q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, listEventsResponse{Items: toEventResponses(evs), Total: total, Limit: limit, Offset: offset})
}

func (s *Server) listVideoEvents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	if _, err := s.deps.Library.GetVideo(id); err != nil {
		writeStoreError(w, err, "Video")
		return
	}

	evs, err := s.deps.EventLog.Timeline(events.EntityVideo, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, listEventsResponse{Items: toEventResponses(evs), Total: len(evs), Limit: len(evs)})
}

func toEventResponses(evs []events.RawEvent) []EventResponse {
	out := make([]EventResponse, len(evs))
	for i, e := range evs {
		out[i] = EventResponse{
			ID:         e.ID,
			EventType:  e.EventType,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Payload:    e.Payload,
			OccurredAt: e.OccurredAt.Format(time.RFC3339),
		}
	}
	return out
}

// streamEvents sends bus events as server-sent events until the client goes
// away. Player commands reach the rendering client this way.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "STREAM_UNSUPPORTED", "Streaming not supported")
		return
	}

	ch := s.deps.Bus.SubscribeAll(streamBuffer)
	defer s.deps.Bus.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				s.log.Warn("failed to encode event", "type", e.EventType(), "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.EventType(), data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
