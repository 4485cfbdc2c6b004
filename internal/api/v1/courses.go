package v1

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/vmunix/reprise/internal/captions"
	"github.com/vmunix/reprise/internal/events"
	"github.com/vmunix/reprise/internal/library"
)

func (s *Server) listCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.deps.Library.ListCourses()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", err.Error())
		return
	}

	resp := listCoursesResponse{
		Items: make([]courseResponse, len(courses)),
		Total: len(courses),
	}
	for i, c := range courses {
		resp.Items[i] = courseToResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getCourse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	c, err := s.deps.Library.GetCourse(id)
	if err != nil {
		writeStoreError(w, err, "Course")
		return
	}
	videos, err := s.deps.Library.ListVideos(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", err.Error())
		return
	}

	resp := courseToResponse(c)
	resp.Videos = videosToResponse(videos)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) importCourse(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PATH", "path is required")
		return
	}

	opts := library.ImportOptions{Handles: s.cfg.ImportHandles}
	if req.Handles != nil {
		opts.Handles = *req.Handles
	}
	course, videos, err := s.deps.Library.ImportCourse(req.Path, opts)
	if err != nil {
		writeStoreError(w, err, "Folder")
		return
	}

	s.log.Info("course imported", "course_id", course.ID, "title", course.Title, "videos", len(videos))
	s.publish(r.Context(), &events.CourseImported{
		BaseEvent: events.NewBaseEvent(events.EventCourseImported, events.EntityCourse, course.ID),
		CourseID:  course.ID,
		Title:     course.Title,
		Folder:    course.OriginalTitle,
		Videos:    len(videos),
	})

	resp := courseToResponse(course)
	resp.Videos = videosToResponse(videos)
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) deleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	if err := s.deps.Library.DeleteCourse(id); err != nil {
		writeStoreError(w, err, "Course")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getVideo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	v, err := s.deps.Library.GetVideo(id)
	if err != nil {
		writeStoreError(w, err, "Video")
		return
	}
	writeJSON(w, http.StatusOK, videoToResponse(v))
}

func (s *Server) deleteVideo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	if err := s.deps.Library.DeleteVideo(id); err != nil {
		writeStoreError(w, err, "Video")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// exportCaptions serves the stored captions as SRT or WebVTT.
func (s *Server) exportCaptions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	format := captions.FormatVTT
	if q := r.URL.Query().Get("format"); q != "" {
		if format, err = captions.ParseFormat(q); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_FORMAT", err.Error())
			return
		}
	}

	v, err := s.deps.Library.GetVideo(id)
	if err != nil {
		writeStoreError(w, err, "Video")
		return
	}
	segments := captions.Group(v.Captions)
	if len(segments) == 0 {
		writeError(w, http.StatusNotFound, "NO_CAPTIONS", "Video has no captions")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", v.BaseName()+"."+string(format)))
	if err := captions.Write(w, segments, format); err != nil {
		s.log.Warn("caption export failed", "video_id", id, "error", err)
	}
}
