package v1

import (
	"net/http"
	"strings"

	"github.com/vmunix/reprise/internal/events"
)

// listFolders returns the remembered folder identities and whether each is
// indexed in this session.
func (s *Server) listFolders(w http.ResponseWriter, r *http.Request) {
	known, err := s.deps.Session.Grants.KnownFolders()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", err.Error())
		return
	}

	idx := s.deps.Session.Index
	resp := make([]folderResponse, 0, len(known))
	seen := make(map[string]bool, len(known))
	for _, f := range known {
		seen[f.Name] = true
		resp = append(resp, folderResponse{
			Name:      f.Name,
			Path:      f.Path,
			Indexed:   idx.Has(f.Name),
			Files:     idx.Len(f.Name),
			GrantedAt: f.GrantedAt,
		})
	}
	// Folders indexed without a folder store are still worth listing.
	for _, name := range idx.Folders() {
		if !seen[name] {
			resp = append(resp, folderResponse{Name: name, Indexed: true, Files: idx.Len(name)})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// pickFolder indexes a folder the user selected and retries a load that was
// waiting for it.
func (s *Server) pickFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PATH", "path is required")
		return
	}

	res, err := s.deps.Session.PickFolder(r.Context(), req.Path, req.Folder)
	if err != nil {
		writeError(w, http.StatusBadRequest, "PICK_FAILED", err.Error())
		return
	}
	s.publish(r.Context(), &events.FolderPicked{
		BaseEvent: events.NewBaseEvent(events.EventFolderPicked, events.EntityFolder, 0),
		Folder:    res.Folder,
		Path:      res.Path,
		Files:     res.Files,
	})

	writeJSON(w, http.StatusOK, pickResponse{
		Folder:   res.Folder,
		Path:     res.Path,
		Files:    res.Files,
		Reloaded: s.deps.Player.FolderSelected(),
	})
}

// openRoot makes a directory the root folder capability used for traversal.
func (s *Server) openRoot(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PATH", "path is required")
		return
	}

	root, err := s.deps.Session.OpenRoot(r.Context(), req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "OPEN_ROOT_FAILED", err.Error())
		return
	}
	path := req.Path
	if p, ok := root.(interface{ Path() string }); ok {
		path = p.Path()
	}
	writeJSON(w, http.StatusOK, pickResponse{
		Folder:   root.Name(),
		Path:     path,
		Reloaded: s.deps.Player.FolderSelected(),
	})
}
