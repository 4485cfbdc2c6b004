package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client wraps HTTP calls to the reprise daemon.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: serverURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is an error response from the daemon.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error %d (%s): %s", e.Status, e.Code, e.Message)
}

// newAPIError decodes a {error, code} body, falling back to the raw text.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	if json.Unmarshal(body, apiErr) != nil || apiErr.Message == "" {
		apiErr.Message = string(bytes.TrimSpace(body))
	}
	return apiErr
}

// IsNotFound reports whether err is a 404 from the daemon.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func (c *Client) do(method, path string, body, result any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal error: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+"/api/v1"+path, r)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return newAPIError(resp.StatusCode, data)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(path string, result any) error {
	return c.do(http.MethodGet, path, nil, result)
}

// StatusResponse matches GET /status.
type StatusResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	Courses        int    `json:"courses"`
	ActiveLeases   int    `json:"active_leases"`
	IndexedFolders int    `json:"indexed_folders"`
	Grants         int    `json:"grants"`
	Player         string `json:"player"`
	Transcription  bool   `json:"transcription"`
}

// VideoResponse matches the API representation of a video.
type VideoResponse struct {
	ID            int64     `json:"id"`
	CourseID      int64     `json:"course_id"`
	Position      int       `json:"position"`
	Title         string    `json:"title"`
	Duration      float64   `json:"duration"`
	Remote        bool      `json:"remote"`
	YouTubeID     string    `json:"youtube_id,omitempty"`
	DriveFileID   string    `json:"drive_file_id,omitempty"`
	URL           string    `json:"url,omitempty"`
	RelativePath  string    `json:"relative_path,omitempty"`
	FileName      string    `json:"file_name,omitempty"`
	LastPosition  float64   `json:"last_position"`
	WatchProgress float64   `json:"watch_progress"`
	IsCompleted   bool      `json:"is_completed"`
	HasCaptions   bool      `json:"has_captions"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CourseResponse matches the API representation of a course.
type CourseResponse struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	OriginalTitle string          `json:"original_title"`
	RootPath      string          `json:"root_path"`
	AddedAt       time.Time       `json:"added_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Videos        []VideoResponse `json:"videos,omitempty"`
}

// ListCoursesResponse matches GET /courses.
type ListCoursesResponse struct {
	Items []CourseResponse `json:"items"`
	Total int              `json:"total"`
}

// EventResponse matches a persisted event.
type EventResponse struct {
	ID         int64  `json:"id"`
	EventType  string `json:"event_type"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Payload    string `json:"payload,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// ListEventsResponse matches GET /events.
type ListEventsResponse struct {
	Items  []EventResponse `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// Status returns the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get("/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Courses lists every course.
func (c *Client) Courses() (*ListCoursesResponse, error) {
	var resp ListCoursesResponse
	if err := c.get("/courses", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Course returns one course with its videos.
func (c *Client) Course(id int64) (*CourseResponse, error) {
	var resp CourseResponse
	if err := c.get("/courses/"+strconv.FormatInt(id, 10), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ImportCourse asks the daemon to import a course folder from its own
// filesystem.
func (c *Client) ImportCourse(path string, handles bool) (*CourseResponse, error) {
	body := map[string]any{"path": path, "handles": handles}
	var resp CourseResponse
	if err := c.do(http.MethodPost, "/courses", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteCourse removes a course and its videos.
func (c *Client) DeleteCourse(id int64) error {
	return c.do(http.MethodDelete, "/courses/"+strconv.FormatInt(id, 10), nil, nil)
}

// Video returns one video.
func (c *Client) Video(id int64) (*VideoResponse, error) {
	var resp VideoResponse
	if err := c.get("/videos/"+strconv.FormatInt(id, 10), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteVideo removes a video.
func (c *Client) DeleteVideo(id int64) error {
	return c.do(http.MethodDelete, "/videos/"+strconv.FormatInt(id, 10), nil, nil)
}

// Events returns the most recent events.
func (c *Client) Events(limit int, types ...string) (*ListEventsResponse, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if len(types) > 0 {
		q["type"] = types
	}
	var resp ListEventsResponse
	if err := c.get("/events?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Captions downloads a video's captions in format ("srt" or "vtt").
// It returns the body and the file name the daemon suggests.
func (c *Client) Captions(id int64, format string) ([]byte, string, error) {
	path := "/videos/" + strconv.FormatInt(id, 10) + "/captions?format=" + url.QueryEscape(format)
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/api/v1"+path, nil)
	if err != nil {
		return nil, "", fmt.Errorf("request creation failed: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read captions: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", newAPIError(resp.StatusCode, data)
	}

	var name string
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		name = params["filename"]
	}
	return data, name, nil
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
