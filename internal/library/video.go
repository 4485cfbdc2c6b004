package library

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vmunix/reprise/internal/captions"
)

const videoColumns = `id, course_id, position, title, duration, youtube_id, drive_file_id, url,
	handle_path, relative_path, file_name, last_position, watch_progress, is_completed, captions,
	added_at, updated_at`

func scanVideo(r rowScanner) (*Video, error) {
	v := &Video{}
	var caps string
	err := r.Scan(&v.ID, &v.CourseID, &v.Position, &v.Title, &v.Duration, &v.YouTubeID, &v.DriveFileID, &v.URL,
		&v.HandlePath, &v.RelativePath, &v.FileName, &v.LastPosition, &v.WatchProgress, &v.IsCompleted, &caps,
		&v.AddedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if caps != "" {
		if err := json.Unmarshal([]byte(caps), &v.Captions); err != nil {
			return nil, fmt.Errorf("decode captions for video %d: %w", v.ID, err)
		}
	}
	return v, nil
}

func encodeCaptions(chunks []captions.Chunk) (string, error) {
	if len(chunks) == 0 {
		return "", nil
	}
	data, err := json.Marshal(chunks)
	if err != nil {
		return "", fmt.Errorf("encode captions: %w", err)
	}
	return string(data), nil
}

func addVideo(q querier, v *Video) error {
	caps, err := encodeCaptions(v.Captions)
	if err != nil {
		return err
	}
	now := time.Now()
	result, err := q.Exec(`
		INSERT INTO videos (course_id, position, title, duration, youtube_id, drive_file_id, url,
			handle_path, relative_path, file_name, last_position, watch_progress, is_completed, captions,
			added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.CourseID, v.Position, v.Title, v.Duration, v.YouTubeID, v.DriveFileID, v.URL,
		v.HandlePath, v.RelativePath, v.FileName, v.LastPosition, v.WatchProgress, v.IsCompleted, caps,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("insert video: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	v.ID = id
	v.AddedAt = now
	v.UpdatedAt = now
	return nil
}

// AddVideo inserts a new video.
// Sets ID, AddedAt, and UpdatedAt on the struct.
func (s *Store) AddVideo(v *Video) error { return addVideo(s.db, v) }

// AddVideo inserts a new video within a transaction.
func (t *Tx) AddVideo(v *Video) error { return addVideo(t.tx, v) }

// GetVideo retrieves a video by ID.
// Returns ErrNotFound if the video does not exist.
func (s *Store) GetVideo(id int64) (*Video, error) {
	v, err := scanVideo(s.db.QueryRow("SELECT "+videoColumns+" FROM videos WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get video %d: %w", id, mapSQLiteError(err))
	}
	return v, nil
}

// ListVideos returns a course's videos in playback order.
func (s *Store) ListVideos(courseID int64) ([]*Video, error) {
	rows, err := s.db.Query("SELECT "+videoColumns+" FROM videos WHERE course_id = ? ORDER BY position, id", courseID)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return collectVideos(rows)
}

func collectVideos(rows *sql.Rows) ([]*Video, error) {
	defer func() { _ = rows.Close() }()

	var results []*Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		results = append(results, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return results, nil
}

// NextVideo returns the video that follows videoID in its course.
// Returns ErrEndOfCourse when videoID is the last one.
func (s *Store) NextVideo(videoID int64) (*Video, error) {
	cur, err := s.GetVideo(videoID)
	if err != nil {
		return nil, err
	}
	v, err := scanVideo(s.db.QueryRow(`
		SELECT `+videoColumns+` FROM videos
		WHERE course_id = ? AND (position > ? OR (position = ? AND id > ?))
		ORDER BY position, id LIMIT 1`,
		cur.CourseID, cur.Position, cur.Position, cur.ID,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("next after video %d: %w", videoID, ErrEndOfCourse)
	}
	if err != nil {
		return nil, fmt.Errorf("next after video %d: %w", videoID, mapSQLiteError(err))
	}
	return v, nil
}

func checkAffected(result sql.Result, what string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}

// UpdateVideoProgress records the playback position in seconds. A positive
// duration replaces the stored one; the watch fraction is derived from
// whichever duration is known.
// Returns ErrNotFound if the video does not exist.
func (s *Store) UpdateVideoProgress(id int64, currentTime, duration float64) error {
	if currentTime < 0 {
		currentTime = 0
	}
	result, err := s.db.Exec(`
		UPDATE videos SET
			last_position = ?1,
			duration = CASE WHEN ?2 > 0 THEN ?2 ELSE duration END,
			watch_progress = CASE
				WHEN ?2 > 0 THEN MIN(1.0, ?1 / ?2)
				WHEN duration > 0 THEN MIN(1.0, ?1 / duration)
				ELSE watch_progress END,
			updated_at = ?3
		WHERE id = ?4`,
		currentTime, duration, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update progress %d: %w", id, mapSQLiteError(err))
	}
	return checkAffected(result, "update progress", id)
}

// MarkVideoComplete sets or clears the completed flag. Idempotent.
// Returns ErrNotFound if the video does not exist.
func (s *Store) MarkVideoComplete(id int64, completed bool) error {
	result, err := s.db.Exec("UPDATE videos SET is_completed = ?, updated_at = ? WHERE id = ?",
		completed, time.Now(), id)
	if err != nil {
		return fmt.Errorf("mark complete %d: %w", id, mapSQLiteError(err))
	}
	return checkAffected(result, "mark complete", id)
}

// SetCaptions replaces the transcript chunks of a video.
// Returns ErrNotFound if the video does not exist.
func (s *Store) SetCaptions(id int64, chunks []captions.Chunk) error {
	caps, err := encodeCaptions(chunks)
	if err != nil {
		return err
	}
	result, err := s.db.Exec("UPDATE videos SET captions = ?, updated_at = ? WHERE id = ?", caps, time.Now(), id)
	if err != nil {
		return fmt.Errorf("set captions %d: %w", id, mapSQLiteError(err))
	}
	return checkAffected(result, "set captions", id)
}

// DeleteVideo removes a video by ID. Idempotent.
func (s *Store) DeleteVideo(id int64) error {
	if _, err := s.db.Exec("DELETE FROM videos WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete video %d: %w", id, mapSQLiteError(err))
	}
	return nil
}
