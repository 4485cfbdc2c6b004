package library

import (
	"fmt"
	"time"
)

const courseColumns = "id, title, original_title, root_path, added_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(r rowScanner) (*Course, error) {
	c := &Course{}
	if err := r.Scan(&c.ID, &c.Title, &c.OriginalTitle, &c.RootPath, &c.AddedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func addCourse(q querier, c *Course) error {
	now := time.Now()
	result, err := q.Exec(`
		INSERT INTO courses (title, original_title, root_path, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.Title, c.OriginalTitle, c.RootPath, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert course: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	c.ID = id
	c.AddedAt = now
	c.UpdatedAt = now
	return nil
}

// AddCourse inserts a new course.
// Sets ID, AddedAt, and UpdatedAt on the struct.
func (s *Store) AddCourse(c *Course) error { return addCourse(s.db, c) }

// AddCourse inserts a new course within a transaction.
func (t *Tx) AddCourse(c *Course) error { return addCourse(t.tx, c) }

// GetCourse retrieves a course by ID.
// Returns ErrNotFound if the course does not exist.
func (s *Store) GetCourse(id int64) (*Course, error) {
	c, err := scanCourse(s.db.QueryRow("SELECT "+courseColumns+" FROM courses WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get course %d: %w", id, mapSQLiteError(err))
	}
	return c, nil
}

// GetCourseByOriginalTitle finds a course by its raw folder name.
// Returns ErrNotFound if no course matches.
func (s *Store) GetCourseByOriginalTitle(title string) (*Course, error) {
	c, err := scanCourse(s.db.QueryRow("SELECT "+courseColumns+" FROM courses WHERE original_title = ?", title))
	if err != nil {
		return nil, fmt.Errorf("get course %q: %w", title, mapSQLiteError(err))
	}
	return c, nil
}

// ListCourses returns all courses ordered by title.
func (s *Store) ListCourses() ([]*Course, error) {
	rows, err := s.db.Query("SELECT " + courseColumns + " FROM courses ORDER BY title, id")
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}
	return results, nil
}

// DeleteCourse removes a course and, through the foreign key, its videos.
// This operation is idempotent.
func (s *Store) DeleteCourse(id int64) error {
	if _, err := s.db.Exec("DELETE FROM courses WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete course %d: %w", id, mapSQLiteError(err))
	}
	return nil
}
