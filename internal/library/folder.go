package library

import (
	"fmt"
	"time"
)

// SaveFolder remembers a picked folder's identity, replacing any previous
// entry with the same name.
func (s *Store) SaveFolder(f Folder) error {
	if f.GrantedAt.IsZero() {
		f.GrantedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO folders (name, path, granted_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET path = excluded.path, granted_at = excluded.granted_at`,
		f.Name, f.Path, f.GrantedAt,
	)
	if err != nil {
		return fmt.Errorf("save folder %q: %w", f.Name, mapSQLiteError(err))
	}
	return nil
}

// ListFolders returns remembered folders, most recent first.
func (s *Store) ListFolders() ([]Folder, error) {
	rows, err := s.db.Query("SELECT name, path, granted_at FROM folders ORDER BY granted_at DESC, name")
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var folders []Folder
	for rows.Next() {
		var f Folder
		if err := rows.Scan(&f.Name, &f.Path, &f.GrantedAt); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}
