package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/descant/descant/internal/domain"
)

// songPath returns where a song's audio lives in the cache. The music tree
// mirrors the server's path layout; songs without a usable server path fall
// back to a fingerprint-derived name.
func (s *Store) songPath(song *domain.Song) string {
	if rel, ok := safeRelPath(song.Path); ok {
		return filepath.Join(s.musicDir, rel)
	}
	name := Fingerprint(song.ID)
	if song.Suffix != "" {
		name += "." + song.Suffix
	}
	return filepath.Join(s.musicDir, name)
}

// coverArtPath returns where a cover art image lives in the cache,
// named by the fingerprint of its id.
func (s *Store) coverArtPath(coverArtID string) string {
	return filepath.Join(s.coverDir, Fingerprint(coverArtID))
}

// safeRelPath normalizes a server-side path for local use. Absolute paths
// and anything escaping the music tree are rejected.
func safeRelPath(serverPath string) (string, bool) {
	if serverPath == "" {
		return "", false
	}
	rel := filepath.FromSlash(serverPath)
	if filepath.IsAbs(rel) {
		return "", false
	}
	rel = filepath.Clean(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// placeBlob moves srcPath to dst atomically: copy into a temp file in the
// destination directory, then rename over any previous version. The source
// file is consumed on success.
func (s *Store) placeBlob(srcPath, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source blob: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".descant-blob-*")
	if err != nil {
		return fmt.Errorf("failed to create temp blob: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close blob: %w", err)
	}

	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move blob into place: %w", err)
	}

	os.Remove(srcPath)
	return nil
}

// removeBlob deletes a blob file, tolerating its absence
func (s *Store) removeBlob(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove blob", "path", path, "error", err)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
