// Package catalogfile reads and writes the db.json song catalog and builds
// it from a music library directory.
package catalogfile

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/osa030/rockola/internal/domain/song"
)

// DefaultFileName is the catalog file name inside the working directory.
const DefaultFileName = "db.json"

// JSONSource loads the catalog from a JSON array of songs.
type JSONSource struct {
	Path string
}

// NewJSONSource creates a source reading path.
func NewJSONSource(path string) *JSONSource {
	return &JSONSource{Path: path}
}

// Load reads and decodes the catalog file.
func (s *JSONSource) Load() ([]song.Song, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read catalog file %s", s.Path)
	}

	var songs []song.Song
	if err := json.Unmarshal(data, &songs); err != nil {
		return nil, errors.Wrapf(err, "failed to parse catalog file %s", s.Path)
	}
	return songs, nil
}

// Write stores songs at path as an indented JSON array. The file is
// replaced atomically so a running kiosk never reads a partial catalog.
func Write(path string, songs []song.Song) error {
	if songs == nil {
		songs = []song.Song{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(songs); err != nil {
		return errors.Wrap(err, "failed to encode catalog")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".db-*.json")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary catalog file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // already renamed on success

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write catalog")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close catalog")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "failed to replace catalog file %s", path)
	}
	return nil
}
