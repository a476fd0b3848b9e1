// Package song provides the Song catalog entity.
package song

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// IDLength is the length of a direct-entry code.
const IDLength = 5

// MaxSongs is the number of IDs that fit in IDLength digits.
const MaxSongs = 99999

var (
	ErrInvalidID   = errors.New("invalid song id")
	ErrMissingPath = errors.New("song path is empty")
)

// Song represents one catalog record.
// Records are immutable once the catalog is loaded.
type Song struct {
	ID     string `json:"id"`     // Direct-entry code, exactly IDLength characters
	Title  string `json:"title"`  // Song title
	Artist string `json:"artist"` // Artist name
	Genre  string `json:"genre"`  // Genre (first directory level of the library)
	Path   string `json:"path"`   // Relative reference within the music namespace
}

// Unknown is the placeholder shown for queue entries with no catalog match.
var Unknown = Song{ID: "N/A", Title: "Unknown", Artist: "Unknown"}

// Validate checks the record invariants.
func (s Song) Validate() error {
	if len(s.ID) != IDLength {
		return errors.Wrapf(ErrInvalidID, "id %q must be %d characters", s.ID, IDLength)
	}
	if strings.TrimSpace(s.Path) == "" {
		return errors.Wrapf(ErrMissingPath, "song %s", s.ID)
	}
	return nil
}

// Label returns the "id - artist - title" line the kiosk displays.
func (s Song) Label() string {
	return s.ID + " - " + s.Artist + " - " + s.Title
}

// Entry represents a song waiting in the playback queue.
// It references the song by path so it survives a catalog reload.
type Entry struct {
	Path    string    // Relative music path
	AddedAt time.Time // Time when added to queue
}

// NewEntry creates a queue entry for the given song.
func NewEntry(s Song, now time.Time) Entry {
	return Entry{Path: s.Path, AddedAt: now}
}
