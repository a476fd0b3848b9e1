package catalogfile

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/rockola/internal/domain/song"
)

// Extensions are the media file types picked up by a scan.
var Extensions = []string{".mp3", ".mp4", ".avi", ".mpg", ".mpeg"}

// Scanner builds a catalog from a library laid out as
// <root>/<genre>/<artist>/<file>. IDs are assigned in walk order, which is
// sorted by name at every level, so rescanning an unchanged library gives
// the same IDs.
type Scanner struct {
	Root     string
	ReadTags bool // Take titles from embedded tags when present

	maxSongs int // song.MaxSongs when zero
}

// ErrTooManySongs is returned when the library has more media files than
// there are direct-entry codes.
var ErrTooManySongs = errors.Newf("library holds more than %d songs", song.MaxSongs)

// Scan walks the library and returns the songs found.
func (s *Scanner) Scan() ([]song.Song, error) {
	genres, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read music directory %s", s.Root)
	}

	limit := s.maxSongs
	if limit == 0 {
		limit = song.MaxSongs
	}

	songs := make([]song.Song, 0)
	for _, genre := range genres {
		if !genre.IsDir() {
			continue
		}
		artists, err := os.ReadDir(filepath.Join(s.Root, genre.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read genre directory %s", genre.Name())
		}

		for _, artist := range artists {
			if !artist.IsDir() {
				continue
			}
			files, err := os.ReadDir(filepath.Join(s.Root, genre.Name(), artist.Name()))
			if err != nil {
				return nil, errors.Wrapf(err, "failed to read artist directory %s/%s", genre.Name(), artist.Name())
			}

			for _, file := range files {
				if file.IsDir() || !isMedia(file.Name()) {
					continue
				}
				if len(songs) == limit {
					return nil, errors.Wrapf(ErrTooManySongs, "limit %d reached at %s/%s/%s",
						limit, genre.Name(), artist.Name(), file.Name())
				}
				rel := path.Join(genre.Name(), artist.Name(), file.Name())
				songs = append(songs, song.Song{
					ID:     fmt.Sprintf("%0*d", song.IDLength, len(songs)+1),
					Title:  s.title(rel),
					Artist: artist.Name(),
					Genre:  genre.Name(),
					Path:   rel,
				})
			}
		}
	}

	zlog.Info().Msgf("library scanned: root=%s songs=%d", s.Root, len(songs))
	return songs, nil
}

// title returns the file name without extension, or the embedded title
// when tag reading is enabled and the file carries one.
func (s *Scanner) title(rel string) string {
	base := path.Base(rel)
	fallback := strings.TrimSuffix(base, path.Ext(base))
	if !s.ReadTags {
		return fallback
	}

	f, err := os.Open(filepath.Join(s.Root, filepath.FromSlash(rel)))
	if err != nil {
		zlog.Debug().Msgf("cannot open for tags: path=%s error=%v", rel, err)
		return fallback
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		zlog.Debug().Msgf("no tags: path=%s error=%v", rel, err)
		return fallback
	}
	if t := strings.TrimSpace(m.Title()); t != "" {
		return t
	}
	return fallback
}

func isMedia(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
