// Package catalog provides the read-only song index used for browsing and direct entry.
package catalog

import (
	"sort"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/osa030/rockola/internal/domain/song"
)

var (
	// ErrCatalogUnavailable is reported when the catalog source is absent or unparsable.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrInvalidPage is returned for non-positive page or limit values.
	ErrInvalidPage = errors.New("page and limit must be positive")
)

// Source provides the raw song records at startup.
type Source interface {
	Load() ([]song.Song, error)
}

// PageResult is one page of a (possibly genre filtered) listing.
type PageResult struct {
	Songs       []song.Song
	TotalSongs  int
	TotalPages  int
	CurrentPage int
}

// Index holds the immutable catalog snapshot.
// It is safe for concurrent reads since nothing mutates it after construction.
type Index struct {
	songs    []song.Song    // sorted by ID
	byID     map[string]int // ID -> position in songs
	byPath   map[string]int // Path -> first position in songs
	genres   []string       // sorted, deduplicated
	byGenre  map[string][]song.Song
	degraded bool
}

// New builds an index from the given records.
// Invalid and duplicate records are dropped with a warning.
func New(songs []song.Song) *Index {
	sorted := make([]song.Song, 0, len(songs))
	seen := make(map[string]bool, len(songs))
	for _, s := range songs {
		if err := s.Validate(); err != nil {
			zlog.Warn().Msgf("catalog: skipping record: %v", err)
			continue
		}
		if seen[s.ID] {
			zlog.Warn().Msgf("catalog: skipping duplicate id: id=%s path=%s", s.ID, s.Path)
			continue
		}
		seen[s.ID] = true
		sorted = append(sorted, s)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	idx := &Index{
		songs:   sorted,
		byID:    make(map[string]int, len(sorted)),
		byPath:  make(map[string]int, len(sorted)),
		byGenre: make(map[string][]song.Song),
	}
	for i, s := range sorted {
		idx.byID[s.ID] = i
		if _, ok := idx.byPath[s.Path]; !ok {
			idx.byPath[s.Path] = i
		}
		idx.byGenre[s.Genre] = append(idx.byGenre[s.Genre], s)
	}

	idx.genres = lo.Uniq(lo.Map(sorted, func(s song.Song, _ int) string { return s.Genre }))
	sort.Strings(idx.genres)

	return idx
}

// Load builds an index from a source.
// A failing source never stops the kiosk: the index degrades to an empty catalog.
func Load(src Source) *Index {
	if src == nil {
		zlog.Error().Msgf("catalog: %v: no source configured", ErrCatalogUnavailable)
		return degraded()
	}

	songs, err := src.Load()
	if err != nil {
		zlog.Error().Msgf("catalog: %v", errors.Mark(err, ErrCatalogUnavailable))
		return degraded()
	}

	idx := New(songs)
	zlog.Info().Msgf("catalog loaded: songs=%d genres=%d", idx.Len(), len(idx.genres))
	return idx
}

func degraded() *Index {
	idx := New(nil)
	idx.degraded = true
	return idx
}

// Degraded reports whether the catalog failed to load.
func (x *Index) Degraded() bool {
	return x.degraded
}

// Len returns the number of songs.
func (x *Index) Len() int {
	return len(x.songs)
}

// Page returns one page of songs sorted by ID, optionally restricted to a genre.
// Pages past the end are empty but still report the totals.
func (x *Index) Page(page, limit int, genre string) (PageResult, error) {
	if page < 1 || limit < 1 {
		return PageResult{}, errors.Wrapf(ErrInvalidPage, "page=%d limit=%d", page, limit)
	}

	songs := x.songs
	if genre != "" {
		songs = x.byGenre[genre]
	}

	total := len(songs)
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	result := PageResult{
		Songs:       []song.Song{},
		TotalSongs:  total,
		TotalPages:  pages,
		CurrentPage: page,
	}

	// page <= pages keeps (page-1)*limit below total
	if page > pages {
		return result, nil
	}
	start := (page - 1) * limit
	end := start + min(limit, total-start)

	result.Songs = make([]song.Song, end-start)
	copy(result.Songs, songs[start:end])
	return result, nil
}

// Genres returns the sorted distinct genres.
func (x *Index) Genres() []string {
	out := make([]string, len(x.genres))
	copy(out, x.genres)
	return out
}

// All returns every song sorted by ID.
func (x *Index) All() []song.Song {
	out := make([]song.Song, len(x.songs))
	copy(out, x.songs)
	return out
}

// Lookup finds a song by its exact ID.
func (x *Index) Lookup(id string) (song.Song, bool) {
	i, ok := x.byID[id]
	if !ok {
		return song.Song{}, false
	}
	return x.songs[i], true
}

// MatchCode matches a direct-entry buffer. Only a complete code can match.
func (x *Index) MatchCode(buffer string) (song.Song, bool) {
	if len(buffer) != song.IDLength {
		return song.Song{}, false
	}
	return x.Lookup(buffer)
}

// ByPath joins a queue entry path back to its catalog record.
func (x *Index) ByPath(path string) (song.Song, bool) {
	i, ok := x.byPath[path]
	if !ok {
		return song.Song{}, false
	}
	return x.songs[i], true
}

// Describe returns the record for path, or the Unknown placeholder.
func (x *Index) Describe(path string) song.Song {
	if s, ok := x.ByPath(path); ok {
		return s
	}
	return song.Unknown
}
