package gate

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/rockola/internal/infra/decode"
)

// DuplicateSongConfig represents the configuration for DuplicateSongFilter.
type DuplicateSongConfig struct {
	IncludeNowPlaying bool `yaml:"include_now_playing" mapstructure:"include_now_playing"`
}

// DuplicateSongFilter rejects a song that is already waiting in the queue,
// and optionally the song that is playing right now.
type DuplicateSongFilter struct {
	config DuplicateSongConfig
}

// NewDuplicateSongFilter creates a new duplicate song filter.
func NewDuplicateSongFilter() *DuplicateSongFilter {
	return &DuplicateSongFilter{}
}

func (f *DuplicateSongFilter) Name() string {
	return "duplicate_song_filter"
}

func (f *DuplicateSongFilter) Description() string {
	return "Rejects songs that are already queued"
}

func (f *DuplicateSongFilter) ReturnCodes() []string {
	return []string{"duplicate_song"}
}

func (f *DuplicateSongFilter) ValidateConfig(settings map[string]any) error {
	var config DuplicateSongConfig
	if err := decode.Struct(settings, &config); err != nil {
		return err
	}
	f.config = config
	zlog.Info().Msgf("duplicate song filter config: %+v", config)
	return nil
}

func (f *DuplicateSongFilter) AppliesTo(action Action) bool {
	return action == ActionEnterCode
}

func (f *DuplicateSongFilter) Check(ctx context.Context, req Request) Result {
	if f.config.IncludeNowPlaying && req.NowPlaying != "" && req.NowPlaying == req.Song.Path {
		return Reject("duplicate_song")
	}
	for _, path := range req.Queue {
		if path == req.Song.Path {
			return Reject("duplicate_song")
		}
	}
	return Accept()
}

func init() {
	Register("duplicate_song_filter", func() Filter {
		return NewDuplicateSongFilter()
	})
}
