// Package background picks the ambient loop clip shown behind the song list.
package background

import (
	"math/rand/v2"

	"github.com/cockroachdb/errors"

	"github.com/osa030/rockola/internal/app/media"
)

// Clip is one background loop.
type Clip struct {
	ID  string
	Ref media.Ref
}

// Selector picks a clip uniformly at random. Repeats are allowed.
type Selector struct {
	clips []Clip
	rng   *rand.Rand
}

// NewSelector creates a selector over a fixed set of clips.
// rng may be nil, in which case a randomly seeded source is used.
func NewSelector(clips []Clip, rng *rand.Rand) (*Selector, error) {
	if len(clips) == 0 {
		return nil, errors.New("no background clips configured")
	}
	for _, c := range clips {
		if c.Ref.Namespace() != media.NamespaceBackground || c.Ref.Rel() == "" {
			return nil, errors.Newf("clip %s is not a background reference", c.ID)
		}
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	out := make([]Clip, len(clips))
	copy(out, clips)
	return &Selector{clips: out, rng: rng}, nil
}

// Pick returns one clip.
func (s *Selector) Pick() Clip {
	return s.clips[s.rng.IntN(len(s.clips))]
}

// Clips returns the configured set.
func (s *Selector) Clips() []Clip {
	out := make([]Clip, len(s.clips))
	copy(out, s.clips)
	return out
}
