package gate

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Settings configures one optional filter.
type Settings struct {
	Enabled  bool
	Settings map[string]any
}

// Chain executes filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain() *Chain {
	return &Chain{
		filters: make([]Filter, 0),
	}
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Build creates a chain with the built-in controls lock filter followed by
// every enabled registered filter, in name order. Unknown names and invalid
// settings are errors.
func Build(configs map[string]Settings) (*Chain, error) {
	c := NewChain()
	c.Add(NewControlsLockedFilter())

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cfg := configs[name]
		if !cfg.Enabled {
			continue
		}
		factory, ok := registry[name]
		if !ok {
			return nil, errors.Newf("unknown filter: %s", name)
		}
		f := factory()
		if err := f.ValidateConfig(cfg.Settings); err != nil {
			return nil, errors.Wrapf(err, "invalid config for filter %s", name)
		}
		c.Add(f)
		zlog.Info().Msgf("gate: filter enabled: name=%s", name)
	}
	return c, nil
}

// Execute runs all filters in sequence.
// Returns immediately if any filter rejects the request.
// Filters are only applied if they declare they apply to the request action.
func (c *Chain) Execute(ctx context.Context, req Request) Result {
	for _, f := range c.filters {
		if !f.AppliesTo(req.Action) {
			continue
		}

		result := f.Check(ctx, req)
		if !result.Accepted {
			zlog.Debug().Msgf("gate: rejected: filter=%s action=%s code=%s", f.Name(), req.Action, result.Code)
			return result
		}
	}
	return Accept()
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}
