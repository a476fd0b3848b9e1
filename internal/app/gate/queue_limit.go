package gate

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/rockola/internal/infra/decode"
)

// QueueLimitConfig represents the configuration for QueueLimitFilter.
type QueueLimitConfig struct {
	MaxQueue *int `yaml:"max_queue" mapstructure:"max_queue" default:"50" validate:"gte=1"`
}

// QueueLimitFilter rejects code entry once the queue holds MaxQueue entries.
type QueueLimitFilter struct {
	config *QueueLimitConfig
}

// NewQueueLimitFilter creates a new queue limit filter.
func NewQueueLimitFilter() *QueueLimitFilter {
	return &QueueLimitFilter{}
}

func (f *QueueLimitFilter) Name() string {
	return "queue_limit_filter"
}

func (f *QueueLimitFilter) Description() string {
	return "Limits the number of waiting songs"
}

func (f *QueueLimitFilter) ReturnCodes() []string {
	return []string{"queue_full"}
}

func (f *QueueLimitFilter) ValidateConfig(settings map[string]any) error {
	var config QueueLimitConfig
	if err := decode.Struct(settings, &config); err != nil {
		return err
	}
	f.config = &config
	zlog.Info().Msgf("queue limit filter config: max_queue=%d", *config.MaxQueue)
	return nil
}

func (f *QueueLimitFilter) AppliesTo(action Action) bool {
	return action == ActionEnterCode
}

func (f *QueueLimitFilter) Check(ctx context.Context, req Request) Result {
	// If config is not set, accept all requests
	if f.config == nil {
		return Accept()
	}
	if len(req.Queue) >= *f.config.MaxQueue {
		return Reject("queue_full")
	}
	return Accept()
}

func init() {
	Register("queue_limit_filter", func() Filter {
		return NewQueueLimitFilter()
	})
}
