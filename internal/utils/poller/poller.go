package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/emberforge-labs/asset-ledger/internal/types"
)

// Poller runs a method on a fixed interval until the context is canceled
// or Stop is called. Errors from the method are logged, never fatal.
type Poller struct {
	name       string
	interval   time.Duration
	quit       chan struct{}
	pollMethod func(ctx context.Context) *types.Error
}

func NewPoller(name string, interval time.Duration, pollMethod func(ctx context.Context) *types.Error) *Poller {
	return &Poller{
		name:       name,
		interval:   interval,
		quit:       make(chan struct{}),
		pollMethod: pollMethod,
	}
}

func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Info().Str("poller", p.name).Msgf("Starting poller with interval %s", p.interval)

	for {
		select {
		case <-ticker.C:
			if err := p.pollMethod(ctx); err != nil {
				log.Error().Err(err).Str("poller", p.name).Msg("Error polling")
			}
		case <-ctx.Done():
			log.Info().Str("poller", p.name).Msg("Poller stopped due to context cancellation")
			return
		case <-p.quit:
			log.Info().Str("poller", p.name).Msg("Poller stopped")
			return
		}
	}
}

func (p *Poller) Stop() {
	close(p.quit)
}
