package realtime

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often the liveness sweep runs. A connection
// that misses two consecutive probes is gone no later than twice this
// interval after its last confirmed pong.
const DefaultSweepInterval = 30 * time.Second

// Sweeper owns the liveness protocol. Browsers and plant-floor networks drop
// connections without a clean close frame; without the sweep, rooms would
// accumulate dead entries and events would be written into the void forever.
// Each pass terminates every connection that did not answer the previous
// probe, then probes the survivors.
type Sweeper struct {
	log      *slog.Logger
	registry *Registry
	interval time.Duration
}

func NewSweeper(log *slog.Logger, registry *Registry, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{log: log, registry: registry, interval: interval}
}

func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("Context done, stopping liveness sweep")
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep runs one pass over every live connection. Termination is idempotent,
// so racing with a concurrent client-initiated close is harmless: whichever
// path gets there first performs the one observable cleanup.
func (s *Sweeper) Sweep() {
	for _, c := range s.registry.Connections() {
		if !c.ConfirmedAlive() {
			s.log.Info("Terminating unresponsive connection", "userId", c.Principal().UserID, "connectionId", c.ID())
			c.Terminate()
			continue
		}
		if err := c.Probe(); err != nil {
			s.log.Debug("Probe failed, terminating", "connectionId", c.ID(), "err", err)
			c.Terminate()
		}
	}
}
