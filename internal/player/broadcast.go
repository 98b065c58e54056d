package player

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/libget/internal/events"
	"github.com/desertthunder/libget/internal/models"
)

const DefaultBroadcastInterval = 40 * time.Millisecond

// Broadcaster periodically refreshes the engine and emits its state.
type Broadcaster struct {
	engine   *Engine
	emitter  events.Emitter
	interval time.Duration
	logger   *log.Logger
}

// NewBroadcaster creates a broadcaster. A non-positive interval uses [DefaultBroadcastInterval].
func NewBroadcaster(engine *Engine, emitter events.Emitter, interval time.Duration, logger *log.Logger) *Broadcaster {
	if interval <= 0 {
		interval = DefaultBroadcastInterval
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Broadcaster{engine: engine, emitter: emitter, interval: interval, logger: logger}
}

// Run emits a snapshot every interval until ctx is done (process shutdown).
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	b.logger.Debug("broadcast loop started", "interval", b.interval)
	for {
		select {
		case <-ctx.Done():
			b.logger.Debug("broadcast loop stopped")
			return
		case <-ticker.C:
			b.Tick()
		}
	}
}

// Tick refreshes the engine, snapshots it and emits the snapshot after releasing the engine.
func (b *Broadcaster) Tick() models.PlayerSnapshot {
	b.engine.mu.Lock()
	b.engine.renewState()
	snap := b.engine.snapshot()
	b.engine.mu.Unlock()

	b.emitter.Emit(events.PlayerState, snap)
	return snap
}
