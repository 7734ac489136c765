package bot

import (
	"context"
	"sync"
	"time"

	"rubybot/internal/infrastructure/discord"
	"rubybot/internal/shared/goroutine"
	"rubybot/internal/shared/logger"
)

// presenceInterval is how often the bot rotates its activity line.
const presenceInterval = 10 * time.Second

// PresenceRotator cycles the bot's activity through the configured status
// lines.
type PresenceRotator struct {
	gateway  *discord.Gateway
	lines    []string
	logger   logger.Interface
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewPresenceRotator(gateway *discord.Gateway, lines []string, log logger.Interface) *PresenceRotator {
	return &PresenceRotator{
		gateway:  gateway,
		lines:    lines,
		logger:   log,
		stopChan: make(chan struct{}),
	}
}

// Start begins rotating. A single configured line is set once and left
// alone.
func (p *PresenceRotator) Start(ctx context.Context) {
	if len(p.lines) == 0 {
		return
	}

	p.wg.Add(1)
	goroutine.SafeGo(p.logger, "presence-rotator", func() {
		defer p.wg.Done()

		idx := 0
		ticker := time.NewTicker(presenceInterval)
		defer ticker.Stop()

		if err := p.gateway.UpdatePresence(p.lines[0]); err != nil {
			p.logger.Warnw("failed to set presence", "error", err)
		}
		if len(p.lines) == 1 {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stopChan:
				return
			case <-ticker.C:
				idx = (idx + 1) % len(p.lines)
				if err := p.gateway.UpdatePresence(p.lines[idx]); err != nil {
					p.logger.Warnw("failed to update presence", "error", err)
				}
			}
		}
	})
}

func (p *PresenceRotator) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}
