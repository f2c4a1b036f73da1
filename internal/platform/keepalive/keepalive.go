// Package keepalive pings the service's own health endpoint on a cron
// schedule so idle-sleeping hosts keep the process warm.
package keepalive

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const DefaultSchedule = "*/14 * * * *"

type Pinger struct {
	url    string
	client *resty.Client
	cron   *cron.Cron
	logger zerolog.Logger
}

func New(url string, logger zerolog.Logger) *Pinger {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("User-Agent", "panacea-keepalive")
	return &Pinger{
		url:    url,
		client: client,
		cron:   cron.New(),
		logger: logger.With().Str("component", "keepalive").Logger(),
	}
}

// Start registers the ping on schedule and starts the cron runner.
func (p *Pinger) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if _, err := p.cron.AddFunc(schedule, func() { p.Ping(context.Background()) }); err != nil {
		return fmt.Errorf("keepalive schedule %q: %w", schedule, err)
	}
	p.cron.Start()
	p.logger.Info().Str("url", p.url).Str("schedule", schedule).Msg("keep-alive scheduled")
	return nil
}

// Stop halts the scheduler and waits for a running ping to finish or ctx to expire.
func (p *Pinger) Stop(ctx context.Context) {
	done := p.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Ping sends one GET and reports the status code, or 0 on failure.
func (p *Pinger) Ping(ctx context.Context) int {
	resp, err := p.client.R().SetContext(ctx).Get(p.url)
	if err != nil {
		p.logger.Error().Err(err).Msg("[KEEP-ALIVE] Ping failed")
		return 0
	}
	p.logger.Info().Int("status", resp.StatusCode()).
		Msgf("[KEEP-ALIVE] Ping sent to %s. Status: %d", p.url, resp.StatusCode())
	return resp.StatusCode()
}
