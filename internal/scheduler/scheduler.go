package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"tradelens-backend/config"
	"tradelens-backend/internal/session"
)

// NewScheduler runs the periodic session expiry scan. Sessions idle longer
// than the configured TTL are removed so abandoned conversations do not pin
// memory forever.
func NewScheduler(lc fx.Lifecycle, cfg *config.Config, registry session.Registry) *cron.Cron {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.DowOptional | cron.Descriptor)
	c := cron.New(cron.WithParser(parser))

	schedule := cfg.Session.ExpirySchedule
	ttl := cfg.Session.TTL
	_, err := c.AddFunc(schedule, func() {
		cutoff := time.Now().UTC().Add(-ttl)
		expired := registry.ExpireBefore(context.Background(), cutoff)
		if expired > 0 {
			log.Info().Int("expired", expired).Time("cutoff", cutoff).Msg("Expired idle query sessions")
		}
	})

	if err != nil {
		log.Fatal().Err(err).Str("schedule", schedule).Msg("Failed to add cron job")
		return nil
	}
	log.Info().Str("schedule", schedule).Dur("ttl", ttl).Msg("Scheduled session expiry scan")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msg("Starting cron scheduler")
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Stopping cron scheduler...")
			stopCtx := c.Stop()
			select {
			case <-stopCtx.Done():
				log.Info().Msg("Cron scheduler stopped gracefully.")
				return nil
			case <-ctx.Done():
				log.Error().Msg("Context cancelled while waiting for cron scheduler to stop.")
				return ctx.Err()
			}
		},
	})

	return c
}
