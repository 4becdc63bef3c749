package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type ReclaimerConfig struct {
	Stream    string
	Group     string
	Consumer  string
	MinIdle   time.Duration // how long a message must be pending before reclaim
	Interval  time.Duration // how often to scan for stuck messages
	BatchSize int64
}

// Reclaimer rescues messages that were delivered to a consumer that died
// before acking. Without it, a crashed worker leaves its pending entries
// stuck forever.
type Reclaimer struct {
	client *redis.Client
	cfg    ReclaimerConfig
}

func NewReclaimer(client *redis.Client, cfg ReclaimerConfig) *Reclaimer {
	if cfg.MinIdle <= 0 {
		cfg.MinIdle = 5 * time.Minute
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	return &Reclaimer{client: client, cfg: cfg}
}

func (r *Reclaimer) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "reclaimer started",
		"stream", r.cfg.Stream,
		"min_idle", r.cfg.MinIdle,
		"interval", r.cfg.Interval)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "reclaimer stopping")
			return
		case <-ticker.C:
			if err := r.reclaimOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "reclaim pass failed", "error", err)
			}
		}
	}
}

func (r *Reclaimer) reclaimOnce(ctx context.Context) error {
	pending, err := r.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: r.cfg.Stream,
		Group:  r.cfg.Group,
		Idle:   r.cfg.MinIdle,
		Start:  "-",
		End:    "+",
		Count:  r.cfg.BatchSize,
	}).Result()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.ID)
	}

	claimed, err := r.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   r.cfg.Stream,
		Group:    r.cfg.Group,
		Consumer: r.cfg.Consumer,
		MinIdle:  r.cfg.MinIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return err
	}

	if len(claimed) > 0 {
		slog.InfoContext(ctx, "reclaimed stuck messages",
			"count", len(claimed),
			"stream", r.cfg.Stream,
			"consumer", r.cfg.Consumer)
	}
	return nil
}
