// Package refresh keeps the local fallback dataset in step with the API by
// reacting to storefront change events.
package refresh

import (
	"context"
	"fmt"

	"github.com/ariefcatur/pandagamers-storefront/internal/events"
	kafkax "github.com/ariefcatur/pandagamers-storefront/internal/kafka"
	"github.com/ariefcatur/pandagamers-storefront/internal/logx"
	"github.com/ariefcatur/pandagamers-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Dataset is satisfied by datastore.Service.
type Dataset interface {
	RefreshProducts(ctx context.Context) error
	RefreshOrders(ctx context.Context) error
}

type Service struct {
	Data  Dataset
	Redis *redis.Client
	Scope string // dedup namespace, e.g. "refresher"
	Log   *zap.Logger
}

// HandleChange is installed as the consumer handler. A nil return commits
// the offset.
func (s *Service) HandleChange(ctx context.Context, m kafkago.Message) error {
	log := logx.OrNop(s.Log)

	// 1) decode envelope; garbage is skipped, not retried
	env, err := kafkax.DecodeEnvelope(m)
	if err != nil {
		log.Warn("skipping undecodable event", zap.Error(err))
		return nil
	}

	var refresh func(context.Context) error
	switch env.EventType {
	case events.EventOrdersUpdated:
		refresh = s.Data.RefreshOrders
	case events.EventProductsUpdated:
		refresh = s.Data.RefreshProducts
	default:
		return nil
	}

	// 2) dedup on event id
	dkey := fmt.Sprintf(redisx.KeyDedup, s.Scope, env.EventID)
	if seen, err := redisx.Exists(ctx, s.Redis, dkey); err == nil && seen {
		log.Debug("duplicate event", zap.String("event_id", env.EventID))
		return nil
	}

	// 3) refresh; an error leaves the offset uncommitted
	if err := refresh(ctx); err != nil {
		return fmt.Errorf("%s %s: %w", env.EventType, env.EventID, err)
	}

	// 4) remember the event only once it was applied
	if _, err := redisx.MarkOnce(ctx, s.Redis, dkey, redisx.TTLDedup); err != nil {
		log.Warn("dedup mark failed", zap.String("event_id", env.EventID), zap.Error(err))
	}
	log.Info("local dataset refreshed",
		zap.String("event_type", env.EventType), zap.String("correlation_id", env.CorrelationID))
	return nil
}
