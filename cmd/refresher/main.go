package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/pandagamers-storefront/internal/api"
	"github.com/ariefcatur/pandagamers-storefront/internal/config"
	"github.com/ariefcatur/pandagamers-storefront/internal/datastore"
	"github.com/ariefcatur/pandagamers-storefront/internal/events"
	kafkax "github.com/ariefcatur/pandagamers-storefront/internal/kafka"
	"github.com/ariefcatur/pandagamers-storefront/internal/logx"
	"github.com/ariefcatur/pandagamers-storefront/internal/redisx"
	"github.com/ariefcatur/pandagamers-storefront/internal/refresh"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logx.New(cfg.Env).With(zap.String("service", cfg.ServiceName+"-refresher"))
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis: shared kv store + dedup keys
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	local, err := datastore.NewStore(ctx, redisx.NewStore(rdb, log), log)
	if err != nil {
		log.Fatal("local dataset", zap.Error(err))
	}
	svc := &refresh.Service{
		Data: &datastore.Service{
			Remote: api.NewClient(cfg.APIBaseURL, cfg.APITimeout, api.StaticToken(cfg.RefreshToken), log),
			Local:  local,
			Log:    log,
		},
		Redis: rdb,
		Scope: "refresher",
		Log:   log,
	}

	// Consumer
	// Order listings need a credential; products are public.
	topics := []string{events.TopicProductsUpdated}
	if cfg.RefreshToken != "" {
		topics = append(topics, events.TopicOrdersUpdated)
	} else {
		log.Warn("REFRESH_API_TOKEN not set, order changes are not refreshed")
	}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.RefreshGroup, topics, cfg.RefreshWorkers, log)

	go func() {
		log.Info("refresher consumer started", zap.String("group", cfg.RefreshGroup),
			zap.Strings("topics", topics), zap.Int("workers", cfg.RefreshWorkers))
		if err := cons.Start(ctx, svc.HandleChange); err != nil {
			log.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
