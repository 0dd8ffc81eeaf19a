package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/pandagamers-storefront/internal/api"
	"github.com/ariefcatur/pandagamers-storefront/internal/cart"
	"github.com/ariefcatur/pandagamers-storefront/internal/checkout"
	"github.com/ariefcatur/pandagamers-storefront/internal/config"
	"github.com/ariefcatur/pandagamers-storefront/internal/datastore"
	"github.com/ariefcatur/pandagamers-storefront/internal/events"
	"github.com/ariefcatur/pandagamers-storefront/internal/httpx"
	kafkax "github.com/ariefcatur/pandagamers-storefront/internal/kafka"
	"github.com/ariefcatur/pandagamers-storefront/internal/kv"
	"github.com/ariefcatur/pandagamers-storefront/internal/logx"
	"github.com/ariefcatur/pandagamers-storefront/internal/postgres"
	"github.com/ariefcatur/pandagamers-storefront/internal/redisx"
	"github.com/ariefcatur/pandagamers-storefront/internal/session"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logx.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistent store shared by every tab of this profile
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("kv store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeStore()

	// Session + cart
	holder := session.NewHolder(store, cfg.DiscountDomain, log)
	if err := holder.Restore(ctx); err != nil {
		log.Warn("restore session", zap.Error(err))
	}
	identityID := ""
	if id := holder.Current(); id != nil {
		identityID = id.ID()
	}
	ledger := cart.NewLedger(ctx, store, identityID, log)
	ledger.Follow(holder)

	// API client + local fallback dataset
	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout, holder, log)
	local, err := datastore.NewStore(ctx, store, log)
	if err != nil {
		log.Fatal("local dataset", zap.Error(err))
	}

	// Change notifications
	var notifier events.Notifier = events.NewBus(cfg.ServiceName)
	stopNotifier := func() {}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) > 0 {
		pOrders := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrdersUpdated, 1024, log)
		pOrders.Start(ctx)
		pProducts := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicProductsUpdated, 1024, log)
		pProducts.Start(ctx)
		notifier = kafkax.NewNotifier(cfg.ServiceName, pOrders, pProducts)
		stopNotifier = func() {
			pOrders.Close() // close inbox -> flush & close writer
			pProducts.Close()
			pOrders.WaitClosed()
			pProducts.WaitClosed()
		}
	}

	data := &datastore.Service{Remote: client, Local: local, Notifier: notifier, Log: log}
	flow := checkout.New(checkout.Deps{
		Cart:     ledger,
		Session:  holder,
		Gateway:  client,
		Orders:   data,
		Recorder: local,
		Notifier: notifier,
		Log:      log,
	})

	// Routes
	router := httpx.NewRouter(log)
	sh := &httpx.StorefrontHandler{
		Session:  holder,
		Cart:     ledger,
		Accounts: client,
		Data:     data,
		Checkout: flow,
		Log:      log,
	}
	sh.Register(router)
	ah := &httpx.AdminHandler{Session: holder, Data: data}
	ah.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	// graceful shutdown
	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.StoreBackend),
			zap.Bool("kafka", cfg.KafkaEnabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	stopNotifier()
	cancel()
}

// openStore picks the kv backend and starts following its change feed.
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (kv.Store, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		return kv.NewMemory(), func() {}, nil

	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		s := postgres.NewStore(db, log)
		if err := s.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		if err := s.Listen(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("listen: %w", err)
		}
		return s, db.Close, nil

	case "redis":
		rdb := redisx.New(cfg.RedisAddr)
		s := redisx.NewStore(rdb, log)
		if err := s.Listen(ctx); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("subscribe: %w", err)
		}
		return s, func() { _ = rdb.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
}
