package redisx

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ariefcatur/pandagamers-storefront/internal/kv"
	"github.com/ariefcatur/pandagamers-storefront/internal/logx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is a kv.Store over plain Redis strings. Every write is followed by a
// PUBLISH on ChannelChanges so other handles can follow it.
type Store struct {
	rdb      *redis.Client
	origin   string
	watchers kv.Watchers
	log      *zap.Logger
}

func NewStore(rdb *redis.Client, log *zap.Logger) *Store {
	return &Store{rdb: rdb, origin: uuid.NewString(), log: logx.OrNop(log)}
}

func (s *Store) Origin() string { return s.origin }

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", kv.ErrNotFound
	}
	return v, err
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.write(ctx, kv.Change{Key: key, Value: value, Origin: s.origin}, func(p redis.Pipeliner) {
		p.Set(ctx, key, value, 0)
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.write(ctx, kv.Change{Key: key, Deleted: true, Origin: s.origin}, func(p redis.Pipeliner) {
		p.Del(ctx, key)
	})
}

func (s *Store) write(ctx context.Context, c kv.Change, op func(redis.Pipeliner)) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		op(p)
		p.Publish(ctx, ChannelChanges, b)
		return nil
	})
	return err
}

func (s *Store) Watch(key string, fn func(kv.Change)) (stop func()) {
	return s.watchers.Add(key, fn)
}

// Listen subscribes to the change feed before returning, then delivers
// changes from other origins in the background until ctx is done.
func (s *Store) Listen(ctx context.Context) error {
	sub := s.rdb.Subscribe(ctx, ChannelChanges)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				s.deliver(m.Payload)
			}
		}
	}()
	return nil
}

func (s *Store) deliver(payload string) {
	var c kv.Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil || c.Key == "" {
		s.log.Warn("dropping malformed kv change", zap.String("payload", payload))
		return
	}
	if c.Origin == s.origin {
		return
	}
	s.watchers.Dispatch(c)
}
