package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ariefcatur/pandagamers-storefront/internal/kv"
	"github.com/ariefcatur/pandagamers-storefront/internal/logx"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	// NOTIFY channel, payload = JSON kv.Change
	channelChanges = "kv_changes"

	// pg_notify payloads are capped at 8000 bytes; bigger values are sent
	// without Value and listeners re-read the row.
	maxNotifyValue = 7000
)

var errNoListener = errors.New("store has no pool to listen on")

// DB is the part of *pgxpool.Pool used for reads and writes.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Store is a kv.Store over a single storefront_kv table.
type Store struct {
	DB       DB
	pool     *pgxpool.Pool // LISTEN connection source
	origin   string
	watchers kv.Watchers
	log      *zap.Logger
}

func NewStore(pool *pgxpool.Pool, log *zap.Logger) *Store {
	s := newStore(pool, log)
	s.pool = pool
	return s
}

func newStore(db DB, log *zap.Logger) *Store {
	return &Store{DB: db, origin: uuid.NewString(), log: logx.OrNop(log)}
}

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.DB.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS storefront_kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.DB.QueryRow(ctx, `SELECT value FROM storefront_kv WHERE key=$1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", kv.ErrNotFound
	}
	return v, err
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO storefront_kv(key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, value, time.Now().UTC()); err != nil {
		return err
	}
	if err := s.notify(ctx, tx, kv.Change{Key: key, Value: value, Origin: s.origin}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `DELETE FROM storefront_kv WHERE key=$1`, key)
	if err != nil {
		return err
	}
	if ct.RowsAffected() > 0 {
		if err := s.notify(ctx, tx, kv.Change{Key: key, Deleted: true, Origin: s.origin}); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// notify is transactional: listeners only hear about committed writes.
func (s *Store) notify(ctx context.Context, tx pgx.Tx, c kv.Change) error {
	if len(c.Value) > maxNotifyValue {
		c.Value = ""
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `SELECT pg_notify($1, $2)`, channelChanges, string(b))
	return err
}

func (s *Store) Watch(key string, fn func(kv.Change)) (stop func()) {
	return s.watchers.Add(key, fn)
}

// Listen holds one pooled connection in LISTEN mode until ctx is done.
func (s *Store) Listen(ctx context.Context) error {
	if s.pool == nil {
		return errNoListener
	}
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	if _, err := conn.Exec(ctx, "LISTEN "+channelChanges); err != nil {
		conn.Release()
		return err
	}
	go func() {
		defer conn.Release()
		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Error("kv listen stopped", zap.Error(err))
				}
				return
			}
			s.deliver(ctx, n.Payload)
		}
	}()
	return nil
}

func (s *Store) deliver(ctx context.Context, payload string) {
	var c kv.Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil || c.Key == "" {
		s.log.Warn("dropping malformed kv change", zap.String("payload", payload))
		return
	}
	if c.Origin == s.origin {
		return
	}
	if !c.Deleted && c.Value == "" {
		v, err := s.Get(ctx, c.Key)
		if err != nil {
			s.log.Warn("re-read after change failed", zap.String("key", c.Key), zap.Error(err))
			return
		}
		c.Value = v
	}
	s.watchers.Dispatch(c)
}
