package kafka

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/ariefcatur/pandagamers-storefront/internal/logx"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler returns nil only when the message was processed and its offset
// may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r       *kafka.Reader
	workers int
	log     *zap.Logger
}

func NewConsumer(brokers []string, group string, topics []string, workers int, log *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers, log: logx.OrNop(log)}
}

// Start fetches until ctx ends. Each partition is pinned to one worker and a
// failed message is retried before anything after it, so a commit never
// moves past an unhandled offset.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	lanes := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range lanes {
		lanes[i] = make(chan kafka.Message, 256)
		wg.Add(1)
		go func(jobs <-chan kafka.Message) {
			defer wg.Done()
			for m := range jobs {
				if !c.retry(ctx, h, m) {
					continue // ctx done, drain without committing
				}
				if err := c.r.CommitMessages(ctx, m); err != nil {
					c.log.Warn("commit failed", zap.String("topic", m.Topic), zap.Error(err))
				}
			}
		}(lanes[i])
	}
	stop := func() {
		for _, l := range lanes {
			close(l)
		}
		wg.Wait()
	}

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			stop()
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case lanes[lane(m, c.workers)] <- m:
		case <-ctx.Done():
			stop()
			return nil
		}
	}
}

var (
	retryBase = 200 * time.Millisecond
	retryMax  = 10 * time.Second
)

// retry runs h until it succeeds or ctx ends; false means m was not handled.
func (c *Consumer) retry(ctx context.Context, h Handler, m kafka.Message) bool {
	wait := retryBase
	for {
		err := h(ctx, m)
		if err == nil {
			return true
		}
		c.log.Warn("handler failed, retrying",
			zap.String("topic", m.Topic), zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset), zap.Duration("backoff", wait), zap.Error(err))
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
		if wait *= 2; wait > retryMax {
			wait = retryMax
		}
	}
}

// lane maps a topic partition to a worker.
func lane(m kafka.Message, workers int) int {
	f := fnv.New32a()
	_, _ = f.Write([]byte(m.Topic))
	return int((f.Sum32() + uint32(m.Partition)) % uint32(workers))
}
