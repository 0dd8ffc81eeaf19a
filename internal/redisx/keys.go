package redisx

import "time"

const (
	// Change feed for kv.Store writes: JSON kv.Change
	ChannelChanges = "kv:changes"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLDedup = 48 * time.Hour
)
