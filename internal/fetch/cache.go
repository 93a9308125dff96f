package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"attestra/internal/domain"
)

// SnapshotRetention bounds how long raw snapshots may sit in the cache. The
// inputs are confidential; the cache exists to ride out short source outages,
// not to accumulate history.
const SnapshotRetention = 5 * time.Minute

const (
	keyReserves    = "attestra:snapshot:reserves"
	keyLiabilities = "attestra:snapshot:liabilities"
)

// SnapshotCache keeps the most recent snapshots in Redis under a short TTL.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache constructs a cache with the default retention.
func NewSnapshotCache(client *redis.Client) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: SnapshotRetention}
}

// Save stores both snapshots, resetting the retention clock.
func (c *SnapshotCache) Save(ctx context.Context, reserves domain.ReserveData, liabilities domain.LiabilityData) error {
	rawReserves, err := json.Marshal(reserves)
	if err != nil {
		return fmt.Errorf("marshal reserves: %w", err)
	}
	rawLiabilities, err := json.Marshal(liabilities)
	if err != nil {
		return fmt.Errorf("marshal liabilities: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, keyReserves, rawReserves, c.ttl)
	pipe.Set(ctx, keyLiabilities, rawLiabilities, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache snapshots: %w", err)
	}
	return nil
}

// FindReserves returns the cached reserve snapshot, or an error when the key
// is missing or expired.
func (c *SnapshotCache) FindReserves(ctx context.Context) (domain.ReserveData, error) {
	raw, err := c.client.Get(ctx, keyReserves).Bytes()
	if err != nil {
		return domain.ReserveData{}, fmt.Errorf("cached reserves: %w", err)
	}
	var data domain.ReserveData
	if err := json.Unmarshal(raw, &data); err != nil {
		return domain.ReserveData{}, fmt.Errorf("decode cached reserves: %w", err)
	}
	return data, nil
}

// FindLiabilities returns the cached liability snapshot.
func (c *SnapshotCache) FindLiabilities(ctx context.Context) (domain.LiabilityData, error) {
	raw, err := c.client.Get(ctx, keyLiabilities).Bytes()
	if err != nil {
		return domain.LiabilityData{}, fmt.Errorf("cached liabilities: %w", err)
	}
	var data domain.LiabilityData
	if err := json.Unmarshal(raw, &data); err != nil {
		return domain.LiabilityData{}, fmt.Errorf("decode cached liabilities: %w", err)
	}
	return data, nil
}
