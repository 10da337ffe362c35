package cache

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NeighborCache mirrors the symmetric adjacency sets of the accepted edge
// table in Redis so neighbor counts don't hit Postgres on every profile
// view. The edge table stays the source of truth; each set is rebuilt from
// it on a miss.
type NeighborCache struct {
	rdb *redis.Client
}

func NewNeighborCache(addr string) *NeighborCache {
	return &NeighborCache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (c *NeighborCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func key(userID uuid.UUID) string {
	return "neighbors:" + userID.String()
}

// Add records the pair in both adjacency sets. SADD is idempotent, so
// replaying an accept does not duplicate members.
func (c *NeighborCache) Add(ctx context.Context, userA, userB uuid.UUID) error {
	pipe := c.rdb.Pipeline()
	pipe.SAdd(ctx, key(userA), userB.String())
	pipe.SAdd(ctx, key(userB), userA.String())
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("adding adjacency pair: %w", err)
	}
	return nil
}

func (c *NeighborCache) Remove(ctx context.Context, userA, userB uuid.UUID) error {
	pipe := c.rdb.Pipeline()
	pipe.SRem(ctx, key(userA), userB.String())
	pipe.SRem(ctx, key(userB), userA.String())
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("removing adjacency pair: %w", err)
	}
	return nil
}

// Count returns the adjacency set size. ok is false when the set is not
// present and the caller must fall back to the edge table.
func (c *NeighborCache) Count(ctx context.Context, userID uuid.UUID) (count int64, ok bool, err error) {
	exists, err := c.rdb.Exists(ctx, key(userID)).Result()
	if err != nil {
		return 0, false, err
	}
	if exists == 0 {
		return 0, false, nil
	}

	count, err = c.rdb.SCard(ctx, key(userID)).Result()
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

// Rebuild replaces a user's adjacency set with the members derived from
// the edge table. An empty member list leaves no key, which reads as a
// miss; callers handle the zero count through the fallback path.
func (c *NeighborCache) Rebuild(ctx context.Context, userID uuid.UUID, neighborIDs []uuid.UUID) error {
	pipe := c.rdb.Pipeline()
	pipe.Del(ctx, key(userID))
	if len(neighborIDs) > 0 {
		members := make([]interface{}, len(neighborIDs))
		for i, id := range neighborIDs {
			members[i] = id.String()
		}
		pipe.SAdd(ctx, key(userID), members...)
	}
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("rebuilding adjacency set: %w", err)
	}
	return nil
}

func (c *NeighborCache) Close() error {
	return c.rdb.Close()
}
