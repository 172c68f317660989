package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
	"github.com/redis/go-redis/v9"
)

// emptyMarker is stored for pairs with no bookings so a cached empty set is distinguishable from a miss.
const emptyMarker = "-"

// Cache holds occupied-slot sets in Redis keyed by (professional, date).
type Cache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewCache(rdb redis.Cmdable, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{rdb: rdb, ttl: ttl, prefix: "occupied"}
}

func (c *Cache) key(professionalID, date string) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, professionalID, date)
}

// Get reports whether a cached set exists for the pair.
func (c *Cache) Get(ctx context.Context, professionalID, date string) (SlotSet, bool, error) {
	members, err := c.rdb.SMembers(ctx, c.key(professionalID, date)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(members) == 0 {
		return nil, false, nil
	}
	set := make(SlotSet, len(members))
	for _, m := range members {
		if m == emptyMarker {
			continue
		}
		set[model.TimeSlot(m)] = struct{}{}
	}
	return set, true, nil
}

func (c *Cache) Set(ctx context.Context, professionalID, date string, slots []model.TimeSlot) error {
	key := c.key(professionalID, date)
	members := make([]any, 0, len(slots)+1)
	members = append(members, emptyMarker)
	for _, s := range slots {
		members = append(members, string(s))
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SAdd(ctx, key, members...)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	return err
}

func (c *Cache) Invalidate(ctx context.Context, professionalID, date string) error {
	return c.rdb.Del(ctx, c.key(professionalID, date)).Err()
}
