package index

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisStore keeps the collection as a redis list of JSON items.
type redisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a redis-backed collection store.
func NewRedisStore(addr, password string, db int, collection string) Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisStore{client: rdb, key: fmt.Sprintf("collection:%s", collection)}
}

func (s *redisStore) Append(ctx context.Context, items []IndexedChunk) error {
	if len(items) == 0 {
		return nil
	}
	vals := make([]interface{}, 0, len(items))
	for _, it := range items {
		data, err := json.Marshal(it)
		if err != nil {
			return err
		}
		vals = append(vals, data)
	}
	return s.client.RPush(ctx, s.key, vals...).Err()
}

func (s *redisStore) Items(ctx context.Context) ([]IndexedChunk, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]IndexedChunk, 0, len(raw))
	for _, r := range raw {
		var it IndexedChunk
		if err := json.Unmarshal([]byte(r), &it); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *redisStore) Reset(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
