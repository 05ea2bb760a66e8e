package redisStore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func (s *Store) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.client.Set(ctx, key, value, expiration).Err()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, key).Result()
	return count > 0, err
}

//set helpers back the per-user tab and chat listings

func (s *Store) SetAdd(ctx context.Context, key string, members ...string) error {
	return s.client.SAdd(ctx, key, members).Err()
}

func (s *Store) SetRemove(ctx context.Context, key string, members ...string) error {
	return s.client.SRem(ctx, key, members).Err()
}

func (s *Store) SetMembers(ctx context.Context, key string) ([]string, error) {
	return s.client.SMembers(ctx, key).Result()
}

//list helpers back the per-chat message ordering

func (s *Store) ListRange(ctx context.Context, key string) ([]string, error) {
	return s.client.LRange(ctx, key, 0, -1).Result()
}

func (s *Store) ListLen(ctx context.Context, key string) (int64, error) {
	return s.client.LLen(ctx, key).Result()
}

func (s *Store) GetInt(ctx context.Context, key string) (int64, error) {
	return s.client.Get(ctx, key).Int64()
}

// AppendRecordTx writes a record, appends its id to an ordering list and
// bumps a counter in one MULTI/EXEC block. Keeps denormalized counts equal
// to the live list length.
func (s *Store) AppendRecordTx(ctx context.Context, recordKey string, record []byte, listKey string, member string, countKey string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, recordKey, record, 0)
		pipe.RPush(ctx, listKey, member)
		pipe.Incr(ctx, countKey)
		return nil
	})
	return err
}

// TruncateRecordsTx trims an ordering list down to keepLen entries, deletes
// the dropped records and decrements the counter, all in one MULTI/EXEC
// block.
func (s *Store) TruncateRecordsTx(ctx context.Context, listKey string, keepLen int64, recordKeys []string, countKey string, removed int64) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if keepLen == 0 {
			pipe.LTrim(ctx, listKey, 1, 0)
		} else {
			pipe.LTrim(ctx, listKey, 0, keepLen-1)
		}
		if len(recordKeys) > 0 {
			pipe.Del(ctx, recordKeys...)
		}
		pipe.DecrBy(ctx, countKey, removed)
		return nil
	})
	return err
}

// DeleteAllTx removes a set of keys atomically, for chat deletion.
func (s *Store) DeleteAllTx(ctx context.Context, keys ...string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		return nil
	})
	return err
}
