package refreshtokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const (
	tokenKeyPrefix = "rt:"
	userKeyPrefix  = "rtu:"
)

// redisRecord is the stored form of a refresh token under rt:<id>.
type redisRecord struct {
	UserID      string    `json:"user_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// RedisRepository keeps refresh tokens in Redis with a TTL matching their
// expiry. rtu:<user id> indexes the token ids of a user for DeleteByUser.
type RedisRepository struct {
	rdb redis.Cmdable
	now func() time.Time
}

func NewRedisRepository(rdb redis.Cmdable) *RedisRepository {
	return &RedisRepository{rdb: rdb, now: time.Now}
}

func (r *RedisRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	createdAt := r.now()
	b, err := json.Marshal(redisRecord{
		UserID:      token.UserID,
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
		CreatedAt:   createdAt,
	})
	if err != nil {
		return fmt.Errorf("encode refresh token: %w", err)
	}

	ttl := token.ExpiresAt.Sub(createdAt)
	if ttl < time.Second {
		ttl = time.Second
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tokenKeyPrefix+token.ID, b, ttl)
		pipe.SAdd(ctx, userKeyPrefix+token.UserID, token.ID)
		pipe.Expire(ctx, userKeyPrefix+token.UserID, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}

	token.CreatedAt = createdAt
	return nil
}

// Consume uses GETDEL, which Redis executes atomically.
func (r *RedisRepository) Consume(ctx context.Context, id string) (*models.RefreshToken, error) {
	b, err := r.rdb.GetDel(ctx, tokenKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var rec redisRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode refresh token: %w", err)
	}

	// the index entry is only a hint for DeleteByUser, losing it is harmless
	_ = r.rdb.SRem(ctx, userKeyPrefix+rec.UserID, id).Err()

	return &models.RefreshToken{
		ID:          id,
		UserID:      rec.UserID,
		AccessToken: rec.AccessToken,
		ExpiresAt:   rec.ExpiresAt,
		CreatedAt:   rec.CreatedAt,
	}, nil
}

func (r *RedisRepository) DeleteByUser(ctx context.Context, userID string) error {
	ids, err := r.rdb.SMembers(ctx, userKeyPrefix+userID).Result()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, tokenKeyPrefix+id)
	}
	keys = append(keys, userKeyPrefix+userID)

	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}
