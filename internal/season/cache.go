package season

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hoops-server/internal/engine"
	"hoops-server/internal/shared/redis"
)

const finalBoxScoreTTL = 24 * time.Hour

// RedisBoxScoreCache mirrors final box scores into Redis so read-heavy
// UI polling stays off Postgres. Safe to construct around a nil client.
type RedisBoxScoreCache struct {
	client *redis.Client
}

func NewRedisBoxScoreCache(client *redis.Client) *RedisBoxScoreCache {
	return &RedisBoxScoreCache{client: client}
}

func (c *RedisBoxScoreCache) WriteFinalBoxScore(ctx context.Context, gameID int, result engine.FinalResult) error {
	if c == nil || c.client == nil {
		return nil
	}

	key := fmt.Sprintf("game:%d:boxscore", gameID)

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal box score: %w", err)
	}

	return c.client.Set(ctx, key, data, finalBoxScoreTTL).Err()
}

// ReadFinalBoxScore returns the cached result or nil on a miss.
func (c *RedisBoxScoreCache) ReadFinalBoxScore(ctx context.Context, gameID int) (*engine.FinalResult, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	key := fmt.Sprintf("game:%d:boxscore", gameID)

	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return nil, nil
	}

	var result engine.FinalResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached box score: %w", err)
	}

	return &result, nil
}
