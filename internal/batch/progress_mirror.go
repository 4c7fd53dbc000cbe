package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"hoops-server/internal/shared/redis"
)

const progressTTL = 1 * time.Hour

// RedisProgressMirror publishes batch progress snapshots so the read
// surface can poll without touching the orchestrator. Safe to construct
// around a nil client; every operation becomes a no-op.
type RedisProgressMirror struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisProgressMirror(client *redis.Client, logger *slog.Logger) *RedisProgressMirror {
	return &RedisProgressMirror{
		client: client,
		logger: logger,
	}
}

type ProgressSnapshot struct {
	BatchID   string    `json:"batch_id"`
	Status    Status    `json:"status"`
	Progress  Progress  `json:"progress"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WriteProgress overwrites the batch's progress snapshot.
func (m *RedisProgressMirror) WriteProgress(ctx context.Context, batchID string, status Status, progress Progress) error {
	if m == nil || m.client == nil {
		return nil
	}

	payload, err := json.Marshal(ProgressSnapshot{
		BatchID:   batchID,
		Status:    status,
		Progress:  progress,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal progress snapshot: %w", err)
	}

	if err := m.client.Set(ctx, progressKey(batchID), payload, progressTTL).Err(); err != nil {
		return fmt.Errorf("failed to write progress snapshot: %w", err)
	}

	m.logger.Debug("Batch progress mirrored",
		"component", "batch_progress_mirror", "batch_id", batchID, "status", status)
	return nil
}

// ReadProgress returns the latest mirrored snapshot, or nil on a miss
// or when the mirror is disabled.
func (m *RedisProgressMirror) ReadProgress(ctx context.Context, batchID string) (*ProgressSnapshot, error) {
	if m == nil || m.client == nil {
		return nil, nil
	}

	payload, err := m.client.Get(ctx, progressKey(batchID)).Result()
	if err != nil {
		return nil, nil
	}

	var snapshot ProgressSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal progress snapshot: %w", err)
	}
	return &snapshot, nil
}

func progressKey(batchID string) string {
	return fmt.Sprintf("batch:%s:progress", batchID)
}
