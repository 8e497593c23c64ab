package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	"github.com/johnquangdev/interview-assistant/pkg/config"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func completionKey(sessionID string) string {
	return "interview:complete:" + sessionID
}

func evaluationsKey(sessionID string) string {
	return "interview:evaluations:" + sessionID
}

// CompletionLock guards interview completion across service instances
type CompletionLock struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewCompletionLock creates a lock that expires after ttl
func NewCompletionLock(client redis.Cmdable, ttl time.Duration) *CompletionLock {
	return &CompletionLock{client: client, ttl: ttl}
}

// Acquire returns false when another caller already holds the lock
func (l *CompletionLock) Acquire(ctx context.Context, sessionID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, completionKey(sessionID), time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire completion lock: %w", err)
	}
	return ok, nil
}

// Release drops the lock so a failed completion can be retried
func (l *CompletionLock) Release(ctx context.Context, sessionID string) error {
	if err := l.client.Del(ctx, completionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to release completion lock: %w", err)
	}
	return nil
}

// EvaluationCache keeps a per-session snapshot of live evaluations keyed by question text
type EvaluationCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewEvaluationCache creates a cache whose entries expire after ttl
func NewEvaluationCache(client redis.Cmdable, ttl time.Duration) *EvaluationCache {
	return &EvaluationCache{client: client, ttl: ttl}
}

// Save upserts one evaluation into the session hash
func (c *EvaluationCache) Save(ctx context.Context, sessionID string, eval entities.AnswerEvaluation) error {
	data, err := json.Marshal(eval)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}

	key := evaluationsKey(sessionID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, eval.QuestionText, data)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache evaluation: %w", err)
	}
	return nil
}

// Load returns the cached evaluations ordered by question number
func (c *EvaluationCache) Load(ctx context.Context, sessionID string) ([]entities.AnswerEvaluation, error) {
	fields, err := c.client.HGetAll(ctx, evaluationsKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load cached evaluations: %w", err)
	}

	evals := make([]entities.AnswerEvaluation, 0, len(fields))
	for field, raw := range fields {
		var eval entities.AnswerEvaluation
		if err := json.Unmarshal([]byte(raw), &eval); err != nil {
			return nil, fmt.Errorf("failed to decode cached evaluation %q: %w", field, err)
		}
		evals = append(evals, eval)
	}

	sort.SliceStable(evals, func(i, j int) bool {
		if evals[i].QuestionNumber != evals[j].QuestionNumber {
			return evals[i].QuestionNumber < evals[j].QuestionNumber
		}
		return evals[i].QuestionText < evals[j].QuestionText
	})
	return evals, nil
}

// Clear removes the session snapshot
func (c *EvaluationCache) Clear(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, evaluationsKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cached evaluations: %w", err)
	}
	return nil
}
