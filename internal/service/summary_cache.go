package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/referral-go-api/internal/dto"
)

const summaryVersionTTL = 24 * time.Hour

var errSummaryStale = errors.New("summary cache version changed")

// SummaryCache memoises a student's per-status application counts. A nil cache is a no-op.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewSummaryCache wraps the redis client. It returns nil when client is nil.
func NewSummaryCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *SummaryCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &SummaryCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "summary_cache").Logger(),
	}
}

func summaryKey(studentID uint) string {
	return fmt.Sprintf("applications:summary:student:%d", studentID)
}

func summaryVersionKey(studentID uint) string {
	return fmt.Sprintf("applications:summary:student:%d:version", studentID)
}

// Get returns the cached counts and whether they were found.
func (c *SummaryCache) Get(ctx context.Context, studentID uint) (dto.StatusCounts, bool) {
	if c == nil {
		return dto.StatusCounts{}, false
	}

	cached, err := c.client.Get(ctx, summaryKey(studentID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to read summary cache")
		}
		return dto.StatusCounts{}, false
	}

	var counts dto.StatusCounts
	if err := json.Unmarshal([]byte(cached), &counts); err != nil {
		c.logger.Warn().Err(err).Uint("student_id", studentID).Msg("discarding malformed summary cache entry")
		return dto.StatusCounts{}, false
	}
	return counts, true
}

// Version returns the student's invalidation counter. Read it before counting and hand it to Set.
func (c *SummaryCache) Version(ctx context.Context, studentID uint) (string, bool) {
	if c == nil {
		return "", false
	}

	version, err := c.client.Get(ctx, summaryVersionKey(studentID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", true
		}
		c.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to read summary cache version")
		return "", false
	}
	return version, true
}

// Set stores the counts for the configured TTL unless an invalidation happened after version was read.
func (c *SummaryCache) Set(ctx context.Context, studentID uint, version string, counts dto.StatusCounts) {
	if c == nil {
		return
	}

	payload, err := json.Marshal(counts)
	if err != nil {
		return
	}

	versionKey := summaryVersionKey(studentID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errSummaryStale
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, summaryKey(studentID), payload, c.ttl)
			return nil
		})
		return err
	}, versionKey)

	switch {
	case err == nil:
	case errors.Is(err, errSummaryStale), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug().Uint("student_id", studentID).Msg("skipping stale summary cache write")
	default:
		c.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to store summary cache")
	}
}

// Invalidate drops the cached counts after the student's applications change and bumps the
// version so in-flight reads do not write their counts back.
func (c *SummaryCache) Invalidate(ctx context.Context, studentID uint) {
	if c == nil {
		return
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, summaryVersionKey(studentID))
		pipe.Expire(ctx, summaryVersionKey(studentID), summaryVersionTTL)
		pipe.Del(ctx, summaryKey(studentID))
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate summary cache")
	}
}
