package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	logx "github.com/pcbuilder-api/server/pkg/logger"
)

// RedisRequestLog keeps a per-day request counter plus a capped list of the
// most recent request snapshots. Failures are logged and swallowed so a slow
// or unavailable log never blocks a recommendation.
type RedisRequestLog struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisRequestLog(rdb *redis.Client) *RedisRequestLog {
	return &RedisRequestLog{rdb: rdb, now: time.Now}
}

type requestSnapshot struct {
	UserID    string    `json:"user_id,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (l *RedisRequestLog) Log(ctx context.Context, userID string, payload any) {
	now := l.now().UTC()
	snap := requestSnapshot{UserID: userID, Payload: payload, Timestamp: now}
	data, err := json.Marshal(snap)
	if err != nil {
		logx.Warn().Err(err).Msg("failed to encode request snapshot")
		return
	}

	countKey := fmt.Sprintf(reqCountKey, now.Format("2006-01-02"))
	pipe := l.rdb.TxPipeline()
	pipe.Incr(ctx, countKey)
	pipe.Expire(ctx, countKey, reqCountRetain)
	pipe.LPush(ctx, reqRecentKey, data)
	pipe.LTrim(ctx, reqRecentKey, 0, reqRecentMax)
	if _, err := pipe.Exec(ctx); err != nil {
		logx.Warn().Err(err).Msg("failed to record request snapshot")
	}
}

func (l *RedisRequestLog) CountToday(ctx context.Context) (int64, error) {
	countKey := fmt.Sprintf(reqCountKey, l.now().UTC().Format("2006-01-02"))
	n, err := l.rdb.Get(ctx, countKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}
