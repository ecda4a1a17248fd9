package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	errx "github.com/pcbuilder-api/server/internal/core/error"
)

const (
	buildKeyPrefix  = "build:"
	userBuildsKey   = "user:%s:builds"
	allBuildsKey    = "builds:all"
	reqCountKey     = "reqlog:count:%s"
	reqRecentKey    = "reqlog:recent"
	reqRecentMax    = 999
	reqCountRetain  = 48 * time.Hour
)

// RedisBuildRepository stores saved builds as JSON values indexed by two
// time-ordered sets: one per user and one global (for admin listings).
type RedisBuildRepository struct {
	rdb *redis.Client
}

func NewRedisBuildRepository(rdb *redis.Client) *RedisBuildRepository {
	return &RedisBuildRepository{rdb: rdb}
}

func (r *RedisBuildRepository) Save(ctx context.Context, b *SavedBuild) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.SavedAt.IsZero() {
		b.SavedAt = time.Now().UTC()
	}

	data, err := json.Marshal(b)
	if err != nil {
		return errx.WrapStore(err)
	}

	score := float64(b.SavedAt.UnixNano())
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, buildKeyPrefix+b.ID, data, 0)
	pipe.ZAdd(ctx, fmt.Sprintf(userBuildsKey, b.UserID), redis.Z{Score: score, Member: b.ID})
	pipe.ZAdd(ctx, allBuildsKey, redis.Z{Score: score, Member: b.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return errx.WrapStore(err)
	}
	return nil
}

func (r *RedisBuildRepository) Get(ctx context.Context, id string) (*SavedBuild, error) {
	data, err := r.rdb.Get(ctx, buildKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	var b SavedBuild
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, errx.WrapStore(err)
	}
	return &b, nil
}

func (r *RedisBuildRepository) ListByUser(ctx context.Context, userID string) ([]*SavedBuild, error) {
	return r.listFrom(ctx, fmt.Sprintf(userBuildsKey, userID))
}

func (r *RedisBuildRepository) ListAll(ctx context.Context) ([]*SavedBuild, error) {
	return r.listFrom(ctx, allBuildsKey)
}

func (r *RedisBuildRepository) listFrom(ctx context.Context, key string) ([]*SavedBuild, error) {
	ids, err := r.rdb.ZRevRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, errx.WrapStore(err)
	}

	builds := make([]*SavedBuild, 0, len(ids))
	for _, id := range ids {
		b, err := r.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			// index entry outlived its value; skip it
			continue
		}
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	return builds, nil
}

func (r *RedisBuildRepository) Delete(ctx context.Context, id string) error {
	b, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, buildKeyPrefix+id)
	pipe.ZRem(ctx, fmt.Sprintf(userBuildsKey, b.UserID), id)
	pipe.ZRem(ctx, allBuildsKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return errx.WrapStore(err)
	}
	return nil
}
