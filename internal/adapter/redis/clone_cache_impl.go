package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/cloner-service/internal/entity"
	"github.com/user/cloner-service/internal/repository"
	"github.com/user/cloner-service/pkg/utils"
)

const cloneKeyPrefix = "clone:"

// CloneCacheRepoImpl provides a concrete implementation for the CloneCacheRepository interface using Redis.
type CloneCacheRepoImpl struct {
	client *redis.Client
}

var _ repository.CloneCacheRepository = (*CloneCacheRepoImpl)(nil)

// NewCloneCacheRepo creates a new instance of CloneCacheRepoImpl.
func NewCloneCacheRepo(client *redis.Client) *CloneCacheRepoImpl {
	return &CloneCacheRepoImpl{client: client}
}

// generateKey creates a consistent Redis key for a given URL by hashing it.
func generateKey(url string) string {
	return fmt.Sprintf("%s%s", cloneKeyPrefix, utils.HashURL(url))
}

func (r *CloneCacheRepoImpl) Get(ctx context.Context, url string) (*entity.CloneResult, error) {
	val, err := r.client.Get(ctx, generateKey(url)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrCacheMiss
		}
		return nil, err
	}

	var result entity.CloneResult
	if err := json.Unmarshal(val, &result); err != nil {
		return nil, fmt.Errorf("decode cached clone: %w", err)
	}
	return &result, nil
}

// Set stores the result with an expiry; SETEX is atomic.
func (r *CloneCacheRepoImpl) Set(ctx context.Context, url string, result *entity.CloneResult, ttl time.Duration) error {
	val, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return r.client.SetEx(ctx, generateKey(url), val, ttl).Err()
}

func (r *CloneCacheRepoImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
