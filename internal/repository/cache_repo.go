package repository

import (
	"context"
	"errors"
	"time"

	"github.com/user/cloner-service/internal/entity"
)

var ErrCacheMiss = errors.New("cache miss")

// CloneCacheRepository stores recent clone results keyed by normalized URL.
type CloneCacheRepository interface {
	// Get returns ErrCacheMiss when nothing is cached for the URL.
	Get(ctx context.Context, url string) (*entity.CloneResult, error)
	Set(ctx context.Context, url string, result *entity.CloneResult, ttl time.Duration) error
	Ping(ctx context.Context) error
}
