package repository

import (
	"context"

	"github.com/user/cloner-service/internal/entity"
)

// CloneHistoryRepository records every completed clone.
type CloneHistoryRepository interface {
	Save(ctx context.Context, record *entity.CloneRecord) error
	// ListRecent returns the newest records first.
	ListRecent(ctx context.Context, limit int) ([]*entity.CloneRecord, error)
	Ping(ctx context.Context) error
}
