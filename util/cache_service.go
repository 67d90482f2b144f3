// api/util/cache_service.go

package util

import (
	"context"

	"github.com/afekalocker/ambient/api/db"
	"github.com/afekalocker/ambient/api/model"
)

type CacheService struct{}

func NewCacheService() *CacheService {
	return &CacheService{}
}

func (c *CacheService) GetObject(ctx context.Context, objectID string) (*model.Object, error) {
	return db.GetCachedObject(ctx, objectID)
}

func (c *CacheService) SetObject(ctx context.Context, obj model.Object) error {
	return db.CacheObject(ctx, &obj)
}

func (c *CacheService) DeleteObject(ctx context.Context, objectID string) error {
	return db.DeleteCachedObject(ctx, objectID)
}

func (c *CacheService) FlushObjects(ctx context.Context) error {
	return db.FlushCachedObjects(ctx)
}

func (c *CacheService) GetUser(ctx context.Context, userKey string) (*model.User, error) {
	return db.GetCachedUser(ctx, userKey)
}

func (c *CacheService) SetUser(ctx context.Context, user model.User) error {
	return db.CacheUser(ctx, &user)
}

func (c *CacheService) DeleteUser(ctx context.Context, userKey string) error {
	return db.DeleteCachedUser(ctx, userKey)
}
