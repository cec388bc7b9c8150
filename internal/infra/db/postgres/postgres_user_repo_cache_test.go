//go:build !integration

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"subscription-tracker/internal/domain"
	"subscription-tracker/internal/domain/model"
	"subscription-tracker/internal/domain/ports/repository"
)

func TestUserRepoCacheDecorator(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: "user-123", Name: "Jane", Email: "jane@example.com"}

	t.Run("FindByID should fetch from DB and set cache on miss", func(t *testing.T) {
		// Arrange
		innerRepoCalled := false
		var setKey string
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				return "", redis.Nil
			},
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				setKey = key
				return nil
			},
		}
		mockInnerRepo := &mockInnerUserRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
				innerRepoCalled = true
				return user, nil
			},
		}
		decorator := NewUserRepoCacheDecorator(mockInnerRepo, mockRedis, time.Minute)

		// Act
		result, err := decorator.FindByID(ctx, nil, "user-123")

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !innerRepoCalled {
			t.Error("inner repository should be called on a cache miss")
		}
		if setKey != "user:id:user-123" {
			t.Errorf("expected cache key user:id:user-123, got %q", setKey)
		}
		if result == nil || result.ID != "user-123" {
			t.Error("did not return the correct user from the inner repository")
		}
	})

	t.Run("FindByID should serve a cache hit without the DB", func(t *testing.T) {
		// Arrange
		cached, _ := json.Marshal(user)
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) { return string(cached), nil },
		}
		mockInnerRepo := &mockInnerUserRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
				t.Error("inner repository should not be called on a cache hit")
				return nil, nil
			},
		}

		// Act
		result, err := NewUserRepoCacheDecorator(mockInnerRepo, mockRedis, time.Minute).FindByID(ctx, nil, "user-123")

		// Assert
		if err != nil || result.Email != "jane@example.com" {
			t.Fatalf("expected cached user, got %+v, %v", result, err)
		}
	})

	t.Run("FindByID should not cache misses from the DB", func(t *testing.T) {
		mockRedis := &mockRedisClient{
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				t.Error("a not-found result must not be cached")
				return nil
			},
		}
		mockInnerRepo := &mockInnerUserRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
				return nil, domain.NotFound("user not found")
			},
		}
		_, err := NewUserRepoCacheDecorator(mockInnerRepo, mockRedis, time.Minute).FindByID(ctx, nil, "ghost")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Save should invalidate the cache key", func(t *testing.T) {
		// Arrange
		var deleted []string
		mockRedis := &mockRedisClient{
			DelFunc: func(ctx context.Context, keys ...string) error {
				deleted = append(deleted, keys...)
				return nil
			},
		}
		mockInnerRepo := &mockInnerUserRepo{
			SaveFunc: func(ctx context.Context, tx repository.Tx, u *model.User) error { return nil },
		}

		// Act
		err := NewUserRepoCacheDecorator(mockInnerRepo, mockRedis, time.Minute).Save(ctx, nil, user)

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(deleted) != 1 || deleted[0] != "user:id:user-123" {
			t.Errorf("expected user:id:user-123 to be invalidated, got %v", deleted)
		}
	})
}
