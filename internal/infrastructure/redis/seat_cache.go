package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("キャッシュが見つかりません")

// SeatCache は映画ごとの空席数をキャッシュする
type SeatCache struct {
	client *redis.Client
}

// NewSeatCache は新しいSeatCacheインスタンスを作成する
func NewSeatCache(client *redis.Client) *SeatCache {
	return &SeatCache{client: client}
}

// GetAvailableCount は映画の空席数をキャッシュから取得する
func (c *SeatCache) GetAvailableCount(ctx context.Context, movieID string) (int, error) {
	val, err := c.client.Get(ctx, availableCountKey(movieID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetAvailableCount は映画の空席数をキャッシュに保存する
func (c *SeatCache) SetAvailableCount(ctx context.Context, movieID string, count int, ttl time.Duration) error {
	if err := c.client.Set(ctx, availableCountKey(movieID), count, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は映画の空席数キャッシュを削除する
func (c *SeatCache) Invalidate(ctx context.Context, movieID string) error {
	if err := c.client.Del(ctx, availableCountKey(movieID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func availableCountKey(movieID string) string {
	return fmt.Sprintf("seats:available:%s", movieID)
}
