package redis

import (
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/config"
)

// setupTestRedis はローカルの Redis に接続する。接続できなければスキップ
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	client, err := NewClient(&config.RedisConfig{Host: "localhost", Port: "6379"})
	if err != nil {
		t.Skip("Redis not available")
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// uniqueKey はテスト間で衝突しないキーを返す
func uniqueKey(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
