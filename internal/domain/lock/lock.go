package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotAcquired は他の処理がロックを保持していることを示す
var ErrNotAcquired = errors.New("ロックを取得できませんでした")

// Lock は取得済みの排他ロック
type Lock interface {
	// Release はロックを解放する
	Release(ctx context.Context) error
}

// Manager は排他ロックを払い出すインターフェース
// 予約の正しさはストアのトランザクションで担保し、ロックは競合の事前抑止にのみ使う
type Manager interface {
	// AcquireLockWithRetry はリトライ付きでロックを取得する
	AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (Lock, error)
}
