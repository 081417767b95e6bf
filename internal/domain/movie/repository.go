package movie

import (
	"context"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/transaction"
)

// Repository は映画リポジトリのインターフェース
type Repository interface {
	// Create は新しい映画を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, movie *Movie) error

	// GetByID はIDから映画を取得する
	GetByID(ctx context.Context, id string) (*Movie, error)

	// List は映画一覧を登録順に取得する
	List(ctx context.Context) ([]*Movie, error)

	// Count は登録済みの映画数を返す
	Count(ctx context.Context) (int, error)

	// CountForUpdate はトランザクション内でカタログをロックしてから映画数を返す
	// ロックはトランザクション終了まで保持される
	CountForUpdate(ctx context.Context, tx transaction.Tx) (int, error)
}
