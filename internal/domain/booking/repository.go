package booking

import (
	"context"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/transaction"
)

// Repository は予約台帳のインターフェース（追記のみ）
type Repository interface {
	// Create は新しい予約を追記する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, booking *Booking) error

	// GetByID はIDから予約を取得する（映画タイトル付き）
	GetByID(ctx context.Context, id string) (*Booking, error)

	// ListByMovieID は映画の予約一覧を新しい順に取得する
	ListByMovieID(ctx context.Context, movieID string, limit, offset int) ([]*Booking, error)
}
