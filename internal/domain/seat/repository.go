package seat

import (
	"context"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/transaction"
)

// Repository は座席リポジトリのインターフェース
type Repository interface {
	// CreateBulk は複数の座席を一括作成する（トランザクション必須）
	CreateBulk(ctx context.Context, tx transaction.Tx, seats []*Seat) error

	// GetByMovieID は映画IDから座席一覧を座席番号順に取得する
	GetByMovieID(ctx context.Context, movieID string) ([]*Seat, error)

	// CountAvailableByMovieID は映画の空席数を取得する
	CountAvailableByMovieID(ctx context.Context, movieID string) (int, error)

	// LockByNumbers は指定座席を行ロックしたうえで取得する（トランザクション必須）
	// 存在しない座席番号は結果に含まれない
	LockByNumbers(ctx context.Context, tx transaction.Tx, movieID string, seatNumbers []string) ([]*Seat, error)

	// MarkBooked は空席を予約済みに更新する（トランザクション必須）
	// 1席でも更新できなければ ErrSeatUnavailable を返す
	MarkBooked(ctx context.Context, tx transaction.Tx, movieID string, seatNumbers []string, bookingID string) error
}
