package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/transaction"
)

const seatColumns = `id, movie_id, seat_number, is_booked, booked_by, booked_at, created_at`

// 1回のINSERTで送る座席数の上限（プレースホルダ数 = 3 × batchSize）
const seatInsertBatchSize = 1000

type seatRow struct {
	ID         string     `db:"id"`
	MovieID    string     `db:"movie_id"`
	SeatNumber string     `db:"seat_number"`
	IsBooked   bool       `db:"is_booked"`
	BookedBy   *string    `db:"booked_by"`
	BookedAt   *time.Time `db:"booked_at"`
	CreatedAt  time.Time  `db:"created_at"`
}

func (r *seatRow) toEntity() *seat.Seat {
	return &seat.Seat{
		ID:         r.ID,
		MovieID:    r.MovieID,
		SeatNumber: r.SeatNumber,
		IsBooked:   r.IsBooked,
		BookedBy:   r.BookedBy,
		BookedAt:   r.BookedAt,
		CreatedAt:  r.CreatedAt,
	}
}

func toSeats(rows []seatRow) []*seat.Seat {
	seats := make([]*seat.Seat, len(rows))
	for i := range rows {
		seats[i] = rows[i].toEntity()
	}
	return seats
}

// SeatRepository は座席リポジトリのPostgreSQL実装
type SeatRepository struct{ db *sqlx.DB }

// NewSeatRepository はSeatRepositoryを作成する
func NewSeatRepository(db *sqlx.DB) *SeatRepository { return &SeatRepository{db: db} }

// CreateBulk は座席をバッチ単位のマルチバリューINSERTで一括作成する
func (r *SeatRepository) CreateBulk(ctx context.Context, tx transaction.Tx, seats []*seat.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	sqlxTx, err := unwrapTx(tx)
	if err != nil {
		return err
	}

	for i := 0; i < len(seats); i += seatInsertBatchSize {
		end := i + seatInsertBatchSize
		if end > len(seats) {
			end = len(seats)
		}
		if err := r.createBatch(ctx, sqlxTx, seats[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SeatRepository) createBatch(ctx context.Context, tx *sqlx.Tx, seats []*seat.Seat) error {
	args := make([]interface{}, 0, len(seats)*3)
	placeholders := make([]string, 0, len(seats))
	for i, s := range seats {
		base := i * 3
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d)", base+1, base+2, base+3))
		args = append(args, s.MovieID, s.SeatNumber, s.CreatedAt)
	}

	query := `INSERT INTO seats (movie_id, seat_number, created_at) VALUES ` +
		strings.Join(placeholders, ", ") + ` RETURNING id`
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("座席一括作成に失敗: %w", err)
	}
	defer rows.Close()

	// RETURNING は VALUES の順で返る
	for i := 0; rows.Next(); i++ {
		if err := rows.Scan(&seats[i].ID); err != nil {
			return fmt.Errorf("座席ID取得に失敗: %w", err)
		}
	}
	return rows.Err()
}

// GetByMovieID は映画の座席一覧を座席番号順に取得する
func (r *SeatRepository) GetByMovieID(ctx context.Context, movieID string) ([]*seat.Seat, error) {
	var rows []seatRow
	query := `SELECT ` + seatColumns + ` FROM seats WHERE movie_id = $1 ORDER BY seat_number`
	if err := r.db.SelectContext(ctx, &rows, query, movieID); err != nil {
		if isInvalidID(err) {
			return []*seat.Seat{}, nil
		}
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	return toSeats(rows), nil
}

// CountAvailableByMovieID は映画の空席数を取得する
func (r *SeatRepository) CountAvailableByMovieID(ctx context.Context, movieID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM seats WHERE movie_id = $1 AND is_booked = FALSE`
	if err := r.db.GetContext(ctx, &count, query, movieID); err != nil {
		if isInvalidID(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("空席数取得に失敗: %w", err)
	}
	return count, nil
}

// LockByNumbers は指定座席を座席番号順に行ロックして取得する
// 常に同じ順序でロックするため、重なり合う予約同士でデッドロックしない
func (r *SeatRepository) LockByNumbers(ctx context.Context, tx transaction.Tx, movieID string, seatNumbers []string) ([]*seat.Seat, error) {
	sqlxTx, err := unwrapTx(tx)
	if err != nil {
		return nil, err
	}
	if len(seatNumbers) == 0 {
		return []*seat.Seat{}, nil
	}

	var rows []seatRow
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE movie_id = $1 AND seat_number = ANY($2)
		ORDER BY seat_number
		FOR UPDATE
	`
	if err := sqlxTx.SelectContext(ctx, &rows, query, movieID, pq.Array(seatNumbers)); err != nil {
		return nil, fmt.Errorf("座席ロックに失敗: %w", err)
	}
	return toSeats(rows), nil
}

// MarkBooked は空席のみを予約済みに更新する
// 更新件数が要求数に満たなければ ErrSeatUnavailable を返す
func (r *SeatRepository) MarkBooked(ctx context.Context, tx transaction.Tx, movieID string, seatNumbers []string, bookingID string) error {
	sqlxTx, err := unwrapTx(tx)
	if err != nil {
		return err
	}
	if len(seatNumbers) == 0 {
		return nil
	}

	query := `
		UPDATE seats
		SET is_booked = TRUE, booked_by = $3, booked_at = NOW()
		WHERE movie_id = $1 AND seat_number = ANY($2) AND is_booked = FALSE
	`
	result, err := sqlxTx.ExecContext(ctx, query, movieID, pq.Array(seatNumbers), bookingID)
	if err != nil {
		return fmt.Errorf("座席予約に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("座席予約に失敗: %w", err)
	}
	if int(rows) != len(seatNumbers) {
		return seat.ErrSeatUnavailable
	}
	return nil
}

var _ seat.Repository = (*SeatRepository)(nil)
