package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/transaction"
)

type bookingRow struct {
	ID            string         `db:"id"`
	MovieID       string         `db:"movie_id"`
	SeatNumbers   pq.StringArray `db:"seat_numbers"`
	CustomerName  string         `db:"customer_name"`
	CustomerEmail string         `db:"customer_email"`
	TotalPrice    int            `db:"total_price"`
	CreatedAt     time.Time      `db:"created_at"`
	MovieTitle    string         `db:"movie_title"`
	MovieImage    string         `db:"movie_image"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	return &booking.Booking{
		ID:            r.ID,
		MovieID:       r.MovieID,
		SeatNumbers:   []string(r.SeatNumbers),
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		TotalPrice:    r.TotalPrice,
		CreatedAt:     r.CreatedAt,
		MovieTitle:    r.MovieTitle,
		MovieImage:    r.MovieImage,
	}
}

const bookingSelect = `
	SELECT b.id, b.movie_id, b.seat_numbers, b.customer_name, b.customer_email,
	       b.total_price, b.created_at, m.title AS movie_title, m.image AS movie_image
	FROM bookings b
	JOIN movies m ON m.id = b.movie_id
`

// BookingRepository は予約台帳のPostgreSQL実装
type BookingRepository struct{ db *sqlx.DB }

// NewBookingRepository はBookingRepositoryを作成する
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create は予約を追記し、座席との対応を booking_seats に記録する
// booking_seats の一意制約に違反した場合は ErrSeatUnavailable を返す
func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx, err := unwrapTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO bookings (movie_id, seat_numbers, customer_name, customer_email, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if err := sqlxTx.QueryRowContext(ctx, query,
		b.MovieID, pq.Array(b.SeatNumbers), b.CustomerName, b.CustomerEmail, b.TotalPrice, b.CreatedAt,
	).Scan(&b.ID); err != nil {
		return fmt.Errorf("予約作成に失敗: %w", err)
	}

	_, err = sqlxTx.ExecContext(ctx,
		`INSERT INTO booking_seats (booking_id, movie_id, seat_number) SELECT $1, $2, unnest($3::text[])`,
		b.ID, b.MovieID, pq.Array(b.SeatNumbers),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return seat.ErrSeatUnavailable
		}
		return fmt.Errorf("予約座席関連付けに失敗: %w", err)
	}
	return nil
}

// GetByID はIDから予約を映画タイトル・画像付きで取得する
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	var row bookingRow
	if err := r.db.GetContext(ctx, &row, bookingSelect+` WHERE b.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// ListByMovieID は映画の予約一覧を新しい順に取得する
func (r *BookingRepository) ListByMovieID(ctx context.Context, movieID string, limit, offset int) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := bookingSelect + ` WHERE b.movie_id = $1 ORDER BY b.created_at DESC, b.id LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, movieID, limit, offset); err != nil {
		if isInvalidID(err) {
			return []*booking.Booking{}, nil
		}
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	result := make([]*booking.Booking, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

var _ booking.Repository = (*BookingRepository)(nil)
