package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/movie"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/seat"
)

type foreignTx struct{}

func (foreignTx) Commit() error   { return nil }
func (foreignTx) Rollback() error { return nil }

func TestUnwrapTx(t *testing.T) {
	t.Run("他ストアのトランザクションは拒否する", func(t *testing.T) {
		_, err := unwrapTx(foreignTx{})
		assert.ErrorIs(t, err, ErrTxRequired)
	})

	t.Run("nil は拒否する", func(t *testing.T) {
		_, err := unwrapTx(nil)
		assert.ErrorIs(t, err, ErrTxRequired)

		var tx *Tx
		_, err = unwrapTx(tx)
		assert.ErrorIs(t, err, ErrTxRequired)
	})
}

// 書き込み系はDBに触れる前にトランザクションを検査する
func TestRepositories_RequireTx(t *testing.T) {
	ctx := context.Background()

	assert.ErrorIs(t, NewMovieRepository(nil).Create(ctx, foreignTx{}, movie.NewMovie("x", 1, "", "", "")), ErrTxRequired)
	assert.ErrorIs(t, NewSeatRepository(nil).CreateBulk(ctx, foreignTx{}, seat.NewSeatMap("m")), ErrTxRequired)
	assert.ErrorIs(t, NewSeatRepository(nil).MarkBooked(ctx, foreignTx{}, "m", []string{"A1"}, "b"), ErrTxRequired)
	_, err := NewMovieRepository(nil).CountForUpdate(ctx, foreignTx{})
	assert.ErrorIs(t, err, ErrTxRequired)
	_, err = NewSeatRepository(nil).LockByNumbers(ctx, foreignTx{}, "m", []string{"A1"})
	assert.ErrorIs(t, err, ErrTxRequired)
	assert.ErrorIs(t, NewBookingRepository(nil).Create(ctx, foreignTx{}, &booking.Booking{}), ErrTxRequired)
}
