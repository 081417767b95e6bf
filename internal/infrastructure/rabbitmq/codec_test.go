package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/booking"
)

func sampleEvent() booking.CreatedEvent {
	b := booking.NewBooking("movie-1", []string{"A1", "A2"}, "", "", 1244)
	b.ID = "booking-1"
	b.CreatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return booking.NewCreatedEvent(b, "Inception")
}

func TestEncodeDecode(t *testing.T) {
	body, err := Encode(sampleEvent())
	require.NoError(t, err)
	assert.Contains(t, string(body), `"booking_id":"booking-1"`)
	assert.Contains(t, string(body), `"type":"booking.created"`)

	ev, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, sampleEvent(), ev)
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"JSONではない", "not json"},
		{"booking_id がない", `{"movie_id":"m"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestDispatch(t *testing.T) {
	body, err := Encode(sampleEvent())
	require.NoError(t, err)

	t.Run("デコードしたイベントをハンドラへ渡す", func(t *testing.T) {
		var got booking.CreatedEvent
		err := Dispatch(context.Background(), body, func(_ context.Context, ev booking.CreatedEvent) error {
			got = ev
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "booking-1", got.BookingID)
	})

	t.Run("ハンドラのエラーを返す", func(t *testing.T) {
		boom := errors.New("boom")
		err := Dispatch(context.Background(), body, func(context.Context, booking.CreatedEvent) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("不正な本文はハンドラを呼ばない", func(t *testing.T) {
		called := false
		err := Dispatch(context.Background(), []byte("{"), func(context.Context, booking.CreatedEvent) error {
			called = true
			return nil
		})
		assert.Error(t, err)
		assert.False(t, called)
	})
}
