// Package rabbitmq は予約イベントを RabbitMQ のキューで配信・購読する
package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/booking"
)

const contentTypeJSON = "application/json"

// Encode はイベントをメッセージ本文に変換する
func Encode(ev booking.CreatedEvent) ([]byte, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("イベントのエンコードに失敗: %w", err)
	}
	return body, nil
}

// Decode はメッセージ本文からイベントを復元する
func Decode(body []byte) (booking.CreatedEvent, error) {
	var ev booking.CreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return booking.CreatedEvent{}, fmt.Errorf("イベントのデコードに失敗: %w", err)
	}
	if ev.BookingID == "" {
		return booking.CreatedEvent{}, fmt.Errorf("イベントのデコードに失敗: booking_id がありません")
	}
	return ev, nil
}
