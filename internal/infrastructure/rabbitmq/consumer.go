package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/pkg/logger"
)

const (
	prefetchCount = 50
	maxBackoff    = 30 * time.Second
)

// Handler は受信したイベントを処理する。エラーを返したメッセージは破棄される
type Handler func(ctx context.Context, ev booking.CreatedEvent) error

// Consumer は予約イベントのキューを購読する
type Consumer struct {
	url   string
	queue string
}

// NewConsumer は Consumer を作成する。接続は Run で行う
func NewConsumer(url, queue string) *Consumer {
	return &Consumer{url: url, queue: queue}
}

// Run は ctx が終了するまで購読を続ける
// 切断時は指数バックオフ（最大30秒）で再接続する
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	log := logger.Get().With(zap.String("queue", c.queue))
	backoff := time.Second
	for {
		err := c.consume(ctx, handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("予約イベントの購読が中断されました。再接続します", zap.Error(err), zap.Duration("backoff", backoff))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}

func (c *Consumer) consume(ctx context.Context, handle Handler) error {
	conn, err := dial(c.url, dialTimeout)
	if err != nil {
		return fmt.Errorf("RabbitMQ接続に失敗しました: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("チャネル作成に失敗: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		return fmt.Errorf("QoS設定に失敗: %w", err)
	}
	if err := declareQueue(ch, c.queue); err != nil {
		return err
	}

	deliveries, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("購読開始に失敗: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("配信チャネルが閉じられました")
			}
			if err := Dispatch(ctx, d.Body, handle); err != nil {
				logger.Error("予約イベントの処理に失敗", zap.String("message_id", d.MessageId), zap.Error(err))
				// 再投入するとループし続けるため破棄する
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Dispatch はメッセージ本文をデコードして handle に渡す
func Dispatch(ctx context.Context, body []byte, handle Handler) error {
	ev, err := Decode(body)
	if err != nil {
		return err
	}
	return handle(ctx, ev)
}
