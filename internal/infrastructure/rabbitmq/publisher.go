package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/booking"
)

// reconnectInterval は再接続に失敗してから次に試すまでの間隔
const reconnectInterval = 5 * time.Second

// ErrPublisherUnavailable は再接続待ちの間に送信しようとした場合のエラー
var ErrPublisherUnavailable = errors.New("RabbitMQ に接続できないため送信を見送りました")

// Publisher は予約イベントを永続キューへ送信する
// 接続とチャネルを使い回し、切断されていれば次回送信時に張り直す
// 再接続に失敗した後の reconnectInterval の間はブローカーへ接続せずに失敗する
type Publisher struct {
	url         string
	queue       string
	dialTimeout time.Duration
	retryAfter  time.Duration
	now         func() time.Time

	mu         sync.Mutex
	conn       *amqp.Connection
	ch         *amqp.Channel
	nextDialAt time.Time
}

// NewPublisher はブローカーへ接続し、キューを宣言する
func NewPublisher(url, queue string) (*Publisher, error) {
	p := newPublisher(url, queue)
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func newPublisher(url, queue string) *Publisher {
	return &Publisher{
		url:         url,
		queue:       queue,
		dialTimeout: dialTimeout,
		retryAfter:  reconnectInterval,
		now:         time.Now,
	}
}

// connect は mu を保持した状態か、初期化時にのみ呼ぶ
func (p *Publisher) connect() error {
	conn, err := dial(p.url, p.dialTimeout)
	if err != nil {
		return fmt.Errorf("RabbitMQ接続に失敗しました: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("チャネル作成に失敗: %w", err)
	}
	if err := declareQueue(ch, p.queue); err != nil {
		ch.Close()
		conn.Close()
		return err
	}
	p.conn, p.ch = conn, ch
	return nil
}

func declareQueue(ch *amqp.Channel, queue string) error {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("キュー宣言に失敗: %w", err)
	}
	return nil
}

// Publish は予約確定イベントを送信する
func (p *Publisher) Publish(ctx context.Context, ev booking.CreatedEvent) error {
	body, err := Encode(ev)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		if p.now().Before(p.nextDialAt) {
			return ErrPublisherUnavailable
		}
		p.closeLocked()
		if err := p.connect(); err != nil {
			p.nextDialAt = p.now().Add(p.retryAfter)
			return err
		}
	}

	msg := amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.BookingID,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("イベント送信に失敗: %w", err)
	}
	return nil
}

// Close は接続を閉じる
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *Publisher) closeLocked() error {
	var errs []error
	if p.ch != nil && !p.ch.IsClosed() {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil && !p.conn.IsClosed() {
		errs = append(errs, p.conn.Close())
	}
	p.ch, p.conn = nil, nil
	return errors.Join(errs...)
}
