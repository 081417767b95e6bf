package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/infrastructure/rabbitmq"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/pkg/logger"
)

// ErrMalformedEvent は監査ログに残せないイベント
var ErrMalformedEvent = errors.New("予約イベントの内容が不正です")

// EventSource は予約イベントを購読するインターフェース
type EventSource interface {
	Run(ctx context.Context, handle rabbitmq.Handler) error
}

// BookingAuditor は予約確定イベントを購読して監査ログを出力するワーカー
type BookingAuditor struct {
	source    EventSource
	log       *zap.Logger
	processed atomic.Int64
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewBookingAuditor は新しい監査ワーカーを作成。log が nil ならグローバルロガーを使う
func NewBookingAuditor(source EventSource, log *zap.Logger) *BookingAuditor {
	if log == nil {
		log = logger.Get()
	}
	return &BookingAuditor{
		source: source,
		log:    log.With(zap.String("worker", "booking_auditor")),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start は購読を開始し、ctx の終了か Stop まで戻らない
func (a *BookingAuditor) Start(ctx context.Context) {
	defer close(a.doneCh)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-a.stopCh:
			cancel()
		case <-runCtx.Done():
		}
	}()

	a.log.Info("予約監査ワーカー開始")
	if err := a.source.Run(runCtx, a.handle); err != nil && !errors.Is(err, context.Canceled) {
		a.log.Error("予約イベントの購読が異常終了", zap.Error(err))
		return
	}
	a.log.Info("予約監査ワーカー停止", zap.Int64("processed", a.Processed()))
}

// Stop は監査ワーカーを停止
func (a *BookingAuditor) Stop() {
	close(a.stopCh)
	<-a.doneCh
}

// Processed は監査済みイベント数を返す
func (a *BookingAuditor) Processed() int64 {
	return a.processed.Load()
}

func (a *BookingAuditor) handle(ctx context.Context, ev booking.CreatedEvent) error {
	if ev.Type != booking.CreatedEventType {
		return fmt.Errorf("%w: type=%q", ErrMalformedEvent, ev.Type)
	}
	if ev.BookingID == "" || len(ev.SeatNumbers) == 0 {
		return fmt.Errorf("%w: booking_id=%q seats=%d", ErrMalformedEvent, ev.BookingID, len(ev.SeatNumbers))
	}

	a.log.Info("予約確定",
		zap.String("booking_id", ev.BookingID),
		zap.String("movie_id", ev.MovieID),
		zap.String("movie_title", ev.MovieTitle),
		zap.Strings("seat_numbers", ev.SeatNumbers),
		zap.String("customer_name", ev.CustomerName),
		zap.Int("total_price", ev.TotalPrice),
		zap.Time("booked_at", ev.CreatedAt),
	)
	a.processed.Add(1)
	return nil
}
