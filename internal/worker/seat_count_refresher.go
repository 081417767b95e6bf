package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/pkg/logger"
)

// AvailabilityRefresher は全映画の空席数キャッシュを更新するインターフェース
type AvailabilityRefresher interface {
	RefreshAvailableCounts(ctx context.Context) (int, error)
}

// SeatCountRefresher は空席数キャッシュを定期的に温め直すワーカー
type SeatCountRefresher struct {
	seatService AvailabilityRefresher
	interval    time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
}

// NewSeatCountRefresher は新しいリフレッシャーを作成
func NewSeatCountRefresher(ss AvailabilityRefresher, interval time.Duration) *SeatCountRefresher {
	return &SeatCountRefresher{
		seatService: ss,
		interval:    interval,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start はリフレッシャーを開始する。起動直後に1回更新してから interval ごとに繰り返す
func (r *SeatCountRefresher) Start(ctx context.Context) {
	logger.Info("空席数リフレッシャー開始", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	r.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("空席数リフレッシャー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("空席数リフレッシャー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Stop はリフレッシャーを停止
func (r *SeatCountRefresher) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *SeatCountRefresher) refresh(ctx context.Context) {
	log := logger.Get()

	count, err := r.seatService.RefreshAvailableCounts(ctx)
	if err != nil {
		log.Error("空席数キャッシュの更新失敗", zap.Int("refreshed", count), zap.Error(err))
		return
	}
	log.Debug("空席数キャッシュを更新", zap.Int("movies", count))
}
