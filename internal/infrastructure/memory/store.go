// Package memory はプロセス内で完結するストア実装を提供する
// テストやローカル起動用。書き込みトランザクションは1本ずつ直列に実行される
package memory

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/movie"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/transaction"
)

var errForeignTx = errors.New("別ストアのトランザクションです")

type seatKey struct {
	movieID    string
	seatNumber string
}

// Store はカタログ・座席・予約台帳を保持する
type Store struct {
	// 書き込みトランザクションの排他（容量1のセマフォ）
	writer chan struct{}

	mu           sync.RWMutex
	movies       map[string]*movie.Movie
	movieOrder   []string
	seats        map[string]map[string]*seat.Seat // movieID -> seatNumber -> seat
	bookings     map[string]*booking.Booking
	movieBooking map[string][]string // movieID -> 予約ID（追記順）
	seatOwners   map[seatKey]string  // 座席 -> 予約ID
}

// NewStore は空のストアを作成する
func NewStore() *Store {
	return &Store{
		writer:       make(chan struct{}, 1),
		movies:       make(map[string]*movie.Movie),
		seats:        make(map[string]map[string]*seat.Seat),
		bookings:     make(map[string]*booking.Booking),
		movieBooking: make(map[string][]string),
		seatOwners:   make(map[seatKey]string),
	}
}

// Begin は書き込みトランザクションを開始する
// 他のトランザクションが終わるまで待つ。待機中に ctx が終了した場合はそのエラーを返す
func (s *Store) Begin(ctx context.Context) (transaction.Tx, error) {
	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &Tx{
		store:       s,
		movies:      make(map[string]struct{}),
		seats:       make(map[seatKey]struct{}),
		bookedSeats: make(map[seatKey]struct{}),
		ownedSeats:  make(map[seatKey]struct{}),
	}, nil
}

// Ping は常に成功する（/health 用）
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Tx はメモリストアのトランザクション
// 書き込みは Commit まで保留され、Commit 時にまとめて反映される
type Tx struct {
	store *Store

	mu   sync.Mutex
	done bool
	ops  []func(*Store)

	// このトランザクションで保留中の書き込み
	movies      map[string]struct{}
	seats       map[seatKey]struct{}
	bookedSeats map[seatKey]struct{}
	ownedSeats  map[seatKey]struct{}
}

// Commit は保留中の書き込みを反映する
func (t *Tx) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true

	t.store.mu.Lock()
	for _, op := range t.ops {
		op(t.store)
	}
	t.store.mu.Unlock()

	t.ops = nil
	<-t.store.writer
	return nil
}

// Rollback は保留中の書き込みを破棄する
func (t *Tx) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.ops = nil
	<-t.store.writer
	return nil
}

func (t *Tx) stage(op func(*Store)) {
	t.ops = append(t.ops, op)
}

// unwrap は tx がこのストアの有効なトランザクションであることを確認する
func (s *Store) unwrap(tx transaction.Tx) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok || mtx == nil {
		return nil, errors.New("トランザクションが必要です")
	}
	if mtx.store != s {
		return nil, errForeignTx
	}
	mtx.mu.Lock()
	done := mtx.done
	mtx.mu.Unlock()
	if done {
		return nil, sql.ErrTxDone
	}
	return mtx, nil
}

var _ transaction.Manager = (*Store)(nil)
