package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/transaction"
)

// ErrTxRequired は書き込み操作に postgres のトランザクション以外が渡された
var ErrTxRequired = errors.New("postgres のトランザクションが必要です")

// Tx は sqlx.Tx を transaction.Tx として扱う
type Tx struct {
	tx *sqlx.Tx
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback は終了済みのトランザクションに対しては何もしない
func (t *Tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// TxManager は sqlx.DB 上でトランザクションを開始する
type TxManager struct {
	db   *sqlx.DB
	opts sql.TxOptions
}

// NewTxManager は READ COMMITTED で開始する TxManager を作成する
// 座席の整合性は SELECT ... FOR UPDATE と条件付き UPDATE で担保する
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db, opts: sql.TxOptions{Isolation: sql.LevelReadCommitted}}
}

func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	opts := m.opts
	tx, err := m.db.BeginTxx(ctx, &opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

func unwrapTx(tx transaction.Tx) (*sqlx.Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t == nil {
		return nil, ErrTxRequired
	}
	return t.tx, nil
}

var _ transaction.Manager = (*TxManager)(nil)
