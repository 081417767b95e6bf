package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/movie"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/transaction"
)

// MovieRepository は映画リポジトリのメモリ実装
type MovieRepository struct {
	store *Store
}

// NewMovieRepository はMovieRepositoryを作成する
func NewMovieRepository(store *Store) *MovieRepository {
	return &MovieRepository{store: store}
}

// Create は映画を追加する（Commit 時に反映）
func (r *MovieRepository) Create(ctx context.Context, tx transaction.Tx, m *movie.Movie) error {
	mtx, err := r.store.unwrap(tx)
	if err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	mtx.movies[m.ID] = struct{}{}

	cp := *m
	mtx.stage(func(s *Store) {
		s.movies[cp.ID] = &cp
		s.movieOrder = append(s.movieOrder, cp.ID)
	})
	return nil
}

// GetByID はIDから映画を取得する
func (r *MovieRepository) GetByID(ctx context.Context, id string) (*movie.Movie, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.movies[id]
	if !ok {
		return nil, movie.ErrMovieNotFound
	}
	cp := *m
	return &cp, nil
}

// List は映画一覧を登録順に取得する
func (r *MovieRepository) List(ctx context.Context) ([]*movie.Movie, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	movies := make([]*movie.Movie, 0, len(r.store.movieOrder))
	for _, id := range r.store.movieOrder {
		cp := *r.store.movies[id]
		movies = append(movies, &cp)
	}
	return movies, nil
}

// Count は登録済みの映画数を返す
func (r *MovieRepository) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.movies), nil
}

// CountForUpdate は保留中の追加を含めた映画数を返す
// 書き込みトランザクションは1本ずつなので追加のロックは不要
func (r *MovieRepository) CountForUpdate(ctx context.Context, tx transaction.Tx) (int, error) {
	mtx, err := r.store.unwrap(tx)
	if err != nil {
		return 0, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.movies) + len(mtx.movies), nil
}

var _ movie.Repository = (*MovieRepository)(nil)
