package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/movie"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/transaction"
)

// catalogLockKey は初期データ投入を直列化するアドバイザリロックのキー
const catalogLockKey int64 = 0x6d6f76696573

const movieColumns = `id, title, price, description, duration, image, created_at`

type movieRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Price       int       `db:"price"`
	Description string    `db:"description"`
	Duration    string    `db:"duration"`
	Image       string    `db:"image"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *movieRow) toEntity() *movie.Movie {
	return &movie.Movie{
		ID:          r.ID,
		Title:       r.Title,
		Price:       r.Price,
		Description: r.Description,
		Duration:    r.Duration,
		Image:       r.Image,
		CreatedAt:   r.CreatedAt,
	}
}

// MovieRepository は映画リポジトリのPostgreSQL実装
type MovieRepository struct {
	db *sqlx.DB
}

// NewMovieRepository はMovieRepositoryを作成する
func NewMovieRepository(db *sqlx.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// Create は新しい映画を作成する
func (r *MovieRepository) Create(ctx context.Context, tx transaction.Tx, m *movie.Movie) error {
	sqlxTx, err := unwrapTx(tx)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO movies (title, price, description, duration, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if err := sqlxTx.QueryRowContext(ctx, query,
		m.Title, m.Price, m.Description, m.Duration, m.Image, m.CreatedAt,
	).Scan(&m.ID); err != nil {
		return fmt.Errorf("映画作成に失敗: %w", err)
	}
	return nil
}

// GetByID はIDから映画を取得する
func (r *MovieRepository) GetByID(ctx context.Context, id string) (*movie.Movie, error) {
	var row movieRow
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, movie.ErrMovieNotFound
		}
		return nil, fmt.Errorf("映画取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// List は映画一覧を登録順に取得する
func (r *MovieRepository) List(ctx context.Context) ([]*movie.Movie, error) {
	var rows []movieRow
	query := `SELECT ` + movieColumns + ` FROM movies ORDER BY seq`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("映画一覧取得に失敗: %w", err)
	}
	movies := make([]*movie.Movie, len(rows))
	for i := range rows {
		movies[i] = rows[i].toEntity()
	}
	return movies, nil
}

// Count は登録済みの映画数を返す
func (r *MovieRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM movies`); err != nil {
		return 0, fmt.Errorf("映画数取得に失敗: %w", err)
	}
	return count, nil
}

// CountForUpdate はアドバイザリロックを取得してから映画数を返す
// ロックはトランザクション終了時に解放される
func (r *MovieRepository) CountForUpdate(ctx context.Context, tx transaction.Tx) (int, error) {
	sqlxTx, err := unwrapTx(tx)
	if err != nil {
		return 0, err
	}
	if _, err := sqlxTx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, catalogLockKey); err != nil {
		return 0, fmt.Errorf("カタログのロック取得に失敗: %w", err)
	}
	var count int
	if err := sqlxTx.GetContext(ctx, &count, `SELECT COUNT(*) FROM movies`); err != nil {
		return 0, fmt.Errorf("映画数取得に失敗: %w", err)
	}
	return count, nil
}

var _ movie.Repository = (*MovieRepository)(nil)
