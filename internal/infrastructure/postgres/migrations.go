package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/pkg/logger"
)

// RunMigrations は migrationsPath（相対パス可）のマイグレーションを最新まで適用する
func RunMigrations(db *sql.DB, migrationsPath string) error {
	dir, err := filepath.Abs(migrationsPath)
	if err != nil {
		return fmt.Errorf("マイグレーションパスの解決に失敗: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("マイグレーションドライバー作成エラー: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(dir), "postgres", driver)
	if err != nil {
		return fmt.Errorf("マイグレーションインスタンス作成エラー: %w", err)
	}

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Debug("マイグレーションは最新です")
	case err != nil:
		return fmt.Errorf("マイグレーション実行エラー: %w", err)
	}

	if version, dirty, err := m.Version(); err == nil {
		logger.Info("マイグレーション適用済み", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
	return nil
}
