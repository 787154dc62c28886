package notification

import (
	"context"
	"database/sql"
	"embed"

	"github.com/sirupsen/logrus"

	"github.com/nao1215/notifyboard/pkg/migration"
)

//go:embed migrations
var migrationsFS embed.FS

// initSchema はマイグレーションを実行して通知テーブルを作成する。
func initSchema(ctx context.Context, db *sql.DB, logger logrus.FieldLogger) error {
	_, err := migration.Run(ctx, db, migrationsFS, "migrations", logger)
	return err
}
