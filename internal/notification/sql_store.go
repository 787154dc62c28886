package notification

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLStore はインメモリSQLiteで通知を保持するストア。
// データベースはプロセス内にのみ存在し、Close またはプロセス終了で破棄される。
type SQLStore struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore はインメモリSQLiteを開き、スキーマ適用と初期レコード投入を行う。
func NewSQLStore(seed []Notification, logger logrus.FieldLogger) (*SQLStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	// :memory: は接続ごとに別のデータベースになるため、接続を1本に固定する
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(0)
	db.SetConnMaxLifetime(0)

	if err := initSchema(context.Background(), db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	s := &SQLStore{db: db}
	if err := s.insertSeed(seed); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// insertSeed は初期レコードを1トランザクションで投入する。
func (s *SQLStore) insertSeed(seed []Notification) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, n := range seed {
		if n.ID == "" {
			return fmt.Errorf("通知IDが空です: title=%q", n.Title)
		}
		if _, err := tx.Exec(
			`INSERT INTO notifications (id, type, title, message, display_time, is_read) VALUES (?, ?, ?, ?, ?, ?)`,
			n.ID, n.Type, n.Title, n.Message, n.Time, boolToInt(n.Read),
		); err != nil {
			return fmt.Errorf("通知 %s の投入に失敗: %w", n.ID, err)
		}
	}
	return tx.Commit()
}

// Close はデータベース接続を閉じる。保持していた通知はすべて失われる。
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// List は全通知を挿入順で返す。
func (s *SQLStore) List(ctx context.Context) ([]Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, title, message, display_time, is_read FROM notifications ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("通知一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	notifications := []Notification{}
	for rows.Next() {
		var (
			n      Notification
			isRead int
		)
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.Time, &isRead); err != nil {
			return nil, fmt.Errorf("通知行の読み取りに失敗: %w", err)
		}
		n.Read = isRead != 0
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("通知一覧の走査に失敗: %w", err)
	}
	return notifications, nil
}

// MarkRead は指定IDの通知を既読にする。
func (s *SQLStore) MarkRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("通知の既読処理に失敗: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新件数の取得に失敗: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead は全通知を既読にする。
func (s *SQLStore) MarkAllRead(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1`); err != nil {
		return fmt.Errorf("全通知の既読処理に失敗: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
