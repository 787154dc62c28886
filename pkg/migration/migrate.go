// Package migration はSQLiteデータベースのマイグレーションを管理する。
// fs.FS上の NNNNNN_name.up.sql を番号順に適用し、schema_migrations に記録する。
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const upSuffix = ".up.sql"

// step は適用対象の1マイグレーション。
type step struct {
	version int
	name    string
	file    string
}

// Run は dir 配下の未適用マイグレーションを番号順に適用し、適用したバージョンを返す。
// 各マイグレーションは個別のトランザクションで実行され、失敗した時点で中断する。
func Run(ctx context.Context, db *sql.DB, fsys fs.FS, dir string, logger logrus.FieldLogger) ([]int, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return nil, fmt.Errorf("マイグレーション管理テーブルの作成に失敗: %w", err)
	}

	done, err := appliedVersions(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("適用済みバージョンの取得に失敗: %w", err)
	}

	steps, err := pendingSteps(fsys, dir, done)
	if err != nil {
		return nil, fmt.Errorf("マイグレーションファイルの収集に失敗: %w", err)
	}

	applied := make([]int, 0, len(steps))
	for _, s := range steps {
		if err := apply(ctx, db, fsys, s); err != nil {
			return applied, fmt.Errorf("マイグレーション %06d_%s の適用に失敗: %w", s.version, s.name, err)
		}
		applied = append(applied, s.version)
		logger.WithFields(logrus.Fields{
			"version": s.version,
			"name":    s.name,
		}).Info("マイグレーションを適用しました")
	}
	return applied, nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[int]struct{}, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	versions := make(map[int]struct{})
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions[v] = struct{}{}
	}
	return versions, rows.Err()
}

// pendingSteps は未適用の up.sql をバージョン昇順で返す。
// 命名規則に合わないファイルは無視する。
func pendingSteps(fsys fs.FS, dir string, done map[int]struct{}) ([]step, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var steps []step
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version, name, ok := parseFileName(entry.Name())
		if !ok {
			continue
		}
		if _, seen := done[version]; seen {
			continue
		}
		steps = append(steps, step{version: version, name: name, file: path.Join(dir, entry.Name())})
	}

	slices.SortFunc(steps, func(a, b step) int { return a.version - b.version })
	return steps, nil
}

// parseFileName は "000001_create_table.up.sql" をバージョンと名前に分解する。
func parseFileName(fileName string) (int, string, bool) {
	base, ok := strings.CutSuffix(fileName, upSuffix)
	if !ok {
		return 0, "", false
	}
	num, name, ok := strings.Cut(base, "_")
	if !ok {
		return 0, "", false
	}
	version, err := strconv.Atoi(num)
	if err != nil {
		return 0, "", false
	}
	return version, name, true
}

// apply は1つのマイグレーションを実行し、バージョンを同じトランザクションで記録する。
func apply(ctx context.Context, db *sql.DB, fsys fs.FS, s step) error {
	script, err := fs.ReadFile(fsys, s.file)
	if err != nil {
		return fmt.Errorf("ファイル読み込みに失敗: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, string(script)); err != nil {
		return fmt.Errorf("SQL実行に失敗: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, s.version); err != nil {
		return fmt.Errorf("バージョン記録に失敗: %w", err)
	}
	return tx.Commit()
}
