package notification

import (
	"context"
	"errors"
)

// ErrNotFound は指定されたIDの通知が存在しないことを表す。
var ErrNotFound = errors.New("notification not found")

// Notification はユーザーに表示する通知レコード。
type Notification struct {
	// ID は通知の一意識別子。
	ID string `json:"id" yaml:"id"`
	// Type は通知の種類（reminder, update, alert, success など自由形式）。
	Type string `json:"type" yaml:"type"`
	// Title は通知のタイトル。
	Title string `json:"title" yaml:"title"`
	// Message は通知メッセージ。
	Message string `json:"message" yaml:"message"`
	// Time は「30 mins ago」のような人間向けの相対時刻表記。
	Time string `json:"time" yaml:"time"`
	// Read は通知の既読状態。
	Read bool `json:"read" yaml:"read"`
}

// Store は通知コレクションを所有するストア。
// 実装は並行呼び出しに対して安全でなければならない。
type Store interface {
	// List は全通知を挿入順で返す。返されるスライスはストアと共有されない。
	List(ctx context.Context) ([]Notification, error)
	// MarkRead は指定IDの通知を既読にする。該当がなければ ErrNotFound を返す。
	MarkRead(ctx context.Context, id string) error
	// MarkAllRead は全通知を既読にする。
	MarkAllRead(ctx context.Context) error
}
