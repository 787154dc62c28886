// Package notification は通知サービスの内部実装を提供する。
//
// 通知レコードをプロセス内のストアに保持し、一覧取得・個別既読・全件既読の
// HTTP APIを提供する。ストアはメモリ実装とインメモリSQLite実装を持ち、
// いずれもプロセス終了とともに破棄される。
package notification
