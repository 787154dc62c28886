// Package logging はサービス共通の構造化ロガーを構築する。
//
// logrusを標準出力に書き出し、ファイルが指定された場合は
// lumberjackによるローテーション付きファイルにも同じ内容を出力する。
package logging
