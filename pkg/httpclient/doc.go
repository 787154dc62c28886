// Package httpclient は通知APIを呼び出すJSON HTTPクライアントを提供する。
//
// フロントエンドと同じエンドポイントをGoから呼び出すために使用する。
// 2xx以外のレスポンスは StatusError として返し、呼び出し側で
// ステータスコードを判定できるようにする。
package httpclient
