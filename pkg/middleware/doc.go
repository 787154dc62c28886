// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// パニックリカバリ、リクエストIDの付与、リクエストログ、
// CORS設定など、サービスで共通して使用するミドルウェアを含む。
package middleware
