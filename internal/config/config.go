// Package config は通知サービスの設定を環境変数と .env ファイルから読み込む。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/nao1215/notifyboard/internal/notification"
	"github.com/nao1215/notifyboard/pkg/middleware"
)

// DefaultPort はサーバーのデフォルトのリッスンポート。
const DefaultPort = "5001"

// Config は通知サービスの設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string
	// Store はストアの種類（memory または sqlite）。
	Store string
	// SeedFile は初期通知を読み込むYAMLファイル。空の場合は組み込みの初期通知を使う。
	SeedFile string
	// AllowedOrigins はCORSで許可するオリジン。
	AllowedOrigins []string
	// LogLevel はログレベル。
	LogLevel string
	// LogFile はローテーション付きログファイルのパス。
	LogFile string
	// GinMode はGinの動作モード（debug, release, test）。
	GinMode string
}

// Default はデフォルト設定を返す。
func Default() Config {
	return Config{
		Port:           DefaultPort,
		Store:          notification.StoreMemory,
		AllowedOrigins: []string{middleware.AllowAllOrigins},
		LogLevel:       "info",
		GinMode:        "release",
	}
}

// Load は .env ファイル（存在する場合）と環境変数から設定を読み込む。
// 未設定の項目にはデフォルト値を使う。
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%s の読み込みに失敗: %w", envFile, err)
		}
	}

	cfg := Default()
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Store = getEnv("NOTIFICATION_STORE", cfg.Store)
	cfg.SeedFile = getEnv("NOTIFICATION_SEED_FILE", cfg.SeedFile)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate は設定値を検証する。
func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("ポート番号が不正です: %q", c.Port)
	}

	switch c.Store {
	case notification.StoreMemory, notification.StoreSQLite:
	default:
		return fmt.Errorf("未知のストア種別です: %q (memory または sqlite)", c.Store)
	}

	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("Ginの動作モードが不正です: %q", c.GinMode)
	}

	if len(c.AllowedOrigins) == 0 {
		return errors.New("CORSで許可するオリジンが1つもありません")
	}
	return nil
}

// getEnv は環境変数を取得し、未設定の場合はfallbackを返す。
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList はカンマ区切りの文字列を空要素を除いて分割する。
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
