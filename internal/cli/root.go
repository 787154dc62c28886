// Package cli は通知サービスのコマンドラインインターフェースを提供する。
package cli

import (
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nao1215/notifyboard/internal/config"
	"github.com/nao1215/notifyboard/internal/notification"
	"github.com/nao1215/notifyboard/pkg/logging"
)

var (
	version = "dev"
	commit  = "none"
)

// flags はコマンドラインフラグの値。環境変数より優先される。
type flags struct {
	envFile string
	port    string
	store   string
	seed    string
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "notification",
		Short:         "Serve the notifications API",
		Long:          "notification serves an in-memory notifications list over HTTP: list, mark one as read, mark all as read.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return serve(cfg, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&f.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.Flags().StringVarP(&f.port, "port", "p", config.DefaultPort, "port to listen on")
	cmd.Flags().StringVar(&f.store, "store", notification.StoreMemory, "notification store (memory or sqlite)")
	cmd.Flags().StringVar(&f.seed, "seed", "", "YAML file with the initial notifications")
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}

// loadConfig は環境変数の設定に、明示指定されたフラグを上書きする。
func loadConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg, err := config.Load(f.envFile)
	if err != nil {
		return config.Config{}, err
	}

	if cmd.Flags().Changed("port") {
		cfg.Port = f.port
	}
	if cmd.Flags().Changed("store") {
		cfg.Store = f.store
	}
	if cmd.Flags().Changed("seed") {
		cfg.SeedFile = f.seed
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// app は起動に必要な部品をまとめたもの。
type app struct {
	server *notification.Server
	logger logrus.FieldLogger
	close  func()
}

// buildApp は設定からロガー・ストア・サーバーを組み立てる。
func buildApp(cfg config.Config, out io.Writer) (*app, error) {
	logger, closeLog, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Service: "notification",
		Output:  out,
	})
	if err != nil {
		return nil, err
	}

	seed, err := notification.LoadSeed(cfg.SeedFile)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("初期通知の読み込みに失敗: %w", err)
	}

	store, closeStore, err := notification.OpenStore(cfg.Store, seed, logger)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("ストアの初期化に失敗: %w", err)
	}

	gin.SetMode(cfg.GinMode)
	server := notification.NewServer(store, notification.ServerConfig{
		Port:           cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
	}, logger)

	return &app{
		server: server,
		logger: logger,
		close: func() {
			if err := closeStore.Close(); err != nil {
				logger.WithError(err).Warn("ストアのクローズに失敗")
			}
			_ = closeLog()
		},
	}, nil
}

// serve はサーバーを組み立てて起動する。起動バナーを out に表示する。
func serve(cfg config.Config, out io.Writer) error {
	a, err := buildApp(cfg, out)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Fprintf(out, "Notification server running on http://localhost:%s\n", cfg.Port)
	a.logger.WithFields(logrus.Fields{
		"port":  cfg.Port,
		"store": cfg.Store,
	}).Info("通知サービスを起動します")

	if err := a.server.Run(); err != nil {
		return fmt.Errorf("通知サービスの起動に失敗: %w", err)
	}
	return nil
}
