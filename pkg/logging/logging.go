package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options はロガーの生成パラメータ。
type Options struct {
	// Level はログレベル（debug, info, warn, error）。空の場合は info。
	Level string
	// File はローテーション付きログファイルのパス。空の場合はファイル出力しない。
	File string
	// Service はログの各行に付与するサービス名。
	Service string
	// Output は標準出力の代わりに使う出力先。nil の場合は os.Stdout。
	Output io.Writer
}

// ローテーション設定。
const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

// New はOptionsに従ってlogrusロガーを生成する。
// 返されるcloseはログファイルを閉じる。ファイル出力しない場合は何もしない。
func New(opts Options) (logger *logrus.Entry, closeFn func() error, err error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		level, err = logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("ログレベルが不正です: %w", err)
		}
	}

	var out io.Writer = os.Stdout
	if opts.Output != nil {
		out = opts.Output
	}

	closeFn = func() error { return nil }
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(out, file)
		closeFn = file.Close
	}

	base := logrus.New()
	base.SetOutput(out)
	base.SetLevel(level)
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	entry := logrus.NewEntry(base)
	if opts.Service != "" {
		entry = entry.WithField("service", opts.Service)
	}
	return entry, closeFn, nil
}
