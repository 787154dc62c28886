package notification

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

const (
	// StoreMemory はスライスベースのメモリストアを表す。
	StoreMemory = "memory"
	// StoreSQLite はインメモリSQLiteストアを表す。
	StoreSQLite = "sqlite"
)

// nopCloser は解放処理を持たないストア用の io.Closer。
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenStore は種類に応じたストアを生成し、初期通知を投入する。
// 返される io.Closer はサーバー停止時に呼び出す。
func OpenStore(kind string, seed []Notification, logger logrus.FieldLogger) (Store, io.Closer, error) {
	switch kind {
	case StoreMemory, "":
		s, err := NewMemoryStore(seed)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case StoreSQLite:
		s, err := NewSQLStore(seed, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("未知のストア種別です: %q", kind)
	}
}
