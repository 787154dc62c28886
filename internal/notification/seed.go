package notification

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// DefaultSeed は組み込みの初期通知を返す。呼び出しごとに新しいスライスを返す。
func DefaultSeed() ([]Notification, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeed はYAMLファイルから初期通知を読み込む。
// path が空の場合は組み込みの初期通知を返す。
func LoadSeed(path string) ([]Notification, error) {
	if path == "" {
		return DefaultSeed()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("初期通知ファイルの読み込みに失敗: %w", err)
	}
	seed, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return seed, nil
}

// ParseSeed はYAMLの通知リストをデコードし、IDの一意性を検証する。
func ParseSeed(data []byte) ([]Notification, error) {
	var seed []Notification
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("初期通知のパースに失敗: %w", err)
	}

	seen := make(map[string]struct{}, len(seed))
	for i, n := range seed {
		if n.ID == "" {
			return nil, fmt.Errorf("%d件目の通知にIDがありません", i+1)
		}
		if _, ok := seen[n.ID]; ok {
			return nil, fmt.Errorf("通知IDが重複しています: %s", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	if seed == nil {
		seed = []Notification{}
	}
	return seed, nil
}
