// 通知サービスのエントリポイント。
// インメモリの通知一覧をHTTP APIとして公開する。
package main

import (
	"fmt"
	"os"

	"github.com/nao1215/notifyboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "通知サービスの実行に失敗: %v\n", err)
		os.Exit(1)
	}
}
