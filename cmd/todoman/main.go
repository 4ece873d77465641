// Command todoman は個人向けTodo管理APIサーバーを起動する。
//
// 使い方:
//
//	todoman [serve]          APIサーバーを起動
//	todoman migrate [up]     未適用のマイグレーションを適用
//	todoman migrate down [N] 直近N件（既定1件）をロールバック
//	todoman healthcheck      /health に問い合わせて終了コードで結果を返す
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/todoman/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "todoman: %v\n", err)
		os.Exit(1)
	}
}
