// Command notes はメモサービスのAPIサーバーを起動する。
//
// サブコマンド:
//
//	serve        APIサーバーを起動する（デフォルト）
//	migrate      データベースマイグレーションを適用する
//	healthcheck  /health にリクエストしてコンテナのヘルスチェックを行う
package main

import (
	"fmt"
	"os"

	"github.com/jcoglan/unsafe-sjr/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "notes: %v\n", err)
		os.Exit(1)
	}
}
