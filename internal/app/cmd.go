package app

import (
	"fmt"
	"strconv"
)

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "migrate":
		return CommandMigrate
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}

// MigrateDirection はマイグレーションの適用方向。
type MigrateDirection string

const (
	MigrateUp   MigrateDirection = "up"
	MigrateDown MigrateDirection = "down"
)

// MigrateOptions はmigrateサブコマンドの引数。
type MigrateOptions struct {
	Direction MigrateDirection
	Steps     int // downの場合のみ使用する
}

// ParseMigrateOptions はmigrateサブコマンドに続く引数を解析する。
//
//	migrate          全ての未適用マイグレーションを適用
//	migrate up       同上
//	migrate down     直近1件をロールバック
//	migrate down N   直近N件をロールバック
func ParseMigrateOptions(args []string) (MigrateOptions, error) {
	if len(args) == 0 || args[0] == string(MigrateUp) {
		if len(args) > 1 {
			return MigrateOptions{}, fmt.Errorf("unexpected arguments for migrate up: %v", args[1:])
		}
		return MigrateOptions{Direction: MigrateUp}, nil
	}

	if args[0] != string(MigrateDown) {
		return MigrateOptions{}, fmt.Errorf("unknown migrate direction: %q", args[0])
	}

	opts := MigrateOptions{Direction: MigrateDown, Steps: 1}
	switch len(args) {
	case 1:
	case 2:
		steps, err := strconv.Atoi(args[1])
		if err != nil || steps <= 0 {
			return MigrateOptions{}, fmt.Errorf("steps must be a positive integer: %q", args[1])
		}
		opts.Steps = steps
	default:
		return MigrateOptions{}, fmt.Errorf("unexpected arguments for migrate down: %v", args[2:])
	}
	return opts, nil
}
