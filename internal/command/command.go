package command

import "context"

// Command 可撤销操作
// Execute 失败的命令仍会被调用方压栈，其 Undo 必须能够安全地处理
// 未产生任何效果的情况
type Command interface {
	// Execute 执行操作
	Execute(ctx context.Context) error

	// Undo 撤销操作的效果
	Undo(ctx context.Context) error

	// Describe 返回操作的简短描述，用于审计
	Describe() string
}
