package command

import (
	"context"
	"errors"
	"sync"
)

// 撤销相关错误
var (
	// ErrNothingToUndo 历史栈为空
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrUndoUnsupported 该命令的效果无法恢复
	ErrUndoUnsupported = errors.New("undo not supported for this command")
)

// Invoker 命令执行器，维护后进先出的撤销历史
// 失败的命令同样入栈，调用方可以据此撤销部分生效的操作
type Invoker struct {
	mu      sync.Mutex
	history []Command
}

// NewInvoker 创建空历史的执行器
func NewInvoker() *Invoker {
	return &Invoker{}
}

// Execute 执行命令并压入历史栈
func (inv *Invoker) Execute(ctx context.Context, cmd Command) error {
	err := cmd.Execute(ctx)

	inv.mu.Lock()
	inv.history = append(inv.history, cmd)
	inv.mu.Unlock()

	return err
}

// UndoLast 弹出最近一条命令并撤销
// 撤销失败时命令不会回到栈上
func (inv *Invoker) UndoLast(ctx context.Context) error {
	inv.mu.Lock()
	if len(inv.history) == 0 {
		inv.mu.Unlock()
		return ErrNothingToUndo
	}
	cmd := inv.history[len(inv.history)-1]
	inv.history = inv.history[:len(inv.history)-1]
	inv.mu.Unlock()

	return cmd.Undo(ctx)
}

// Depth 返回历史栈深度
func (inv *Invoker) Depth() int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return len(inv.history)
}
