// Package history 提供对话历史与实体笔记的持久化
package history

import (
	"context"

	"github.com/easyops/studybuddy-go/pkg/core/message"
)

// Store 对话历史存储接口
type Store interface {
	// Append 追加一条消息
	Append(ctx context.Context, msg message.Message) error

	// Load 按插入顺序返回全部历史
	Load(ctx context.Context) ([]message.Message, error)

	// PopLast 移除最近一条消息
	//
	// 合规拒绝时用于撤回触发该回复的用户消息。
	PopLast(ctx context.Context) (message.Message, error)

	// Clear 清空历史
	Clear(ctx context.Context) error

	// Close 关闭存储
	Close() error
}
