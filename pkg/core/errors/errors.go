// Package errors 定义框架的通用错误类型
package errors

import (
	"errors"
	"fmt"
)

// 通用错误
var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrContextCanceled 上下文被取消
	ErrContextCanceled = errors.New("context canceled")
)

// LLM 相关错误
var (
	// ErrRateLimited 请求被限速
	ErrRateLimited = errors.New("rate limited")
	// ErrTimeout 请求超时
	ErrTimeout = errors.New("request timeout")
	// ErrInvalidAPIKey API 密钥无效
	ErrInvalidAPIKey = errors.New("invalid API key")
	// ErrModelNotFound 模型未找到
	ErrModelNotFound = errors.New("model not found")
	// ErrProviderUnavailable 提供商不可用
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrInvalidResponse LLM 响应无效
	ErrInvalidResponse = errors.New("invalid LLM response")
)

// 工具链相关错误
var (
	// ErrAdapterFailed 单个工具调用失败（同分支内降级恢复）
	ErrAdapterFailed = errors.New("tool adapter failed")
	// ErrParseFailed 意图相关的抽取失败（以描述性文本恢复，不向上抛出）
	ErrParseFailed = errors.New("query parse failed")
	// ErrInvalidExpression 算术表达式含不支持的节点
	ErrInvalidExpression = errors.New("unsupported arithmetic expression")
	// ErrNoResult 工具未返回可用结果
	ErrNoResult = errors.New("no usable tool result")
)

// 推理与评分相关错误
var (
	// ErrScoringDegenerate 嵌入或评分调用失败（以中性默认分恢复）
	ErrScoringDegenerate = errors.New("scoring degenerated to neutral default")
	// ErrNoCandidates 候选集为空（General-LLM 失败时的致命条件）
	ErrNoCandidates = errors.New("no answer candidates produced")
)

// 合规相关错误
var (
	// ErrComplianceRejected 最终文本未通过合规检查
	ErrComplianceRejected = errors.New("response rejected by compliance gate")
	// ErrAuditLogFailed 审计日志写入失败
	ErrAuditLogFailed = errors.New("audit log write failed")
)

// 存储相关错误
var (
	// ErrHistoryNotFound 历史记录不存在
	ErrHistoryNotFound = errors.New("history not found")
	// ErrEntityNotFound 实体不存在
	ErrEntityNotFound = errors.New("entity not found")
	// ErrEmptyHistory 历史为空，无消息可回收
	ErrEmptyHistory = errors.New("history is empty")
)

// WrapError 包装错误并添加上下文信息
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// IsRetryable 判断错误是否可重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrProviderUnavailable)
}

// IsFatal 判断错误是否为致命错误（不可恢复）
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrInvalidAPIKey) ||
		errors.Is(err, ErrModelNotFound) ||
		errors.Is(err, ErrInvalidConfig)
}

// IsRecoverable 判断错误是否可按降级链恢复
//
// 可恢复错误绝不终止本轮对话：适配器错误退回更窄的工具或 LLM 兜底，
// 解析错误以描述性文本返回，评分错误以中性默认分代替。
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrAdapterFailed) ||
		errors.Is(err, ErrParseFailed) ||
		errors.Is(err, ErrNoResult) ||
		errors.Is(err, ErrScoringDegenerate)
}
