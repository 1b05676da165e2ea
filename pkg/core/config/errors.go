package config

import "errors"

// 配置验证相关错误
var (
	// ErrUnknownProvider 未知的 LLM 提供商
	ErrUnknownProvider = errors.New("unknown LLM provider")
	// ErrMissingAPIKey 缺少 API 密钥
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrNegativeWeight 评分权重为负
	ErrNegativeWeight = errors.New("scorer weight must not be negative")
	// ErrWeightSumExceeded 评分权重之和超过 1.0
	ErrWeightSumExceeded = errors.New("scorer weights must sum to at most 1.0")
)
