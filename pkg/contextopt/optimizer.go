package contextopt

import (
	"sort"

	"github.com/easyops/studybuddy-go/pkg/core/config"
	"github.com/easyops/studybuddy-go/pkg/core/message"
)

// Optimizer 上下文窗口优化器
//
// 给定查询和完整历史，构建一份有界、去重的上下文切片：
// 最近 K 条消息与按词面重叠取出的前 M 条相关消息合并后，
// 按"最近在前、相关在后"的顺序前缀贪心地装入 Token 预算。
// 规范历史从不被修改；输出是新的有序副本。
type Optimizer struct {
	counter     TokenCounter
	maxTokens   int
	maxRecent   int
	maxRelevant int
}

// OptimizerOption 配置 Optimizer。
type OptimizerOption func(*Optimizer)

// WithTokenCounter 设置 Token 计数器。
func WithTokenCounter(counter TokenCounter) OptimizerOption {
	return func(o *Optimizer) {
		o.counter = counter
	}
}

// WithMaxTokens 设置上下文 Token 预算。
func WithMaxTokens(n int) OptimizerOption {
	return func(o *Optimizer) {
		o.maxTokens = n
	}
}

// WithMaxRecent 设置保留的最近消息条数。
func WithMaxRecent(n int) OptimizerOption {
	return func(o *Optimizer) {
		o.maxRecent = n
	}
}

// WithMaxRelevant 设置相关消息条数上限。
func WithMaxRelevant(n int) OptimizerOption {
	return func(o *Optimizer) {
		o.maxRelevant = n
	}
}

// NewOptimizer 创建上下文窗口优化器。
func NewOptimizer(opts ...OptimizerOption) *Optimizer {
	o := &Optimizer{
		maxTokens:   3000,
		maxRecent:   3,
		maxRelevant: 3,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.counter == nil {
		o.counter = DefaultTokenCounter()
	}

	return o
}

// FromConfig 从配置创建 Optimizer。
func FromConfig(cfg config.ContextConfig) *Optimizer {
	opts := []OptimizerOption{
		WithMaxTokens(cfg.MaxTokens),
		WithMaxRecent(cfg.MaxRecent),
		WithMaxRelevant(cfg.MaxRelevant),
	}

	if cfg.Model != "" {
		if counter, err := NewTiktokenCounter(WithModel(cfg.Model)); err == nil {
			opts = append(opts, WithTokenCounter(counter))
		}
	}

	return NewOptimizer(opts...)
}

// Optimize 构建优化后的上下文切片。
//
// 结果满足两条不变式：对相同输入幂等；返回消息的
// Token 估算之和不超过配置的预算。
func (o *Optimizer) Optimize(query string, history []message.Message) []message.Message {
	recent := o.recentMessages(history)
	relevant := o.relevantMessages(query, history)

	// 按内容去重，最近在前、相关在后，首次出现者保留
	seen := make(map[string]struct{}, len(recent)+len(relevant))
	combined := make([]message.Message, 0, len(recent)+len(relevant))

	for _, msg := range append(recent, relevant...) {
		if _, ok := seen[msg.Content]; ok {
			continue
		}
		seen[msg.Content] = struct{}{}
		combined = append(combined, msg)
	}

	// 前缀贪心打包：遇到第一条放不下的消息即停，
	// 不做全局最优，也不跳过中间消息
	total := 0
	window := make([]message.Message, 0, len(combined))
	for _, msg := range combined {
		cost := o.counter.Count(msg.Content)
		if total+cost > o.maxTokens {
			break
		}
		window = append(window, msg)
		total += cost
	}

	return window
}

// recentMessages 返回历史末尾最多 maxRecent 条消息的副本。
func (o *Optimizer) recentMessages(history []message.Message) []message.Message {
	start := len(history) - o.maxRecent
	if start < 0 {
		start = 0
	}

	recent := make([]message.Message, len(history)-start)
	copy(recent, history[start:])
	return recent
}

// relevantMessages 返回与查询词面重叠最高的至多 maxRelevant 条消息。
//
// 零重叠的消息被排除；重叠相同时按原始顺序优先。
func (o *Optimizer) relevantMessages(query string, history []message.Message) []message.Message {
	type scored struct {
		index   int
		overlap int
	}

	var candidates []scored
	for i, msg := range history {
		overlap := OverlapCount(query, msg.Content)
		if overlap > 0 {
			candidates = append(candidates, scored{index: i, overlap: overlap})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].overlap > candidates[j].overlap
	})

	if len(candidates) > o.maxRelevant {
		candidates = candidates[:o.maxRelevant]
	}

	result := make([]message.Message, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, history[c.index])
	}
	return result
}

// Counter 返回优化器使用的 Token 计数器。
func (o *Optimizer) Counter() TokenCounter {
	return o.counter
}

// Budget 返回配置的 Token 预算。
func (o *Optimizer) Budget() int {
	return o.maxTokens
}
