// Package guardrail 提供回复的合规检查与审计日志
package guardrail

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/easyops/studybuddy-go/pkg/core/config"
	"github.com/easyops/studybuddy-go/pkg/core/errors"
)

// Verdict 合规检查结论
type Verdict struct {
	// Compliant 是否合规
	Compliant bool
	// Reason 不合规原因，合规时为 "Compliant"
	Reason string
}

// defaultSensitiveTerms 默认敏感词表
var defaultSensitiveTerms = []string{"hate", "violence", "discriminate", "offensive"}

// defaultBiasPhrases 默认偏见短语表
var defaultBiasPhrases = []string{"better than", "superior race", "inferior"}

// Gate 合规闸门
//
// 依次执行毒性评分、敏感词匹配、偏见短语匹配，
// 任一命中即拒绝并写入审计日志。分类器缺失或失败时
// 跳过毒性检查，规则检查仍然生效。
type Gate struct {
	classifier     Classifier
	threshold      float64
	sensitiveTerms []string
	biasPhrases    []string
	auditPath      string
	logger         *slog.Logger

	mu sync.Mutex
}

// GateOption 闸门选项
type GateOption func(*Gate)

// WithClassifier 设置毒性分类器
func WithClassifier(classifier Classifier) GateOption {
	return func(g *Gate) {
		g.classifier = classifier
	}
}

// WithThreshold 设置毒性阈值
func WithThreshold(threshold float64) GateOption {
	return func(g *Gate) {
		g.threshold = threshold
	}
}

// WithSensitiveTerms 设置敏感词表
func WithSensitiveTerms(terms []string) GateOption {
	return func(g *Gate) {
		g.sensitiveTerms = terms
	}
}

// WithBiasPhrases 设置偏见短语表
func WithBiasPhrases(phrases []string) GateOption {
	return func(g *Gate) {
		g.biasPhrases = phrases
	}
}

// WithAuditLog 设置审计日志路径
func WithAuditLog(path string) GateOption {
	return func(g *Gate) {
		g.auditPath = path
	}
}

// WithLogger 设置日志器
func WithLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		g.logger = logger
	}
}

// NewGate 创建合规闸门
func NewGate(opts ...GateOption) *Gate {
	g := &Gate{
		threshold:      0.45,
		sensitiveTerms: defaultSensitiveTerms,
		biasPhrases:    defaultBiasPhrases,
		auditPath:      "guardrail_log.txt",
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// NewGateFromConfig 按配置创建合规闸门
func NewGateFromConfig(cfg config.GuardrailConfig, opts ...GateOption) *Gate {
	base := []GateOption{
		WithThreshold(cfg.ToxicityThreshold),
		WithAuditLog(cfg.AuditLogPath),
	}
	if len(cfg.SensitiveTerms) > 0 {
		base = append(base, WithSensitiveTerms(cfg.SensitiveTerms))
	}
	if len(cfg.BiasPhrases) > 0 {
		base = append(base, WithBiasPhrases(cfg.BiasPhrases))
	}

	return NewGate(append(base, opts...)...)
}

// Check 对最终回复执行合规检查
//
// 返回的 Verdict 永远可用；审计日志写入失败只记日志，不影响结论。
func (g *Gate) Check(ctx context.Context, text string) Verdict {
	if g.classifier != nil {
		score, err := g.classifier.Toxicity(ctx, text)
		if err != nil {
			g.logger.Warn("toxicity classifier unavailable, using rule checks only", "error", err)
		} else if score > g.threshold {
			g.audit(fmt.Sprintf("Toxicity %.2f above threshold", score), text)
			return Verdict{Compliant: false, Reason: "Potentially toxic content"}
		}
	}

	lower := strings.ToLower(text)

	for _, term := range g.sensitiveTerms {
		if strings.Contains(lower, term) {
			g.audit("Sensitive term: "+term, text)
			return Verdict{Compliant: false, Reason: "Response contains sensitive term: " + term}
		}
	}

	for _, phrase := range g.biasPhrases {
		if strings.Contains(lower, phrase) {
			g.audit("Bias phrase detected", text)
			return Verdict{Compliant: false, Reason: "Potential bias detected"}
		}
	}

	return Verdict{Compliant: true, Reason: "Compliant"}
}

// audit 追加一条审计记录
func (g *Gate) audit(reason, text string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	f, err := os.OpenFile(g.auditPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		g.logger.Error("audit log open failed",
			"error", errors.WrapError(errors.ErrAuditLogFailed, err.Error()))
		return
	}
	defer f.Close()

	entry := fmt.Sprintf("[%s]\n%s\n%s\n", reason, text, strings.Repeat("-", 60))
	if _, err := f.WriteString(entry); err != nil {
		g.logger.Error("audit log write failed",
			"error", errors.WrapError(errors.ErrAuditLogFailed, err.Error()))
	}
}
