package reasoning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/easyops/studybuddy-go/pkg/core/config"
	"github.com/easyops/studybuddy-go/pkg/core/llm"
	"github.com/easyops/studybuddy-go/pkg/core/message"
	"github.com/easyops/studybuddy-go/pkg/guardrail"
	"github.com/easyops/studybuddy-go/pkg/persona"
	"github.com/easyops/studybuddy-go/pkg/toolchain"
)

// realTimeGapMarker 答案自述缺乏实时信息的标记
const realTimeGapMarker = "i don't have real-time"

// gradeHysteresis 决断滞后：替代候选评分须高出工具候选 1 分以上才换
const gradeHysteresis = 1.0

// refusalFormat 合规拒绝时的用户可见文本
const refusalFormat = "Sorry, I can't provide that response due to ethical concerns (%s). " +
	"Please rephrase your question."

// responseFormat 最终回复格式
const responseFormat = "Response (via %s, confidence %.2f):\n%s"

// Input 一次推理请求
type Input struct {
	// Query 用户问题
	Query string
	// Context 经上下文优化后的历史消息
	Context []message.Message
	// RAGNotes 检索到的相关笔记
	RAGNotes string
	// Tool 工具链输出
	Tool toolchain.ToolResult
	// UserLevel 用户水平，空值时自动推断
	UserLevel persona.Level
}

// Result 一次推理的结论
type Result struct {
	// Text 最终用户可见文本（含格式前缀或拒绝说明）
	Text string
	// Answer 选中并纠错后的原始答案
	Answer string
	// Strategy 胜出策略
	Strategy Strategy
	// Score 胜出候选的置信度
	Score float64
	// Compliant 是否通过合规检查
	Compliant bool
	// Reason 合规结论说明
	Reason string
}

// Framework 推理管线
//
// 阶段固定：生成候选、评分、决断、实时信息回退、
// 工具候选对比决断、自我纠错、合规闸门。
type Framework struct {
	provider  llm.Provider
	generator *Generator
	scorer    *Scorer
	corrector *SelfCorrector
	persona   *persona.Builder
	gate      *guardrail.Gate
	logger    *slog.Logger
}

// FrameworkOption 推理管线选项
type FrameworkOption func(*frameworkConfig)

type frameworkConfig struct {
	embedder   llm.Provider
	persona    *persona.Builder
	gate       *guardrail.Gate
	scorer     config.ScorerConfig
	correction config.CorrectionConfig
	logger     *slog.Logger
}

// WithEmbedder 设置嵌入模型提供者
func WithEmbedder(embedder llm.Provider) FrameworkOption {
	return func(c *frameworkConfig) {
		c.embedder = embedder
	}
}

// WithPersona 设置提示词构建器
func WithPersona(builder *persona.Builder) FrameworkOption {
	return func(c *frameworkConfig) {
		c.persona = builder
	}
}

// WithGate 设置合规闸门
func WithGate(gate *guardrail.Gate) FrameworkOption {
	return func(c *frameworkConfig) {
		c.gate = gate
	}
}

// WithScorerConfig 设置评分权重
func WithScorerConfig(cfg config.ScorerConfig) FrameworkOption {
	return func(c *frameworkConfig) {
		c.scorer = cfg
	}
}

// WithCorrectionConfig 设置自检阈值
func WithCorrectionConfig(cfg config.CorrectionConfig) FrameworkOption {
	return func(c *frameworkConfig) {
		c.correction = cfg
	}
}

// WithLogger 设置日志器
func WithLogger(logger *slog.Logger) FrameworkOption {
	return func(c *frameworkConfig) {
		c.logger = logger
	}
}

// NewFramework 创建推理管线
func NewFramework(provider llm.Provider, opts ...FrameworkOption) *Framework {
	cfg := &frameworkConfig{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.persona == nil {
		personaOpts := []persona.BuilderOption{persona.WithLogger(cfg.logger)}
		if cfg.embedder != nil {
			personaOpts = append(personaOpts, persona.WithEmbedder(cfg.embedder))
		}
		cfg.persona = persona.NewBuilder(personaOpts...)
	}
	if cfg.gate == nil {
		cfg.gate = guardrail.NewGate(guardrail.WithLogger(cfg.logger))
	}

	return &Framework{
		provider:  provider,
		generator: NewGenerator(provider, cfg.logger),
		scorer:    NewScorer(cfg.embedder, cfg.scorer, cfg.logger),
		corrector: NewSelfCorrector(provider, cfg.correction, cfg.logger),
		persona:   cfg.persona,
		gate:      cfg.gate,
		logger:    cfg.logger,
	}
}

// ReasonedAnswer 执行完整推理管线并返回最终结论
//
// 仅当候选生成整体失败时返回 error；合规拒绝不是错误，
// 体现在 Result.Compliant 上。
func (f *Framework) ReasonedAnswer(ctx context.Context, in Input) (Result, error) {
	systemPrompt := f.persona.BuildSystemPrompt(ctx, in.Query, in.UserLevel)

	candidates, err := f.generator.Generate(ctx, systemPrompt, in.Query, in.Context, in.RAGNotes, in.Tool)
	if err != nil {
		return Result{}, err
	}

	convContext := message.JoinContents(in.Context, "\n")
	f.scoreAll(ctx, candidates, in.Query, convContext)

	best := selectBest(candidates)
	f.logger.Info("best candidate selected",
		"strategy", string(candidates[best].Strategy), "score", candidates[best].Score)

	best = f.realTimeOverride(candidates, best)
	best = f.toolTieBreak(ctx, candidates, best, in.Query)

	winner := candidates[best]
	answer := f.selfCorrect(ctx, systemPrompt, in.Query, winner, in.Context)

	return f.enforceCompliance(ctx, winner, answer), nil
}

// scoreAll 为全部候选打分
func (f *Framework) scoreAll(ctx context.Context, candidates []Candidate, query, convContext string) {
	for i := range candidates {
		candidates[i].Score = f.scorer.Score(ctx, candidates[i].Text, query, convContext)
		f.logger.Info("candidate scored",
			"strategy", string(candidates[i].Strategy), "score", candidates[i].Score)
	}
}

// selectBest 返回评分最高候选的下标，平分时取先出现者
func selectBest(candidates []Candidate) int {
	best := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Score > candidates[best].Score {
			best = i
		}
	}
	return best
}

// realTimeOverride 胜出答案自述没有实时信息时改用次优候选
func (f *Framework) realTimeOverride(candidates []Candidate, best int) int {
	if !strings.Contains(strings.ToLower(candidates[best].Text), realTimeGapMarker) {
		return best
	}

	next := -1
	for i := range candidates {
		if i == best {
			continue
		}
		if next < 0 || candidates[i].Score > candidates[next].Score {
			next = i
		}
	}

	if next < 0 {
		return best
	}

	f.logger.Info("real-time gap detected, falling back",
		"from", string(candidates[best].Strategy), "to", string(candidates[next].Strategy))
	return next
}

// toolTieBreak 工具候选胜出时与最优非工具候选对比决断
//
// 两个候选各打一次 0-10 分，替代者须高出 1 分以上才取代
// 工具答案，避免反复摇摆。取代后按无上下文口径重新评分。
func (f *Framework) toolTieBreak(ctx context.Context, candidates []Candidate, best int, query string) int {
	if !candidates[best].Strategy.IsToolSourced() {
		return best
	}

	alt := -1
	for i := range candidates {
		if candidates[i].Strategy.IsToolSourced() {
			continue
		}
		if alt < 0 || candidates[i].Score > candidates[alt].Score {
			alt = i
		}
	}
	if alt < 0 {
		return best
	}

	toolGrade := llmGrade(ctx, f.provider, query, candidates[best].Text)
	altGrade := llmGrade(ctx, f.provider, query, candidates[alt].Text)

	if altGrade > toolGrade+gradeHysteresis {
		f.logger.Info("tool answer replaced after grading",
			"tool_grade", toolGrade, "alt_grade", altGrade,
			"strategy", string(candidates[alt].Strategy))
		candidates[alt].Score = f.scorer.Score(ctx, candidates[alt].Text, query, "")
		return alt
	}

	return best
}

// selfCorrect 按需执行自我纠错，纠错失败时保留原稿
func (f *Framework) selfCorrect(ctx context.Context, systemPrompt, query string,
	winner Candidate, contextMsgs []message.Message) string {

	if !f.corrector.NeedsCorrection(query, winner.Text, winner.Strategy.IsToolSourced()) {
		return winner.Text
	}

	f.logger.Info("self-correction triggered", "strategy", string(winner.Strategy))

	corrected, err := f.corrector.Correct(ctx, systemPrompt, query, winner.Text, contextMsgs)
	if err != nil {
		f.logger.Warn("self-correction failed, keeping draft", "error", err)
		return winner.Text
	}
	return corrected
}

// enforceCompliance 合规闸门，拒绝时产出替代文本
func (f *Framework) enforceCompliance(ctx context.Context, winner Candidate, answer string) Result {
	verdict := f.gate.Check(ctx, answer)
	if !verdict.Compliant {
		return Result{
			Text:      fmt.Sprintf(refusalFormat, verdict.Reason),
			Answer:    answer,
			Strategy:  winner.Strategy,
			Score:     winner.Score,
			Compliant: false,
			Reason:    verdict.Reason,
		}
	}

	return Result{
		Text:      fmt.Sprintf(responseFormat, winner.Strategy, winner.Score, answer),
		Answer:    answer,
		Strategy:  winner.Strategy,
		Score:     winner.Score,
		Compliant: true,
		Reason:    verdict.Reason,
	}
}
