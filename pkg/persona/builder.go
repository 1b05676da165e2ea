package persona

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/easyops/studybuddy-go/pkg/core/llm"
)

// embedThreshold 嵌入相似度的领域判定阈值
const embedThreshold = 0.20

// Builder 系统提示词构建器
//
// 领域检测优先走嵌入相似度，嵌入不可用或置信度不足时
// 回退到关键词匹配。
type Builder struct {
	embedder llm.Provider
	logger   *slog.Logger

	mu            sync.Mutex
	domainVectors map[Domain][]float32
}

// BuilderOption 构建器选项
type BuilderOption func(*Builder)

// WithEmbedder 设置嵌入模型提供者
func WithEmbedder(provider llm.Provider) BuilderOption {
	return func(b *Builder) {
		b.embedder = provider
	}
}

// WithLogger 设置日志器
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder 创建提示词构建器
//
// embedder 可以为空，此时领域检测只用关键词。
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// DetectDomain 检测查询所属的学科领域
func (b *Builder) DetectDomain(ctx context.Context, query string) Domain {
	q := strings.ToLower(query)

	if domain, ok := b.domainByEmbedding(ctx, q); ok {
		return domain
	}

	for _, domain := range domainOrder {
		for _, kw := range domainKeywords[domain] {
			if strings.Contains(q, kw) {
				return domain
			}
		}
	}

	return DomainDefault
}

// domainByEmbedding 按嵌入相似度判定领域
//
// 返回 ok=false 表示嵌入不可用或最佳相似度低于阈值，
// 调用方应回退到关键词。
func (b *Builder) domainByEmbedding(ctx context.Context, query string) (Domain, bool) {
	if b.embedder == nil {
		return DomainDefault, false
	}

	vectors, err := b.labelVectors(ctx)
	if err != nil {
		b.logger.Warn("domain embedding unavailable, falling back to keywords", "error", err)
		return DomainDefault, false
	}

	queryVecs, err := b.embedder.Embed(ctx, []string{query})
	if err != nil || len(queryVecs) == 0 {
		b.logger.Warn("query embedding failed, falling back to keywords", "error", err)
		return DomainDefault, false
	}

	best := DomainDefault
	bestSim := embedThreshold
	for _, domain := range domainOrder {
		sim := cosine(vectors[domain], queryVecs[0])
		if sim > bestSim {
			best = domain
			bestSim = sim
		}
	}

	if best == DomainDefault {
		return DomainDefault, false
	}
	return best, true
}

// labelVectors 懒加载并缓存各领域标签的嵌入向量
func (b *Builder) labelVectors(ctx context.Context) (map[Domain][]float32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.domainVectors != nil {
		return b.domainVectors, nil
	}

	labels := make([]string, len(domainOrder))
	for i, domain := range domainOrder {
		labels[i] = string(domain)
	}

	vecs, err := b.embedder.Embed(ctx, labels)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(domainOrder) {
		return nil, fmt.Errorf("embed returned %d vectors for %d labels", len(vecs), len(domainOrder))
	}

	b.domainVectors = make(map[Domain][]float32, len(domainOrder))
	for i, domain := range domainOrder {
		b.domainVectors[domain] = vecs[i]
	}
	return b.domainVectors, nil
}

// InferUserLevel 根据措辞粗略推断用户水平
func InferUserLevel(query string) Level {
	q := strings.ToLower(query)

	for _, word := range []string{"prove", "theorem", "derive", "complexity"} {
		if strings.Contains(q, word) {
			return LevelCollege
		}
	}
	for _, word := range []string{"peer-review", "industrial", "research"} {
		if strings.Contains(q, word) {
			return LevelProfessional
		}
	}
	return LevelHighSchool
}

// BuildSystemPrompt 组合基础提示词、领域块与风格块
//
// level 为空串时自动推断。
func (b *Builder) BuildSystemPrompt(ctx context.Context, query string, level Level) string {
	domain := b.DetectDomain(ctx, query)
	b.logger.Info("domain detected", "domain", string(domain))

	if !level.IsValid() {
		level = InferUserLevel(query)
	}

	style, ok := styleGuidelines[level]
	if !ok {
		style = styleGuidelines[LevelHighSchool]
	}

	return basePrompt + "\n" + domainPrompts[domain] + "\nAdditional instructions: " + style
}

// cosine 余弦相似度
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	denom := math.Sqrt(normA)*math.Sqrt(normB) + 1e-8
	return dot / denom
}
