package reasoning

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/easyops/studybuddy-go/pkg/contextopt"
	"github.com/easyops/studybuddy-go/pkg/core/config"
	"github.com/easyops/studybuddy-go/pkg/core/errors"
	"github.com/easyops/studybuddy-go/pkg/core/llm"
)

// hedgingPattern 模糊措辞，命中即丢失清晰度加分
var hedgingPattern = regexp.MustCompile(`(?i)(i (am|'m) not sure|cannot find|no answer|maybe|might be)`)

// Scorer 置信度评分器
//
// 五项加权合成：答案-查询语义相似度、答案-上下文语义相似度、
// 词面重合率、长度加分、清晰度加分。嵌入失败时语义项按 0 计，
// 评分流程不中断。
type Scorer struct {
	embedder llm.Provider
	weights  config.ScorerConfig
	logger   *slog.Logger
}

// NewScorer 创建置信度评分器
//
// embedder 可以为空，此时语义相似度两项恒为 0。
// weights 为零值时使用默认权重。
func NewScorer(embedder llm.Provider, weights config.ScorerConfig, logger *slog.Logger) *Scorer {
	if weights.IsZero() {
		weights = config.DefaultScorerConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scorer{
		embedder: embedder,
		weights:  weights,
		logger:   logger,
	}
}

// Score 计算答案的置信度，范围 [0, 1]，保留三位小数
//
// convContext 为空时跳过上下文相似度项，其权重不再参与。
func (s *Scorer) Score(ctx context.Context, answer, query, convContext string) float64 {
	score := 0.0

	simQuery, simContext := s.semanticSimilarities(ctx, answer, query, convContext)
	score += s.weights.QueryWeight * math.Max(simQuery, 0)
	if convContext != "" {
		score += s.weights.ContextWeight * math.Max(simContext, 0)
	}

	score += s.weights.OverlapWeight * contextopt.OverlapRatio(query, answer)
	score += s.weights.LengthWeight * lengthBonus(answer)

	if clarityOK(answer) {
		score += s.weights.ClarityWeight
	}

	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return math.Round(score*1000) / 1000
}

// semanticSimilarities 一次嵌入调用算出两个语义相似度
func (s *Scorer) semanticSimilarities(ctx context.Context, answer, query, convContext string) (float64, float64) {
	if s.embedder == nil {
		return 0, 0
	}

	texts := []string{answer, query}
	if convContext != "" {
		texts = append(texts, convContext)
	}

	vecs, err := s.embedder.Embed(ctx, texts)
	if err != nil || len(vecs) < 2 {
		s.logger.Warn("embedding failed, semantic terms degraded",
			"error", errors.WrapError(errors.ErrScoringDegenerate, "embed call failed"))
		return 0, 0
	}

	simQuery := cosine(vecs[0], vecs[1])
	simContext := 0.0
	if len(vecs) > 2 {
		simContext = cosine(vecs[0], vecs[2])
	}
	return simQuery, simContext
}

// lengthBonus 合理长度加分
//
// 50 到 250 词得满分，之外按与 150 词的距离线性衰减。
func lengthBonus(answer string) float64 {
	words := len(strings.Fields(answer))
	if words >= 50 && words <= 250 {
		return 1.0
	}
	return math.Max(0, 1-math.Abs(float64(words)-150)/300)
}

// clarityOK 无模糊措辞也无 error 字样
func clarityOK(answer string) bool {
	return !hedgingPattern.MatchString(answer) &&
		!strings.Contains(strings.ToLower(answer), "error")
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
