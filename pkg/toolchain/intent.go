// Package toolchain 提供意图检测与顺序工具链执行能力。
//
// 工具链引擎将查询分类为意图，按意图执行对应的适配器序列，
// 对每步结果做验证，失败时沿降级链退回更窄的工具或 LLM 兜底。
package toolchain

import (
	"regexp"
	"strings"
)

// Intent 查询意图
type Intent string

const (
	// IntentSearch 网络搜索
	IntentSearch Intent = "search"
	// IntentWiki 百科摘要查询
	IntentWiki Intent = "wiki"
	// IntentCalculator 纯算术计算
	IntentCalculator Intent = "calculator"
	// IntentCalcWithLookup 先查数再计算的依赖链
	IntentCalcWithLookup Intent = "calc_with_lookup"
	// IntentNone 无需外部工具
	IntentNone Intent = "none"
)

// IsValid 检查 Intent 是否为有效值
func (i Intent) IsValid() bool {
	switch i {
	case IntentSearch, IntentWiki, IntentCalculator, IntentCalcWithLookup, IntentNone:
		return true
	default:
		return false
	}
}

// intentRule 一条意图判定规则
//
// 规则表有序，首个命中的规则决定意图，便于独立验证优先级。
type intentRule struct {
	name    string
	matches func(q string) bool
	intent  Intent
}

var (
	searchKeywords   = []string{"latest", "search", "recent", "find", "look up"}
	wikiKeywords     = []string{"wiki", "who is", "who was"}
	calcKeywords     = []string{"calculate", "times", "multiplied by"}
	quantityKeywords = []string{"population", "gdp", "area", "height", "length", "distance"}

	// 形如 "3 + 4" 的裸算式
	arithmeticPattern = regexp.MustCompile(`\d\s*[\+\-\*\/]\s*\d`)
)

// containsAny 检查文本是否包含任一关键词
func containsAny(q string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// hasArithmeticCue 检查查询是否包含算术触发词或裸算式
func hasArithmeticCue(q string) bool {
	return containsAny(q, calcKeywords) || arithmeticPattern.MatchString(q)
}

// defaultRules 默认意图规则表
//
// calc_with_lookup 必须排在 calculator 之前：两者共享算术触发条件，
// 前者额外要求现实量纲关键词。
var defaultRules = []intentRule{
	{
		name:    "search",
		matches: func(q string) bool { return containsAny(q, searchKeywords) },
		intent:  IntentSearch,
	},
	{
		name:    "wiki",
		matches: func(q string) bool { return containsAny(q, wikiKeywords) },
		intent:  IntentWiki,
	},
	{
		name: "calc_with_lookup",
		matches: func(q string) bool {
			return hasArithmeticCue(q) && containsAny(q, quantityKeywords)
		},
		intent: IntentCalcWithLookup,
	},
	{
		name:    "calculator",
		matches: func(q string) bool { return hasArithmeticCue(q) },
		intent:  IntentCalculator,
	},
}

// DetectIntent 将查询映射到五种意图之一
//
// 纯函数且全覆盖：规则表按序匹配，首个命中者生效，无命中时返回 IntentNone。
func DetectIntent(query string) Intent {
	q := strings.ToLower(query)

	for _, rule := range defaultRules {
		if rule.matches(q) {
			return rule.intent
		}
	}

	return IntentNone
}
