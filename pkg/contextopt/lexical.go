package contextopt

import "strings"

// Tokenize 将文本分割为小写词元用于比较。
func Tokenize(text string) []string {
	text = strings.ToLower(text)

	var tokens []string
	var current strings.Builder

	for _, r := range text {
		if isTokenChar(r) {
			current.WriteRune(r)
		} else if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// isTokenChar 返回该字符是否应该是词元的一部分。
func isTokenChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= '0' && r <= '9') ||
		r >= 0x4E00 && r <= 0x9FFF // 中文字符
}

// tokenSet 构建去重词元集合。
func tokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

// OverlapCount 返回两段文本去重后的共同词元数。
func OverlapCount(a, b string) int {
	aSet := tokenSet(a)
	if len(aSet) == 0 {
		return 0
	}

	overlap := 0
	for token := range tokenSet(b) {
		if _, exists := aSet[token]; exists {
			overlap++
		}
	}
	return overlap
}

// OverlapRatio 返回 b 覆盖 a 中词元的比例。
//
// 用于置信度评分中的词面重叠项：|words(a) ∩ words(b)| / |words(a)|。
func OverlapRatio(a, b string) float64 {
	aSet := tokenSet(a)
	if len(aSet) == 0 {
		return 0.0
	}

	overlap := 0
	for token := range tokenSet(b) {
		if _, exists := aSet[token]; exists {
			overlap++
		}
	}
	return float64(overlap) / float64(len(aSet))
}
