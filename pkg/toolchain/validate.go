package toolchain

import (
	"regexp"
	"strings"
)

// wikiBadPhrases 百科结果不可用的标记
var wikiBadPhrases = []string{"No page found", "Multiple options", "exception"}

// ValidateWiki 检查百科摘要是否可用
//
// 可用标准：至少 10 个词，且不含消歧义或错误标记。
func ValidateWiki(text string) bool {
	if len(strings.Fields(text)) < 10 {
		return false
	}
	for _, phrase := range wikiBadPhrases {
		if strings.Contains(text, phrase) {
			return false
		}
	}
	return true
}

// containsFold 大小写不敏感的包含检查
func containsFold(text, substr string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(substr))
}

// firstNumberPattern 匹配首个数字词元（允许千分位逗号和小数点）
var firstNumberPattern = regexp.MustCompile(`\d[\d,\.]*`)

// ExtractFirstNumber 从文本中提取首个数字词元
//
// 千分位逗号会被剔除："about 2,123,000 inhabitants" → "2123000"。
// 找不到数字时返回空串。
func ExtractFirstNumber(text string) string {
	match := firstNumberPattern.FindString(text)
	if match == "" {
		return ""
	}
	match = strings.ReplaceAll(match, ",", "")
	// 去掉句尾标点被一并匹配进来的部分
	return strings.TrimRight(match, ".")
}
