package toolchain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/easyops/studybuddy-go/pkg/core/errors"
)

// LookupAdapter 百科摘要适配器接口
type LookupAdapter interface {
	// Summary 返回主题的简短摘要
	Summary(ctx context.Context, topic string) (ToolResult, error)
}

// WikipediaClient Wikipedia 摘要客户端
//
// 走 REST page/summary 端点，结果截断为前两句。
type WikipediaClient struct {
	baseURL    string
	sentences  int
	httpClient *http.Client
}

// WikipediaOption Wikipedia 客户端选项
type WikipediaOption func(*WikipediaClient)

// WithWikipediaBaseURL 设置基础 URL
func WithWikipediaBaseURL(url string) WikipediaOption {
	return func(c *WikipediaClient) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithWikipediaSentences 设置保留的句子数
func WithWikipediaSentences(n int) WikipediaOption {
	return func(c *WikipediaClient) {
		c.sentences = n
	}
}

// WithWikipediaHTTPClient 设置 HTTP 客户端
func WithWikipediaHTTPClient(client *http.Client) WikipediaOption {
	return func(c *WikipediaClient) {
		c.httpClient = client
	}
}

// NewWikipediaClient 创建 Wikipedia 摘要客户端
func NewWikipediaClient(opts ...WikipediaOption) *WikipediaClient {
	c := &WikipediaClient{
		baseURL:   "https://en.wikipedia.org/api/rest_v1",
		sentences: 2,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// wikipediaSummary Wikipedia 摘要响应结构
type wikipediaSummary struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

// Summary 返回主题的简短摘要
func (c *WikipediaClient) Summary(ctx context.Context, topic string) (ToolResult, error) {
	endpoint := c.baseURL + "/page/summary/" + url.PathEscape(strings.ReplaceAll(topic, " ", "_"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ToolResult{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ToolResult{}, errors.WrapError(errors.ErrAdapterFailed, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ToolResult{}, errors.WrapError(errors.ErrAdapterFailed, err.Error())
	}

	if resp.StatusCode == http.StatusNotFound {
		return ToolResult{Text: "No page found.", Valid: false, Source: SourceWikipedia}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return ToolResult{}, fmt.Errorf("%w: wikipedia status %d", errors.ErrAdapterFailed, resp.StatusCode)
	}

	var parsed wikipediaSummary
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ToolResult{}, errors.WrapError(errors.ErrAdapterFailed, err.Error())
	}

	if parsed.Type == "disambiguation" {
		return ToolResult{
			Text:   fmt.Sprintf("Multiple options found for %q.", parsed.Title),
			Valid:  false,
			Source: SourceWikipedia,
		}, nil
	}

	text := firstSentences(parsed.Extract, c.sentences)
	if text == "" {
		return ToolResult{Text: NoAnswerFound, Valid: false, Source: SourceWikipedia}, nil
	}

	return ToolResult{Text: text, Valid: ValidateWiki(text), Source: SourceWikipedia}, nil
}

// firstSentences 截取文本的前 n 句
//
// 两侧都是数字的句点视为小数点，不计句末。
func firstSentences(text string, n int) string {
	if n <= 0 {
		return text
	}

	count := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.':
			if i > 0 && i+1 < len(text) && isDigit(text[i-1]) && isDigit(text[i+1]) {
				continue
			}
		case '!', '?':
		default:
			continue
		}

		count++
		if count == n {
			return strings.TrimSpace(text[:i+1])
		}
	}
	return strings.TrimSpace(text)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// compile-time interface check
var _ LookupAdapter = (*WikipediaClient)(nil)
