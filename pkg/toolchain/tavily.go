package toolchain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/easyops/studybuddy-go/pkg/core/errors"
)

// SearchAdapter 网络搜索适配器接口
type SearchAdapter interface {
	// Search 执行一次搜索并返回结果
	Search(ctx context.Context, query string) (ToolResult, error)
}

// TavilyClient Tavily 搜索客户端
//
// 调用 Tavily 的 search 接口并直接取 answer 字段。
type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// TavilyOption Tavily 客户端选项
type TavilyOption func(*TavilyClient)

// WithTavilyBaseURL 设置基础 URL
func WithTavilyBaseURL(url string) TavilyOption {
	return func(c *TavilyClient) {
		c.baseURL = url
	}
}

// WithTavilyHTTPClient 设置 HTTP 客户端
func WithTavilyHTTPClient(client *http.Client) TavilyOption {
	return func(c *TavilyClient) {
		c.httpClient = client
	}
}

// NewTavilyClient 创建 Tavily 搜索客户端
func NewTavilyClient(apiKey string, opts ...TavilyOption) *TavilyClient {
	c := &TavilyClient{
		apiKey:  apiKey,
		baseURL: "https://api.tavily.com/search",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// tavilyRequest Tavily 请求结构
type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
}

// tavilyResponse Tavily 响应结构
type tavilyResponse struct {
	Answer string `json:"answer"`
}

// Search 执行一次搜索并返回结果
func (c *TavilyClient) Search(ctx context.Context, query string) (ToolResult, error) {
	payload, err := json.Marshal(tavilyRequest{
		APIKey:        c.apiKey,
		Query:         query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
	})
	if err != nil {
		return ToolResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return ToolResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ToolResult{}, errors.WrapError(errors.ErrAdapterFailed, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ToolResult{}, errors.WrapError(errors.ErrAdapterFailed, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		return ToolResult{}, fmt.Errorf("%w: tavily status %d", errors.ErrAdapterFailed, resp.StatusCode)
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ToolResult{}, errors.WrapError(errors.ErrAdapterFailed, err.Error())
	}

	if parsed.Answer == "" {
		return ToolResult{Text: NoAnswerFound, Valid: false, Source: SourceTavily}, nil
	}

	return ToolResult{Text: parsed.Answer, Valid: true, Source: SourceTavily}, nil
}

// compile-time interface check
var _ SearchAdapter = (*TavilyClient)(nil)
