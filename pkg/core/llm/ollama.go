package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/easyops/studybuddy-go/pkg/core/errors"
	"github.com/easyops/studybuddy-go/pkg/core/message"
)

// OllamaClient Ollama 客户端
//
// 用于本地部署场景，接口与 Provider 对齐。
type OllamaClient struct {
	baseURL    string
	model      string
	embedModel string
	httpClient *http.Client
}

// OllamaOption Ollama 客户端选项
type OllamaOption func(*OllamaClient)

// WithOllamaBaseURL 设置基础 URL
func WithOllamaBaseURL(url string) OllamaOption {
	return func(c *OllamaClient) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithOllamaModel 设置模型名称
func WithOllamaModel(model string) OllamaOption {
	return func(c *OllamaClient) {
		c.model = model
	}
}

// WithOllamaEmbedModel 设置嵌入模型名称
func WithOllamaEmbedModel(model string) OllamaOption {
	return func(c *OllamaClient) {
		c.embedModel = model
	}
}

// WithOllamaHTTPClient 设置 HTTP 客户端
func WithOllamaHTTPClient(client *http.Client) OllamaOption {
	return func(c *OllamaClient) {
		c.httpClient = client
	}
}

// NewOllamaClient 创建 Ollama 客户端
func NewOllamaClient(opts ...OllamaOption) *OllamaClient {
	c := &OllamaClient{
		baseURL:    "http://localhost:11434",
		model:      "llama3.2",
		embedModel: "nomic-embed-text",
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ollamaRequest Ollama 聊天请求结构
type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

// ollamaMessage Ollama 消息
type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ollamaResponse Ollama 聊天响应结构
type ollamaResponse struct {
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	DoneReason      string        `json:"done_reason"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
}

// ollamaEmbedRequest Ollama 嵌入请求结构
type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// ollamaEmbedResponse Ollama 嵌入响应结构
type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Name 返回提供商名称
func (c *OllamaClient) Name() string {
	return "ollama"
}

// Model 返回当前模型名称
func (c *OllamaClient) Model() string {
	return c.model
}

// Close 关闭客户端连接
func (c *OllamaClient) Close() error {
	return nil
}

// Generate 生成响应
func (c *OllamaClient) Generate(ctx context.Context, req Request) (Response, error) {
	body := ollamaRequest{
		Model:    c.model,
		Messages: make([]ollamaMessage, 0, len(req.Messages)),
		Stream:   false,
	}
	for _, msg := range req.Messages {
		body.Messages = append(body.Messages, ollamaMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	var parsed ollamaResponse
	if err := c.post(ctx, "/api/chat", body, &parsed); err != nil {
		return Response{}, err
	}

	return Response{
		Content:      parsed.Message.Content,
		FinishReason: parsed.DoneReason,
		TokenUsage: message.TokenUsage{
			PromptTokens:     parsed.PromptEvalCount,
			CompletionTokens: parsed.EvalCount,
			TotalTokens:      parsed.PromptEvalCount + parsed.EvalCount,
		},
	}, nil
}

// Embed 生成文本嵌入向量
func (c *OllamaClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body := ollamaEmbedRequest{
		Model: c.embedModel,
		Input: texts,
	}

	var parsed ollamaEmbedResponse
	if err := c.post(ctx, "/api/embed", body, &parsed); err != nil {
		return nil, err
	}

	return parsed.Embeddings, nil
}

// post 发送 JSON 请求并解析响应
func (c *OllamaClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return errors.WrapError(errors.ErrProviderUnavailable, err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama error (code=%d): %s: %w",
			resp.StatusCode, strings.TrimSpace(string(data)), errors.ErrInvalidResponse)
	}

	return json.Unmarshal(data, out)
}

// compile-time interface check
var _ Provider = (*OllamaClient)(nil)
