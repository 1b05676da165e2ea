package history

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/easyops/studybuddy-go/pkg/core/errors"
	"github.com/easyops/studybuddy-go/pkg/core/message"
)

// JSONFileStore 基于 JSON 文件的历史存储
//
// 整个历史保存为一个消息数组，每次写操作都落盘。
// 适合单进程的交互式场景。
type JSONFileStore struct {
	path string

	mu       sync.Mutex
	messages []message.Message
	loaded   bool
}

// NewJSONFileStore 创建 JSON 文件历史存储
func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{path: path}
}

// load 首次访问时从磁盘读取，文件不存在视为空历史
func (s *JSONFileStore) load() error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, &s.messages); err != nil {
		return errors.WrapError(errors.ErrHistoryNotFound, err.Error())
	}

	s.loaded = true
	return nil
}

// save 将当前历史整体写回磁盘
func (s *JSONFileStore) save() error {
	data, err := json.MarshalIndent(s.messages, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Append 追加一条消息
func (s *JSONFileStore) Append(ctx context.Context, msg message.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}

	s.messages = append(s.messages, msg)
	return s.save()
}

// Load 按插入顺序返回全部历史
func (s *JSONFileStore) Load(ctx context.Context) ([]message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}

	out := make([]message.Message, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

// PopLast 移除并返回最近一条消息
func (s *JSONFileStore) PopLast(ctx context.Context) (message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return message.Message{}, err
	}

	if len(s.messages) == 0 {
		return message.Message{}, errors.ErrEmptyHistory
	}

	last := s.messages[len(s.messages)-1]
	s.messages = s.messages[:len(s.messages)-1]
	return last, s.save()
}

// Clear 清空历史
func (s *JSONFileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	s.loaded = true
	return s.save()
}

// Close 关闭存储
func (s *JSONFileStore) Close() error {
	return nil
}

// Compile-time interface check
var _ Store = (*JSONFileStore)(nil)
