package history

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Entity 对话中出现的命名实体
type Entity struct {
	// Name 实体名称
	Name string `json:"name"`
	// Context 首次提及该实体的原文
	Context string `json:"context"`
	// Timestamp 首次记录时间
	Timestamp time.Time `json:"timestamp"`
}

// EntityStore 实体笔记存储接口
type EntityStore interface {
	// Put 记录实体，已存在时保留首次上下文
	Put(ctx context.Context, entity Entity) error

	// Context 返回实体的首次上下文，未记录时返回空串
	Context(ctx context.Context, name string) (string, error)

	// All 返回全部实体
	All(ctx context.Context) ([]Entity, error)

	// Close 关闭存储
	Close() error
}

// entityPattern 匹配连续的首字母大写词组
var entityPattern = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)

// commonStarters 句首常见词，单独出现时不视为实体
var commonStarters = map[string]bool{
	"The": true, "A": true, "An": true, "I": true, "It": true,
	"What": true, "Who": true, "How": true, "Why": true, "When": true,
	"Where": true, "Is": true, "Are": true, "Can": true, "Do": true,
	"Does": true, "Please": true, "Tell": true, "Explain": true,
}

// ExtractEntities 从文本中抽取候选实体
//
// 依据是大写词组启发式：连续首字母大写的词视为专有名词，
// 句首疑问词等常见词被排除。
func ExtractEntities(text string) []Entity {
	now := time.Now()
	seen := make(map[string]bool)
	var out []Entity

	for _, match := range entityPattern.FindAllString(text, -1) {
		if commonStarters[match] || seen[match] {
			continue
		}
		seen[match] = true
		out = append(out, Entity{Name: match, Context: text, Timestamp: now})
	}

	return out
}

// MemoryEntityStore 内存实体存储
type MemoryEntityStore struct {
	mu       sync.RWMutex
	entities map[string]Entity
	order    []string
}

// NewMemoryEntityStore 创建内存实体存储
func NewMemoryEntityStore() *MemoryEntityStore {
	return &MemoryEntityStore{
		entities: make(map[string]Entity),
	}
}

// Put 记录实体，已存在时保留首次上下文
func (s *MemoryEntityStore) Put(ctx context.Context, entity Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(entity.Name)
	if _, ok := s.entities[key]; ok {
		return nil
	}

	s.entities[key] = entity
	s.order = append(s.order, key)
	return nil
}

// Context 返回实体的首次上下文
func (s *MemoryEntityStore) Context(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entities[strings.ToLower(name)]; ok {
		return e.Context, nil
	}
	return "", nil
}

// All 按记录顺序返回全部实体
func (s *MemoryEntityStore) All(ctx context.Context) ([]Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entity, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.entities[key])
	}
	return out, nil
}

// Close 关闭存储
func (s *MemoryEntityStore) Close() error {
	return nil
}

// Compile-time interface check
var _ EntityStore = (*MemoryEntityStore)(nil)
