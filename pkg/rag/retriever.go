// Package rag 提供学习笔记的检索能力
package rag

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/easyops/studybuddy-go/pkg/contextopt"
)

// Retriever 笔记检索接口
type Retriever interface {
	// Retrieve 返回与查询最相关的至多 k 条笔记
	Retrieve(ctx context.Context, query string, k int) ([]string, error)
}

// MemoryRetriever 内存词法检索器
//
// 按查询与笔记的词交集大小排序，平分时保持加入顺序。
type MemoryRetriever struct {
	mu   sync.RWMutex
	docs []string
}

// NewMemoryRetriever 创建内存检索器
func NewMemoryRetriever(docs ...string) *MemoryRetriever {
	return &MemoryRetriever{docs: docs}
}

// Add 追加笔记
func (r *MemoryRetriever) Add(docs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, docs...)
}

// Retrieve 返回与查询最相关的至多 k 条笔记
func (r *MemoryRetriever) Retrieve(ctx context.Context, query string, k int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		doc     string
		overlap int
	}

	var hits []scored
	for _, doc := range r.docs {
		if overlap := contextopt.OverlapCount(query, doc); overlap > 0 {
			hits = append(hits, scored{doc: doc, overlap: overlap})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].overlap > hits[j].overlap
	})

	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.doc
	}
	return out, nil
}

// JoinNotes 将检索结果拼成提示词用的笔记块
func JoinNotes(notes []string) string {
	return strings.Join(notes, "\n")
}

// Compile-time interface check
var _ Retriever = (*MemoryRetriever)(nil)
