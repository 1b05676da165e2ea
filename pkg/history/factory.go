package history

import (
	"fmt"

	"github.com/easyops/studybuddy-go/pkg/core/config"
)

// NewStoreFromConfig 按配置创建历史存储
func NewStoreFromConfig(cfg config.HistoryConfig) (Store, error) {
	switch cfg.Backend {
	case "json", "":
		return NewJSONFileStore(cfg.Path), nil
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown history backend: %q", cfg.Backend)
	}
}
