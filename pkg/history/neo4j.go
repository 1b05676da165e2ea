package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jEntityStore 基于 Neo4j 的实体存储
//
// 实体以 Entity 节点保存，重复提及累加 frequency，
// 首次上下文不被覆盖。
type Neo4jEntityStore struct {
	driver neo4j.DriverWithContext
}

// Neo4jConfig Neo4j 连接配置
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
}

// NewNeo4jEntityStore 创建 Neo4j 实体存储
func NewNeo4jEntityStore(config Neo4jConfig) (*Neo4jEntityStore, error) {
	if config.URI == "" {
		config.URI = "bolt://localhost:7687"
	}

	auth := neo4j.NoAuth()
	if config.Username != "" && config.Password != "" {
		auth = neo4j.BasicAuth(config.Username, config.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(config.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("failed to verify connectivity: %w", err)
	}

	store := &Neo4jEntityStore{driver: driver}
	if err := store.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return store, nil
}

// createIndexes 创建索引
func (s *Neo4jEntityStore) createIndexes(ctx context.Context) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		"CREATE INDEX entity_key IF NOT EXISTS FOR (e:Entity) ON (e.key)", nil)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return err
	}
	return nil
}

// Put 记录实体，已存在时保留首次上下文
func (s *Neo4jEntityStore) Put(ctx context.Context, entity Entity) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `
	MERGE (e:Entity {key: $key})
	ON CREATE SET
		e.name = $name,
		e.context = $context,
		e.frequency = 1,
		e.created_at = $now
	ON MATCH SET
		e.frequency = e.frequency + 1
	`

	params := map[string]interface{}{
		"key":     strings.ToLower(entity.Name),
		"name":    entity.Name,
		"context": entity.Context,
		"now":     entity.Timestamp.UnixMilli(),
	}

	_, err := session.Run(ctx, query, params)
	return err
}

// Context 返回实体的首次上下文
func (s *Neo4jEntityStore) Context(ctx context.Context, name string) (string, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `MATCH (e:Entity {key: $key}) RETURN e.context AS context`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"key": strings.ToLower(name),
	})
	if err != nil {
		return "", err
	}

	if result.Next(ctx) {
		if v, ok := result.Record().Get("context"); ok {
			if text, ok := v.(string); ok {
				return text, nil
			}
		}
	}

	return "", nil
}

// All 按首次记录时间返回全部实体
func (s *Neo4jEntityStore) All(ctx context.Context) ([]Entity, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `MATCH (e:Entity) RETURN e.name AS name, e.context AS context, e.created_at AS created_at ORDER BY e.created_at ASC`

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	var entities []Entity
	for result.Next(ctx) {
		record := result.Record()
		entity := Entity{}

		if v, ok := record.Get("name"); ok {
			entity.Name, _ = v.(string)
		}
		if v, ok := record.Get("context"); ok {
			entity.Context, _ = v.(string)
		}
		if v, ok := record.Get("created_at"); ok {
			if ms, ok := v.(int64); ok {
				entity.Timestamp = time.UnixMilli(ms)
			}
		}

		entities = append(entities, entity)
	}

	return entities, nil
}

// Close 关闭连接
func (s *Neo4jEntityStore) Close() error {
	return s.driver.Close(context.Background())
}

// Compile-time interface check
var _ EntityStore = (*Neo4jEntityStore)(nil)
