package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/easyops/studybuddy-go/pkg/core/errors"
	"github.com/easyops/studybuddy-go/pkg/core/message"
)

// SQLiteStore 基于 SQLite 的历史存储
//
// 每条消息一行，rowid 保证插入顺序，适合跨会话持久化。
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore 创建 SQLite 历史存储
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return store, nil
}

// initSchema 初始化表结构
func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		metadata TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages(created_at);
	`

	_, err := s.db.Exec(query)
	return err
}

// Append 追加一条消息
func (s *SQLiteStore) Append(ctx context.Context, msg message.Message) error {
	metadata, err := json.Marshal(msg.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	createdAt := msg.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `INSERT INTO messages (id, role, content, metadata, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		msg.ID, string(msg.Role), msg.Content, string(metadata), createdAt.UnixMilli())
	return err
}

// Load 按插入顺序返回全部历史
func (s *SQLiteStore) Load(ctx context.Context) ([]message.Message, error) {
	query := `SELECT id, role, content, metadata, created_at FROM messages ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []message.Message
	for rows.Next() {
		var msg message.Message
		var role, metadataStr string
		var createdAt int64

		if err := rows.Scan(&msg.ID, &role, &msg.Content, &metadataStr, &createdAt); err != nil {
			return nil, err
		}

		if metadataStr != "" && metadataStr != "null" {
			if err := json.Unmarshal([]byte(metadataStr), &msg.Metadata); err != nil {
				continue // 跳过无效记录
			}
		}

		msg.Role = message.Role(role)
		msg.Timestamp = time.UnixMilli(createdAt)
		results = append(results, msg)
	}

	return results, rows.Err()
}

// PopLast 移除并返回最近一条消息
func (s *SQLiteStore) PopLast(ctx context.Context) (message.Message, error) {
	query := `SELECT seq, id, role, content, metadata, created_at FROM messages ORDER BY seq DESC LIMIT 1`

	var seq, createdAt int64
	var msg message.Message
	var role, metadataStr string

	err := s.db.QueryRowContext(ctx, query).Scan(
		&seq, &msg.ID, &role, &msg.Content, &metadataStr, &createdAt)
	if err == sql.ErrNoRows {
		return message.Message{}, errors.ErrEmptyHistory
	}
	if err != nil {
		return message.Message{}, err
	}

	if metadataStr != "" && metadataStr != "null" {
		_ = json.Unmarshal([]byte(metadataStr), &msg.Metadata)
	}
	msg.Role = message.Role(role)
	msg.Timestamp = time.UnixMilli(createdAt)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE seq = ?`, seq); err != nil {
		return message.Message{}, err
	}

	return msg, nil
}

// Clear 清空历史
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages`)
	return err
}

// Close 关闭连接
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Compile-time interface check
var _ Store = (*SQLiteStore)(nil)
