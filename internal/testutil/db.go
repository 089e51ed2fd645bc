// Package testutil 提供测试用的 SQLite 数据库，表结构与生产迁移一致
package testutil

import (
	"path/filepath"
	"qa_forum_backend/pkg/database"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB 每个测试一个独立的数据库文件；单连接，事务内误用外部句柄会直接卡住暴露出来
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	return open(t, "?_pragma=busy_timeout(5000)", 1)
}

// NewConcurrentDB 多连接共享同一数据库文件，用于并发测试。
// 事务以 BEGIN IMMEDIATE 开始，写锁冲突时按 busy_timeout 等待
func NewConcurrentDB(t testing.TB, conns int) *gorm.DB {
	t.Helper()
	return open(t, "?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_txlock=immediate", conns)
}

func open(t testing.TB, params string, conns int) *gorm.DB {
	path := filepath.Join(t.TempDir(), "forum.db")
	db, err := gorm.Open(sqlite.Open(path+params), database.GormConfig("silent"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}
