package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/weiwangfds/filevault/internal/database"
)

// setupTestDB 设置测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	// 使用内存SQLite数据库进行测试
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedOwned(t *testing.T, r *FileRepository, userID uint, name string, size int64, contentType string) *database.UserFile {
	file := &database.UserFile{
		UserID:      userID,
		FileName:    name,
		ContentType: contentType,
		FileSize:    size,
		StorageKey:  "user-1/" + name,
	}
	require.NoError(t, r.InsertOwned(file))
	return file
}

// TestFindAnonymousRequiresBothCredentials 测试匿名文件查找要求凭证对完全匹配
func TestFindAnonymousRequiresBothCredentials(t *testing.T) {
	r := NewFileRepository(setupTestDB(t))

	require.NoError(t, r.InsertAnonymous(&database.AnonymousFile{
		FileID:     "a1b2c3d4e5",
		SecretKey:  "00112233445566778899aabbccddeeff",
		FileName:   "note.txt",
		FileSize:   12,
		StorageKey: "a1b2c3d4e5-note.txt",
	}))

	found, err := r.FindAnonymous("a1b2c3d4e5", "00112233445566778899aabbccddeeff")
	require.NoError(t, err)
	assert.Equal(t, "note.txt", found.FileName)

	// 密钥错误和文件不存在返回同一个错误
	_, err = r.FindAnonymous("a1b2c3d4e5", "ffffffffffffffffffffffffffffffff")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = r.FindAnonymous("0000000000", "00112233445566778899aabbccddeeff")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// TestAnonymousFileIDUnique 测试匿名文件标识符唯一约束
func TestAnonymousFileIDUnique(t *testing.T) {
	r := NewFileRepository(setupTestDB(t))

	first := &database.AnonymousFile{FileID: "aaaaaaaaaa", SecretKey: "k1", FileName: "a", FileSize: 1, StorageKey: "s1"}
	require.NoError(t, r.InsertAnonymous(first))

	exists, err := r.AnonymousFileIDExists("aaaaaaaaaa")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = r.AnonymousFileIDExists("bbbbbbbbbb")
	require.NoError(t, err)
	assert.False(t, exists)

	// 相同file_id的二次插入违反唯一索引
	dup := &database.AnonymousFile{FileID: "aaaaaaaaaa", SecretKey: "k2", FileName: "b", FileSize: 1, StorageKey: "s2"}
	assert.Error(t, r.InsertAnonymous(dup))
}

// TestDeleteOwnedScopedToOwner 测试删除条件绑定所有者
func TestDeleteOwnedScopedToOwner(t *testing.T) {
	r := NewFileRepository(setupTestDB(t))
	file := seedOwned(t, r, 1, "doc.pdf", 100, "application/pdf")

	// 非所有者删除命中零行
	affected, err := r.DeleteOwned(file.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	affected, err = r.DeleteOwned(file.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = r.FindOwnedByID(file.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// TestSetSharedRotatesToken 测试分享令牌轮换
func TestSetSharedRotatesToken(t *testing.T) {
	r := NewFileRepository(setupTestDB(t))
	file := seedOwned(t, r, 1, "pic.png", 500, "image/png")

	affected, err := r.SetShared(file.ID, 1, "token-one")
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	found, err := r.FindOwnedByAccessToken("token-one")
	require.NoError(t, err)
	assert.True(t, found.IsPublic)

	// 重复分享轮换令牌，旧令牌立即失效
	affected, err = r.SetShared(file.ID, 1, "token-two")
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	_, err = r.FindOwnedByAccessToken("token-one")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	found, err = r.FindOwnedByAccessToken("token-two")
	require.NoError(t, err)
	assert.Equal(t, file.ID, found.ID)

	// 非所有者无法分享
	affected, err = r.SetShared(file.ID, 9, "token-three")
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

// TestFindOwnedByAccessTokenRequiresPublic 测试令牌查找要求文件处于公开状态
func TestFindOwnedByAccessTokenRequiresPublic(t *testing.T) {
	db := setupTestDB(t)
	r := NewFileRepository(db)
	file := seedOwned(t, r, 1, "secret.txt", 10, "text/plain")

	// 直接写入令牌但保持非公开状态
	require.NoError(t, db.Model(&database.UserFile{}).Where("id = ?", file.ID).
		Update("access_token", sql.NullString{String: "hidden-token", Valid: true}).Error)

	_, err := r.FindOwnedByAccessToken("hidden-token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// TestStorageAggregates 测试存储用量聚合查询
func TestStorageAggregates(t *testing.T) {
	r := NewFileRepository(setupTestDB(t))

	seedOwned(t, r, 1, "a.png", 100, "image/png")
	seedOwned(t, r, 1, "b.mp4", 200, "video/mp4")
	seedOwned(t, r, 2, "c.txt", 999, "text/plain")

	total, err := r.SumSizeByUser(1)
	require.NoError(t, err)
	assert.Equal(t, int64(300), total)

	// 没有文件的用户用量为零
	total, err = r.SumSizeByUser(42)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	count, err := r.CountOwnedByUser(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	recent, err := r.CountRecentByUser(1, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), recent)

	recent, err = r.CountRecentByUser(1, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), recent)
}
