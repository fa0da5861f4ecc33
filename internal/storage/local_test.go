package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStore(t *testing.T) *LocalStore {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)
	return store
}

// TestLocalStorePutAndOpen 测试本地存储的写入和读取
func TestLocalStorePutAndOpen(t *testing.T) {
	store := newTestLocalStore(t)
	ctx := context.Background()

	content := "hello filevault"
	err := store.PutObject(ctx, "user-1/abc-report.pdf", strings.NewReader(content), int64(len(content)), "application/pdf")
	require.NoError(t, err)

	f, info, err := store.Open("user-1/abc-report.pdf")
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, int64(len(content)), info.Size())
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

// TestLocalStoreNestedDirectories 测试嵌套目录按需创建
func TestLocalStoreNestedDirectories(t *testing.T) {
	store := newTestLocalStore(t)

	err := store.PutObject(context.Background(), "a/b/c/file.txt", strings.NewReader("x"), 1, "text/plain")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(store.rootDir, "a", "b", "c", "file.txt"))
	assert.NoError(t, err)
}

// TestLocalStoreObjectURL 测试本地对象URL的格式稳定性
func TestLocalStoreObjectURL(t *testing.T) {
	store := newTestLocalStore(t)

	url, err := store.ObjectURL(context.Background(), "user-1/abc-my file.txt", "my file.txt", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1/files/local/user-1/abc-my%20file.txt", url)

	// 本地URL不包含签名，忽略有效期参数，重复生成结果一致
	again, err := store.ObjectURL(context.Background(), "user-1/abc-my file.txt", "my file.txt", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, url, again)
}

// TestLocalStoreTraversalRejected 测试路径穿越键被拒绝
func TestLocalStoreTraversalRejected(t *testing.T) {
	store := newTestLocalStore(t)
	ctx := context.Background()

	for _, key := range []string{
		"../outside.txt",
		"a/../../outside.txt",
		"/etc/passwd",
		"..",
		"",
	} {
		err := store.PutObject(ctx, key, strings.NewReader("x"), 1, "text/plain")
		assert.Error(t, err, "key %q should be rejected", key)

		_, _, err = store.Open(key)
		assert.Error(t, err, "key %q should be rejected", key)
	}
}

// TestLocalStoreDeleteIdempotent 测试删除不存在的对象视为成功
func TestLocalStoreDeleteIdempotent(t *testing.T) {
	store := newTestLocalStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutObject(ctx, "k/v.bin", strings.NewReader("x"), 1, "application/octet-stream"))
	require.NoError(t, store.DeleteObject(ctx, "k/v.bin"))

	// 再次删除同一对象不报错
	assert.NoError(t, store.DeleteObject(ctx, "k/v.bin"))
}

// TestLocalStoreTestConnection 测试可写性探测
func TestLocalStoreTestConnection(t *testing.T) {
	store := newTestLocalStore(t)
	assert.NoError(t, store.TestConnection(context.Background()))
}
