package file

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGenerateFileIDFormat 测试匿名文件标识符格式
func TestGenerateFileIDFormat(t *testing.T) {
	hexPattern := regexp.MustCompile(`^[0-9a-f]{10}$`)
	for i := 0; i < 100; i++ {
		id, err := generateFileID()
		require.NoError(t, err)
		assert.Regexp(t, hexPattern, id)
	}
}

// TestGenerateSecretKeyFormat 测试下载密钥格式
func TestGenerateSecretKeyFormat(t *testing.T) {
	key, err := generateSecretKey()
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{32}$`, key)
}

// TestGenerateAccessTokenFormat 测试分享令牌格式
func TestGenerateAccessTokenFormat(t *testing.T) {
	token, err := generateAccessToken()
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{32}$`, token)
}

// TestGeneratedIdentifiersDistinct 测试随机标识符不重复
func TestGeneratedIdentifiersDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		key, err := generateSecretKey()
		require.NoError(t, err)
		require.False(t, seen[key], "duplicate secret key generated")
		seen[key] = true
	}
}

// TestOwnedStorageKeyNamespaced 测试用户存储键按用户划分命名空间
func TestOwnedStorageKeyNamespaced(t *testing.T) {
	key := ownedStorageKey(42, "report.pdf")
	assert.True(t, strings.HasPrefix(key, "user-42/"))
	assert.True(t, strings.HasSuffix(key, "-report.pdf"))

	// 同一用户同名文件的两次上传使用不同的存储键
	other := ownedStorageKey(42, "report.pdf")
	assert.NotEqual(t, key, other)
}

// TestAnonymousStorageKey 测试匿名存储键构造
func TestAnonymousStorageKey(t *testing.T) {
	assert.Equal(t, "a1b2c3d4e5-notes.txt", anonymousStorageKey("a1b2c3d4e5", "notes.txt"))
}
