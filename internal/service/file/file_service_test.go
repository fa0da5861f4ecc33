package file

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/weiwangfds/filevault/internal/database"
	apperrors "github.com/weiwangfds/filevault/internal/errors"
	"github.com/weiwangfds/filevault/internal/repository"
)

// memoryStore 内存对象存储测试替身
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	// 注入的故障开关
	failPut    bool
	failDelete bool
	urlCalls   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (m *memoryStore) PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if m.failPut {
		return fmt.Errorf("injected put failure")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memoryStore) ObjectURL(ctx context.Context, key string, fileName string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urlCalls++
	// 每次调用生成新的"签名"，模拟远端后端的行为
	return fmt.Sprintf("https://store.test/%s?sig=%d", key, m.urlCalls), nil
}

func (m *memoryStore) DeleteObject(ctx context.Context, key string) error {
	if m.failDelete {
		return fmt.Errorf("injected delete failure")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryStore) TestConnection(ctx context.Context) error {
	return nil
}

func (m *memoryStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

const testQuotaLimit = int64(2) * 1024 * 1024 * 1024

// setupService 设置测试服务
func setupService(t *testing.T) (FileService, *memoryStore, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	store := newMemoryStore()
	svc := NewFileService(repository.NewFileRepository(db), store, testQuotaLimit, "http://localhost:8080")
	return svc, store, db
}

func uploadAnon(t *testing.T, svc FileService, name, contentType, content string) *AnonymousUploadResult {
	res, err := svc.UploadAnonymous(context.Background(), name, contentType, int64(len(content)), strings.NewReader(content))
	require.NoError(t, err)
	return res
}

func uploadOwned(t *testing.T, svc FileService, userID uint, name, contentType, content string) *FileView {
	view, err := svc.UploadOwned(context.Background(), userID, name, contentType, int64(len(content)), strings.NewReader(content))
	require.NoError(t, err)
	return view
}

// TestAnonymousUploadAndDownload 测试匿名上传与凭证下载（场景：report.pdf）
func TestAnonymousUploadAndDownload(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	content := string(bytes.Repeat([]byte("x"), 1000))
	res := uploadAnon(t, svc, "report.pdf", "application/pdf", content)

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{10}$`), res.FileID)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), res.SecretKey)
	assert.Equal(t, int64(1000), res.FileSize)
	assert.True(t, store.has(res.FileID+"-report.pdf"))

	// 正确凭证对换取下载链接
	url, err := svc.AnonymousDownloadURL(ctx, res.FileID, res.SecretKey)
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	// 错误密钥被统一拒绝
	_, err = svc.AnonymousDownloadURL(ctx, res.FileID, strings.Repeat("0", 32))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrFileNotFoundOrDenied))
}

// TestCapabilityDenialSymmetry 测试凭证拒绝的对称性
// 密钥错误和标识符不存在必须返回完全相同的错误
func TestCapabilityDenialSymmetry(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	res := uploadAnon(t, svc, "a.txt", "text/plain", "hello")

	_, errWrongKey := svc.AnonymousDownloadURL(ctx, res.FileID, strings.Repeat("f", 32))
	_, errNoFile := svc.AnonymousDownloadURL(ctx, "ffffffffff", res.SecretKey)

	require.Error(t, errWrongKey)
	require.Error(t, errNoFile)
	assert.Equal(t, errWrongKey.Error(), errNoFile.Error())
}

// TestCapabilityUniqueness 测试多次上传的标识符互不相同
func TestCapabilityUniqueness(t *testing.T) {
	svc, _, _ := setupService(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		res := uploadAnon(t, svc, fmt.Sprintf("f%d.txt", i), "text/plain", "x")
		require.False(t, seen[res.FileID], "duplicate file_id issued")
		seen[res.FileID] = true
	}
}

// TestOrphanBound 测试记录插入失败时的孤儿对象边界
// 对象写入成功但记录插入失败时，存储中保留字节但没有任何记录指向它
func TestOrphanBound(t *testing.T) {
	svc, store, db := setupService(t)
	ctx := context.Background()

	uploadAnon(t, svc, "first.txt", "text/plain", "v1")

	// 用触发器模拟记录插入失败，查询不受影响
	require.NoError(t, db.Exec(
		`CREATE TRIGGER block_insert BEFORE INSERT ON anonymous_files BEGIN SELECT RAISE(ABORT, 'insert blocked'); END`,
	).Error)

	_, err := svc.UploadAnonymous(ctx, "second.txt", "text/plain", 2, strings.NewReader("v2"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrFileUploadFailed))

	// 第二个对象成为孤儿：字节在存储中，但没有任何记录指向它
	assert.Equal(t, 2, store.count())
	var count int64
	require.NoError(t, db.Model(&database.AnonymousFile{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// TestUploadAtomicOnPutFailure 测试对象写入失败时不留下记录
func TestUploadAtomicOnPutFailure(t *testing.T) {
	svc, store, db := setupService(t)
	store.failPut = true

	_, err := svc.UploadAnonymous(context.Background(), "x.txt", "text/plain", 1, strings.NewReader("x"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrFileUploadFailed))

	var count int64
	require.NoError(t, db.Model(&database.AnonymousFile{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

// TestOwnershipIsolation 测试所有权隔离（场景：B删除A的文件）
func TestOwnershipIsolation(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	const userA, userB = uint(1), uint(2)
	view := uploadOwned(t, svc, userA, "a.txt", "text/plain", "private")

	// B的读取、下载、删除、分享全部被统一拒绝
	_, err := svc.GetFileMetadata(ctx, view.ID, userB)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrFileNotFoundOrDenied))

	_, err = svc.OwnedDownloadURL(ctx, view.ID, userB)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrFileNotFoundOrDenied))

	err = svc.DeleteFile(ctx, view.ID, userB)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrFileNotFoundOrDenied))

	_, err = svc.CreateShareLink(ctx, view.ID, userB)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrFileNotFoundOrDenied))

	// A的记录在B的删除尝试后完好无损
	got, err := svc.GetFileMetadata(ctx, view.ID, userA)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", got.FileName)
}

// TestPublicReadNeverGrantsWrite 测试公开可见不授予写权限
func TestPublicReadNeverGrantsWrite(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	const userA, userB = uint(1), uint(2)
	view := uploadOwned(t, svc, userA, "shared.png", "image/png", "img")

	_, err := svc.CreateShareLink(ctx, view.ID, userA)
	require.NoError(t, err)

	// 公开后B可以读取
	got, err := svc.GetFileMetadata(ctx, view.ID, userB)
	require.NoError(t, err)
	assert.True(t, got.IsPublic)

	_, err = svc.OwnedDownloadURL(ctx, view.ID, userB)
	assert.NoError(t, err)

	// 但删除和分享仍然被拒绝
	err = svc.DeleteFile(ctx, view.ID, userB)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrFileNotFoundOrDenied))

	_, err = svc.CreateShareLink(ctx, view.ID, userB)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrFileNotFoundOrDenied))
}

// TestSharePairingInvariant 测试公开标记与令牌的配对不变式
func TestSharePairingInvariant(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	view := uploadOwned(t, svc, 1, "doc.pdf", "application/pdf", "pdf")

	link, err := svc.CreateShareLink(ctx, view.ID, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, link.AccessToken)
	assert.Contains(t, link.ShareURL, "/api/v1/shared/"+link.AccessToken)

	var record database.UserFile
	require.NoError(t, db.First(&record, view.ID).Error)
	assert.True(t, record.IsPublic)
	require.True(t, record.AccessToken.Valid)
	assert.Equal(t, link.AccessToken, record.AccessToken.String)

	// 第二次铸造轮换令牌，配对不变式始终成立
	second, err := svc.CreateShareLink(ctx, view.ID, 1)
	require.NoError(t, err)
	assert.NotEqual(t, link.AccessToken, second.AccessToken)

	require.NoError(t, db.First(&record, view.ID).Error)
	assert.True(t, record.IsPublic)
	require.True(t, record.AccessToken.Valid)
	assert.Equal(t, second.AccessToken, record.AccessToken.String)

	// 旧令牌失效，新令牌可解析
	_, err = svc.ResolveShared(ctx, link.AccessToken)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrFileNotFoundOrDenied))

	shared, err := svc.ResolveShared(ctx, second.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "doc.pdf", shared.FileName)
}

// TestDeletionFinality 测试删除的终局性
func TestDeletionFinality(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	view := uploadOwned(t, svc, 1, "gone.txt", "text/plain", "bye")
	require.NoError(t, svc.DeleteFile(ctx, view.ID, 1))

	// 后续任何解析都被拒绝，存储对象已删除
	_, err := svc.GetFileMetadata(ctx, view.ID, 1)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrFileNotFoundOrDenied))
	assert.Equal(t, 0, store.count())
}

// TestDeleteSwallowsStorageFailure 测试存储删除失败不阻止记录删除
func TestDeleteSwallowsStorageFailure(t *testing.T) {
	svc, store, db := setupService(t)
	ctx := context.Background()

	view := uploadOwned(t, svc, 1, "stuck.bin", "application/octet-stream", "data")
	store.failDelete = true

	// 存储后端故障时删除仍然成功，记录被移除
	require.NoError(t, svc.DeleteFile(ctx, view.ID, 1))

	var count int64
	require.NoError(t, db.Model(&database.UserFile{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// 对象留在存储中成为孤儿
	assert.Equal(t, 1, store.count())
}

// TestUsageComputation 测试存储用量计算（1,000,000字节）
func TestUsageComputation(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	content := string(bytes.Repeat([]byte("a"), 1000))
	_, err := svc.UploadOwned(ctx, 1, "big.bin", "application/octet-stream", 1000000, strings.NewReader(content))
	require.NoError(t, err)

	usage, err := svc.Usage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), usage.UsedBytes)
	assert.Equal(t, testQuotaLimit, usage.LimitBytes)
	assert.InDelta(t, float64(1000000)/float64(testQuotaLimit)*100, usage.UsedPercent, 1e-9)

	// 其他用户的用量不受影响
	other, err := svc.Usage(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), other.UsedBytes)
}

// TestStatsBreakdown 测试文件统计分类
func TestStatsBreakdown(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	uploadOwned(t, svc, 1, "p.png", "image/png", "1")
	uploadOwned(t, svc, 1, "v.mp4", "video/mp4", "22")
	uploadOwned(t, svc, 1, "s.mp3", "audio/mpeg", "333")
	uploadOwned(t, svc, 1, "d.pdf", "application/pdf", "4444")
	uploadOwned(t, svc, 1, "z.zip", "application/zip", "55555")
	shared := uploadOwned(t, svc, 1, "w.txt", "text/plain", "666666")

	_, err := svc.CreateShareLink(ctx, shared.ID, 1)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(6), stats.TotalFiles)
	assert.Equal(t, int64(1+2+3+4+5+6), stats.TotalSize)
	assert.Equal(t, int64(1), stats.Categories[categoryImages])
	assert.Equal(t, int64(1), stats.Categories[categoryVideos])
	assert.Equal(t, int64(1), stats.Categories[categoryAudio])
	assert.Equal(t, int64(2), stats.Categories[categoryDocuments]) // pdf + txt
	assert.Equal(t, int64(1), stats.Categories[categoryApplications])
	assert.Equal(t, int64(6), stats.RecentUploads)
	assert.Equal(t, int64(1), stats.PublicFiles)
}

// TestListUserFilesFreshURLs 测试列表为每个文件重新签发链接
func TestListUserFilesFreshURLs(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	uploadOwned(t, svc, 1, "one.txt", "text/plain", "1")
	uploadOwned(t, svc, 1, "two.txt", "text/plain", "2")
	uploadOwned(t, svc, 2, "other.txt", "text/plain", "3")

	views, err := svc.ListUserFiles(ctx, 1)
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, v := range views {
		assert.NotEmpty(t, v.URL)
	}

	// 两次列表签发的链接不同（远端签名每次新鲜）
	again, err := svc.ListUserFiles(ctx, 1)
	require.NoError(t, err)
	assert.NotEqual(t, views[0].URL, again[0].URL)

	count, err := svc.CountUserFiles(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
