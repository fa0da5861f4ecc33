// Package file 提供文件管理相关的业务逻辑服务
// 包含匿名上传、用户文件管理、分享链接和存储统计等核心功能
// 所有访问控制决策（能力凭证校验、所有权校验）都在本包内完成，
// HTTP层只负责解析请求和传递已验证的用户身份
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/weiwangfds/filevault/internal/database"
	apperrors "github.com/weiwangfds/filevault/internal/errors"
	"github.com/weiwangfds/filevault/internal/logger"
	"github.com/weiwangfds/filevault/internal/repository"
	"github.com/weiwangfds/filevault/internal/storage"
)

// 下载链接有效期
const (
	downloadURLTTL = time.Hour
	// 生成匿名文件标识符时的碰撞重试上限
	maxIDGenerationRetries = 5
)

// AnonymousUploadResult 匿名上传结果
// SecretKey只在本次响应中出现一次，之后无法再次获取
type AnonymousUploadResult struct {
	FileID    string `json:"file_id"`
	SecretKey string `json:"secret_key"`
	FileName  string `json:"file_name"`
	FileSize  int64  `json:"file_size"`
	URL       string `json:"url"`
}

// FileView 用户文件视图，包含按需生成的下载链接
type FileView struct {
	ID          uint      `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	FileSize    int64     `json:"file_size"`
	IsPublic    bool      `json:"is_public"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ShareLink 分享链接结果
type ShareLink struct {
	AccessToken string `json:"access_token"`
	ShareURL    string `json:"share_url"`
}

// SharedFile 通过分享令牌解析出的文件信息
type SharedFile struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"`
	URL         string `json:"url"`
}

// FileService 文件服务接口
// 编排对象存储和元数据仓库，实现上传、下载链接签发、列表、删除和分享
type FileService interface {
	// UploadAnonymous 匿名上传文件
	// 生成(file_id, secret_key)能力凭证对，凭证对是后续下载的唯一依据
	UploadAnonymous(ctx context.Context, fileName, contentType string, size int64, reader io.Reader) (*AnonymousUploadResult, error)

	// AnonymousDownloadURL 用能力凭证对换取下载链接
	// 凭证任一半不匹配都返回统一的拒绝错误
	AnonymousDownloadURL(ctx context.Context, fileID, secretKey string) (string, error)

	// UploadOwned 认证用户上传文件
	UploadOwned(ctx context.Context, userID uint, fileName, contentType string, size int64, reader io.Reader) (*FileView, error)

	// ListUserFiles 列出用户的全部文件，每个文件附带新签发的下载链接
	ListUserFiles(ctx context.Context, userID uint) ([]FileView, error)

	// CountUserFiles 统计用户文件数量
	CountUserFiles(ctx context.Context, userID uint) (int64, error)

	// GetFileMetadata 获取单个文件的元数据
	// 所有者或公开文件可读
	GetFileMetadata(ctx context.Context, fileID, callerUserID uint) (*FileView, error)

	// OwnedDownloadURL 签发用户文件的下载链接
	OwnedDownloadURL(ctx context.Context, fileID, callerUserID uint) (string, error)

	// DeleteFile 删除用户文件
	// 先尽力删除存储对象（失败只记录日志），再删除元数据记录
	DeleteFile(ctx context.Context, fileID, callerUserID uint) error

	// CreateShareLink 创建公开分享链接
	// 每次调用轮换分享令牌并将文件标记为公开
	CreateShareLink(ctx context.Context, fileID, callerUserID uint) (*ShareLink, error)

	// ResolveShared 通过分享令牌解析文件并签发下载链接
	ResolveShared(ctx context.Context, accessToken string) (*SharedFile, error)

	// Usage 计算用户存储用量
	Usage(ctx context.Context, userID uint) (*StorageUsage, error)

	// Stats 计算用户文件统计信息
	Stats(ctx context.Context, userID uint) (*UserStats, error)

	// ServeLocal 打开本地存储后端中的对象，仅在本地后端下可用
	ServeLocal(key string) (io.ReadCloser, int64, error)
}

// fileService 文件服务实现
type fileService struct {
	repo       *repository.FileRepository
	store      storage.ObjectStore
	quotaLimit int64
	baseURL    string
}

// NewFileService 创建文件服务实例
func NewFileService(repo *repository.FileRepository, store storage.ObjectStore, quotaLimit int64, baseURL string) FileService {
	return &fileService{
		repo:       repo,
		store:      store,
		quotaLimit: quotaLimit,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// UploadAnonymous 匿名上传
// 顺序固定：生成凭证 -> 写入对象存储 -> 插入记录
// 对象写入失败则整个操作失败，不留下任何记录；
// 记录插入失败时对象成为孤儿，仅记录日志——孤儿对象没有指向它的记录，无法被访问
func (s *fileService) UploadAnonymous(ctx context.Context, fileName, contentType string, size int64, reader io.Reader) (*AnonymousUploadResult, error) {
	fileID, err := s.newUniqueFileID()
	if err != nil {
		return nil, err
	}
	secretKey, err := generateSecretKey()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, "failed to generate secret key", err)
	}

	storageKey := anonymousStorageKey(fileID, fileName)
	if err := s.store.PutObject(ctx, storageKey, reader, size, contentType); err != nil {
		logger.Errorf("Anonymous upload failed at storage put, key: %s, error: %v", storageKey, err)
		return nil, apperrors.Wrap(apperrors.ErrFileUploadFailed, "failed to store uploaded file", err)
	}

	record := &database.AnonymousFile{
		FileID:      fileID,
		SecretKey:   secretKey,
		FileName:    fileName,
		ContentType: contentType,
		FileSize:    size,
		StorageKey:  storageKey,
	}
	if err := s.repo.InsertAnonymous(record); err != nil {
		// 对象已写入但记录插入失败，对象成为孤儿
		logger.Errorf("Anonymous upload left orphaned object, key: %s, error: %v", storageKey, err)
		return nil, apperrors.Wrap(apperrors.ErrFileUploadFailed, "failed to persist file record", err)
	}

	url, err := s.store.ObjectURL(ctx, storageKey, fileName, downloadURLTTL)
	if err != nil {
		// 记录已成功持久化，链接可以稍后通过下载接口重新获取
		logger.Warnf("Failed to sign initial URL for anonymous file %s: %v", fileID, err)
		url = ""
	}

	logger.Infof("Anonymous file uploaded, file_id: %s, size: %d", fileID, size)
	return &AnonymousUploadResult{
		FileID:    fileID,
		SecretKey: secretKey,
		FileName:  fileName,
		FileSize:  size,
		URL:       url,
	}, nil
}

// newUniqueFileID 生成未被占用的匿名文件标识符
// 标识符空间为16^10，碰撞概率极低，命中时重新生成而不是失败
func (s *fileService) newUniqueFileID() (string, error) {
	for i := 0; i < maxIDGenerationRetries; i++ {
		fileID, err := generateFileID()
		if err != nil {
			return "", apperrors.Wrap(apperrors.ErrInternalServer, "failed to generate file id", err)
		}
		exists, err := s.repo.AnonymousFileIDExists(fileID)
		if err != nil {
			return "", apperrors.Wrap(apperrors.ErrDatabaseQuery, "failed to check file id uniqueness", err)
		}
		if !exists {
			return fileID, nil
		}
		logger.Warnf("File id collision detected, regenerating: %s", fileID)
	}
	return "", apperrors.ErrInternalServerError.WithDetails("exhausted file id generation retries")
}

// UploadOwned 认证用户上传
// 存储键按用户划分命名空间，原子性语义与匿名上传一致
func (s *fileService) UploadOwned(ctx context.Context, userID uint, fileName, contentType string, size int64, reader io.Reader) (*FileView, error) {
	storageKey := ownedStorageKey(userID, fileName)

	if err := s.store.PutObject(ctx, storageKey, reader, size, contentType); err != nil {
		logger.Errorf("Owned upload failed at storage put, user: %d, key: %s, error: %v", userID, storageKey, err)
		return nil, apperrors.Wrap(apperrors.ErrFileUploadFailed, "failed to store uploaded file", err)
	}

	record := &database.UserFile{
		UserID:      userID,
		FileName:    fileName,
		ContentType: contentType,
		FileSize:    size,
		StorageKey:  storageKey,
	}
	if err := s.repo.InsertOwned(record); err != nil {
		logger.Errorf("Owned upload left orphaned object, key: %s, error: %v", storageKey, err)
		return nil, apperrors.Wrap(apperrors.ErrFileUploadFailed, "failed to persist file record", err)
	}

	logger.Infof("User file uploaded, user: %d, file: %d, size: %d", userID, record.ID, size)
	return &FileView{
		ID:          record.ID,
		FileName:    record.FileName,
		ContentType: record.ContentType,
		FileSize:    record.FileSize,
		IsPublic:    record.IsPublic,
		CreatedAt:   record.CreatedAt,
	}, nil
}

// ListUserFiles 列出用户文件
// 远端后端的签名链接有时效性，每次列表都重新签发
func (s *fileService) ListUserFiles(ctx context.Context, userID uint) ([]FileView, error) {
	files, err := s.repo.ListOwnedByUser(userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "failed to list user files", err)
	}

	views := make([]FileView, 0, len(files))
	for _, f := range files {
		url, err := s.store.ObjectURL(ctx, f.StorageKey, f.FileName, downloadURLTTL)
		if err != nil {
			logger.Warnf("Failed to sign URL for file %d: %v", f.ID, err)
			url = ""
		}
		views = append(views, FileView{
			ID:          f.ID,
			FileName:    f.FileName,
			ContentType: f.ContentType,
			FileSize:    f.FileSize,
			IsPublic:    f.IsPublic,
			URL:         url,
			CreatedAt:   f.CreatedAt,
		})
	}
	return views, nil
}

// CountUserFiles 统计用户文件数量
func (s *fileService) CountUserFiles(ctx context.Context, userID uint) (int64, error) {
	count, err := s.repo.CountOwnedByUser(userID)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabaseQuery, "failed to count user files", err)
	}
	return count, nil
}

// GetFileMetadata 获取文件元数据
func (s *fileService) GetFileMetadata(ctx context.Context, fileID, callerUserID uint) (*FileView, error) {
	record, err := s.resolveForRead(fileID, callerUserID)
	if err != nil {
		return nil, err
	}
	return &FileView{
		ID:          record.ID,
		FileName:    record.FileName,
		ContentType: record.ContentType,
		FileSize:    record.FileSize,
		IsPublic:    record.IsPublic,
		CreatedAt:   record.CreatedAt,
	}, nil
}

// OwnedDownloadURL 签发用户文件的下载链接
func (s *fileService) OwnedDownloadURL(ctx context.Context, fileID, callerUserID uint) (string, error) {
	record, err := s.resolveForRead(fileID, callerUserID)
	if err != nil {
		return "", err
	}
	url, err := s.store.ObjectURL(ctx, record.StorageKey, record.FileName, downloadURLTTL)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrStorageURLFailed, "failed to sign download URL", err)
	}
	return url, nil
}

// DeleteFile 删除用户文件
// 顺序固定：先尝试删除存储对象，再删除元数据记录。
// 存储删除失败不阻止记录删除，避免后端临时不可用时记录卡死；
// 代价是可能留下孤儿对象，通过日志可追溯
func (s *fileService) DeleteFile(ctx context.Context, fileID, callerUserID uint) error {
	record, err := s.resolveForWrite(fileID, callerUserID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteObject(ctx, record.StorageKey); err != nil {
		logger.Errorf("Failed to delete storage object %s, proceeding with record deletion: %v", record.StorageKey, err)
	}

	affected, err := s.repo.DeleteOwned(record.ID, callerUserID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseDelete, "failed to delete file record", err)
	}
	if affected == 0 {
		// 解析和删除之间记录已消失，按统一的拒绝语义处理
		return apperrors.ErrFileNotFoundOrDeniedError
	}

	logger.Infof("User file deleted, user: %d, file: %d", callerUserID, fileID)
	return nil
}

// CreateShareLink 创建公开分享链接
func (s *fileService) CreateShareLink(ctx context.Context, fileID, callerUserID uint) (*ShareLink, error) {
	token, err := s.mint(fileID, callerUserID)
	if err != nil {
		return nil, err
	}
	return &ShareLink{
		AccessToken: token,
		ShareURL:    fmt.Sprintf("%s/api/v1/shared/%s", s.baseURL, token),
	}, nil
}

// ResolveShared 通过分享令牌解析文件
func (s *fileService) ResolveShared(ctx context.Context, accessToken string) (*SharedFile, error) {
	record, err := s.repo.FindOwnedByAccessToken(accessToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFileNotFoundOrDeniedError
		}
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "failed to resolve share token", err)
	}

	url, err := s.store.ObjectURL(ctx, record.StorageKey, record.FileName, downloadURLTTL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageURLFailed, "failed to sign download URL", err)
	}
	return &SharedFile{
		FileName:    record.FileName,
		ContentType: record.ContentType,
		FileSize:    record.FileSize,
		URL:         url,
	}, nil
}

// ServeLocal 打开本地存储对象
// 仅当部署选择了本地后端时，本地文件服务路由才可用
func (s *fileService) ServeLocal(key string) (io.ReadCloser, int64, error) {
	local, ok := s.store.(*storage.LocalStore)
	if !ok {
		return nil, 0, apperrors.ErrFileNotFoundOrDeniedError
	}
	f, info, err := local.Open(key)
	if err != nil {
		return nil, 0, apperrors.ErrFileNotFoundOrDeniedError
	}
	return f, info.Size(), nil
}
