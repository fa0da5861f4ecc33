package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/weiwangfds/filevault/internal/errors"
	"github.com/weiwangfds/filevault/internal/logger"
)

// LocalStore 本地文件系统存储提供商
// 对象键直接映射为根目录下的相对路径，嵌套目录按需创建
type LocalStore struct {
	rootDir string
	baseURL string
}

// NewLocalStore 创建本地存储提供商
func NewLocalStore(rootDir, baseURL string) (*LocalStore, error) {
	if rootDir == "" {
		rootDir = "uploads"
	}
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStoragePutFailed, "failed to resolve local storage directory", err)
	}
	if err := os.MkdirAll(absRoot, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrStoragePutFailed, "failed to create local storage directory", err)
	}
	return &LocalStore{
		rootDir: absRoot,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// resolve 将对象键解析为根目录下的绝对路径
// 拒绝任何逃逸出根目录的键，防止路径穿越
func (s *LocalStore) resolve(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || cleaned == "" || filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", errors.ErrFileNotFoundOrDeniedError
	}
	full := filepath.Join(s.rootDir, cleaned)
	if !strings.HasPrefix(full, s.rootDir+string(os.PathSeparator)) {
		return "", errors.ErrFileNotFoundOrDeniedError
	}
	return full, nil
}

// PutObject 将对象写入本地文件系统
func (s *LocalStore) PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	path, err := s.resolve(key)
	if err != nil {
		return errors.ErrStoragePutFailedError.WithDetails("invalid object key: " + key)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrStoragePutFailed, "failed to create object directory", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrStoragePutFailed, "failed to create object file", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, reader); err != nil {
		// 写入失败时清理半成品文件
		os.Remove(path)
		return errors.Wrap(errors.ErrStoragePutFailed, "failed to write object file", err)
	}
	return nil
}

// ObjectURL 返回本地对象的服务路由
// 本地存储没有签名机制，URL稳定不过期，有效期参数被忽略
func (s *LocalStore) ObjectURL(ctx context.Context, key string, fileName string, ttl time.Duration) (string, error) {
	escaped := make([]string, 0, 4)
	for _, part := range strings.Split(key, "/") {
		escaped = append(escaped, url.PathEscape(part))
	}
	return fmt.Sprintf("%s/api/v1/files/local/%s", s.baseURL, strings.Join(escaped, "/")), nil
}

// DeleteObject 删除本地对象
// 对象不存在时视为删除成功
func (s *LocalStore) DeleteObject(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return errors.ErrStorageDeleteFailedError.WithDetails("invalid object key: " + key)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrStorageDeleteFailed, "failed to remove object file", err)
	}
	return nil
}

// Open 打开本地对象用于直接下载服务
func (s *LocalStore) Open(key string) (*os.File, os.FileInfo, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.ErrFileNotFoundOrDeniedError
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, nil, errors.ErrFileNotFoundOrDeniedError
	}
	return f, info, nil
}

// TestConnection 验证根目录可写
func (s *LocalStore) TestConnection(ctx context.Context) error {
	probe := filepath.Join(s.rootDir, ".probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return errors.Wrap(errors.ErrStoragePutFailed, "local storage directory is not writable", err)
	}
	if err := os.Remove(probe); err != nil {
		logger.Warnf("Failed to remove storage probe file: %v", err)
	}
	return nil
}
