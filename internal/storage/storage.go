// Package storage 提供统一的对象存储抽象
// 支持S3兼容服务、阿里云OSS、七牛云Kodo、腾讯云COS和本地文件系统五种后端，
// 后端在进程启动时根据配置选定，运行期间不再切换
package storage

import (
	"context"
	"io"
	"time"

	"github.com/weiwangfds/filevault/config"
	"github.com/weiwangfds/filevault/internal/errors"
	"github.com/weiwangfds/filevault/internal/logger"
)

// DefaultURLTTL 下载链接的默认有效期
const DefaultURLTTL = time.Hour

// ObjectStore 对象存储接口
type ObjectStore interface {
	// 上传对象
	PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// 生成对象的下载链接，远端后端返回带签名的临时URL，本地后端返回稳定的服务路由
	ObjectURL(ctx context.Context, key string, fileName string, ttl time.Duration) (string, error)

	// 删除对象
	DeleteObject(ctx context.Context, key string) error

	// 测试连接
	TestConnection(ctx context.Context) error
}

// Factory 存储提供商工厂
type Factory struct{}

// CreateStore 根据配置创建存储提供商实例
func (f *Factory) CreateStore(cfg config.StorageConfig, baseURL string) (ObjectStore, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3Store(cfg)
	case "aliyun":
		return NewAliyunStore(cfg)
	case "qiniu":
		return NewQiniuStore(cfg)
	case "tencent":
		return NewTencentStore(cfg)
	case "local", "":
		return NewLocalStore(cfg.LocalDir, baseURL)
	default:
		return nil, errors.ErrStorageNotSupportedError.WithDetails(cfg.Provider)
	}
}

// New 创建存储提供商并验证连接
// 远端配置缺失或包含占位符时回退到本地文件系统
func New(cfg config.StorageConfig, baseURL string) (ObjectStore, error) {
	effective := cfg
	if !cfg.RemoteConfigured() {
		if cfg.Provider != "" && cfg.Provider != "local" {
			logger.Warnf("Storage provider %s is not fully configured, falling back to local storage", cfg.Provider)
		}
		effective.Provider = "local"
	}

	factory := &Factory{}
	store, err := factory.CreateStore(effective, baseURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.TestConnection(ctx); err != nil {
		return nil, err
	}

	logger.Infof("Storage initialized with provider: %s", effective.Provider)
	return store, nil
}
