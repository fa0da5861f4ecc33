// 本文件实现阿里云OSS（Object Storage Service）存储后端
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/weiwangfds/filevault/config"
	"github.com/weiwangfds/filevault/internal/errors"
	"github.com/weiwangfds/filevault/internal/logger"
)

// AliyunStore 阿里云OSS存储提供商实现
type AliyunStore struct {
	client *oss.Client // 阿里云OSS客户端实例
	bucket *oss.Bucket // OSS存储桶实例
	cfg    config.StorageConfig
}

// NewAliyunStore 创建阿里云OSS存储提供商实例
// 参数:
//   - cfg: 存储配置信息，包含访问密钥、区域、存储桶等
// 返回:
//   - *AliyunStore: 初始化完成的阿里云OSS提供商实例
//   - error: 初始化过程中的错误信息
func NewAliyunStore(cfg config.StorageConfig) (*AliyunStore, error) {
	// 构建endpoint
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://oss-%s.aliyuncs.com", cfg.Region)
	}
	logger.Infof("[阿里云OSS] 创建客户端实例, 域名: %s, 存储桶: %s", endpoint, cfg.Bucket)

	client, err := oss.New(endpoint, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorageNotSupported, "failed to create aliyun oss client", err)
	}

	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorageNotSupported, "failed to get aliyun oss bucket", err)
	}

	return &AliyunStore{
		client: client,
		bucket: bucket,
		cfg:    cfg,
	}, nil
}

// PutObject 上传对象到阿里云OSS
func (p *AliyunStore) PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	options := []oss.Option{}
	if contentType != "" {
		options = append(options, oss.ContentType(contentType))
	}

	if err := p.bucket.PutObject(key, reader, options...); err != nil {
		logger.Errorf("[阿里云OSS] 上传文件失败, 对象键: %s, 错误: %v", key, err)
		return errors.Wrap(errors.ErrStoragePutFailed, "failed to upload object to aliyun oss", err)
	}
	return nil
}

// ObjectURL 生成带签名的临时下载链接
func (p *AliyunStore) ObjectURL(ctx context.Context, key string, fileName string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	signedURL, err := p.bucket.SignURL(key, oss.HTTPGet, int64(ttl.Seconds()),
		oss.ResponseContentDisposition(fmt.Sprintf("attachment; filename=%q", fileName)))
	if err != nil {
		logger.Errorf("[阿里云OSS] 生成签名链接失败, 对象键: %s, 错误: %v", key, err)
		return "", errors.Wrap(errors.ErrStorageURLFailed, "failed to sign aliyun oss object url", err)
	}
	return signedURL, nil
}

// DeleteObject 删除阿里云OSS对象
func (p *AliyunStore) DeleteObject(ctx context.Context, key string) error {
	if err := p.bucket.DeleteObject(key); err != nil {
		logger.Errorf("[阿里云OSS] 删除文件失败, 对象键: %s, 错误: %v", key, err)
		return errors.Wrap(errors.ErrStorageDeleteFailed, "failed to delete object from aliyun oss", err)
	}
	return nil
}

// TestConnection 测试连接
// 通过获取存储桶信息来验证OSS连接是否正常
func (p *AliyunStore) TestConnection(ctx context.Context) error {
	if _, err := p.client.GetBucketInfo(p.cfg.Bucket); err != nil {
		return errors.Wrap(errors.ErrStorageNotSupported, "failed to test aliyun oss connection", err)
	}
	logger.Infof("[阿里云OSS] 连接测试成功, 存储桶: %s", p.cfg.Bucket)
	return nil
}
