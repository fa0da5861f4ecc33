// 本文件实现腾讯云COS存储后端
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	cos "github.com/tencentyun/cos-go-sdk-v5"

	"github.com/weiwangfds/filevault/config"
	"github.com/weiwangfds/filevault/internal/errors"
	"github.com/weiwangfds/filevault/internal/logger"
)

// TencentStore 腾讯云COS存储提供商实现
type TencentStore struct {
	client    *cos.Client
	accessKey string
	secretKey string
}

// NewTencentStore 创建腾讯云COS存储提供商实例
func NewTencentStore(cfg config.StorageConfig) (*TencentStore, error) {
	// 构建URL
	bucketURL := fmt.Sprintf("https://%s.cos.%s.myqcloud.com", cfg.Bucket, cfg.Region)
	if cfg.Endpoint != "" {
		bucketURL = cfg.Endpoint
	}

	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorageNotSupported, "failed to parse cos bucket URL", err)
	}

	// 创建COS客户端
	client := cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		},
	})

	return &TencentStore{
		client:    client,
		accessKey: cfg.AccessKey,
		secretKey: cfg.SecretKey,
	}, nil
}

// PutObject 上传对象到腾讯云COS
func (p *TencentStore) PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	options := &cos.ObjectPutOptions{}
	if contentType != "" {
		options.ObjectPutHeaderOptions = &cos.ObjectPutHeaderOptions{
			ContentType: contentType,
		}
	}

	if _, err := p.client.Object.Put(ctx, key, reader, options); err != nil {
		logger.Errorf("[腾讯云COS] 上传文件失败, 对象键: %s, 错误: %v", key, err)
		return errors.Wrap(errors.ErrStoragePutFailed, "failed to upload object to tencent cos", err)
	}
	return nil
}

// ObjectURL 生成带签名的临时下载链接
func (p *TencentStore) ObjectURL(ctx context.Context, key string, fileName string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	opt := &cos.PresignedURLOptions{
		Query: &url.Values{},
	}
	opt.Query.Add("response-content-disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	presigned, err := p.client.Object.GetPresignedURL(ctx, http.MethodGet, key,
		p.accessKey, p.secretKey, ttl, opt)
	if err != nil {
		logger.Errorf("[腾讯云COS] 生成签名链接失败, 对象键: %s, 错误: %v", key, err)
		return "", errors.Wrap(errors.ErrStorageURLFailed, "failed to presign tencent cos object url", err)
	}
	return presigned.String(), nil
}

// DeleteObject 删除腾讯云COS对象
func (p *TencentStore) DeleteObject(ctx context.Context, key string) error {
	if _, err := p.client.Object.Delete(ctx, key); err != nil {
		logger.Errorf("[腾讯云COS] 删除文件失败, 对象键: %s, 错误: %v", key, err)
		return errors.Wrap(errors.ErrStorageDeleteFailed, "failed to delete object from tencent cos", err)
	}
	return nil
}

// TestConnection 测试连接
func (p *TencentStore) TestConnection(ctx context.Context) error {
	if _, err := p.client.Bucket.Head(ctx); err != nil {
		return errors.Wrap(errors.ErrStorageNotSupported, "failed to test tencent cos connection", err)
	}
	logger.Info("[腾讯云COS] 连接测试成功")
	return nil
}
