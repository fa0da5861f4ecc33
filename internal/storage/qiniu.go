// 本文件实现七牛云Kodo存储后端
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/qiniu/go-sdk/v7/auth/qbox"
	qiniustorage "github.com/qiniu/go-sdk/v7/storage"

	"github.com/weiwangfds/filevault/config"
	"github.com/weiwangfds/filevault/internal/errors"
	"github.com/weiwangfds/filevault/internal/logger"
)

// QiniuStore 七牛云Kodo存储提供商实现
type QiniuStore struct {
	mac          *qbox.Mac           // 七牛云认证凭证
	bucketName   string              // 存储桶名称
	bucketDomain string              // 存储桶访问域名
	region       *qiniustorage.Region // 存储区域信息
}

// NewQiniuStore 创建七牛云Kodo存储提供商实例
func NewQiniuStore(cfg config.StorageConfig) (*QiniuStore, error) {
	mac := qbox.NewMac(cfg.AccessKey, cfg.SecretKey)

	region, err := qiniustorage.GetRegion(cfg.AccessKey, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorageNotSupported, "failed to get qiniu region", err)
	}

	// 私有链接签名需要存储桶绑定的访问域名
	bucketDomain := cfg.Endpoint
	if bucketDomain == "" {
		bucketDomain = fmt.Sprintf("%s.%s", cfg.Bucket, region.RsHost)
	}
	logger.Infof("[七牛云Kodo] 初始化完成, 存储桶: %s, 域名: %s", cfg.Bucket, bucketDomain)

	return &QiniuStore{
		mac:          mac,
		bucketName:   cfg.Bucket,
		bucketDomain: bucketDomain,
		region:       region,
	}, nil
}

// PutObject 上传对象到七牛云Kodo
func (p *QiniuStore) PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	putPolicy := qiniustorage.PutPolicy{
		Scope: fmt.Sprintf("%s:%s", p.bucketName, key),
	}
	upToken := putPolicy.UploadToken(p.mac)

	cfg := qiniustorage.Config{
		Region:        p.region,
		UseHTTPS:      true,
		UseCdnDomains: false,
	}

	formUploader := qiniustorage.NewFormUploader(&cfg)
	ret := qiniustorage.PutRet{}
	putExtra := qiniustorage.PutExtra{}
	if contentType != "" {
		putExtra.MimeType = contentType
	}

	if size <= 0 {
		size = -1
	}
	if err := formUploader.Put(ctx, &ret, upToken, key, reader, size, &putExtra); err != nil {
		logger.Errorf("[七牛云Kodo] 上传文件失败: 对象键=%s, 错误=%v", key, err)
		return errors.Wrap(errors.ErrStoragePutFailed, "failed to upload object to qiniu kodo", err)
	}
	return nil
}

// ObjectURL 生成带签名的私有下载链接
func (p *QiniuStore) ObjectURL(ctx context.Context, key string, fileName string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	deadline := time.Now().Add(ttl).Unix()
	privateURL := qiniustorage.MakePrivateURLv2WithQuery(p.mac, p.bucketDomain, key,
		url.Values{"attname": []string{fileName}}, deadline)
	return privateURL, nil
}

// DeleteObject 删除七牛云Kodo对象
func (p *QiniuStore) DeleteObject(ctx context.Context, key string) error {
	bucketManager := qiniustorage.NewBucketManager(p.mac, &qiniustorage.Config{
		Region: p.region,
	})
	if err := bucketManager.Delete(p.bucketName, key); err != nil {
		logger.Errorf("[七牛云Kodo] 删除文件失败: 对象键=%s, 错误=%v", key, err)
		return errors.Wrap(errors.ErrStorageDeleteFailed, "failed to delete object from qiniu kodo", err)
	}
	return nil
}

// TestConnection 测试连接
// 尝试列出存储桶中的文件（限制为1个）验证凭证和区域配置
func (p *QiniuStore) TestConnection(ctx context.Context) error {
	bucketManager := qiniustorage.NewBucketManager(p.mac, &qiniustorage.Config{
		Region: p.region,
	})
	_, _, _, _, err := bucketManager.ListFiles(p.bucketName, "", "", "", 1)
	if err != nil {
		return errors.Wrap(errors.ErrStorageNotSupported, "failed to test qiniu kodo connection", err)
	}
	logger.Infof("[七牛云Kodo] 连接测试成功: %s", p.bucketName)
	return nil
}
