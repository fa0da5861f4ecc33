package file

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/weiwangfds/filevault/internal/errors"
	"github.com/weiwangfds/filevault/internal/database"
)

// resolveCapability 校验匿名文件的能力凭证对
// (file_id, secret_key)是不记名凭证，持有即授权，不做身份检查。
// 文件不存在和密钥不匹配返回完全相同的错误，防止通过错误信息枚举file_id
func (s *fileService) resolveCapability(fileID, secretKey string) (*database.AnonymousFile, error) {
	if fileID == "" || secretKey == "" {
		return nil, apperrors.ErrFileNotFoundOrDeniedError
	}

	record, err := s.repo.FindAnonymous(fileID, secretKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFileNotFoundOrDeniedError
		}
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "failed to resolve file capability", err)
	}
	return record, nil
}

// AnonymousDownloadURL 用能力凭证对换取下载链接
func (s *fileService) AnonymousDownloadURL(ctx context.Context, fileID, secretKey string) (string, error) {
	record, err := s.resolveCapability(fileID, secretKey)
	if err != nil {
		return "", err
	}

	url, err := s.store.ObjectURL(ctx, record.StorageKey, record.FileName, downloadURLTTL)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrStorageURLFailed, "failed to sign download URL", err)
	}
	return url, nil
}
