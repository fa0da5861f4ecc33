package file

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/weiwangfds/filevault/internal/errors"
	"github.com/weiwangfds/filevault/internal/database"
	"github.com/weiwangfds/filevault/internal/logger"
)

// resolveForRead 读取权限校验
// 所有者或公开文件可读。记录不存在和无权访问返回相同的错误，
// 不向非所有者确认文件是否存在
func (s *fileService) resolveForRead(fileID, callerUserID uint) (*database.UserFile, error) {
	record, err := s.findOwned(fileID)
	if err != nil {
		return nil, err
	}
	if record.UserID != callerUserID && !record.IsPublic {
		return nil, apperrors.ErrFileNotFoundOrDeniedError
	}
	return record, nil
}

// resolveForWrite 写入权限校验
// 写入、删除和分享始终要求严格所有权，公开可见不授予写权限
func (s *fileService) resolveForWrite(fileID, callerUserID uint) (*database.UserFile, error) {
	record, err := s.findOwned(fileID)
	if err != nil {
		return nil, err
	}
	if record.UserID != callerUserID {
		return nil, apperrors.ErrFileNotFoundOrDeniedError
	}
	return record, nil
}

// findOwned 查找用户文件记录
func (s *fileService) findOwned(fileID uint) (*database.UserFile, error) {
	record, err := s.repo.FindOwnedByID(fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFileNotFoundOrDeniedError
		}
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "failed to find file record", err)
	}
	return record, nil
}

// mint 为文件铸造分享令牌
// 公开标记和令牌在同一条UPDATE中写入，任何时刻都不会出现
// is_public=true而令牌为空的状态。每次调用轮换令牌，旧令牌随即失效
func (s *fileService) mint(fileID, callerUserID uint) (string, error) {
	if _, err := s.resolveForWrite(fileID, callerUserID); err != nil {
		return "", err
	}

	token, err := generateAccessToken()
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, "failed to generate access token", err)
	}

	affected, err := s.repo.SetShared(fileID, callerUserID, token)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrDatabaseQuery, "failed to persist share token", err)
	}
	if affected == 0 {
		return "", apperrors.ErrFileNotFoundOrDeniedError
	}

	logger.Infof("Share token minted, user: %d, file: %d", callerUserID, fileID)
	return token, nil
}
