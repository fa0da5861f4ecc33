// Package repository 封装数据库访问
// 仓库层返回原生gorm错误，由服务层翻译为应用错误，
// 以便服务层区分记录不存在和真实的数据库故障
package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/weiwangfds/filevault/internal/database"
)

// FileRepository 文件元数据仓库
type FileRepository struct {
	db *gorm.DB
}

// NewFileRepository 创建文件仓库实例
func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

// InsertAnonymous 插入匿名文件记录
func (r *FileRepository) InsertAnonymous(file *database.AnonymousFile) error {
	return r.db.Create(file).Error
}

// FindAnonymous 按(file_id, secret_key)对查找匿名文件
// 两个凭证必须同时匹配，任一不匹配都返回gorm.ErrRecordNotFound，
// 调用方不区分"文件不存在"和"密钥错误"
func (r *FileRepository) FindAnonymous(fileID, secretKey string) (*database.AnonymousFile, error) {
	var file database.AnonymousFile
	if err := r.db.Where("file_id = ? AND secret_key = ?", fileID, secretKey).First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// AnonymousFileIDExists 检查匿名文件标识符是否已被占用
func (r *FileRepository) AnonymousFileIDExists(fileID string) (bool, error) {
	var count int64
	if err := r.db.Model(&database.AnonymousFile{}).Where("file_id = ?", fileID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertOwned 插入用户文件记录
func (r *FileRepository) InsertOwned(file *database.UserFile) error {
	return r.db.Create(file).Error
}

// FindOwnedByID 按主键查找用户文件
func (r *FileRepository) FindOwnedByID(id uint) (*database.UserFile, error) {
	var file database.UserFile
	if err := r.db.First(&file, id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// FindOwnedByAccessToken 按分享令牌查找已公开的用户文件
// 令牌匹配但文件已取消公开时同样视为不存在
func (r *FileRepository) FindOwnedByAccessToken(token string) (*database.UserFile, error) {
	var file database.UserFile
	if err := r.db.Where("access_token = ? AND is_public = ?", token, true).First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// ListOwnedByUser 列出用户的全部文件，按创建时间倒序
func (r *FileRepository) ListOwnedByUser(userID uint) ([]database.UserFile, error) {
	var files []database.UserFile
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// CountOwnedByUser 统计用户的文件数量
func (r *FileRepository) CountOwnedByUser(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&database.UserFile{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteOwned 删除用户文件记录
// 删除条件同时带上user_id，非所有者的删除请求命中零行
func (r *FileRepository) DeleteOwned(id, userID uint) (int64, error) {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&database.UserFile{})
	return result.RowsAffected, result.Error
}

// SetShared 为用户文件设置分享令牌并标记为公开
// 公开标记和令牌在同一条UPDATE中写入，二者不会出现不一致状态；
// 重复分享会轮换令牌，旧令牌立即失效
func (r *FileRepository) SetShared(id, userID uint, token string) (int64, error) {
	result := r.db.Model(&database.UserFile{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"is_public":    true,
			"access_token": token,
		})
	return result.RowsAffected, result.Error
}

// SumSizeByUser 统计用户已用存储字节数
func (r *FileRepository) SumSizeByUser(userID uint) (int64, error) {
	var total int64
	err := r.db.Model(&database.UserFile{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(file_size), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// CountPublicByUser 统计用户已公开分享的文件数量
func (r *FileRepository) CountPublicByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&database.UserFile{}).
		Where("user_id = ? AND is_public = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountRecentByUser 统计用户自指定时间以来上传的文件数量
func (r *FileRepository) CountRecentByUser(userID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&database.UserFile{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
