package repository

import (
	"gorm.io/gorm"

	"github.com/weiwangfds/filevault/internal/database"
)

// UserRepository 用户仓库
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库实例
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create 创建用户
func (r *UserRepository) Create(user *database.User) error {
	return r.db.Create(user).Error
}

// FindByEmail 按邮箱查找用户
func (r *UserRepository) FindByEmail(email string) (*database.User, error) {
	var user database.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID 按主键查找用户
func (r *UserRepository) FindByID(id uint) (*database.User, error) {
	var user database.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByVerificationToken 按验证令牌查找用户
func (r *UserRepository) FindByVerificationToken(token string) (*database.User, error) {
	var user database.User
	if err := r.db.Where("verification_token = ?", token).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// MarkVerified 标记用户邮箱已验证并清除验证令牌
func (r *UserRepository) MarkVerified(id uint) error {
	return r.db.Model(&database.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"verified":           true,
			"verification_token": "",
		}).Error
}
