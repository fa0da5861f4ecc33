package database

import "time"

// User 用户模型
// 密码以bcrypt哈希存储，验证令牌用于邮箱验证流程
type User struct {
	ID                uint      `gorm:"primarykey" json:"id"`                      // 主键ID，自增
	Name              string    `gorm:"not null;size:100" json:"name"`             // 用户名称
	Email             string    `gorm:"uniqueIndex;not null;size:255" json:"email"` // 邮箱地址，全局唯一
	Password          string    `gorm:"not null;size:100" json:"-"`                // bcrypt密码哈希
	Verified          bool      `gorm:"default:false" json:"verified"`             // 邮箱是否已验证
	VerificationToken string    `gorm:"size:64" json:"-"`                          // 邮箱验证令牌
	CreatedAt         time.Time `json:"created_at"`                                // 记录创建时间
	UpdatedAt         time.Time `json:"updated_at"`                                // 记录最后更新时间
}

// TableName 指定User模型对应的数据库表名
func (User) TableName() string {
	return "users"
}
