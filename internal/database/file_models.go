// Package database 定义文件相关的数据库模型
// 匿名文件与用户文件分表存储，二者的访问控制模型完全不同
package database

import (
	"database/sql"
	"time"
)

// AnonymousFile 匿名上传文件模型
// 匿名文件没有所有者，访问凭证是上传时一次性下发的(file_id, secret_key)对，
// 二者必须同时匹配才能下载
type AnonymousFile struct {
	ID          uint      `gorm:"primarykey" json:"id"`                        // 主键ID，自增
	FileID      string    `gorm:"uniqueIndex;not null;size:10" json:"file_id"` // 文件公开标识符，10位十六进制
	SecretKey   string    `gorm:"not null;size:32" json:"-"`                   // 下载密钥，32位十六进制，仅上传响应中返回一次
	FileName    string    `gorm:"not null;size:255" json:"file_name"`          // 原始文件名称
	ContentType string    `gorm:"size:100" json:"content_type"`                // 文件MIME类型
	FileSize    int64     `gorm:"not null" json:"file_size"`                   // 文件大小，单位为字节
	StorageKey  string    `gorm:"not null;size:500" json:"-"`                  // 文件在存储后端中的对象键
	CreatedAt   time.Time `json:"created_at"`                                  // 记录创建时间
}

// TableName 指定AnonymousFile模型对应的数据库表名
func (AnonymousFile) TableName() string {
	return "anonymous_files"
}

// UserFile 用户文件模型
// 归属于注册用户，读取权限为所有者或公开分享，写入和删除仅限所有者
type UserFile struct {
	ID          uint           `gorm:"primarykey" json:"id"`                     // 主键ID，自增
	UserID      uint           `gorm:"index;not null" json:"user_id"`            // 所有者用户ID
	FileName    string         `gorm:"not null;size:255" json:"file_name"`       // 原始文件名称
	ContentType string         `gorm:"size:100" json:"content_type"`             // 文件MIME类型
	FileSize    int64          `gorm:"not null" json:"file_size"`                // 文件大小，单位为字节
	StorageKey  string         `gorm:"uniqueIndex;not null;size:500" json:"-"`   // 文件在存储后端中的对象键
	IsPublic    bool           `gorm:"default:false" json:"is_public"`           // 是否已公开分享
	AccessToken sql.NullString `gorm:"index;size:32" json:"-"`                   // 公开分享令牌，与IsPublic同时存在
	CreatedAt   time.Time      `json:"created_at"`                               // 记录创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                               // 记录最后更新时间
}

// TableName 指定UserFile模型对应的数据库表名
func (UserFile) TableName() string {
	return "user_files"
}
