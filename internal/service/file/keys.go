// Package file 实现文件访问控制与存储编排的核心服务
package file

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// 标识符长度常量
const (
	fileIDBytes      = 5  // 匿名文件标识符，编码后10个十六进制字符
	secretKeyBytes   = 16 // 下载密钥，编码后32个十六进制字符
	accessTokenBytes = 16 // 分享令牌，编码后32个十六进制字符
)

// randomHex 生成指定字节数的十六进制随机字符串
// 必须使用密码学安全的随机源，标识符的不可猜测性是访问控制的基础
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// generateFileID 生成匿名文件的公开标识符
func generateFileID() (string, error) {
	return randomHex(fileIDBytes)
}

// generateSecretKey 生成匿名文件的下载密钥
func generateSecretKey() (string, error) {
	return randomHex(secretKeyBytes)
}

// generateAccessToken 生成公开分享令牌
func generateAccessToken() (string, error) {
	return randomHex(accessTokenBytes)
}

// anonymousStorageKey 构造匿名文件的存储对象键
func anonymousStorageKey(fileID, fileName string) string {
	return fmt.Sprintf("%s-%s", fileID, fileName)
}

// ownedStorageKey 构造用户文件的存储对象键
// 按用户ID划分命名空间，随机段防止同名文件冲突
func ownedStorageKey(userID uint, fileName string) string {
	return fmt.Sprintf("user-%d/%s-%s", userID, uuid.New().String(), fileName)
}
