package middleware

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weiwangfds/filevault/internal/logger"
	"github.com/weiwangfds/filevault/internal/response"
)

// allowedFileTypes MIME类型允许列表及其对应的扩展名
var allowedFileTypes = map[string]string{
	// 图片
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",

	// 文档
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.ms-excel": ".xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": ".xlsx",
	"application/vnd.ms-powerpoint":                                     ".ppt",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",

	// 压缩包
	"application/zip":             ".zip",
	"application/x-rar-compressed": ".rar",
	"application/x-7z-compressed":  ".7z",

	// 文本
	"text/plain": ".txt",
	"text/csv":   ".csv",
	"text/html":  ".html",

	// 媒体
	"audio/mpeg": ".mp3",
	"video/mp4":  ".mp4",
}

// jpeg的常见扩展名变体
var extensionAliases = map[string]string{
	".jpeg": ".jpg",
}

// ValidateFileUpload 文件上传校验中间件
// 在请求进入业务层之前完成大小上限、类型允许列表和扩展名一致性检查，
// 业务层不再重复校验
func ValidateFileUpload(maxFileSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			// 没有文件的请求交给处理器报参数错误
			c.Next()
			return
		}

		contentType := file.Header.Get("Content-Type")

		if file.Size > maxFileSize {
			logger.Warnf("File size exceeded: %s (%d bytes)", file.Filename, file.Size)
			response.BadRequest(c, fmt.Sprintf("File size exceeds the limit of %d MB", maxFileSize/(1024*1024)))
			c.Abort()
			return
		}

		expectedExt, allowed := allowedFileTypes[contentType]
		if !allowed {
			logger.Warnf("Invalid file type: %s (%s)", file.Filename, contentType)
			response.BadRequest(c, "Invalid file type")
			c.Abort()
			return
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		if alias, ok := extensionAliases[ext]; ok {
			ext = alias
		}
		if ext != expectedExt {
			logger.Warnf("File extension mismatch: %s (%s)", file.Filename, contentType)
			response.BadRequest(c, fmt.Sprintf("File extension doesn't match content type. Expected: %s", expectedExt))
			c.Abort()
			return
		}

		c.Next()
	}
}
