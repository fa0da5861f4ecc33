// Package handler 实现HTTP请求处理器
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiwangfds/filevault/internal/response"
	fileservice "github.com/weiwangfds/filevault/internal/service/file"
)

// FileHandler 匿名文件与公开分享处理器
// @Description 匿名上传、凭证下载、分享链接解析和本地文件服务
type FileHandler struct {
	fileService fileservice.FileService
}

// NewFileHandler 创建文件处理器实例
func NewFileHandler(fileService fileservice.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// downloadRequest 匿名下载请求体
type downloadRequest struct {
	FileID    string `json:"file_id" binding:"required"`
	SecretKey string `json:"secret_key" binding:"required"`
}

// UploadAnonymous 匿名上传文件
// @Summary 匿名上传文件
// @Description 上传文件并获得(file_id, secret_key)凭证对，密钥只返回这一次
// @Tags 匿名文件
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "要上传的文件"
// @Success 201 {object} response.Response "上传成功"
// @Failure 400 {object} response.Response "请求参数错误"
// @Router /api/v1/files/upload [post]
func (h *FileHandler) UploadAnonymous(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "No file provided")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.InternalServerError(c)
		return
	}
	defer src.Close()

	result, err := h.fileService.UploadAnonymous(c.Request.Context(),
		file.Filename, file.Header.Get("Content-Type"), file.Size, src)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "File uploaded successfully", result)
}

// DownloadAnonymous 凭证下载
// @Summary 用凭证对换取下载链接
// @Description 提交(file_id, secret_key)，任一不匹配都返回统一的未找到错误
// @Tags 匿名文件
// @Accept json
// @Produce json
// @Param request body downloadRequest true "凭证对"
// @Success 200 {object} response.Response "下载链接"
// @Failure 404 {object} response.Response "文件不存在或无权访问"
// @Router /api/v1/files/download [post]
func (h *FileHandler) DownloadAnonymous(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "file_id and secret_key are required")
		return
	}

	url, err := h.fileService.AnonymousDownloadURL(c.Request.Context(), req.FileID, req.SecretKey)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"url": url})
}

// ServeLocal 本地文件服务
// @Summary 下载本地存储后端中的文件
// @Description 仅当部署使用本地存储后端时可用，对象键在链接签发时已通过访问控制
// @Tags 匿名文件
// @Produce octet-stream
// @Param key path string true "存储对象键"
// @Success 200 {file} binary "文件内容"
// @Failure 404 {object} response.Response "文件不存在"
// @Router /api/v1/files/local/{key} [get]
func (h *FileHandler) ServeLocal(c *gin.Context) {
	key := c.Param("key")
	if len(key) > 0 && key[0] == '/' {
		key = key[1:]
	}

	reader, size, err := h.fileService.ServeLocal(key)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, size, "application/octet-stream", reader, nil)
}

// ResolveShared 解析分享链接
// @Summary 通过分享令牌获取文件信息和下载链接
// @Tags 分享
// @Produce json
// @Param token path string true "分享令牌"
// @Success 200 {object} response.Response "文件信息"
// @Failure 404 {object} response.Response "分享不存在或已失效"
// @Router /api/v1/shared/{token} [get]
func (h *FileHandler) ResolveShared(c *gin.Context) {
	shared, err := h.fileService.ResolveShared(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, shared)
}
