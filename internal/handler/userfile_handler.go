package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/weiwangfds/filevault/internal/middleware"
	"github.com/weiwangfds/filevault/internal/response"
	fileservice "github.com/weiwangfds/filevault/internal/service/file"
)

// UserFileHandler 用户文件处理器
// @Description 认证用户的文件管理接口，身份由认证中间件注入
type UserFileHandler struct {
	fileService fileservice.FileService
}

// NewUserFileHandler 创建用户文件处理器实例
func NewUserFileHandler(fileService fileservice.FileService) *UserFileHandler {
	return &UserFileHandler{fileService: fileService}
}

// callerID 读取已验证的调用者身份
func (h *UserFileHandler) callerID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c)
	}
	return userID, ok
}

// fileIDParam 解析路径中的文件ID
func (h *UserFileHandler) fileIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "Invalid file id")
		return 0, false
	}
	return uint(id), true
}

// Upload 上传文件
// @Summary 认证用户上传文件
// @Tags 用户文件
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "要上传的文件"
// @Success 201 {object} response.Response "上传成功"
// @Failure 400 {object} response.Response "请求参数错误"
// @Router /api/v1/upload [post]
func (h *UserFileHandler) Upload(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

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

	view, err := h.fileService.UploadOwned(c.Request.Context(),
		userID, file.Filename, file.Header.Get("Content-Type"), file.Size, src)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "File uploaded successfully", view)
}

// List 文件列表
// @Summary 列出当前用户的全部文件
// @Tags 用户文件
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "文件列表"
// @Router /api/v1/files [get]
func (h *UserFileHandler) List(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	files, err := h.fileService.ListUserFiles(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"files": files})
}

// Count 文件数量
// @Summary 统计当前用户的文件数量
// @Tags 用户文件
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "文件数量"
// @Router /api/v1/files/count [get]
func (h *UserFileHandler) Count(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	count, err := h.fileService.CountUserFiles(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"count": count})
}

// Get 文件详情
// @Summary 获取单个文件的元数据
// @Description 所有者或公开文件可读，否则统一返回未找到
// @Tags 用户文件
// @Produce json
// @Security BearerAuth
// @Param id path int true "文件ID"
// @Success 200 {object} response.Response "文件元数据"
// @Failure 404 {object} response.Response "文件不存在或无权访问"
// @Router /api/v1/files/{id} [get]
func (h *UserFileHandler) Get(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	fileID, ok := h.fileIDParam(c)
	if !ok {
		return
	}

	view, err := h.fileService.GetFileMetadata(c.Request.Context(), fileID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, view)
}

// DownloadLink 下载链接
// @Summary 签发文件下载链接
// @Tags 用户文件
// @Produce json
// @Security BearerAuth
// @Param id path int true "文件ID"
// @Success 200 {object} response.Response "下载链接"
// @Failure 404 {object} response.Response "文件不存在或无权访问"
// @Router /api/v1/download/{id} [get]
func (h *UserFileHandler) DownloadLink(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	fileID, ok := h.fileIDParam(c)
	if !ok {
		return
	}

	url, err := h.fileService.OwnedDownloadURL(c.Request.Context(), fileID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"url": url})
}

// Delete 删除文件
// @Summary 删除文件
// @Description 仅所有者可删除，存储对象删除失败不阻止记录删除
// @Tags 用户文件
// @Produce json
// @Security BearerAuth
// @Param id path int true "文件ID"
// @Success 200 {object} response.Response "删除成功"
// @Failure 404 {object} response.Response "文件不存在或无权访问"
// @Router /api/v1/files/{id} [delete]
func (h *UserFileHandler) Delete(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	fileID, ok := h.fileIDParam(c)
	if !ok {
		return
	}

	if err := h.fileService.DeleteFile(c.Request.Context(), fileID, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "File deleted successfully", nil)
}

// Share 创建分享链接
// @Summary 创建公开分享链接
// @Description 每次调用轮换分享令牌，旧链接立即失效
// @Tags 分享
// @Produce json
// @Security BearerAuth
// @Param id path int true "文件ID"
// @Success 200 {object} response.Response "分享链接"
// @Failure 404 {object} response.Response "文件不存在或无权访问"
// @Router /api/v1/files/{id}/share [post]
func (h *UserFileHandler) Share(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	fileID, ok := h.fileIDParam(c)
	if !ok {
		return
	}

	link, err := h.fileService.CreateShareLink(c.Request.Context(), fileID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "Share link created", link)
}

// Storage 存储用量
// @Summary 查询当前用户的存储用量
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "存储用量"
// @Router /api/v1/storage [get]
func (h *UserFileHandler) Storage(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	usage, err := h.fileService.Usage(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, usage)
}

// Stats 文件统计
// @Summary 查询当前用户的文件统计信息
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "统计信息"
// @Router /api/v1/stats [get]
func (h *UserFileHandler) Stats(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	stats, err := h.fileService.Stats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
