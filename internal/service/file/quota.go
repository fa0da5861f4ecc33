package file

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/weiwangfds/filevault/internal/errors"
)

// StorageUsage 用户存储用量
// 配额是展示性的：用量每次调用实时汇总，超出配额不会阻止上传
type StorageUsage struct {
	UsedBytes   int64   `json:"used_bytes"`
	LimitBytes  int64   `json:"limit_bytes"`
	UsedPercent float64 `json:"used_percent"`
}

// UserStats 用户文件统计信息
type UserStats struct {
	TotalFiles    int64            `json:"total_files"`
	TotalSize     int64            `json:"total_size"`
	Categories    map[string]int64 `json:"categories"`
	RecentUploads int64            `json:"recent_uploads"` // 最近7天上传数
	PublicFiles   int64            `json:"public_files"`
}

// 文件类型分类名称
const (
	categoryImages       = "images"
	categoryVideos       = "videos"
	categoryAudio        = "audio"
	categoryDocuments    = "documents"
	categoryApplications = "applications"
	categoryOther        = "other"
)

// recentUploadWindow 近期上传的统计窗口
const recentUploadWindow = 7 * 24 * time.Hour

// Usage 计算用户存储用量
func (s *fileService) Usage(ctx context.Context, userID uint) (*StorageUsage, error) {
	used, err := s.repo.SumSizeByUser(userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "failed to sum user storage", err)
	}

	usage := &StorageUsage{
		UsedBytes:  used,
		LimitBytes: s.quotaLimit,
	}
	if s.quotaLimit > 0 {
		usage.UsedPercent = float64(used) / float64(s.quotaLimit) * 100
	}
	return usage, nil
}

// Stats 计算用户文件统计信息
// 分类统计是记录集上的只读聚合，与记录存储保持查询时一致即可
func (s *fileService) Stats(ctx context.Context, userID uint) (*UserStats, error) {
	files, err := s.repo.ListOwnedByUser(userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "failed to list user files", err)
	}

	stats := &UserStats{
		Categories: map[string]int64{
			categoryImages:       0,
			categoryVideos:       0,
			categoryAudio:        0,
			categoryDocuments:    0,
			categoryApplications: 0,
			categoryOther:        0,
		},
	}

	for _, f := range files {
		stats.TotalFiles++
		stats.TotalSize += f.FileSize
		stats.Categories[categorize(f.ContentType)]++
		if f.IsPublic {
			stats.PublicFiles++
		}
		if time.Since(f.CreatedAt) <= recentUploadWindow {
			stats.RecentUploads++
		}
	}
	return stats, nil
}

// categorize 按MIME类型归类文件
func categorize(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return categoryImages
	case strings.HasPrefix(contentType, "video/"):
		return categoryVideos
	case strings.HasPrefix(contentType, "audio/"):
		return categoryAudio
	case strings.HasPrefix(contentType, "text/"),
		contentType == "application/pdf",
		strings.Contains(contentType, "document"),
		strings.Contains(contentType, "spreadsheet"),
		strings.Contains(contentType, "presentation"),
		contentType == "application/msword",
		contentType == "application/vnd.ms-excel",
		contentType == "application/vnd.ms-powerpoint":
		return categoryDocuments
	case strings.HasPrefix(contentType, "application/"):
		return categoryApplications
	default:
		return categoryOther
	}
}
