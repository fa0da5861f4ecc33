// Package i18n 提供国际化支持
// 负责管理应用程序的语言包和翻译功能
package i18n

import (
	"sync"

	"github.com/go-playground/locales/en_US"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/weiwangfds/filevault/internal/logger"
)

// 支持的语言
const (
	LangZhCN = "zh-CN"
	LangEnUS = "en-US"
)

var (
	instance *I18n
	once     sync.Once

	// 语言包存储
	translations = map[string]map[string]string{
		LangZhCN: {
			"success":               "成功",
			"internal_server_error": "服务器内部错误",
			"invalid_params":        "参数错误",
			"unauthorized":          "未授权",
			"forbidden":             "禁止访问",
			"not_found":             "资源未找到",
			"too_many_requests":     "请求过于频繁",

			"file_not_found_or_denied": "文件不存在或无访问权限",
			"file_upload_failed":       "文件上传失败",
			"file_delete_failed":       "文件删除失败",
			"file_size_too_large":      "文件大小超限",
			"file_type_not_allowed":    "文件类型不允许",
			"quota_exceeded":           "存储配额已用尽",

			"storage_put_failed":    "对象存储写入失败",
			"storage_url_failed":    "下载链接生成失败",
			"storage_delete_failed": "对象存储删除失败",
			"storage_not_supported": "存储提供商不支持",

			"database_query":  "数据库查询错误",
			"database_insert": "数据库插入错误",
			"database_delete": "数据库删除错误",

			"user_already_exists": "用户已存在",
			"invalid_credentials": "邮箱或密码错误",
			"email_not_verified":  "邮箱未验证",

			"unknown_error": "未知错误",
		},
		LangEnUS: {
			"success":               "Success",
			"internal_server_error": "Internal Server Error",
			"invalid_params":        "Invalid Parameters",
			"unauthorized":          "Unauthorized",
			"forbidden":             "Forbidden",
			"not_found":             "Resource Not Found",
			"too_many_requests":     "Too Many Requests",

			"file_not_found_or_denied": "File not found or you don't have permission",
			"file_upload_failed":       "File Upload Failed",
			"file_delete_failed":       "File Delete Failed",
			"file_size_too_large":      "File Size Too Large",
			"file_type_not_allowed":    "File Type Not Allowed",
			"quota_exceeded":           "Storage Quota Exceeded",

			"storage_put_failed":    "Object Storage Write Failed",
			"storage_url_failed":    "Failed To Generate Download URL",
			"storage_delete_failed": "Object Storage Delete Failed",
			"storage_not_supported": "Storage Provider Not Supported",

			"database_query":  "Database Query Error",
			"database_insert": "Database Insert Error",
			"database_delete": "Database Delete Error",

			"user_already_exists": "User Already Exists",
			"invalid_credentials": "Invalid Credentials",
			"email_not_verified":  "Email Not Verified",

			"unknown_error": "Unknown Error",
		},
	}
)

// I18n 国际化管理器
type I18n struct {
	translators map[string]ut.Translator
	defaultLang string
}

// GetInstance 获取I18n单例
func GetInstance() *I18n {
	once.Do(func() {
		instance = &I18n{
			translators: make(map[string]ut.Translator),
			defaultLang: LangEnUS,
		}
		instance.initTranslators()
	})
	return instance
}

// initTranslators 初始化翻译器
func (i *I18n) initTranslators() {
	zhCN := zh.New()
	enUS := en_US.New()
	uni := ut.New(enUS, zhCN, enUS)

	// 注册支持的语言 - 使用locale库的标识符
	langMappings := map[string]string{
		LangZhCN: "zh",
		LangEnUS: "en_US",
	}

	for ourLang, localeLang := range langMappings {
		trans, found := uni.GetTranslator(localeLang)
		if !found {
			logger.Errorf("初始化翻译器失败 for language %s (locale: %s): translator not found", ourLang, localeLang)
			continue
		}
		i.translators[ourLang] = trans
	}
}

// Translate 根据键和语言获取翻译
func (i *I18n) Translate(key, lang string) string {
	if translation, found := translations[lang][key]; found {
		return translation
	}

	// 当前语言没有命中时回退到默认语言
	if lang != i.defaultLang {
		if translation, found := translations[i.defaultLang][key]; found {
			return translation
		}
	}

	logger.Warnf("未找到翻译: %s, 语言: %s", key, lang)
	return key
}

// SetDefaultLanguage 设置默认语言
func (i *I18n) SetDefaultLanguage(lang string) {
	i.defaultLang = lang
}

// GetDefaultLanguage 获取默认语言
func (i *I18n) GetDefaultLanguage() string {
	return i.defaultLang
}

// IsSupportedLanguage 检查语言是否支持
func (i *I18n) IsSupportedLanguage(lang string) bool {
	_, exists := i.translators[lang]
	return exists
}
