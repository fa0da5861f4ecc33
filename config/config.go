// Package config 提供应用程序配置加载功能
// 基于viper实现，支持配置文件和环境变量两种来源
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用程序配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	File     FileConfig     `mapstructure:"file"`
	Quota    QuotaConfig    `mapstructure:"quota"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig HTTP服务器配置
type ServerConfig struct {
	Port         int    `mapstructure:"port"`          // 监听端口
	ReadTimeout  int    `mapstructure:"read_timeout"`  // 读超时（秒）
	WriteTimeout int    `mapstructure:"write_timeout"` // 写超时（秒）
	BaseURL      string `mapstructure:"base_url"`      // 对外基础URL，用于构建分享链接和本地文件URL
	Mode         string `mapstructure:"mode"`          // gin运行模式 (debug, release)
	EnableHTTPS  bool   `mapstructure:"enable_https"`  // 是否启用HTTPS
	EnableHTTP2  bool   `mapstructure:"enable_http2"`  // 是否启用HTTP/2（仅HTTPS下生效）
	TLSCertFile  string `mapstructure:"tls_cert_file"` // TLS证书路径
	TLSKeyFile   string `mapstructure:"tls_key_file"`  // TLS私钥路径
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // 数据库驱动，当前支持sqlite
	DSN             string `mapstructure:"dsn"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 连接最大存活时间（秒）
}

// StorageConfig 对象存储配置
// Provider 为空或凭证不完整时回退到本地存储
type StorageConfig struct {
	Provider  string `mapstructure:"provider"`   // s3 | aliyun | qiniu | tencent | local
	Endpoint  string `mapstructure:"endpoint"`   // 远端endpoint（S3兼容服务如R2/MinIO必填）
	Region    string `mapstructure:"region"`     // 区域，R2使用auto
	Bucket    string `mapstructure:"bucket"`     // 存储桶名称
	AccessKey string `mapstructure:"access_key"` // 访问密钥ID
	SecretKey string `mapstructure:"secret_key"` // 访问密钥Secret
	LocalDir  string `mapstructure:"local_dir"`  // 本地存储目录
}

// JWTConfig JWT认证配置
type JWTConfig struct {
	Secret      string `mapstructure:"secret"`       // 签名密钥
	ExpireHours int    `mapstructure:"expire_hours"` // 令牌有效期（小时）
}

// FileConfig 文件上传限制配置
type FileConfig struct {
	MaxFileSize int64 `mapstructure:"max_file_size"` // 单文件大小上限（字节）
}

// QuotaConfig 用户存储配额配置
type QuotaConfig struct {
	LimitBytes int64 `mapstructure:"limit_bytes"` // 单用户存储配额（字节）
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`     // 日志级别
	Format   string `mapstructure:"format"`    // 日志格式 (json, text)
	Output   string `mapstructure:"output"`    // 输出方式 (console, file, both)
	FilePath string `mapstructure:"file_path"` // 日志文件路径
}

// Load 加载配置
// 优先读取工作目录下的config.yaml，环境变量（FILEVAULT_前缀）可覆盖任意配置项
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// 环境变量覆盖，如 FILEVAULT_STORAGE_ACCESS_KEY
	v.SetEnvPrefix("filevault")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件缺失时仅使用默认值和环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults 设置默认配置
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 60)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.enable_https", false)
	v.SetDefault("server.enable_http2", true)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/filevault.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 3600)

	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.local_dir", "uploads")

	v.SetDefault("jwt.secret", "filevault-secret-key")
	v.SetDefault("jwt.expire_hours", 24)

	v.SetDefault("file.max_file_size", int64(5)*1024*1024*1024) // 5GB

	v.SetDefault("quota.limit_bytes", int64(2)*1024*1024*1024) // 2GB

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.file_path", "logs/filevault.log")
}

// RemoteConfigured 判断远端对象存储配置是否完整
// 凭证不完整或仍为占位值时视为未配置，回退到本地存储
func (c StorageConfig) RemoteConfigured() bool {
	if c.Provider == "" || c.Provider == "local" {
		return false
	}
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return false
	}
	for _, val := range []string{c.Endpoint, c.AccessKey, c.SecretKey, c.Bucket} {
		if strings.Contains(val, "your-") {
			return false
		}
	}
	return true
}
