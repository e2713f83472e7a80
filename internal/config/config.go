package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 结构体包含所有应用的配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	MySQL     MySQLConfig     `mapstructure:"mysql"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	AliyunOSS AliyunOSSConfig `mapstructure:"aliyun_oss"`
	RabbitMQ  RabbitMQConfig  `mapstructure:"rabbitmq"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Folder    FolderConfig    `mapstructure:"folder"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"` // 用于拼接邮件里的验证/重置链接
}

// MySQLConfig 数据库配置
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// AliyunOSSConfig 阿里云OSS配置
type AliyunOSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"` // 例如: oss-cn-hangzhou.aliyuncs.com
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// RabbitMQConfig RabbitMQ配置
type RabbitMQConfig struct {
	URL string `mapstructure:"url"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	SecretKey string        `mapstructure:"secret_key"`
	ExpiresIn time.Duration `mapstructure:"expires_in"`
	Issuer    string        `mapstructure:"issuer"`
}

// SMTPConfig 邮件发送配置
type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	SenderName  string `mapstructure:"sender_name"`
	SenderEmail string `mapstructure:"sender_email"`
}

// StorageConfig 对象存储配置
type StorageConfig struct {
	Type               string        `mapstructure:"type"`                 // minio / aliyun_oss
	OperationTimeout   time.Duration `mapstructure:"operation_timeout"`    // 单次存储调用的超时
	PresignedURLExpiry int           `mapstructure:"presigned_url_expiry"` // 预签名URL有效期（分钟）
}

// UploadConfig 上传限制
type UploadConfig struct {
	MaxFileSize  int64 `mapstructure:"max_file_size"`  // 单个文件大小上限（字节）
	MaxFileCount int   `mapstructure:"max_file_count"` // 单次批量上传文件数上限
}

// FolderConfig 目录树约束
type FolderConfig struct {
	MaxDepth int `mapstructure:"max_depth"`
}

// LogConfig zap日志配置
type LogConfig struct {
	OutputPath string `mapstructure:"output_path"`
	ErrorPath  string `mapstructure:"error_path"`
	Level      string `mapstructure:"level"`
}

var AppConfig *Config // 全局应用配置实例

// LoadConfig 加载配置
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")           // 配置文件名 (不带扩展名)
	viper.SetConfigType("yaml")             // 配置文件类型
	viper.AddConfigPath(".")                // 在当前目录查找配置文件
	viper.AddConfigPath("./configs")        // 也可以添加其他路径
	viper.AddConfigPath("/etc/cloudfile/")  // 生产环境常见路径

	// 读取环境变量，例如 CLOUDFILE_SERVER_PORT 对应 server.port
	viper.SetEnvPrefix("CLOUDFILE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 默认值，配置文件和环境变量都缺省时生效
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("jwt.expires_in", 24*time.Hour)
	viper.SetDefault("jwt.issuer", "cloudfile")
	viper.SetDefault("storage.type", "minio")
	viper.SetDefault("storage.operation_timeout", 30*time.Second)
	viper.SetDefault("storage.presigned_url_expiry", 15)
	viper.SetDefault("upload.max_file_size", 50*1024*1024) // 50MB
	viper.SetDefault("upload.max_file_count", 10)
	viper.SetDefault("folder.max_depth", 10)
	viper.SetDefault("log.output_path", "logs/app.log")
	viper.SetDefault("log.error_path", "logs/error.log")
	viper.SetDefault("log.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// 配置文件未找到不是致命错误，可以依赖环境变量和默认值
			log.Println("Warning: config file not found, using environment variables or default values.")
		} else {
			log.Fatalf("Fatal error reading config file: %s \n", err)
			return nil, err
		}
	}

	AppConfig = &Config{}
	if err := viper.Unmarshal(AppConfig); err != nil {
		log.Fatalf("Fatal error unmarshaling config: %s \n", err)
		return nil, err
	}

	return AppConfig, nil
}
