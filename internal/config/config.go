package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig 定义 HTTP 服务器的监听配置参数
type ServerConfig struct {
	Host string // 监听地址，默认 "0.0.0.0"
	Port int    // 监听端口，默认 8080
}

// UploadConfig 定义公开文件目录与上传限制
type UploadConfig struct {
	PublicDir    string   // 上传文件根目录，默认 "./public"
	MaxSizeBytes int64    // 单个文件大小上限，默认 5MB
	AllowedExts  []string // 信函附件允许的扩展名
}

// LetterConfig 定义信函子系统的业务配置
type LetterConfig struct {
	TrackBroadcastReads bool // 是否为广播信函记录已读状态，默认关闭
	NotifyByMail        bool // 创建信函时是否向收件组织发送邮件通知
}

// CORSConfig 定义跨域资源共享 (CORS) 配置
type CORSConfig struct {
	AllowedOrigins []string // 允许的来源列表，"*" 表示允许所有来源
}

// LogConfig 定义日志系统配置
type LogConfig struct {
	Level       string // 日志级别: debug, info, warn, error
	Development bool   // 开发模式: 启用彩色输出和详细堆栈信息
	File        string // 日志文件路径，留空只输出到标准输出
}

// DatabaseConfig 定义数据库连接配置（支持 MySQL 和 PostgreSQL）
type DatabaseConfig struct {
	Type            string        // 数据库类型: "mysql" 或 "postgres"，留空使用内存存储
	DSN             string        // 数据库连接字符串
	MaxOpenConns    int           // 最大打开连接数，默认 25
	MaxIdleConns    int           // 最大空闲连接数，默认 5
	ConnMaxLifetime time.Duration // 连接最大生命周期，默认 5 分钟
}

// RedisConfig 定义 Redis 缓存服务配置
type RedisConfig struct {
	Address  string // Redis 服务地址，留空禁用未读数缓存
	Password string // Redis 认证密码
	DB       int    // Redis 数据库编号
}

// JWTConfig 定义 JWT 认证相关配置
type JWTConfig struct {
	Secret        string        // JWT 签名密钥，必须至少 32 字符
	Issuer        string        // JWT 签发者标识，默认 "csoportal"
	AccessExpiry  time.Duration // 访问令牌有效期，默认 15 分钟
	RefreshExpiry time.Duration // 刷新令牌有效期，默认 7 天
}

// MailConfig 定义外发邮件（联系表单转发、信函通知）配置
type MailConfig struct {
	Enabled   bool   // 是否启用外发邮件
	SMTPAddr  string // SMTP 服务器地址，格式 "host:port"
	Username  string // SMTP 认证用户名
	Password  string // SMTP 认证密码
	From      string // 发件人地址
	ContactTo string // 联系表单消息的收件地址
}

// Config 是系统核心配置的根结构体，包含所有子系统的配置
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Letter   LetterConfig
	CORS     CORSConfig
	Log      LogConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Mail     MailConfig
}

// Load 从环境变量和 .env 文件加载系统配置
//
// 配置加载优先级（从高到低）：
//  1. 系统环境变量
//  2. .env 文件（如果存在）
//  3. 默认值
//
// 环境变量前缀: CSOPORTAL_
// 例如: CSOPORTAL_SERVER_PORT, CSOPORTAL_JWT_SECRET
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetEnvPrefix("csoportal")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	allowedExts := parseList(v.GetString("upload.allowed_exts"))
	if len(allowedExts) == 0 {
		return nil, fmt.Errorf("upload.allowed_exts must not be empty")
	}
	for i := range allowedExts {
		allowedExts[i] = strings.ToLower(strings.TrimPrefix(allowedExts[i], "."))
	}

	maxSize := v.GetInt64("upload.max_size_bytes")
	if maxSize <= 0 {
		return nil, fmt.Errorf("upload.max_size_bytes must be positive, got %d", maxSize)
	}

	corsOrigins := parseList(v.GetString("cors.allowed_origins"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	connMaxLifetime, err := time.ParseDuration(v.GetString("database.conn_max_lifetime"))
	if err != nil {
		connMaxLifetime = 5 * time.Minute
	}

	accessExpiry, err := time.ParseDuration(v.GetString("jwt.access_expiry"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(v.GetString("jwt.refresh_expiry"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	jwtSecret := v.GetString("jwt.secret")

	// 安全检查：禁止使用默认的 JWT secret
	if jwtSecret == "change-me-in-production" {
		return nil, fmt.Errorf("SECURITY ERROR: JWT secret cannot be the default value, set CSOPORTAL_JWT_SECRET")
	}

	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("SECURITY ERROR: JWT secret must be at least 32 characters long")
	}

	dbType := strings.ToLower(v.GetString("database.type"))
	switch dbType {
	case "", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database.type %q (want mysql or postgres)", dbType)
	}
	if dbType != "" && v.GetString("database.dsn") == "" {
		return nil, fmt.Errorf("database.dsn is required when database.type is %q", dbType)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: v.GetInt("server.port"),
		},
		Upload: UploadConfig{
			PublicDir:    v.GetString("upload.public_dir"),
			MaxSizeBytes: maxSize,
			AllowedExts:  allowedExts,
		},
		Letter: LetterConfig{
			TrackBroadcastReads: v.GetBool("letter.track_broadcast_reads"),
			NotifyByMail:        v.GetBool("letter.notify_by_mail"),
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
			File:        v.GetString("log.file"),
		},
		Database: DatabaseConfig{
			Type:            dbType,
			DSN:             v.GetString("database.dsn"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:        jwtSecret,
			Issuer:        v.GetString("jwt.issuer"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Mail: MailConfig{
			Enabled:   v.GetBool("mail.enabled"),
			SMTPAddr:  v.GetString("mail.smtp_addr"),
			Username:  v.GetString("mail.username"),
			Password:  v.GetString("mail.password"),
			From:      v.GetString("mail.from"),
			ContactTo: v.GetString("mail.contact_to"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("upload.public_dir", "./public")
	v.SetDefault("upload.max_size_bytes", 5*1024*1024)
	v.SetDefault("upload.allowed_exts", "pdf,doc,docx,jpg,jpeg,png")
	v.SetDefault("letter.track_broadcast_reads", false)
	v.SetDefault("letter.notify_by_mail", false)
	v.SetDefault("cors.allowed_origins", "*")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.file", "")
	v.SetDefault("database.type", "") // 默认为空，使用内存存储
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "csoportal")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.smtp_addr", "localhost:587")
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "no-reply@csoportal.local")
	v.SetDefault("mail.contact_to", "")
}

// parseList 将逗号分隔的字符串解析为字符串切片
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadEnvFile 尝试加载 .env 文件
//
// 文件不存在时静默跳过，已设置的环境变量不会被覆盖。
func loadEnvFile() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}

// Addr 返回 HTTP 服务器的监听地址
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
