package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cfg 是一个全局变量，用于存储所有应用程序的配置
var Cfg *Config

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Statistics StatisticsConfig `mapstructure:"statistics"`
	RateLimit  RateLimitConfig  `mapstructure:"rateLimit"`

	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode        string     `mapstructure:"mode"`
	Address     string     `mapstructure:"address"`
	Cors        CorsConfig `mapstructure:"cors"`
	AdminSecret string     `mapstructure:"adminSecret"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了数据库和缓存相关的配置
type DatabaseConfig struct {
	Driver       string      `mapstructure:"driver"`
	DSN          string      `mapstructure:"dsn"`
	MaxOpenConns int         `mapstructure:"maxOpenConns"`
	Redis        RedisConfig `mapstructure:"redis"`
}

// RedisConfig 定义了Redis的配置
// Address 为空时不连接Redis，限流功能随之关闭
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StatisticsConfig 定义了统计引擎的业务参数
type StatisticsConfig struct {
	// TopPackageCount 是包统计查询返回的最大条目数
	TopPackageCount int `mapstructure:"topPackageCount"`
	// MaxResultCount 是游戏结果查询返回的最大条目数
	MaxResultCount int `mapstructure:"maxResultCount"`
	// MaximumGameDuration 是允许上报的最长游戏时长
	MaximumGameDuration time.Duration `mapstructure:"maximumGameDuration"`
	// CollectedAnswersThreshold 是答案被收集并返回给客户端所需的最少次数
	CollectedAnswersThreshold int `mapstructure:"collectedAnswersThreshold"`
	// ReportFreshnessWindow 是报告结束时间与当前时间允许的最大偏差
	ReportFreshnessWindow time.Duration `mapstructure:"reportFreshnessWindow"`
	// MaxIndexedTextBytes 是可被唯一索引的文本最大字节数
	MaxIndexedTextBytes int `mapstructure:"maxIndexedTextBytes"`
	// MergeMaxAttempts 是累计统计乐观合并的最大尝试次数
	MergeMaxAttempts int `mapstructure:"mergeMaxAttempts"`
	// TxMaxAttempts 是可重试事务的最大尝试次数
	TxMaxAttempts int `mapstructure:"txMaxAttempts"`
}

// RateLimitConfig 定义了写接口的限流配置
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Window  time.Duration `mapstructure:"window"`
	Limit   int64         `mapstructure:"limit"`
}

// ObservabilityConfig 定义了指标和链路追踪的导出配置
// Endpoint 为空时导出到标准输出
type ObservabilityConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
	// Headers 形如 "key1=value1,key2=value2"
	Headers        string        `mapstructure:"headers"`
	SampleRatio    float64       `mapstructure:"sampleRatio"`
	ExportInterval time.Duration `mapstructure:"exportInterval"`
	Environment    string        `mapstructure:"environment"`
}

// DefaultStatistics 返回统计引擎的默认参数
func DefaultStatistics() StatisticsConfig {
	return StatisticsConfig{
		TopPackageCount:           10,
		MaxResultCount:            100,
		MaximumGameDuration:       10 * time.Hour,
		CollectedAnswersThreshold: 8,
		ReportFreshnessWindow:     time.Hour,
		MaxIndexedTextBytes:       2700,
		MergeMaxAttempts:          5,
		TxMaxAttempts:             3,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("server.adminSecret", "")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "sistatistics.db")
	v.SetDefault("database.maxOpenConns", 10)
	v.SetDefault("database.redis.address", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)

	d := DefaultStatistics()
	v.SetDefault("statistics.topPackageCount", d.TopPackageCount)
	v.SetDefault("statistics.maxResultCount", d.MaxResultCount)
	v.SetDefault("statistics.maximumGameDuration", d.MaximumGameDuration)
	v.SetDefault("statistics.collectedAnswersThreshold", d.CollectedAnswersThreshold)
	v.SetDefault("statistics.reportFreshnessWindow", d.ReportFreshnessWindow)
	v.SetDefault("statistics.maxIndexedTextBytes", d.MaxIndexedTextBytes)
	v.SetDefault("statistics.mergeMaxAttempts", d.MergeMaxAttempts)
	v.SetDefault("statistics.txMaxAttempts", d.TxMaxAttempts)

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.window", time.Minute)
	v.SetDefault("rateLimit.limit", 60)

	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.endpoint", "")
	v.SetDefault("observability.insecure", false)
	v.SetDefault("observability.headers", "")
	v.SetDefault("observability.sampleRatio", 0.1)
	v.SetDefault("observability.exportInterval", time.Minute)
	v.SetDefault("observability.environment", "")
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 找不到 config.yaml 时使用默认值和环境变量
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Viper会按顺序查找
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 允许通过环境变量覆盖配置，例如 STATISTICS_TOPPACKAGECOUNT=20
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	Cfg = &cfg

	return Cfg, nil
}
