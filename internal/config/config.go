package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/IVAO-US/DivisionWebsite-sub000/internal/calendar"
	"github.com/IVAO-US/DivisionWebsite-sub000/internal/model"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`    // 服务器配置
	Database  DatabaseConfig  `mapstructure:"database"`  // PostgreSQL配置
	Sync      SyncConfig      `mapstructure:"sync"`      // 日志同步配置
	Reconcile ReconcileConfig `mapstructure:"reconcile"` // 取消对账配置
	Recurring RecurringConfig `mapstructure:"recurring"` // 周期活动配置
	Headline  HeadlineConfig  `mapstructure:"headline"`  // 首页横幅配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig PostgreSQL数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// SyncConfig 表单日志同步配置
type SyncConfig struct {
	Cron                 string `mapstructure:"cron"`                  // 同步Cron表达式
	Resource             string `mapstructure:"resource"`              // 日志资源标签（固定 forms）
	FallbackIllustration string `mapstructure:"fallback_illustration"` // 表单未附图时的兜底横幅URL
}

// ReconcileConfig 取消对账配置
type ReconcileConfig struct {
	Cron        string `mapstructure:"cron"`         // 对账Cron表达式
	IncludePast bool   `mapstructure:"include_past"` // 定时任务是否回溯历史会话
}

// RecurringConfig 两类周期活动的独立配置
type RecurringConfig struct {
	OnlineDay RecurringEventSettings `mapstructure:"online_day"`         // 每周 Online Day
	SpecOps   RecurringEventSettings `mapstructure:"specops_online_day"` // 每月 SpecOps Online Day
}

// RecurringEventSettings 单个周期活动的原始配置项
type RecurringEventSettings struct {
	Enabled      bool   `mapstructure:"enabled"`
	Title        string `mapstructure:"title"`
	DayOfWeek    int    `mapstructure:"day_of_week"` // 编号约定见 Normalized
	TimeStart    string `mapstructure:"time_start"`  // HH:MM:SS
	TimeEnd      string `mapstructure:"time_end"`    // HH:MM:SS
	NthWeek      int    `mapstructure:"nth_week"`    // 每月第N个；每周活动为0
	Type         string `mapstructure:"type"`
	Illustration string `mapstructure:"illustration"`
	Description  string `mapstructure:"description"`
}

// Normalized 换算为内部统一的周期活动配置。
// sundayBased=true 表示该项配置沿用旧的 0=周日 编号（SpecOps 项），
// 在这里一次性换算成 ISO 编号，下游不再出现两套约定
func (r RecurringEventSettings) Normalized(sundayBased bool) model.RecurringEventConfig {
	day := r.DayOfWeek
	if sundayBased {
		day = calendar.FromSundayBased(day)
	}
	return model.RecurringEventConfig{
		Enabled:      r.Enabled,
		Title:        r.Title,
		DayOfWeek:    day,
		TimeStart:    r.TimeStart,
		TimeEnd:      r.TimeEnd,
		NthWeek:      r.NthWeek,
		Type:         model.SessionType(r.Type),
		Illustration: r.Illustration,
		Description:  r.Description,
	}
}

// HeadlineConfig 首页横幅配置
type HeadlineConfig struct {
	TTLSeconds  int    `mapstructure:"ttl_seconds"`  // 决策缓存TTL（秒）
	MessageKey  string `mapstructure:"message_key"`  // settings 表里静态文案的键
	SessionIcon string `mapstructure:"session_icon"` // 会话进行中的图标
	OnlineIcon  string `mapstructure:"online_icon"`  // 周期活动进行中的图标
	MessageIcon string `mapstructure:"message_icon"` // 静态文案的图标
}

// TTL 横幅缓存时长；未配置时取60秒
func (h *HeadlineConfig) TTL() time.Duration {
	if h.TTLSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(h.TTLSeconds) * time.Second
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)

	// 4. 缺省值兜底
	if cfg.Sync.Resource == "" {
		cfg.Sync.Resource = "forms"
	}
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
}
