package config

import (
	"errors"
	"fmt"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	AI       AIConfig       `mapstructure:"ai"`
	Log      LogConfig      `mapstructure:"log"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	TTS      TTSConfig      `mapstructure:"tts"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AIConfig 脚本生成使用的 LLM 配置
type AIConfig struct {
	Provider string          `mapstructure:"provider"` // openai, azure, ark
	Client   string          `mapstructure:"client"`   // eino（默认）或 ark-native
	APIKey   string          `mapstructure:"api_key"`
	Model    string          `mapstructure:"model"`
	BaseURL  string          `mapstructure:"base_url"`
	Options  AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig AI 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig Redis 配置，Addr 为空时不启用缓存和分布式锁
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig 音频素材存储配置
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // local, oss
	Local *LocalConfig `mapstructure:"local,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
}

// LocalConfig 本地文件系统配置
type LocalConfig struct {
	BasePath      string `mapstructure:"base_path"`      // 基础路径
	BaseURL       string `mapstructure:"base_url"`       // 基础URL（用于生成访问URL）
	PresignExpiry int    `mapstructure:"presign_expiry"` // 预签名URL过期时间（秒）
}

// OSSConfig 阿里云OSS配置
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`          // OSS端点
	Bucket          string `mapstructure:"bucket"`            // Bucket名称
	AccessKeyID     string `mapstructure:"access_key_id"`     // AccessKey ID
	AccessKeySecret string `mapstructure:"access_key_secret"` // AccessKey Secret
	PresignExpiry   int    `mapstructure:"presign_expiry"`    // 预签名URL过期时间（秒）
}

// PipelineConfig 脚本规范化与时长对齐参数
type PipelineConfig struct {
	FPS                    int           `mapstructure:"fps"`
	AudioBytesPerSecond    int           `mapstructure:"audio_bytes_per_second"` // 128kbps MP3 = 16000
	CharsPerSecond         float64       `mapstructure:"chars_per_second"`       // 无音频时按字数估算
	DefaultDurationMinutes int           `mapstructure:"default_duration_minutes"`
	SynthesisMode          string        `mapstructure:"synthesis_mode"` // empty, always, never
	CacheTTL               time.Duration `mapstructure:"cache_ttl"`
	LockTTL                time.Duration `mapstructure:"lock_ttl"`
}

// TTSConfig 语音合成配置（ElevenLabs）
type TTSConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	VoiceID string        `mapstructure:"voice_id"`
	ModelID string        `mapstructure:"model_id"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	return c.Pipeline.Validate()
}

// Validate 验证流水线参数
func (p *PipelineConfig) Validate() error {
	if p.FPS <= 0 {
		return fmt.Errorf("invalid pipeline fps: %d", p.FPS)
	}
	if p.AudioBytesPerSecond <= 0 {
		return fmt.Errorf("invalid audio bytes per second: %d", p.AudioBytesPerSecond)
	}
	if p.CharsPerSecond <= 0 {
		return fmt.Errorf("invalid chars per second: %v", p.CharsPerSecond)
	}
	if p.DefaultDurationMinutes <= 0 {
		return fmt.Errorf("invalid default duration minutes: %d", p.DefaultDurationMinutes)
	}
	switch p.SynthesisMode {
	case "", "empty", "always", "never":
	default:
		return fmt.Errorf("invalid synthesis mode %q, must be empty/always/never", p.SynthesisMode)
	}
	return nil
}

// TargetFrames 将分钟数换算为目标帧数
func (p *PipelineConfig) TargetFrames(minutes float64) int {
	if minutes <= 0 {
		minutes = float64(p.DefaultDurationMinutes)
	}
	return int(minutes * 60 * float64(p.FPS))
}
