package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	apperrors "github.com/wfunc/busmon/internal/errors"
)

// Config 全局配置结构体
type Config struct {
	Serial  SerialConfig  `mapstructure:"serial"`
	Decoder DecoderConfig `mapstructure:"decoder"`
	Log     LogConfig     `mapstructure:"log"`
}

// SerialConfig 串口配置
type SerialConfig struct {
	Port        string        `mapstructure:"port"`
	BaudRate    int           `mapstructure:"baud_rate"`
	DataBits    int           `mapstructure:"data_bits"`
	StopBits    int           `mapstructure:"stop_bits"`
	Parity      string        `mapstructure:"parity"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	BufferSize  int           `mapstructure:"buffer_size"`
}

// DecoderConfig 解码配置
type DecoderConfig struct {
	Mode        string        `mapstructure:"mode"`         // address | call
	IdleBackoff time.Duration `mapstructure:"idle_backoff"` // 空读后的休眠
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string            `mapstructure:"level"`
	Format  string            `mapstructure:"format"`
	Output  string            `mapstructure:"output"`
	File    LogFileConfig     `mapstructure:"file"`
	Modules map[string]string `mapstructure:"modules"`
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// 解码模式
const (
	ModeAddress = "address"
	ModeCall    = "call"
)

var (
	cfg *Config
	mu  sync.RWMutex
	v   *viper.Viper
)

// Init 初始化配置
func Init(configPath string) error {
	nv, err := load(configPath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrConfigLoad)
	}

	newCfg := &Config{}
	if err := nv.Unmarshal(newCfg); err != nil {
		return apperrors.Wrap(err, apperrors.ErrConfigParse)
	}
	if err := newCfg.Validate(); err != nil {
		return err
	}

	mu.Lock()
	v = nv
	cfg = newCfg
	mu.Unlock()

	return nil
}

// load 读取配置文件、环境变量与默认值
func load(configPath string) (*viper.Viper, error) {
	nv := viper.New()

	if configPath != "" {
		nv.SetConfigFile(configPath)
	} else {
		nv.SetConfigName("config")
		nv.SetConfigType("yaml")
		nv.AddConfigPath("./config")
		nv.AddConfigPath(".")
	}

	nv.SetEnvPrefix("BUSMON")
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	setDefaults(nv)

	if err := nv.ReadInConfig(); err != nil {
		// 配置文件不存在时使用默认配置
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return nv, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	v.SetDefault("serial.port", "/dev/ttyUSB0")
	v.SetDefault("serial.baud_rate", 62500)
	v.SetDefault("serial.data_bits", 8)
	v.SetDefault("serial.stop_bits", 1)
	v.SetDefault("serial.parity", "N")
	v.SetDefault("serial.read_timeout", "1s")
	v.SetDefault("serial.buffer_size", 256)

	v.SetDefault("decoder.mode", ModeAddress)
	v.SetDefault("decoder.idle_backoff", "0s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.filename", "busmon.log")
	v.SetDefault("log.file.max_size", 100)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.compress", true)
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Serial.Port == "" {
		return apperrors.New(apperrors.ErrConfigValidate, "serial.port must not be empty")
	}
	if c.Serial.BaudRate <= 0 {
		return apperrors.Newf(apperrors.ErrConfigValidate, "serial.baud_rate must be positive, got %d", c.Serial.BaudRate)
	}
	switch c.Serial.DataBits {
	case 5, 6, 7, 8:
	default:
		return apperrors.Newf(apperrors.ErrConfigValidate, "serial.data_bits must be 5-8, got %d", c.Serial.DataBits)
	}
	switch c.Serial.StopBits {
	case 1, 2:
	default:
		return apperrors.Newf(apperrors.ErrConfigValidate, "serial.stop_bits must be 1 or 2, got %d", c.Serial.StopBits)
	}
	switch strings.ToUpper(c.Serial.Parity) {
	case "N", "NONE", "O", "ODD", "E", "EVEN":
	default:
		return apperrors.Newf(apperrors.ErrConfigValidate, "serial.parity must be N, O or E, got %q", c.Serial.Parity)
	}
	// 为0时tarm/serial阻塞读取，关闭串口也无法唤醒
	if c.Serial.ReadTimeout <= 0 {
		return apperrors.Newf(apperrors.ErrConfigValidate, "serial.read_timeout must be positive, got %s", c.Serial.ReadTimeout)
	}
	if c.Serial.BufferSize <= 0 {
		return apperrors.Newf(apperrors.ErrConfigValidate, "serial.buffer_size must be positive, got %d", c.Serial.BufferSize)
	}
	switch c.Decoder.Mode {
	case ModeAddress, ModeCall:
	default:
		return apperrors.Newf(apperrors.ErrConfigValidate, "decoder.mode must be %q or %q, got %q", ModeAddress, ModeCall, c.Decoder.Mode)
	}
	if c.Decoder.IdleBackoff < 0 {
		return apperrors.New(apperrors.ErrConfigValidate, "decoder.idle_backoff must not be negative")
	}
	return nil
}

// Get 获取配置实例
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Watch 监听配置文件变化
func Watch(callback func(*Config)) {
	mu.RLock()
	w := v
	mu.RUnlock()
	if w == nil || w.ConfigFileUsed() == "" {
		return
	}

	w.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		newCfg := &Config{}
		if err := w.Unmarshal(newCfg); err != nil {
			fmt.Fprintf(os.Stderr, "config reload failed: %v\n", err)
			return
		}
		if err := newCfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "config reload rejected: %v\n", err)
			return
		}

		mu.Lock()
		cfg = newCfg
		mu.Unlock()

		if callback != nil {
			callback(newCfg)
		}
	})
	w.WatchConfig()
}
