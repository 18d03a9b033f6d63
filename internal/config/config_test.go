package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wfunc/busmon/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestInitDefaults(t *testing.T) {
	require.NoError(t, Init(""))

	c := Get()
	require.NotNil(t, c)
	assert.Equal(t, "/dev/ttyUSB0", c.Serial.Port)
	assert.Equal(t, 62500, c.Serial.BaudRate)
	assert.Equal(t, 8, c.Serial.DataBits)
	assert.Equal(t, 1, c.Serial.StopBits)
	assert.Equal(t, "N", c.Serial.Parity)
	assert.Equal(t, time.Second, c.Serial.ReadTimeout)
	assert.Equal(t, 256, c.Serial.BufferSize)
	assert.Equal(t, ModeAddress, c.Decoder.Mode)
	assert.Zero(t, c.Decoder.IdleBackoff)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "stderr", c.Log.Output)
}

func TestInitFromFile(t *testing.T) {
	path := writeConfig(t, `
serial:
  port: /dev/ttyACM3
  baud_rate: 9600
  read_timeout: 250ms
decoder:
  mode: call
  idle_backoff: 5ms
log:
  level: debug
  modules:
    monitor: warn
`)
	require.NoError(t, Init(path))

	c := Get()
	assert.Equal(t, "/dev/ttyACM3", c.Serial.Port)
	assert.Equal(t, 9600, c.Serial.BaudRate)
	assert.Equal(t, 250*time.Millisecond, c.Serial.ReadTimeout)
	assert.Equal(t, ModeCall, c.Decoder.Mode)
	assert.Equal(t, 5*time.Millisecond, c.Decoder.IdleBackoff)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "warn", c.Log.Modules["monitor"])
	// 未出现在文件中的键保持默认值
	assert.Equal(t, 8, c.Serial.DataBits)
}

func TestInitEnvOverride(t *testing.T) {
	t.Setenv("BUSMON_SERIAL_PORT", "/dev/ttyS1")
	t.Setenv("BUSMON_SERIAL_BAUD_RATE", "19200")

	require.NoError(t, Init(""))
	assert.Equal(t, "/dev/ttyS1", Get().Serial.Port)
	assert.Equal(t, 19200, Get().Serial.BaudRate)
}

func TestInitMissingExplicitFile(t *testing.T) {
	err := Init(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConfigLoad))
	assert.True(t, apperrors.IsCritical(err))
}

func TestInitRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "serial:\n  read_timeout: soon\n")
	err := Init(path)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConfigParse))
}

func TestInitRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "decoder:\n  mode: hex\n")
	err := Init(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoder.mode")
	assert.True(t, apperrors.Is(err, apperrors.ErrConfigValidate))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Serial: SerialConfig{
				Port:        "/dev/ttyUSB0",
				BaudRate:    62500,
				DataBits:    8,
				StopBits:    1,
				Parity:      "N",
				ReadTimeout: time.Second,
				BufferSize:  64,
			},
			Decoder: DecoderConfig{Mode: ModeAddress},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty port", func(c *Config) { c.Serial.Port = "" }, "serial.port"},
		{"zero baud", func(c *Config) { c.Serial.BaudRate = 0 }, "serial.baud_rate"},
		{"bad data bits", func(c *Config) { c.Serial.DataBits = 9 }, "serial.data_bits"},
		{"bad stop bits", func(c *Config) { c.Serial.StopBits = 3 }, "serial.stop_bits"},
		{"bad parity", func(c *Config) { c.Serial.Parity = "M" }, "serial.parity"},
		{"lowercase parity", func(c *Config) { c.Serial.Parity = "even" }, ""},
		{"negative timeout", func(c *Config) { c.Serial.ReadTimeout = -time.Second }, "serial.read_timeout"},
		{"zero timeout", func(c *Config) { c.Serial.ReadTimeout = 0 }, "serial.read_timeout"},
		{"zero buffer", func(c *Config) { c.Serial.BufferSize = 0 }, "serial.buffer_size"},
		{"call mode", func(c *Config) { c.Decoder.Mode = ModeCall }, ""},
		{"negative backoff", func(c *Config) { c.Decoder.IdleBackoff = -1 }, "decoder.idle_backoff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, apperrors.Is(err, apperrors.ErrConfigValidate))
		})
	}
}

func TestWatchWithoutFileIsNoop(t *testing.T) {
	require.NoError(t, Init(""))
	assert.NotPanics(t, func() { Watch(nil) })
}
