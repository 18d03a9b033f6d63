package hardware

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/tarm/serial"
	"github.com/wfunc/busmon/internal/config"
)

// PortOpener 打开串口的函数
type PortOpener func(cfg *config.SerialConfig) (SerialPort, error)

// SerialPortExists 检查串口设备是否存在
func SerialPortExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// parseParity 解析校验位
func parseParity(p string) serial.Parity {
	switch strings.ToUpper(p) {
	case "O", "ODD":
		return serial.ParityOdd
	case "E", "EVEN":
		return serial.ParityEven
	default:
		return serial.ParityNone
	}
}

// parseStopBits 解析停止位
func parseStopBits(n int) serial.StopBits {
	if n == 2 {
		return serial.Stop2
	}
	return serial.Stop1
}

// NewSerialConfig 转换为tarm/serial的配置
func NewSerialConfig(cfg *config.SerialConfig) *serial.Config {
	return &serial.Config{
		Name:        cfg.Port,
		Baud:        cfg.BaudRate,
		Size:        byte(cfg.DataBits),
		Parity:      parseParity(cfg.Parity),
		StopBits:    parseStopBits(cfg.StopBits),
		ReadTimeout: cfg.ReadTimeout,
	}
}

// OpenSerialPort 打开真实串口
func OpenSerialPort(cfg *config.SerialConfig) (SerialPort, error) {
	if !SerialPortExists(cfg.Port) {
		return nil, fmt.Errorf("could not open port %s: no such file or directory", cfg.Port)
	}

	port, err := serial.OpenPort(NewSerialConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("could not open port %s: %w", cfg.Port, err)
	}
	return port, nil
}

// onceCloser 保证串口只关闭一次
type onceCloser struct {
	port SerialPort
	once sync.Once
	err  error
}

func (c *onceCloser) Close() error {
	c.once.Do(func() {
		c.err = c.port.Close()
	})
	return c.err
}
