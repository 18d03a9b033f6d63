package hardware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/wfunc/busmon/internal/config"
	apperrors "github.com/wfunc/busmon/internal/errors"
	"github.com/wfunc/busmon/internal/logger"
	"go.uber.org/zap"
)

// hangupReads 连续多少次提前返回的空读视为设备挂断
const hangupReads = 20

// Monitor 串口总线监视器。持有串口连接，循环读取并逐字节解码
type Monitor struct {
	serial  config.SerialConfig
	decoder config.DecoderConfig
	out     io.Writer
	open    PortOpener
	exists  func(path string) bool
	now     func() time.Time
	stats   Stats
	logger  *zap.Logger
}

// NewMonitor 创建监视器，解码结果写入out
func NewMonitor(serialCfg config.SerialConfig, decoderCfg config.DecoderConfig, out io.Writer) *Monitor {
	if serialCfg.BufferSize <= 0 {
		serialCfg.BufferSize = 256
	}
	return &Monitor{
		serial:  serialCfg,
		decoder: decoderCfg,
		out:     out,
		open:    OpenSerialPort,
		exists:  SerialPortExists,
		now:     time.Now,
		logger:  logger.WithModule("monitor"),
	}
}

// SetPortOpener 替换串口打开函数（测试用）
func (m *Monitor) SetPortOpener(open PortOpener) {
	m.open = open
}

// SetClock 替换时钟（测试用）
func (m *Monitor) SetClock(now func() time.Time) {
	m.now = now
}

// Stats 返回统计信息
func (m *Monitor) Stats() *Stats {
	return &m.stats
}

// Snapshot 按监视器时钟获取统计快照
func (m *Monitor) Snapshot() StatsSnapshot {
	return m.stats.Snapshot(m.now())
}

// Run 打开串口并持续读取，直到读取失败或ctx被取消。
// ctx取消时打印退出信息并返回nil；串口打开或读取失败时返回AppError。
func (m *Monitor) Run(ctx context.Context) error {
	port, err := m.open(&m.serial)
	if err != nil {
		return m.fail(apperrors.Wrap(err, apperrors.ErrSerialPortOpen, m.serial.Port))
	}

	closer := &onceCloser{port: port}
	defer func() {
		if err := closer.Close(); err != nil {
			m.logger.Debug("close serial port", zap.Error(err))
		}
	}()

	m.stats.start(m.now())
	m.printf("Connected to %s at %d baud.\n", m.serial.Port, m.serial.BaudRate)
	m.logger.Info("serial port connected",
		zap.String("port", m.serial.Port),
		zap.Int("baud_rate", m.serial.BaudRate),
		zap.Duration("read_timeout", m.serial.ReadTimeout),
		zap.String("mode", m.decoder.Mode))

	// 取消时关闭串口以释放阻塞中的Read
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = closer.Close()
		case <-done:
		}
	}()

	defer m.logStats()

	buf := make([]byte, m.serial.BufferSize)
	early := 0
	for {
		if ctx.Err() != nil {
			return m.interrupted()
		}

		readStart := m.now()
		n, err := port.Read(buf)
		if n > 0 {
			m.stats.ChunksRead.Add(1)
			m.stats.BytesRead.Add(uint64(n))
			m.ProcessChunk(buf[:n])
		}

		if err != nil {
			if ctx.Err() != nil {
				return m.interrupted()
			}
			if !isReadTimeout(err) {
				return m.fail(apperrors.Wrap(err, apperrors.ErrSerialPortRead, m.serial.Port))
			}
		}

		if n == 0 {
			m.stats.EmptyReads.Add(1)

			// 设备拔出后tty不再等待读超时，每次立即返回EOF
			if m.now().Sub(readStart) < m.serial.ReadTimeout/2 {
				early++
			} else {
				early = 0
			}
			if !m.exists(m.serial.Port) || early >= hangupReads {
				return m.fail(apperrors.Newf(apperrors.ErrDeviceOffline, "device %s disconnected", m.serial.Port))
			}

			m.idle(ctx)
		} else {
			early = 0
		}
	}
}

// ProcessChunk 按顺序解码一段数据中的每个字节
func (m *Monitor) ProcessChunk(chunk []byte) {
	if m.decoder.Mode == config.ModeCall {
		m.processCalls(chunk)
		return
	}

	for _, b := range chunk {
		match, ok := DecodeByte(b)
		if !ok {
			continue
		}
		m.stats.Matches.Add(1)
		m.println(FormatMatch(match))
	}
}

func (m *Monitor) processCalls(chunk []byte) {
	now := m.now()
	for _, b := range chunk {
		call, err := ClassifyCall(b, now)
		if err != nil {
			m.stats.ParityErrors.Add(1)
			m.logger.Debug("parity error", zap.Uint8("raw", b), zap.Error(err))
			m.println(FormatParityError(b))
			continue
		}
		m.stats.Calls.Add(1)
		m.println(FormatCall(call))
	}
}

// idle 空读后的可选退避
func (m *Monitor) idle(ctx context.Context) {
	if m.decoder.IdleBackoff <= 0 {
		return
	}
	t := time.NewTimer(m.decoder.IdleBackoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (m *Monitor) interrupted() error {
	m.println("Exiting program.")
	m.logger.Info("interrupted, exiting")
	return nil
}

func (m *Monitor) fail(err *apperrors.AppError) error {
	m.printf("Error opening or reading from serial port: %s\n", err.Diagnostic())
	m.logger.Error("serial port failure",
		zap.String("port", m.serial.Port),
		zap.Int("code", int(err.Code)),
		zap.Error(err),
		zap.String("stack", err.GetStack()))
	return err
}

func (m *Monitor) logStats() {
	s := m.Snapshot()
	m.logger.Info("monitor stopped",
		zap.Uint64("bytes_read", s.BytesRead),
		zap.Uint64("chunks_read", s.ChunksRead),
		zap.Uint64("empty_reads", s.EmptyReads),
		zap.Uint64("matches", s.Matches),
		zap.Uint64("calls", s.Calls),
		zap.Uint64("parity_errors", s.ParityErrors),
		zap.Duration("uptime", s.Uptime))
}

func (m *Monitor) println(line string) {
	fmt.Fprintln(m.out, line)
}

func (m *Monitor) printf(format string, args ...interface{}) {
	fmt.Fprintf(m.out, format, args...)
}

// isReadTimeout tarm/serial读超时返回0字节和io.EOF
func isReadTimeout(err error) bool {
	return errors.Is(err, io.EOF)
}
