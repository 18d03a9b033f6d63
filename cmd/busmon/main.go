package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/wfunc/busmon/internal/config"
	"github.com/wfunc/busmon/internal/errors"
	"github.com/wfunc/busmon/internal/hardware"
	"github.com/wfunc/busmon/internal/logger"
	"go.uber.org/zap"
)

// 版本信息
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "config file path")
		showVersion = flag.Bool("version", false, "print version and exit")
		showHelp    = flag.Bool("help", false, "print help and exit")
	)
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}
	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	os.Exit(run(*configPath))
}

// run 返回进程退出码
func run(configPath string) int {
	if err := config.Init(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 2
	}
	cfg := config.Get()

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return 2
	}
	defer logger.Cleanup()

	log := logger.GetLogger()
	log.Info("busmon starting",
		zap.String("version", Version),
		zap.String("port", cfg.Serial.Port),
		zap.Int("baud_rate", cfg.Serial.BaudRate),
		zap.String("mode", cfg.Decoder.Mode))

	// 串口参数在运行中不可更改，只热加载日志级别
	config.Watch(func(newCfg *config.Config) {
		logger.SetLevel(newCfg.Log.Level)
		log.Info("config reloaded", zap.String("log_level", newCfg.Log.Level))
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	monitor := hardware.NewMonitor(cfg.Serial, cfg.Decoder, os.Stdout)
	if err := monitor.Run(ctx); err != nil {
		// 串口错误已由monitor打印并记录
		if !errors.IsCritical(err) {
			log.Warn("monitor stopped with error", zap.Error(err))
		}
		return 1
	}
	return 0
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("busmon %s\n", Version)
	fmt.Printf("build time: %s\n", BuildTime)
	fmt.Printf("git commit: %s\n", GitCommit)
	fmt.Printf("go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("busmon - XpressNet call byte monitor")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  busmon [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  BUSMON_SERIAL_PORT       serial device (default /dev/ttyUSB0)")
	fmt.Println("  BUSMON_SERIAL_BAUD_RATE  baud rate (default 62500)")
	fmt.Println("  BUSMON_DECODER_MODE      address | call")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  busmon -config=/etc/busmon/config.yaml")
	fmt.Println("  BUSMON_DECODER_MODE=call busmon")
}
