// Package main is the entry point for the fleet scheduling simulator: a
// small demo that wires one scheduler.Service to a handful of simulated
// hosts, submits a batch of servers, and prints the metrics stream for a
// fixed five seconds before exiting.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/limiquantix/fleetsim/internal/clock"
	"github.com/limiquantix/fleetsim/internal/config"
	"github.com/limiquantix/fleetsim/internal/events"
	"github.com/limiquantix/fleetsim/internal/host"
	"github.com/limiquantix/fleetsim/internal/policy"
	"github.com/limiquantix/fleetsim/internal/scheduler"
	"github.com/limiquantix/fleetsim/internal/simhost"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version information")
	hostCount := flag.Int("hosts", 3, "Number of simulated hosts")
	serverCount := flag.Int("servers", 10, "Number of servers to submit")
	flag.Parse()

	if *showVersion {
		fmt.Println("fleetsim")
		fmt.Println("Version:", version)
		fmt.Println("Commit:", commit)
		os.Exit(0)
	}

	v := viper.New()
	if *configPath != "" {
		v.SetConfigFile(*configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("FLEETSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "failed to read config file:", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Logging)
	defer logger.Sync()

	logger.Info("starting fleet simulator",
		zap.String("version", version),
		zap.Int64("scheduling_quantum_ms", cfg.Scheduler.SchedulingQuantumMs),
		zap.String("placement_strategy", cfg.Scheduler.PlacementStrategy),
	)

	allocate, err := policy.New(policy.Name(cfg.Scheduler.PlacementStrategy))
	if err != nil {
		logger.Fatal("invalid placement strategy", zap.Error(err))
	}

	clk := clock.NewWallClock()
	tmr := clock.NewRealTimer()
	svc := scheduler.NewService(clk, tmr, allocate, cfg.Scheduler.SchedulingQuantumMs, logger)
	defer svc.Close()

	for i := 0; i < *hostCount; i++ {
		h := simhost.New(
			fmt.Sprintf("host-%d", i),
			host.Model{CPUCount: 8, MemorySize: 32 * 1024},
			clk, tmr,
			20*time.Second,
		)
		svc.AddHost(h)
	}

	client := svc.NewClient()
	flavor, err := client.NewFlavor("small", 2, 4*1024, nil, nil)
	if err != nil {
		logger.Fatal("failed to register flavor", zap.Error(err))
	}
	image, err := client.NewImage("demo-image", nil, nil)
	if err != nil {
		logger.Fatal("failed to register image", zap.Error(err))
	}

	ch, cancel := svc.Events()
	defer cancel()
	go printMetrics(ch)

	for i := 0; i < *serverCount; i++ {
		name := fmt.Sprintf("server-%d", i)
		if _, err := client.NewServer(name, flavor.ID, image.ID, nil, nil, true); err != nil {
			logger.Error("failed to submit server", zap.String("name", name), zap.Error(err))
		}
	}

	time.Sleep(5 * time.Second)
	logger.Info("goodbye")
}

func printMetrics(ch <-chan events.MetricsAvailable) {
	for m := range ch {
		fmt.Printf(
			"hosts=%d available=%d submitted=%d queued=%d running=%d finished=%d unscheduled=%d\n",
			m.HostCount, m.AvailableCount, m.Submitted, m.Queued, m.Running, m.Finished, m.Unscheduled,
		)
	}
}

// setupLogger configures the zap logger based on configuration.
func setupLogger(cfg config.LoggingConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapConfig zap.Config
	if cfg.Format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapConfig.Build()
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	return logger
}
