package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/edchat/edchat-go/internal/chat/config"
	"github.com/edchat/edchat-go/internal/chat/server"
	"github.com/edchat/edchat-go/pkg/log"
	"github.com/edchat/edchat-go/pkg/metrics"
	"github.com/edchat/edchat-go/pkg/util/conc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "edchat: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, props, err := log.InitLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log.ReplaceGlobals(logger, props)
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := server.NewServer(cfg)

	var pool *conc.Pool
	if cfg.MaxConnections > 0 {
		pool, err = conc.NewPool(cfg.MaxConnections, conc.WithConcealPanic(true))
		if err != nil {
			return fmt.Errorf("create connection pool: %w", err)
		}
		defer pool.Release()
	}

	acc, err := server.NewTCPAcceptor(cfg.ListenAddr, srv, pool)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddr, err)
	}
	log.Info("edchat listening",
		zap.String("name", cfg.Name),
		zap.Stringer("addr", acc.Addr()))

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return acc.Serve(gctx)
	})

	if cfg.WSListenAddr != "" {
		wsAcc, err := server.NewWSAcceptor(cfg.WSListenAddr, cfg.WSPath, srv)
		if err != nil {
			return fmt.Errorf("websocket acceptor: %w", err)
		}
		log.Info("websocket access point enabled",
			zap.String("addr", cfg.WSListenAddr),
			zap.String("path", cfg.WSPath))
		group.Go(func() error {
			return wsAcc.Serve(gctx)
		})
	}

	if cfg.MetricsAddr != "" {
		metricsSrv := newMetricsServer(cfg.MetricsAddr)
		log.Info("metrics enabled", zap.String("addr", cfg.MetricsAddr))
		group.Go(func() error {
			go func() {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = metricsSrv.Shutdown(shutdownCtx)
			}()
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	// 优雅退出：收到信号后先停接入，再关闭全部会话。
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	group.Go(func() error {
		select {
		case sig := <-sigCh:
			log.Info("shutting down", zap.Stringer("signal", sig))
		case <-gctx.Done():
		}
		cancel()
		_ = acc.Close()
		srv.Close()
		return nil
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// loadConfig 解析配置文件路径并加载配置。
//
// 路径优先级：
//  1. 默认 ./config.yaml（不存在时直接使用缺省配置）；
//  2. 环境变量 EDCHAT_CONFIG_FILE_PATH；
//  3. 命令行 --config <path> 或 --config=<path>。
func loadConfig() (*config.ServerConfig, error) {
	configPath := "./config.yaml"
	explicit := false

	if envPath := os.Getenv("EDCHAT_CONFIG_FILE_PATH"); envPath != "" {
		configPath = envPath
		explicit = true
	}

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--config" {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("missing value after --config")
			}
			configPath = args[i+1]
			explicit = true
			i++
			continue
		}
		if strings.HasPrefix(arg, "--config=") {
			if val := strings.TrimPrefix(arg, "--config="); val != "" {
				configPath = val
				explicit = true
			}
			continue
		}
	}

	if _, err := os.Stat(configPath); err != nil {
		if os.IsNotExist(err) && !explicit {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("config file %q: %w", configPath, err)
	}
	return config.Load(configPath)
}

// newMetricsServer 构造 Prometheus 指标 HTTP 服务。
func newMetricsServer(addr string) *http.Server {
	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
