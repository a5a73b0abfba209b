package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webpong/config"
	"webpong/server"
)

// webpong 入口：加载配置，启动 HTTP + WebSocket 服务与会话管理器
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfgPath, addr string
	flag.StringVar(&cfgPath, "config", os.Getenv("PONG_CONFIG"), "config file (.toml or .yaml)")
	flag.StringVar(&addr, "addr", "", "server listen address, overrides config, e.g. :8080")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	log, err := server.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer server.SyncLogger(log)

	// 优雅退出（Ctrl+C）
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager := server.NewManager(ctx, cfg, server.SystemClock{}, log)
	handlers := server.NewHandlers(cfg, manager, log)
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: handlers.Routes()}

	errc := make(chan error, 1)
	go func() {
		log.Infof("webpong listening on %s (mode=%s variant=%s tps=%d)",
			cfg.Server.Addr, cfg.Game.Mode, cfg.Game.Variant, cfg.Game.TickRate)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("http shutdown", "error", err)
	}
	manager.Wait()
	return nil
}
