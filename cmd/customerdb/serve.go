package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"customerdb/internal/server"
	"customerdb/internal/util"
)

var (
	servePort    int
	serveDevMode bool
	serveOpen    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "HTTP API サーバーを起動する",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "ポート（config.toml で port を指定していない場合のみ有効）")
	serveCmd.Flags().BoolVar(&serveDevMode, "dev", false, "開発モード")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "起動後にブラウザを開く")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := appCfg
	if servePort > 0 && !cfgInfo.PortSpecified {
		cfg.Server.Port = servePort
	}
	if serveDevMode {
		cfg.Server.DevMode = true
	}
	if serveOpen {
		cfg.Server.OpenBrowser = true
	}

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := browserURL(cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		cmd.Printf("listening on %s\n", addr)
		errCh <- srv.Run(addr)
	}()

	if cfg.Server.OpenBrowser && !cfg.Server.DevMode {
		if err := util.OpenBrowserWithFallback(url); err != nil {
			cmd.Printf("ブラウザを開けませんでした。%s にアクセスしてください\n", url)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// browserURL 起動時に開く URL（UI は無いので状態 API を表示する）
func browserURL(port int) string {
	return fmt.Sprintf("http://localhost:%d/api/status", port)
}
