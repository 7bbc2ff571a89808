package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"customerdb/internal/api"
	"customerdb/internal/config"
	"customerdb/internal/store"
)

// Server HTTP サーバー
type Server struct {
	router *gin.Engine
	store  *store.Store
	api    *api.Handler
	logger *logrus.Logger
	http   *http.Server
}

// NewServer 設定からストアを開きサーバーを組み立てる
func NewServer(cfg *config.AppConfig, logger *logrus.Logger) (*Server, error) {
	if _, err := config.EnsureDataDir(cfg); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	sqliteStore, err := store.New(config.DBPath(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return New(sqliteStore, cfg, logger), nil
}

// New 既存のストアでサーバーを組み立てる
func New(st *store.Store, cfg *config.AppConfig, logger *logrus.Logger) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	s := &Server{
		router: router,
		store:  st,
		api: api.NewHandler(st, api.Options{
			ChunkSize:      cfg.Ingest.ChunkSize,
			MaxUploadBytes: cfg.MaxUploadBytes(),
			Logger:         logger,
		}),
		logger: logger,
	}

	s.setupRoutes()

	return s
}

// setupRoutes ルートを設定する
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		s.api.RegisterRoutes(apiGroup)
	}

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "見つかりません"})
	})
}

// requestLogger アクセスログを logrus に出す
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("request")
		} else {
			entry.Debug("request")
		}
	}
}

// Handler テスト用に http.Handler を返す
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run サーバーを起動する（Shutdown まで戻らない）
func (s *Server) Run(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 処理中のリクエストを待ってから停止しストアを閉じる
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown http server: %w", err)
		}
	}
	return s.store.Close()
}

// GetStore ストアを取得する（テスト用）
func (s *Server) GetStore() *store.Store {
	return s.store
}
