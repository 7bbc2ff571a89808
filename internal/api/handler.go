package api

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"customerdb/internal/exporter"
	"customerdb/internal/importer"
	"customerdb/internal/logging"
	"customerdb/internal/store"
)

// 既定のアップロード上限
const defaultMaxUploadBytes = 20 << 20

// Handler 顧客 API 処理器
type Handler struct {
	store       *store.Store
	coordinator *importer.Coordinator
	exporter    *exporter.Exporter
	validate    *validator.Validate
	logger      *logrus.Logger
	maxUpload   int64
}

// Options 処理器の設定
type Options struct {
	ChunkSize      int
	MaxUploadBytes int64
	Logger         *logrus.Logger
}

// NewHandler 処理器を作成する
func NewHandler(st *store.Store, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	return &Handler{
		store: st,
		coordinator: importer.NewCoordinator(st, importer.Options{
			ChunkSize: opts.ChunkSize,
			Logger:    logger,
		}),
		exporter:  exporter.NewExporter(st),
		validate:  newValidator(),
		logger:    logger,
		maxUpload: maxUpload,
	}
}

// RegisterRoutes ルートを登録する
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// システム状態
	router.GET("/status", h.GetStatus)

	// 取込
	router.POST("/upload", h.Upload)
	router.POST("/upload/stream", h.UploadStream)

	// 顧客
	router.GET("/customers", h.SearchCustomers)
	router.GET("/customers/:src/:id", h.GetCustomer)
	router.PATCH("/customers/:src/:id", h.UpdateCustomer)
	router.DELETE("/customers/:src/:id", h.DeleteCustomer)

	// エクスポート
	router.GET("/export", h.Export)
}
