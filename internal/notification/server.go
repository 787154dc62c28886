package notification

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nao1215/notifyboard/pkg/middleware"
)

// Server は通知サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// store は通知コレクションを所有するストア。
	store Store
	// logger は構造化ロガー。
	logger logrus.FieldLogger
}

// ServerConfig は Server の生成パラメータ。
type ServerConfig struct {
	// Port はリッスンポート。
	Port string
	// AllowedOrigins はCORSで許可するオリジン。"*" は全オリジンを許可する。
	AllowedOrigins []string
}

// route はHTTPメソッドとパスをハンドラに対応づけるルーティング定義。
type route struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

// NewServer は与えられたストアを公開する通知サーバーを生成する。
func NewServer(store Store, cfg ServerConfig, logger logrus.FieldLogger) *Server {
	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	s := &Server{
		router: router,
		port:   cfg.Port,
		store:  store,
		logger: logger,
	}
	s.setupRoutes()

	return s
}

// Handler はルーティング済みのHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// routes はルーティングテーブルを返す。
func (s *Server) routes() []route {
	return []route{
		{http.MethodGet, "/", s.handleRoot()},
		{http.MethodGet, "/health", s.handleHealth()},
		{http.MethodGet, "/api/notifications", s.handleList()},
		{http.MethodPatch, "/api/notifications/:id/read", s.handleMarkAsRead()},
		{http.MethodPost, "/api/notifications/read-all", s.handleMarkAllAsRead()},
	}
}

// setupRoutes はルーティングテーブルをGinに登録する。
func (s *Server) setupRoutes() {
	for _, r := range s.routes() {
		s.router.Handle(r.method, r.path, r.handler)
	}
}

// handleRoot はサービスの稼働確認用ハンドラ。
func (s *Server) handleRoot() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Backend is running"})
	}
}

// handleHealth はヘルスチェック用ハンドラ。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "notification"})
	}
}

// handleList は全通知を挿入順で返すハンドラ。
func (s *Server) handleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		notifications, err := s.store.List(c.Request.Context())
		if err != nil {
			s.internalError(c, "通知一覧取得エラー", err)
			return
		}
		if notifications == nil {
			notifications = []Notification{}
		}

		c.JSON(http.StatusOK, notifications)
	}
}

// handleMarkAsRead は指定された通知を既読にするハンドラ。
func (s *Server) handleMarkAsRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		notificationID := c.Param("id")

		if err := s.store.MarkRead(c.Request.Context(), notificationID); err != nil {
			if errors.Is(err, ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
				return
			}
			s.internalError(c, "通知既読処理エラー", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Notification marked as read"})
	}
}

// handleMarkAllAsRead は全通知を既読にするハンドラ。
func (s *Server) handleMarkAllAsRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.store.MarkAllRead(c.Request.Context()); err != nil {
			s.internalError(c, "全通知既読処理エラー", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "All notifications marked as read"})
	}
}

// internalError はストアの障害をログに記録し、500を返す。
func (s *Server) internalError(c *gin.Context, msg string, err error) {
	s.logger.WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(c),
		"path":       c.Request.URL.Path,
	}).WithError(err).Error(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
