package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pkarpov/linechat/internal/chat"
	"github.com/pkarpov/linechat/internal/config"
	"github.com/pkarpov/linechat/internal/store"
	"github.com/pkarpov/linechat/internal/transport/lineio"
)

// NewServer builds the HTTP server: health probe, read-only admin API and
// the WebSocket bridge into the line protocol.
func NewServer(runner *lineio.Runner, svc *chat.Service, st store.Store, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/ws", NewWSHandler(runner, logger).Handle)

	admin := NewAdminHandlers(svc, st, logger)
	api := router.Group("/api")
	api.GET("/rooms", admin.ListRooms)
	api.GET("/users", admin.ListUsers)
	api.GET("/events", admin.ListEvents)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

// LoggerMiddleware logs every HTTP request after it completes.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}
