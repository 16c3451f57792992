package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ironsheep/captcha-tools-mcp/internal/auth"
)

// NewRouter builds the gin engine with recovery, request logging and all
// routes. Auth on /solve is enabled when opts.JWTSecret is set.
func NewRouter(slv Solver, opts Options, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	var solveAuth gin.HandlerFunc
	if opts.JWTSecret != "" {
		solveAuth = auth.JWTMiddleware(opts.JWTSecret, opts.JWTAudience)
	}

	h := NewHandler(slv, logger, opts.MaxUploadBytes)
	router.MaxMultipartMemory = h.maxUpload

	RegisterRoutes(router, h, solveAuth)
	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.Writer.Header().Get(RequestIDHeader)),
		)
	}
}
