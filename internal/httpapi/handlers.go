package httpapi

import (
	"bytes"
	"errors"
	"image"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/captcha-tools-mcp/internal/corpus"
	"github.com/ironsheep/captcha-tools-mcp/internal/imaging"
	"github.com/ironsheep/captcha-tools-mcp/internal/logging"
	"github.com/ironsheep/captcha-tools-mcp/internal/solver"
)

// DefaultMaxUploadSize caps request bodies when Options leaves it unset.
const DefaultMaxUploadSize = 5 << 20

// RequestIDHeader carries the per-request id on responses.
const RequestIDHeader = "X-Request-ID"

// Solver is the recognition engine behind the API.
type Solver interface {
	ResolveDetailed(img image.Image) solver.Result
	Store() *corpus.Store
}

// Options configures the API.
type Options struct {
	MaxUploadBytes int64
	// JWTSecret enables bearer auth on POST /solve.
	JWTSecret   string
	JWTAudience string
}

// Handler serves the REST endpoints.
type Handler struct {
	solver    Solver
	logger    *zap.Logger
	maxUpload int64
}

// NewHandler returns a Handler. A non-positive maxUpload means
// DefaultMaxUploadSize.
func NewHandler(slv Solver, logger *zap.Logger, maxUpload int64) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadSize
	}
	return &Handler{solver: slv, logger: logger, maxUpload: maxUpload}
}

// RegisterRoutes wires the HTTP handlers to the Gin router. solveAuth, when
// non-nil, guards POST /solve.
func RegisterRoutes(router *gin.Engine, h *Handler, solveAuth gin.HandlerFunc) {
	router.GET("/health", h.health)
	router.GET("/corpus", h.corpusInfo)

	solve := []gin.HandlerFunc{h.solve}
	if solveAuth != nil {
		solve = append([]gin.HandlerFunc{solveAuth}, solve...)
	}
	router.POST("/solve", solve...)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) corpusInfo(c *gin.Context) {
	store := h.solver.Store()

	chars := store.Characters()
	names := make([]string, len(chars))
	for i, ch := range chars {
		names[i] = string(ch)
	}

	c.JSON(http.StatusOK, gin.H{
		"entries":      store.Len(),
		"glyph_height": store.GlyphHeight(),
		"characters":   names,
	})
}

type solveRequest struct {
	ImageBase64 string `json:"image_base64"`
}

// solve accepts either a multipart upload in the "image" field or a JSON
// body {"image_base64": "..."}.
func (h *Handler) solve(c *gin.Context) {
	requestID := uuid.NewString()
	c.Header(RequestIDHeader, requestID)
	logger := logging.WithOperation(h.logger, "solve", requestID)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxUpload+1))
	if err != nil {
		h.fail(c, logger, http.StatusBadRequest, requestID, "failed to read request body", err)
		return
	}
	if int64(len(body)) > h.maxUpload {
		h.fail(c, logger, http.StatusRequestEntityTooLarge, requestID, "request body too large", nil)
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	mediaType, _, _ := mime.ParseMediaType(c.ContentType())

	var data []byte
	switch mediaType {
	case "multipart/form-data":
		data, err = readUpload(c)
		if errors.Is(err, errUnsupportedImageType) {
			h.fail(c, logger, http.StatusUnsupportedMediaType, requestID, err.Error(), nil)
			return
		}
		if err != nil {
			h.fail(c, logger, http.StatusBadRequest, requestID, "image file is required", err)
			return
		}
	case "application/json":
		var req solveRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ImageBase64 == "" {
			h.fail(c, logger, http.StatusBadRequest, requestID, "image_base64 is required", err)
			return
		}
		img, _, err := imaging.DecodeBase64(req.ImageBase64)
		if err != nil {
			h.fail(c, logger, http.StatusBadRequest, requestID, "invalid image", err)
			return
		}
		h.respond(c, logger, requestID, img)
		return
	default:
		h.fail(c, logger, http.StatusUnsupportedMediaType, requestID, "expected multipart/form-data or application/json", nil)
		return
	}

	img, _, err := imaging.Decode(data)
	if err != nil {
		h.fail(c, logger, http.StatusBadRequest, requestID, "invalid image", err)
		return
	}
	h.respond(c, logger, requestID, img)
}

func (h *Handler) respond(c *gin.Context, logger *zap.Logger, requestID string, img image.Image) {
	start := time.Now()
	result := h.solver.ResolveDetailed(img)
	elapsed := time.Since(start)

	logger.Info("solved captcha",
		zap.String("text", result.Text),
		zap.Int("glyphs", len(result.Glyphs)),
		zap.Bool("merged", result.Merged),
		zap.Duration("elapsed", elapsed),
	)

	c.JSON(http.StatusOK, gin.H{
		"request_id": requestID,
		"text":       result.Text,
		"merged":     result.Merged,
		"glyphs":     result.Glyphs,
		"elapsed_ms": float64(elapsed.Microseconds()) / 1000,
	})
}

func (h *Handler) fail(c *gin.Context, logger *zap.Logger, status int, requestID, message string, cause error) {
	fields := []zap.Field{zap.Int("status", status), zap.String("reason", message)}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	logger.Warn("request rejected", fields...)

	c.AbortWithStatusJSON(status, gin.H{"error": message, "request_id": requestID})
}

var errUnsupportedImageType = errors.New("unsupported image content type")

func readUpload(c *gin.Context) ([]byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, err
	}
	if !allowedImageType(file.Header.Get("Content-Type")) {
		return nil, errUnsupportedImageType
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return io.ReadAll(src)
}

func allowedImageType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Clients that omit the part type get the benefit of the doubt.
		return contentType == ""
	}
	return strings.HasPrefix(mediaType, "image/") || mediaType == "application/octet-stream"
}
