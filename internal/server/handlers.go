package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/ironsheep/captcha-tools-mcp/internal/detection"
	"github.com/ironsheep/captcha-tools-mcp/internal/imaging"
	"github.com/ironsheep/captcha-tools-mcp/internal/logging"
	"github.com/ironsheep/captcha-tools-mcp/internal/solver"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "captcha_solve").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		err = logging.NewOperationError(params.Name, fmt.Sprint(req.ID), err)
		s.logger.Warn("tool failed", zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_unload":
		return s.handleImageUnload(args)
	case "captcha_solve":
		return s.handleCaptchaSolve(args)
	case "captcha_segment":
		return s.handleCaptchaSegment(args)
	case "captcha_fingerprint":
		return s.handleCaptchaFingerprint(args)
	case "corpus_info":
		return s.handleCorpusInfo(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Sources ===

var errNoImage = errors.New("either path or image_base64 is required")

type imageSource struct {
	Path        string `json:"path"`
	ImageBase64 string `json:"image_base64"`
}

func (s *Server) loadSource(src imageSource) (image.Image, error) {
	switch {
	case src.Path != "" && src.ImageBase64 != "":
		return nil, errors.New("path and image_base64 are mutually exclusive")
	case src.Path != "":
		// Always read from disk so a replaced file is solved afresh.
		return imaging.LoadFile(src.Path)
	case src.ImageBase64 != "":
		img, _, err := imaging.DecodeBase64(src.ImageBase64)
		return img, err
	default:
		return nil, errNoImage
	}
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type imageUnloadResult struct {
	Evicted string `json:"evicted,omitempty"`
	Cleared bool   `json:"cleared"`
	Cached  int    `json:"cached"`
}

func (s *Server) handleImageUnload(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	result := imageUnloadResult{Evicted: a.Path}
	if a.Path == "" {
		s.cache.Clear()
		result.Cleared = true
	} else {
		s.cache.Evict(a.Path)
	}
	result.Cached = s.cache.Len()
	return result, nil
}

// === Recognition Handlers ===

func (s *Server) handleCaptchaSolve(args json.RawMessage) (interface{}, error) {
	var a imageSource
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadSource(a)
	if err != nil {
		return nil, err
	}

	result := s.solver.ResolveDetailed(img)
	s.logger.Info("solved captcha", zap.String("text", result.Text), zap.Bool("merged", result.Merged))
	return result, nil
}

type captchaSegmentArgs struct {
	imageSource
	IncludeImages bool `json:"include_images"`
}

type segmentGlyph struct {
	Index  int                   `json:"index"`
	Width  int                   `json:"width"`
	Height int                   `json:"height"`
	Image  *imaging.EncodedImage `json:"image,omitempty"`
}

type segmentResult struct {
	Width      int                     `json:"width"`
	Height     int                     `json:"height"`
	RawRegions []detection.GlyphRegion `json:"raw_regions"`
	Merged     bool                    `json:"merged"`
	GlyphCount int                     `json:"glyph_count"`
	Glyphs     []segmentGlyph          `json:"glyphs"`
}

func (s *Server) handleCaptchaSegment(args json.RawMessage) (interface{}, error) {
	var a captchaSegmentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadSource(a.imageSource)
	if err != nil {
		return nil, err
	}

	gray := imaging.Grayscale(img)
	glyphs, merged := s.solver.Glyphs(gray)

	result := segmentResult{
		Width:      gray.Bounds().Dx(),
		Height:     gray.Bounds().Dy(),
		RawRegions: detection.FindGlyphRegions(gray),
		Merged:     merged,
		GlyphCount: len(glyphs),
		Glyphs:     make([]segmentGlyph, 0, len(glyphs)),
	}
	for i, g := range glyphs {
		entry := segmentGlyph{Index: i, Width: g.Bounds().Dx(), Height: g.Bounds().Dy()}
		if a.IncludeImages {
			if entry.Image, err = imaging.EncodePNG(g); err != nil {
				return nil, err
			}
		}
		result.Glyphs = append(result.Glyphs, entry)
	}

	return result, nil
}

type captchaFingerprintArgs struct {
	imageSource
	Index        *int `json:"index"`
	IncludeImage bool `json:"include_image"`
}

type fingerprintResult struct {
	Index       int                   `json:"index"`
	Width       int                   `json:"width"`
	Height      int                   `json:"height"`
	Fingerprint string                `json:"fingerprint"`
	Char        string                `json:"char"`
	Method      string                `json:"method"`
	Score       float64               `json:"score"`
	Image       *imaging.EncodedImage `json:"image,omitempty"`
}

func (s *Server) handleCaptchaFingerprint(args json.RawMessage) (interface{}, error) {
	var a captchaFingerprintArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Index == nil {
		return nil, errors.New("index is required")
	}
	img, err := s.loadSource(a.imageSource)
	if err != nil {
		return nil, err
	}

	glyphs, _ := s.solver.Glyphs(img)
	idx := *a.Index
	if idx < 0 || idx >= len(glyphs) {
		return nil, fmt.Errorf("glyph index %d out of range: image has %d glyphs", idx, len(glyphs))
	}

	glyph := glyphs[idx]
	fp := solver.Fingerprint(glyph)
	m := s.solver.Classify(fp)

	result := fingerprintResult{
		Index:       idx,
		Width:       glyph.Bounds().Dx(),
		Height:      glyph.Bounds().Dy(),
		Fingerprint: fp,
		Char:        string(m.Char),
		Method:      m.Method,
		Score:       m.Score,
	}
	if a.IncludeImage {
		if result.Image, err = imaging.EncodePNG(glyph); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// === Reference Data Handlers ===

type corpusInfoResult struct {
	Entries     int      `json:"entries"`
	GlyphHeight int      `json:"glyph_height"`
	Characters  []string `json:"characters"`
}

func (s *Server) handleCorpusInfo(json.RawMessage) (interface{}, error) {
	store := s.solver.Store()

	chars := store.Characters()
	names := make([]string, len(chars))
	for i, ch := range chars {
		names[i] = string(ch)
	}

	return corpusInfoResult{
		Entries:     store.Len(),
		GlyphHeight: store.GlyphHeight(),
		Characters:  names,
	}, nil
}
