package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// imageSourceProperties are the mutually exclusive ways to pass an image.
func imageSourceProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the CAPTCHA image file. Either path or image_base64 is required.",
		},
		"image_base64": map[string]interface{}{
			"type":        "string",
			"description": "Base64-encoded image bytes, optionally as a data: URI. Either path or image_base64 is required.",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	segmentProps := imageSourceProperties()
	segmentProps["include_images"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Return each glyph as a base64 PNG. Default false",
		"default":     false,
	}

	fingerprintProps := imageSourceProperties()
	fingerprintProps["index"] = map[string]interface{}{
		"type":        "integer",
		"description": "Zero-based glyph index, counted after the wrapped-character merge",
		"minimum":     0,
	}
	fingerprintProps["include_image"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Return the glyph as a base64 PNG. Default false",
		"default":     false,
	}

	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and file size. The decoded image is cached for later calls with the same path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_unload",
			Description: "Drop an image from the image_load cache, or every cached image when path is omitted.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path previously passed to image_load",
					},
				},
			},
		},

		// Recognition
		{
			Name:        "captcha_solve",
			Description: "Read the six-character text of a CAPTCHA image. Returns the lower-case answer plus, for every glyph, the character chosen, whether it was an exact or nearest match, and the similarity score.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": imageSourceProperties(),
			},
		},
		{
			Name:        "captcha_segment",
			Description: "Split a CAPTCHA image into glyph column spans using ink detection. raw_regions are the spans before the wrapped-character merge; glyphs are the final glyphs after it, so a merged image has one raw region more than it has glyphs.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": segmentProps,
			},
		},
		{
			Name:        "captcha_fingerprint",
			Description: "Return the binary fingerprint of one glyph (row-major, '1' for ink) together with its classification against the reference corpus.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": fingerprintProps,
				"required":   []string{"index"},
			},
		},

		// Reference Data
		{
			Name:        "corpus_info",
			Description: "Describe the reference corpus: number of glyphs, glyph raster height and the characters it can recognise.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
