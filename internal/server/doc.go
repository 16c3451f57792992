// Package server implements the MCP (Model Context Protocol) server for the
// CAPTCHA solver.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// Logs go to the zap logger passed to New, never to stdout.
//
// # Available Tools
//
//   - image_load: Load an image and report its metadata
//   - image_unload: Drop one or all images cached by image_load
//   - captcha_solve: Resolve the text of a CAPTCHA image
//   - captcha_segment: Show the glyph column spans and merge decision
//   - captcha_fingerprint: Fingerprint and classify one glyph
//   - corpus_info: Describe the reference corpus
//
// The captcha tools accept the image either as a file path or as base64
// data, never both. They read paths from disk on every call. Only
// image_load caches decoded images, until image_unload drops them.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The error string, prefixed with the tool name and request id
//
// A line that is not valid JSON is answered with a -32700 parse error.
//
// # Usage
//
//	slv, err := solver.NewDefault()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.New(slv, logger, version)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
