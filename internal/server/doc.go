// Package server implements the MCP (Model Context Protocol) server for colour
// palette extraction and image segmentation.
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
// # Available Tools
//
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_palette: Ranked colour swatches from merged segments
//   - image_segment: Segment the image and render the label map
//
// The segmenting tools share one pipeline: crop to an optional region,
// downscale, blur, convert every pixel into colour and position coordinates,
// mask transparent pixels, then run the selected algorithm (dbscan,
// dbscan++, kmeans, slic or snic). Defaults come from the server
// configuration; a request may override the algorithm and any of its
// parameters through the "params" object.
//
// # Image Caching
//
// Decoded images are cached by absolute path for the lifetime of the
// process, so repeated calls on one file decode it once.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	cfg, err := config.FromEnv()
//	if err != nil {
//	    return err
//	}
//	srv := server.New(cfg, logger.New(os.Stderr, zerolog.InfoLevel))
//	return srv.Run()
package server
