package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ironsheep/image-palette-mcp/internal/imaging"
	"github.com/ironsheep/image-palette-mcp/internal/palette"
	"github.com/ironsheep/image-palette-mcp/internal/segment"
	"github.com/ironsheep/image-palette-mcp/internal/segmentation"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_palette").
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

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn().Str("tool", params.Name).Err(err).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.logger.Info().Str("tool", params.Name).Dur("elapsed", time.Since(start)).Msg("tool call")

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
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_palette":
		return s.handleImagePalette(args)
	case "image_segment":
		return s.handleImageSegment(args)
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
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
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
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Segmentation Handlers ===

// analysisArgs are shared by every tool that segments an image. Pointer
// fields are optional overrides of the server configuration.
type analysisArgs struct {
	Path          string          `json:"path"`
	Region        *imaging.Region `json:"region"`
	NamedRegion   string          `json:"named_region"`
	Algorithm     string          `json:"algorithm"`
	Params        json.RawMessage `json:"params"`
	MaxDimension  *int            `json:"max_dimension"`
	ColorSpace    string          `json:"color_space"`
	Blur          *float64        `json:"blur"`
	SpatialWeight *float64        `json:"spatial_weight"`
}

// analysis is one segmented image.
type analysis struct {
	algorithm segmentation.Algorithm
	features  *imaging.Features
	labels    *segment.LabelImage
	elapsed   time.Duration
}

// analyze loads, converts and segments the image named by a.
func (s *Server) analyze(a analysisArgs) (*analysis, error) {
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	region := a.Region
	if a.NamedRegion != "" {
		if region != nil {
			return nil, fmt.Errorf("region and named_region are mutually exclusive")
		}
		r, err := imaging.NamedRegion(img.Bounds(), a.NamedRegion)
		if err != nil {
			return nil, err
		}
		region = &r
	}

	opts := s.cfg.FeatureOptions(region)
	if a.MaxDimension != nil {
		opts.MaxDimension = *a.MaxDimension
	}
	if a.ColorSpace != "" {
		opts.Space = imaging.ColorSpace(a.ColorSpace)
	}
	if a.Blur != nil {
		opts.Blur = *a.Blur
	}
	if a.SpatialWeight != nil {
		opts.SpatialWeight = *a.SpatialWeight
	}

	features, err := imaging.ExtractFeatures(img, opts)
	if err != nil {
		return nil, err
	}

	alg := s.cfg.Algorithm
	if a.Algorithm != "" {
		if alg, err = segmentation.ParseAlgorithm(a.Algorithm); err != nil {
			return nil, err
		}
	}
	cfg, err := s.cfg.SegmentationWith(alg, a.Params)
	if err != nil {
		return nil, err
	}
	segmenter, err := segmentation.New(cfg,
		segmentation.WithLogger(s.logger),
		segmentation.WithWorkers(s.cfg.WorkerCount()),
	)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	labels, err := segmenter.SegmentWithMask(features.Width, features.Height, features.Points, features.Mask)
	if err != nil {
		return nil, err
	}
	return &analysis{
		algorithm: alg,
		features:  features,
		labels:    labels,
		elapsed:   time.Since(start),
	}, nil
}

type imagePaletteArgs struct {
	analysisArgs
	MaxColors     *int     `json:"max_colors"`
	MergeDistance *float64 `json:"merge_distance"`
	MinRatio      *float64 `json:"min_ratio"`
}

// PaletteResult is the image_palette response.
type PaletteResult struct {
	*palette.Palette
	Algorithm segmentation.Algorithm `json:"algorithm"`
	Width     int                    `json:"width"`
	Height    int                    `json:"height"`
	ElapsedMS int64                  `json:"elapsed_ms"`
}

func (s *Server) handleImagePalette(args json.RawMessage) (interface{}, error) {
	var a imagePaletteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	res, err := s.analyze(a.analysisArgs)
	if err != nil {
		return nil, err
	}

	opts := s.cfg.PaletteOptions()
	opts.Logger = s.logger
	if a.MaxColors != nil {
		opts.MaxColors = *a.MaxColors
	}
	if a.MergeDistance != nil {
		opts.MergeDistance = *a.MergeDistance
	}
	if a.MinRatio != nil {
		opts.MinRatio = *a.MinRatio
	}

	p, err := palette.Extract(res.features, res.labels, opts)
	if err != nil {
		return nil, err
	}
	return &PaletteResult{
		Palette:   p,
		Algorithm: res.algorithm,
		Width:     res.features.Width,
		Height:    res.features.Height,
		ElapsedMS: res.elapsed.Milliseconds(),
	}, nil
}

type imageSegmentArgs struct {
	analysisArgs
	Boundaries    bool   `json:"boundaries"`
	BoundaryColor string `json:"boundary_color"`
}

// SegmentStat summarises one segment of an image_segment response.
type SegmentStat struct {
	Label      int    `json:"label"`
	Population int    `json:"population"`
	Hex        string `json:"hex"`

	// X and Y are the mean member position in source image coordinates.
	X int `json:"x"`
	Y int `json:"y"`
}

// SegmentResult is the image_segment response.
type SegmentResult struct {
	Algorithm  segmentation.Algorithm `json:"algorithm"`
	Render     *imaging.RenderResult  `json:"render"`
	Assigned   int                    `json:"assigned"`
	Unassigned int                    `json:"unassigned"`
	Segments   []SegmentStat          `json:"segments"`
	ElapsedMS  int64                  `json:"elapsed_ms"`
}

func (s *Server) handleImageSegment(args json.RawMessage) (interface{}, error) {
	var a imageSegmentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	res, err := s.analyze(a.analysisArgs)
	if err != nil {
		return nil, err
	}

	renderOpts := imaging.RenderOptions{Boundaries: a.Boundaries}
	if a.BoundaryColor != "" {
		if renderOpts.BoundaryColor, err = imaging.ParseHexColor(a.BoundaryColor); err != nil {
			return nil, err
		}
	}
	render, err := imaging.RenderLabels(res.features, res.labels, renderOpts)
	if err != nil {
		return nil, err
	}

	f := res.features
	stats := make([]SegmentStat, 0, res.labels.Len())
	label := 0
	for seg := range res.labels.Segments() {
		var sx, sy float64
		for idx := range seg.Members() {
			sx += float64(idx % f.Width)
			sy += float64(idx / f.Width)
		}
		n := float64(seg.Len())
		pos := f.SourceXY(sx/n, sy/n)
		stats = append(stats, SegmentStat{
			Label:      label,
			Population: seg.Len(),
			Hex:        f.Color(seg.Center()).Hex(),
			X:          pos.X,
			Y:          pos.Y,
		})
		label++
	}

	assigned := res.labels.Assigned()
	return &SegmentResult{
		Algorithm:  res.algorithm,
		Render:     render,
		Assigned:   assigned,
		Unassigned: f.Width*f.Height - assigned,
		Segments:   stats,
		ElapsedMS:  res.elapsed.Milliseconds(),
	}, nil
}
