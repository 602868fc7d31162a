package server

import (
	"github.com/ironsheep/image-palette-mcp/internal/segmentation"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var namedRegions = []string{
	"full", "top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center",
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// analysisProperties returns the input schema shared by the segmenting tools.
func analysisProperties() map[string]interface{} {
	algorithms := make([]string, len(segmentation.Algorithms))
	for i, a := range segmentation.Algorithms {
		algorithms[i] = string(a)
	}

	return map[string]interface{}{
		"path": pathProperty(),
		"region": map[string]interface{}{
			"type":        "object",
			"description": "Optional rectangle to analyse; x2 and y2 are exclusive",
			"properties": map[string]interface{}{
				"x1": map[string]interface{}{"type": "integer"},
				"y1": map[string]interface{}{"type": "integer"},
				"x2": map[string]interface{}{"type": "integer"},
				"y2": map[string]interface{}{"type": "integer"},
			},
			"required": []string{"x1", "y1", "x2", "y2"},
		},
		"named_region": map[string]interface{}{
			"type":        "string",
			"enum":        namedRegions,
			"description": "Optional named region to analyse instead of an explicit rectangle",
		},
		"algorithm": map[string]interface{}{
			"type":        "string",
			"enum":        algorithms,
			"description": "Segmentation algorithm. Defaults to the server configuration (snic unless configured otherwise)",
		},
		"params": map[string]interface{}{
			"type": "object",
			"description": "Optional algorithm parameters overriding the configured ones, e.g. " +
				`{"segments": 100, "compactness": 0.2} for slic/snic, {"clusters": 6} for kmeans, ` +
				`{"min_points": 8, "epsilon": 0.03} for dbscan`,
		},
		"max_dimension": map[string]interface{}{
			"type":        "integer",
			"description": "Downscale so neither side exceeds this many pixels before segmenting. 0 disables",
			"default":     256,
		},
		"color_space": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"lab", "oklab", "luv"},
			"description": "Colour space used for clustering",
			"default":     "lab",
		},
		"blur": map[string]interface{}{
			"type":        "number",
			"description": "Gaussian blur radius applied before segmenting. 0 disables",
			"default":     0.0,
		},
		"spatial_weight": map[string]interface{}{
			"type":        "number",
			"description": "Weight of pixel position relative to colour. 0 clusters by colour alone",
			"default":     0.25,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	paletteProps := analysisProperties()
	paletteProps["max_colors"] = map[string]interface{}{
		"type":        "integer",
		"description": "Maximum number of swatches. 0 returns all",
		"default":     8,
	}
	paletteProps["merge_distance"] = map[string]interface{}{
		"type":        "number",
		"description": "Merge segments whose mean colours are closer than this. 0 disables merging",
		"default":     0.05,
	}
	paletteProps["min_ratio"] = map[string]interface{}{
		"type":        "number",
		"description": "Drop swatches covering less than this fraction of the analysed pixels",
		"default":     0.0,
	}

	segmentProps := analysisProperties()
	segmentProps["boundaries"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Draw segment boundaries",
		"default":     false,
	}
	segmentProps["boundary_color"] = map[string]interface{}{
		"type":        "string",
		"description": "Boundary colour as #RRGGBB or #RRGGBBAA",
		"default":     "#000000",
	}

	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and pixel count. The image stays cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Segmentation
		{
			Name:        "image_palette",
			Description: "Extract a colour palette by segmenting the image and merging segments of similar colour. Swatches are ranked by the number of pixels they cover and include hex, RGB and a representative pixel position.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": paletteProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "image_segment",
			Description: "Segment the image into regions of similar colour (superpixels or clusters) and return a base64 PNG where every pixel takes its segment's mean colour, plus per-segment statistics.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": segmentProps,
				"required":   []string{"path"},
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
