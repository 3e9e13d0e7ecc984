package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// boxProperties describes the optional running box arguments shared by the
// tools.
func boxProperties() map[string]interface{} {
	return map[string]interface{}{
		"min_x": map[string]interface{}{
			"type":        "number",
			"description": "Running box left edge in image pixels. Omit all four box values to use the whole image.",
		},
		"min_y": map[string]interface{}{
			"type":        "number",
			"description": "Running box top edge in image pixels",
		},
		"max_x": map[string]interface{}{
			"type":        "number",
			"description": "Running box right edge in image pixels",
		},
		"max_y": map[string]interface{}{
			"type":        "number",
			"description": "Running box bottom edge in image pixels",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	extract := map[string]interface{}{
		"image": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the evidence image (TIFF, PNG, JPEG)",
		},
		"params": map[string]interface{}{
			"type":        "string",
			"description": "Optional path to a YAML parameter file; the other arguments override it",
		},
		"iterations": map[string]interface{}{
			"type":        "integer",
			"description": "Iterations per chain",
		},
		"seed": map[string]interface{}{
			"type":        "integer",
			"description": "Seed of chain 0; chain i uses seed+i",
		},
		"chains": map[string]interface{}{
			"type":        "integer",
			"description": "Number of independent chains. The lowest-energy result is returned in full. Default 1",
		},
		"model": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"gradient", "surface"},
			"description": "Energy model. Default gradient",
		},
		"overlay": map[string]interface{}{
			"type":        "boolean",
			"description": "Also return the best result drawn over the evidence as base64 PNG",
			"default":     false,
		},
	}
	for k, v := range boxProperties() {
		extract[k] = v
	}

	gradient := map[string]interface{}{
		"image": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the evidence image (TIFF, PNG, JPEG)",
		},
		"sigma": map[string]interface{}{
			"type":        "number",
			"description": "Gaussian smoothing before differentiation, in evidence pixels. Default 2",
			"default":     2.0,
		},
		"subsampling": map[string]interface{}{
			"type":        "integer",
			"description": "Integer subsampling step. Default 1",
			"default":     1,
		},
	}
	for k, v := range boxProperties() {
		gradient[k] = v
	}

	return []Tool{
		{
			Name: "footprint_extract",
			Description: "Extract building footprints (oriented rectangles and circles) from an image " +
				"by simulated annealing over a marked point process. Returns the footprints of the " +
				"lowest-energy chain with their unary energies and outlines in image coordinates.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": extract,
				"required":   []string{"image"},
			},
		},
		{
			Name: "footprint_gradient",
			Description: "Render the smoothed gradient magnitude the gradient energy model scores footprints " +
				"against, as base64 PNG. Use it to tune sigma and subsampling.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": gradient,
				"required":   []string{"image"},
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
