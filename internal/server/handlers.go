package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/golang/geo/r2"
	"go.uber.org/zap"

	"github.com/ironsheep/footprint-rjmcmc/internal/building"
	"github.com/ironsheep/footprint-rjmcmc/internal/imaging"
	"github.com/ironsheep/footprint-rjmcmc/internal/params"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "footprint_extract").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var call ToolCallParams
	if err := json.Unmarshal(req.Params, &call); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, call.Name, call.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", zap.String("tool", call.Name), zap.Error(err))
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "footprint_extract":
		return s.handleFootprintExtract(ctx, args)
	case "footprint_gradient":
		return s.handleFootprintGradient(args)
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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// boxArgs is the optional running box; all zero means the whole image.
type boxArgs struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

func (b boxArgs) params() params.Box {
	return params.Box{MinX: b.MinX, MinY: b.MinY, MaxX: b.MaxX, MaxY: b.MaxY}
}

// === Extraction ===

type extractArgs struct {
	Image      string  `json:"image"`
	Params     string  `json:"params"`
	Iterations int     `json:"iterations"`
	Seed       *uint64 `json:"seed"`
	Chains     int     `json:"chains"`
	Model      string  `json:"model"`
	Overlay    bool    `json:"overlay"`
	boxArgs
}

// ChainSummary describes one chain of an extraction.
type ChainSummary struct {
	Chain      int     `json:"chain"`
	Seed       uint64  `json:"seed"`
	Energy     float64 `json:"energy"`
	Objects    int     `json:"objects"`
	Iterations int     `json:"iterations"`
}

// ExtractResult is the footprint_extract response.
type ExtractResult struct {
	Best    *building.Result      `json:"best"`
	Chains  []ChainSummary        `json:"chains"`
	Overlay *imaging.EncodedImage `json:"overlay,omitempty"`
}

func (s *Server) handleFootprintExtract(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a extractArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Image == "" {
		return nil, fmt.Errorf("image is required")
	}

	var p *params.Parameters
	var err error
	if a.Params != "" {
		p, err = params.Load(a.Params, nil)
	} else {
		p, err = s.defaults()
	}
	if err != nil {
		return nil, err
	}
	p.Input.Image = a.Image
	if a.Iterations > 0 {
		p.Run.Iterations = a.Iterations
	}
	if a.Seed != nil {
		p.Run.Seed = *a.Seed
	}
	if a.Chains > 0 {
		p.Run.Chains = a.Chains
	}
	if a.Model != "" {
		p.Energy.Model = a.Model
	}
	if box := a.boxArgs.params(); !box.IsZero() {
		p.Box = box
	}

	m, err := building.NewModel(p, s.cache, s.logger)
	if err != nil {
		return nil, err
	}
	results, err := m.RunEnsemble(ctx, p.Run.Chains, s.parallelism, s.logger)
	if err != nil {
		return nil, err
	}

	out := &ExtractResult{Best: results[0], Chains: make([]ChainSummary, len(results))}
	for i, r := range results {
		out.Chains[i] = ChainSummary{
			Chain:      r.Chain,
			Seed:       r.Seed,
			Energy:     r.Energy,
			Objects:    len(r.Footprints),
			Iterations: r.Iterations,
		}
	}
	if a.Overlay {
		base, origin, step := m.Canvas()
		img := imaging.DrawOverlay(base, origin, step, out.Best.Outlines(p.Energy.Individual), imaging.DefaultOverlayStyle)
		if out.Overlay, err = imaging.EncodePNG(img); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// === Gradient preview ===

type gradientArgs struct {
	Image       string   `json:"image"`
	Sigma       *float64 `json:"sigma"`
	Subsampling int      `json:"subsampling"`
	boxArgs
}

// GradientResult is the footprint_gradient response.
type GradientResult struct {
	Origin r2.Point `json:"origin"`
	Step   float64  `json:"step"`
	*imaging.EncodedImage
}

func (s *Server) handleFootprintGradient(args json.RawMessage) (interface{}, error) {
	var a gradientArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Image == "" {
		return nil, fmt.Errorf("image is required")
	}
	p, err := s.defaults()
	if err != nil {
		return nil, err
	}
	sigma := p.Energy.Sigma
	if a.Sigma != nil {
		sigma = *a.Sigma
	}
	if sigma < 0 {
		return nil, fmt.Errorf("sigma must not be negative, got %v", sigma)
	}
	if a.Subsampling < 0 {
		return nil, fmt.Errorf("subsampling must not be negative, got %d", a.Subsampling)
	}
	step := p.Energy.Subsampling
	if a.Subsampling > 0 {
		step = a.Subsampling
	}

	box := r2.EmptyRect()
	if b := a.boxArgs.params(); !b.IsZero() {
		if b.MinX >= b.MaxX || b.MinY >= b.MaxY {
			return nil, fmt.Errorf("box (%v, %v)-(%v, %v) is empty", b.MinX, b.MinY, b.MaxX, b.MaxY)
		}
		box = r2.RectFromPoints(r2.Point{X: b.MinX, Y: b.MinY}, r2.Point{X: b.MaxX, Y: b.MaxY})
	}
	ev, err := imaging.LoadEvidence(s.cache, a.Image, box, step)
	if err != nil {
		return nil, err
	}
	enc, err := imaging.EncodePNG(ev.Gradient(sigma).Magnitude())
	if err != nil {
		return nil, err
	}
	return &GradientResult{Origin: ev.Origin, Step: ev.Step, EncodedImage: enc}, nil
}
