// Package server implements the MCP (Model Context Protocol) server for
// footprint extraction.
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
//   - footprint_extract: run one or more annealing chains over an image and
//     return the lowest-energy footprints, optionally with a PNG overlay
//   - footprint_gradient: preview the smoothed gradient magnitude the
//     gradient energy model integrates
//
// Tool arguments override a base parameter set (params.Default unless the
// server was built WithDefaults, or the YAML file named by "params").
//
// # Image Caching
//
// Images are decoded once per path and shared by every later call for the
// lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// Logs go to the injected zap logger, never to stdout.
package server
