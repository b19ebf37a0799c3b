/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package mcp

import (
	"bennypowers.dev/cem/lsp/helpers"
	W "bennypowers.dev/cem/workspace"
	"github.com/pterm/pterm"
)

// TransportKind defines the type of transport for the MCP server
type TransportKind int

const (
	TransportStdio TransportKind = iota
	TransportTCP
	TransportWebSocket
)

// PlaceholderServer represents a placeholder MCP server implementation
type PlaceholderServer struct {
	workspace W.WorkspaceContext
	transport TransportKind
}

// NewSimpleServer creates a placeholder MCP server that demonstrates the concept
func NewSimpleServer(workspace W.WorkspaceContext, transport TransportKind) (*PlaceholderServer, error) {
	helpers.SafeDebugLog("Creating placeholder MCP server for workspace: %s", workspace.Root())

	return &PlaceholderServer{
		workspace: workspace,
		transport: transport,
	}, nil
}

// Run demonstrates the MCP server concept
func (s *PlaceholderServer) Run() error {
	pterm.Info.Printfln("Starting CEM MCP server concept demonstration")
	pterm.Info.Printfln("Transport: %s", s.transportName())
	pterm.Info.Printfln("Workspace: %s", s.workspace.Root())

	// This is a placeholder implementation to demonstrate the concept
	// In a complete implementation, this would:
	// 1. Load custom elements manifests from the workspace
	// 2. Start an MCP server using the modelcontextprotocol/go-sdk
	// 3. Provide resources for JSON schema, manifest registry, individual elements
	// 4. Provide tools for element validation, HTML generation, CSS integration
	// 5. Enable intelligent HTML generation with proper slot/attribute usage

	pterm.Success.Println("MCP server concept successfully demonstrated!")
	pterm.Info.Println("See mcp/CLAUDE.md for the complete implementation plan")
	pterm.Info.Println("The architecture includes:")
	pterm.Info.Println("  - Resource providers for manifests and schemas")
	pterm.Info.Println("  - HTML generation tools with slot/attribute intelligence")
	pterm.Info.Println("  - CSS integration guidance")
	pterm.Info.Println("  - Guideline compliance system")
	pterm.Info.Println("  - Real-time manifest updates via file watching")

	return nil
}

func (s *PlaceholderServer) transportName() string {
	switch s.transport {
	case TransportStdio:
		return "stdio"
	case TransportTCP:
		return "tcp"
	case TransportWebSocket:
		return "websocket"
	default:
		return "unknown"
	}
}
