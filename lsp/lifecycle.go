package lsp

import (
	"context"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := unmarshalParams(req, &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "initialize: "+err.Error())
	}

	root := workspaceRootFromParams(params)
	s.state.SetWorkspaceRootIfUnset(root)

	result := &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save:      &protocol.SaveOptions{IncludeText: false},
			},
			HoverProvider:           true,
			DefinitionProvider:      true,
			ReferencesProvider:      true,
			DocumentSymbolProvider:  true,
			WorkspaceSymbolProvider: true,
			RenameProvider: &protocol.RenameOptions{
				PrepareProvider: true,
			},
			Workspace: &protocol.ServerCapabilitiesWorkspace{
				WorkspaceFolders: &protocol.ServerCapabilitiesWorkspaceFolders{
					Supported:           true,
					ChangeNotifications: "workspace/didChangeWorkspaceFolders",
				},
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "jasmin-lsp",
			Version: "0.1.0",
		},
	}

	return reply(ctx, result, nil)
}

func workspaceRootFromParams(params protocol.InitializeParams) string {
	if len(params.WorkspaceFolders) > 0 {
		return params.WorkspaceFolders[0].URI.Filename()
	}
	if params.RootURI != "" {
		return params.RootURI.Filename()
	}
	return params.RootPath
}

func (s *Server) handleInitialized(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.mu.Lock()
	s.initialized = true
	client := s.client
	s.mu.Unlock()

	if client != nil {
		go s.fetchConfiguration(context.Background(), client)
	}

	return reply(ctx, nil, nil)
}

// fetchConfiguration round-trips workspace/configuration for section
// "jasmin-lsp", reading "jasmin-root" (fed into state.Server.SetMasterFile)
// and "arch" (stored but otherwise ignored by the core).
func (s *Server) fetchConfiguration(ctx context.Context, client protocol.Client) {
	section := "jasmin-lsp"
	items, err := client.Configuration(ctx, &protocol.ConfigurationParams{
		Items: []protocol.ConfigurationItem{{Section: section}},
	})
	if err != nil || len(items) == 0 {
		return
	}

	cfg, ok := items[0].(map[string]interface{})
	if !ok {
		return
	}

	if root, ok := cfg["jasmin-root"].(string); ok && root != "" {
		s.state.SetMasterFile(s.state.ResolveWorkspacePath(root))
	}
	if arch, ok := cfg["arch"].(string); ok {
		s.mu.Lock()
		s.configuredArch = arch
		s.mu.Unlock()
	}
}

func (s *Server) handleShutdown(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()
	return reply(ctx, nil, nil)
}

func (s *Server) handleExit(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.mu.RLock()
	shutdown := s.shutdown
	conn := s.conn
	s.mu.RUnlock()

	if conn != nil {
		go func() {
			_ = conn.Close()
		}()
	}

	if shutdown {
		return reply(ctx, nil, nil)
	}
	return reply(ctx, nil, &jsonrpc2.Error{Code: jsonrpc2.InternalError, Message: "exit without prior shutdown"})
}

func (s *Server) handleSetMasterFile(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params struct {
		URI protocol.DocumentURI `json:"uri"`
	}
	if err := unmarshalParams(req, &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "jasmin/setMasterFile: "+err.Error())
	}
	s.state.SetMasterFile(uriToPath(params.URI))
	return nil
}
