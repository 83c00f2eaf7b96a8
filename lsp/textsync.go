package lsp

import (
	"context"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := unmarshalParams(req, &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "didOpen: "+err.Error())
	}

	path := uriToPath(params.TextDocument.URI)
	if _, err := s.state.Docs.Open(string(params.TextDocument.URI), path, []byte(params.TextDocument.Text), params.TextDocument.Version); err != nil {
		s.logger.Sugar().Warnf("didOpen: %v", err)
		return nil
	}

	s.publishAllRelevant(ctx)
	return nil
}

func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := unmarshalParams(req, &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "didChange: "+err.Error())
	}
	if len(params.ContentChanges) == 0 {
		return nil
	}

	// TextDocumentSyncKindFull means every event replaces the whole
	// document; only the last change's full text matters.
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	path := uriToPath(params.TextDocument.URI)

	if _, err := s.state.Docs.Change(path, []byte(text), params.TextDocument.Version); err != nil {
		s.logger.Sugar().Warnf("didChange: %v", err)
		return nil
	}

	s.publishAllRelevant(ctx)
	return nil
}

func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := unmarshalParams(req, &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "didClose: "+err.Error())
	}

	path := uriToPath(params.TextDocument.URI)
	retain := s.state.ShouldRetainOnClose(path)

	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()

	if retain {
		// §4.3.1 case 1: the file is still reachable from the master's
		// closure, so the Document stays in the store (its last-known
		// content keeps backing symbol/diagnostic queries) and its
		// diagnostics are re-emitted so they remain visible after the
		// editor tab goes away.
		if client != nil {
			s.publishFile(ctx, client, path)
		}
		return nil
	}

	// §4.3.1 case 2: drop the buffer and clear its problems.
	s.state.Docs.Remove(path)
	if client == nil {
		return nil
	}
	_ = client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         pathToURI(path),
		Diagnostics: nil,
	})
	return nil
}

func (s *Server) handleDidSave(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	// Full-sync didChange already reparses on every keystroke; didSave
	// carries no further content to act on.
	return nil
}

func (s *Server) handleDidChangeWatchedFiles(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeWatchedFilesParams
	if err := unmarshalParams(req, &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "didChangeWatchedFiles: "+err.Error())
	}

	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client == nil {
		return nil
	}

	// Every open file's diagnostics are republished rather than only the
	// changed URIs'; a per-file diff is not worth the complexity for a
	// change source this infrequent.
	s.publishAllRelevant(ctx)
	return nil
}
