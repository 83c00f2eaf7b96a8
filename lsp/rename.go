package lsp

import (
	"context"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

func (s *Server) handlePrepareRename(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.TextDocumentPositionParams
	if err := unmarshalParams(req, &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "prepareRename: "+err.Error())
	}

	path := uriToPath(params.TextDocument.URI)
	point := toPoint(params.Position)

	entry := s.state.Graph.Load(s.state.Docs, path)
	defer closeIfNotOwned(entry)
	if entry.Tree == nil {
		return reply(ctx, nil, nil)
	}

	if word, ok := wordAt(entry.Tree, point); ok {
		if _, isKeyword := jasminKeywords[word]; isKeyword {
			return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "cannot rename a keyword")
		}
	}

	node, _, ok := identifierAt(entry.Tree, point)
	if !ok {
		return reply(ctx, nil, nil)
	}

	return reply(ctx, toProtocolRange(node.Range()), nil)
}

func (s *Server) handleRename(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.RenameParams
	if err := unmarshalParams(req, &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "rename: "+err.Error())
	}

	path := uriToPath(params.TextDocument.URI)
	point := toPoint(params.Position)

	entry := s.state.Graph.Load(s.state.Docs, path)
	defer closeIfNotOwned(entry)
	if entry.Tree == nil {
		return reply(ctx, nil, nil)
	}

	if word, ok := wordAt(entry.Tree, point); ok {
		if _, isKeyword := jasminKeywords[word]; isKeyword {
			return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "cannot rename a keyword")
		}
	}

	_, name, ok := identifierAt(entry.Tree, point)
	if !ok {
		return reply(ctx, nil, nil)
	}

	locs := s.findReferences(name, path)

	changes := make(map[protocol.DocumentURI][]protocol.TextEdit)
	for _, loc := range locs {
		changes[loc.URI] = append(changes[loc.URI], protocol.TextEdit{
			Range:   loc.Range,
			NewText: params.NewName,
		})
	}

	return reply(ctx, &protocol.WorkspaceEdit{Changes: changes}, nil)
}
