package lsp

import (
	"context"
	"strings"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/jasmin-lang/jasmin-lsp/symbols"
	"github.com/jasmin-lang/jasmin-lsp/walker"
)

// symbolKind maps our declaration shapes onto the standard LSP SymbolKind
// enum. Jasmin's own Parameter/Constant/Variable/Global distinctions are
// richer than what SymbolKind offers, so KindFuncParam and KindGlobal both
// fold into Variable - the closest existing kind, and the one most editors
// already render with a distinct icon from Function. KindType folds into
// Struct, LSP's closest stand-in for a bare type alias.
func symbolKind(k symbols.Kind) protocol.SymbolKind {
	switch k {
	case symbols.KindFunction:
		return protocol.SymbolKindFunction
	case symbols.KindParam:
		return protocol.SymbolKindConstant
	case symbols.KindVar, symbols.KindFuncParam, symbols.KindGlobal:
		return protocol.SymbolKindVariable
	case symbols.KindType:
		return protocol.SymbolKindStruct
	default:
		return protocol.SymbolKindVariable
	}
}

func (s *Server) handleDocumentSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentSymbolParams
	if err := unmarshalParams(req, &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "documentSymbol: "+err.Error())
	}

	path := uriToPath(params.TextDocument.URI)
	entry := s.state.Graph.Load(s.state.Docs, path)
	defer closeIfNotOwned(entry)
	if entry.Tree == nil {
		return reply(ctx, []protocol.DocumentSymbol{}, nil)
	}

	syms := symbols.Extract(entry.Tree)
	return reply(ctx, buildOutline(syms), nil)
}

// buildOutline groups function parameters/locals underneath their
// enclosing function, the hierarchy §4.9 asks documentSymbol to return.
// Every non-function symbol whose range falls inside a function's range
// becomes that function's child; anything else stays top-level.
func buildOutline(syms []symbols.Symbol) []protocol.DocumentSymbol {
	var functionSyms []symbols.Symbol
	for _, sym := range syms {
		if sym.Kind == symbols.KindFunction {
			functionSyms = append(functionSyms, sym)
		}
	}

	children := make([][]protocol.DocumentSymbol, len(functionSyms))
	var topLevel []protocol.DocumentSymbol

	for _, sym := range syms {
		if sym.Kind == symbols.KindFunction {
			continue
		}
		owner := -1
		for i, fnSym := range functionSyms {
			if containsRange(fnSym.Range, sym.Range) {
				owner = i
				break
			}
		}
		if owner >= 0 {
			children[owner] = append(children[owner], toDocumentSymbol(sym))
			continue
		}
		topLevel = append(topLevel, toDocumentSymbol(sym))
	}

	out := make([]protocol.DocumentSymbol, 0, len(functionSyms)+len(topLevel))
	for i, fnSym := range functionSyms {
		ds := toDocumentSymbol(fnSym)
		ds.Children = children[i]
		out = append(out, ds)
	}
	out = append(out, topLevel...)
	return out
}

func toDocumentSymbol(sym symbols.Symbol) protocol.DocumentSymbol {
	return protocol.DocumentSymbol{
		Name:           sym.Name,
		Detail:         sym.Detail,
		Kind:           symbolKind(sym.Kind),
		Range:          toProtocolRange(sym.Range),
		SelectionRange: toProtocolRange(sym.NameRange),
	}
}

func (s *Server) handleWorkspaceSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.WorkspaceSymbolParams
	if err := unmarshalParams(req, &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "workspace/symbol: "+err.Error())
	}

	query := strings.ToLower(params.Query)
	all := s.state.AllSymbols()
	if len(all) == 0 {
		// No master file and no open buffers: fall back to a full
		// workspace walk (A4) instead of returning nothing just because
		// no document has ever been opened this session.
		all = s.workspaceWideSymbols()
	}

	var out []protocol.SymbolInformation
	for path, syms := range all {
		for _, sym := range syms {
			if query != "" && !strings.Contains(strings.ToLower(sym.Name), query) {
				continue
			}
			out = append(out, protocol.SymbolInformation{
				Name: sym.Name,
				Kind: symbolKind(sym.Kind),
				Location: protocol.Location{
					URI:   pathToURI(path),
					Range: toProtocolRange(sym.NameRange),
				},
			})
		}
	}

	return reply(ctx, out, nil)
}

// workspaceWideSymbols walks every .jazz/.jinc file under the workspace
// root and extracts its symbols, for the workspace/symbol fallback
// described in §4.14: when no master file is set and nothing is open,
// there's no relevant set to search, so the whole workspace stands in
// for it.
func (s *Server) workspaceWideSymbols() map[string][]symbols.Symbol {
	root := s.state.WorkspaceRoot()
	if root == "" {
		return nil
	}

	result, err := walker.Walk(root)
	if err != nil {
		s.logger.Sugar().Warnf("workspace/symbol: walking %s: %v", root, err)
		return nil
	}
	if result.Truncated {
		s.logger.Sugar().Warnf("workspace/symbol: %s has more than %d files, results truncated", root, walker.MaxFiles)
	}

	out := make(map[string][]symbols.Symbol, len(result.Files))
	for _, path := range result.Files {
		syms, entry := s.state.SymbolsInFile(path)
		closeIfNotOwned(entry)
		if len(syms) > 0 {
			out[path] = syms
		}
	}
	return out
}
