package lsp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/jasmin-lang/jasmin-lsp/consteval"
	"github.com/jasmin-lang/jasmin-lsp/symbols"
)

// jasminKeywords is the fixed keyword set hover checks before ever
// touching the symbol table, per §4.9's "do not search symbols" rule.
var jasminKeywords = map[string]string{
	"fn":     "Declares a function.",
	"inline": "Storage class: the compiler always inlines this function or variable.",
	"export": "Marks a function as callable from outside the module.",
	"return": "Returns control (and values) from the enclosing function.",
	"if":     "Conditional statement.",
	"else":   "Alternative branch of an `if` statement.",
	"while":  "Loop while a condition holds.",
	"for":    "Bounded counting loop.",
	"require": "Pulls in declarations from another file.",
	"from":    "Names the namespace a `require` is imported under.",
	"param":   "Declares a compile-time constant.",
	"global":  "Declares a module-level storage location.",
	"reg":     "Storage class: a register.",
	"stack":   "Storage class: a stack slot.",
	"const":   "Qualifies a declaration as compile-time constant.",
	"int":     "Arbitrary-precision compile-time integer type.",
	"u8":      "8-bit unsigned integer type.",
	"u16":     "16-bit unsigned integer type.",
	"u32":     "32-bit unsigned integer type.",
	"u64":     "64-bit unsigned integer type.",
	"u128":    "128-bit unsigned integer type.",
	"u256":    "256-bit unsigned integer type.",
}

func (s *Server) handleHover(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.HoverParams
	if err := unmarshalParams(req, &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "hover: "+err.Error())
	}

	path := uriToPath(params.TextDocument.URI)
	point := toPoint(params.Position)

	entry := s.state.Graph.Load(s.state.Docs, path)
	defer closeIfNotOwned(entry)
	if entry.Tree == nil {
		return reply(ctx, nil, nil)
	}

	if word, ok := wordAt(entry.Tree, point); ok {
		if doc, ok := jasminKeywords[word]; ok {
			return reply(ctx, keywordHover(word, doc), nil)
		}
	}

	_, name, ok := identifierAt(entry.Tree, point)
	if !ok {
		return reply(ctx, nil, nil)
	}

	if sym, symPath, ok := s.state.FindSymbol(name); ok {
		return reply(ctx, s.formatSymbolHover(sym, symPath), nil)
	}

	return reply(ctx, nil, nil)
}

func keywordHover(word, doc string) *protocol.Hover {
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: "```jasmin\n" + word + "\n```\n\n" + doc,
		},
	}
}

// formatSymbolHover builds the markdown hover content: a fenced code
// block with the symbol's signature, an expandable Value section for a
// Constant with a computed value (showing the declared expression too when
// it differs from that value), then - if the symbol carries a doc comment -
// a horizontal rule followed by the doc text.
func (s *Server) formatSymbolHover(sym symbols.Symbol, path string) *protocol.Hover {
	var b strings.Builder
	b.WriteString("```jasmin\n")
	b.WriteString(sym.Name)
	if sym.Detail != "" {
		b.WriteString(": ")
		b.WriteString(sym.Detail)
	}
	b.WriteString("\n```\n")

	if sym.Kind == symbols.KindParam {
		if value, declExpr, ok := s.evaluateConstant(path, sym.Name); ok {
			b.WriteString("\n<details><summary>Value</summary>\n\n")
			computed := strconv.FormatInt(value, 10)
			if strings.TrimSpace(declExpr) != computed {
				b.WriteString(fmt.Sprintf("`%s` = `%s`\n", strings.TrimSpace(declExpr), computed))
			} else {
				b.WriteString(fmt.Sprintf("`%s`\n", computed))
			}
			b.WriteString("\n</details>\n")
		}
	}

	if sym.Documentation != "" {
		b.WriteString("\n---\n\n")
		b.WriteString(sym.Documentation)
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: b.String(),
		},
	}
}

// evaluateConstant reloads path's param declarations and runs the
// fixpoint evaluator to get sym's computed value and declared expression
// text, for the hover Value section.
func (s *Server) evaluateConstant(path, name string) (value int64, declExpr string, ok bool) {
	entry := s.state.Graph.Load(s.state.Docs, path)
	defer closeIfNotOwned(entry)
	if entry.Tree == nil {
		return 0, "", false
	}

	decls, _ := constDecls(entry.Tree)
	for _, d := range decls {
		if d.Name == name {
			declExpr = d.Expr
		}
	}

	result := consteval.Evaluate(decls)
	v, found := result.Values[name]
	if !found {
		return 0, declExpr, false
	}
	return v, declExpr, true
}
