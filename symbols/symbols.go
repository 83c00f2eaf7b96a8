// Package symbols extracts the declared functions, compile-time parameters,
// and storage variables out of a parsed Jasmin file.
package symbols

import (
	"strings"

	"github.com/jasmin-lang/jasmin-lsp/cst"
)

// Kind distinguishes the six kinds of symbol the extractor produces.
type Kind int

const (
	// KindFunction is a top-level `fn name(...) -> ... { ... }` definition.
	KindFunction Kind = iota
	// KindParam is a `param <type> NAME = EXPR;` compile-time constant.
	KindParam
	// KindVar is one name out of a `reg|stack|inline <type> a b c;` storage
	// declaration nested inside a function body.
	KindVar
	// KindFuncParam is one formal parameter inside a function's parameter
	// list.
	KindFuncParam
	// KindGlobal is one name out of a top-level type-prefixed storage
	// declaration (no `param` keyword) - module-level, mutable at run time.
	KindGlobal
	// KindType is a `type NAME = ...;` type alias declaration.
	KindType
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindParam:
		return "param"
	case KindVar:
		return "var"
	case KindFuncParam:
		return "func_param"
	case KindGlobal:
		return "global"
	case KindType:
		return "type"
	default:
		return "unknown"
	}
}

// Symbol is one named declaration extracted from a document's CST. Every
// field is a value, never a pointer shared with another Symbol, so that a
// multi-name declaration such as `reg u64 a b c;` produces three fully
// independent Symbol values instead of three views onto shared state.
type Symbol struct {
	Name string
	Kind Kind

	// Range spans just this symbol's own declarator (for a multi-name
	// declaration, only "b" and its trailing comma/semicolon boundary, not
	// the whole statement).
	Range cst.Range

	// NameRange spans only the identifier token.
	NameRange cst.Range

	// Detail is a short human-readable type signature, e.g. "reg u64" or
	// "fn(reg u64, reg u64) -> reg u64".
	Detail string

	// Documentation is the associated doc comment text, or "" if none.
	// Function parameters always carry "" regardless of comments near the
	// enclosing function (doc comments document the function, not its
	// individual parameters).
	Documentation string
}

// Extract walks a parsed tree's top-level items and returns every declared
// symbol in source order. A top-level ERROR node is skipped without
// descending into its children: whatever partial declarations the recovery
// parse produced inside a syntax error are treated as unreliable rather
// than offered up as real symbols.
func Extract(tree *cst.Tree) []Symbol {
	root := tree.RootNode()
	if !root.Valid() {
		return nil
	}

	src := tree.Source()
	var out []Symbol

	var pendingComment cst.Node
	hasPending := false

	n := root.ChildCount()
	for i := uint(0); i < n; i++ {
		child := root.Child(i)
		if !child.Valid() {
			continue
		}

		if child.IsError() {
			hasPending = false
			continue
		}

		switch child.Kind() {
		case "comment":
			pendingComment = child
			hasPending = true
			continue

		case "function_definition":
			doc := ""
			if hasPending && adjacentNoBlankLine(pendingComment, child) {
				doc = commentText(pendingComment, src)
			}
			out = append(out, extractFunction(child, src, doc)...)

		case "param_declaration":
			doc := ""
			if hasPending && adjacentNoBlankLine(pendingComment, child) {
				doc = commentText(pendingComment, src)
			}
			out = append(out, extractDeclarators(child, src, KindParam, doc)...)

		case "var_declaration":
			// At top level, a type-prefixed declaration with no `param`
			// keyword is module-level storage (Global), not a function
			// local - locals only come from a declaration nested inside a
			// function's body (see extractFunctionLocals).
			doc := ""
			if hasPending && adjacentNoBlankLine(pendingComment, child) {
				doc = commentText(pendingComment, src)
			}
			out = append(out, extractDeclarators(child, src, KindGlobal, doc)...)

		case "type_declaration":
			doc := ""
			if hasPending && adjacentNoBlankLine(pendingComment, child) {
				doc = commentText(pendingComment, src)
			}
			out = append(out, extractTypeDecl(child, doc)...)
		}

		hasPending = false
	}

	return out
}

// adjacentNoBlankLine implements the doc-comment association rule: a
// comment documents the declaration immediately below it only when there is
// no blank line between the comment and the declaration, i.e. the
// declaration starts on the line right after the comment ends.
func adjacentNoBlankLine(comment, decl cst.Node) bool {
	gap := decl.StartPosition().Row - comment.EndPosition().Row
	return gap <= 1
}

func commentText(comment cst.Node, src []byte) string {
	text := strings.TrimSpace(comment.Text())
	block := strings.HasPrefix(text, "/*")
	if block {
		text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if block {
			line = strings.TrimPrefix(line, "*")
		} else {
			line = strings.TrimPrefix(line, "//")
		}
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func extractFunction(fn cst.Node, src []byte, doc string) []Symbol {
	name := fn.ChildByFieldName("name")
	if !name.Valid() {
		return nil
	}

	detail := functionDetail(fn)

	out := []Symbol{{
		Name:          name.Text(),
		Kind:          KindFunction,
		Range:         fn.Range(),
		NameRange:     name.Range(),
		Detail:        detail,
		Documentation: doc,
	}}

	params := fn.ChildByFieldName("parameters")
	if params.Valid() {
		pc := params.ChildCount()
		for i := uint(0); i < pc; i++ {
			p := params.Child(i)
			if !p.Valid() || p.Kind() != "parameter" {
				continue
			}
			pname := p.ChildByFieldName("name")
			if !pname.Valid() {
				continue
			}
			ptype := p.ChildByFieldName("type")
			out = append(out, Symbol{
				Name:      pname.Text(),
				Kind:      KindFuncParam,
				Range:     p.Range(),
				NameRange: pname.Range(),
				Detail:    strings.TrimSpace(ptype.Text()),
				// Parameters are never documented on their own.
				Documentation: "",
			})
		}
	}

	if body := fn.ChildByFieldName("body"); body.Valid() {
		out = append(out, extractFunctionLocals(body, src)...)
	}

	return out
}

// extractFunctionLocals walks a function body looking for
// `reg|stack|inline <type> a, b;` storage declarations, the construct the
// grammar uses for a function-local variable. It descends into nested
// blocks (if/while/for bodies) but never into a nested function_definition,
// mirroring Extract's own top-level scan including its doc-comment
// association rule.
func extractFunctionLocals(body cst.Node, src []byte) []Symbol {
	var out []Symbol

	var pendingComment cst.Node
	hasPending := false

	n := body.ChildCount()
	for i := uint(0); i < n; i++ {
		child := body.Child(i)
		if !child.Valid() {
			continue
		}

		if child.IsError() {
			hasPending = false
			continue
		}

		switch child.Kind() {
		case "comment":
			pendingComment = child
			hasPending = true
			continue

		case "var_declaration":
			doc := ""
			if hasPending && adjacentNoBlankLine(pendingComment, child) {
				doc = commentText(pendingComment, src)
			}
			out = append(out, extractDeclarators(child, src, KindVar, doc)...)

		case "function_definition":
			// A nested function owns its own locals; this scan never
			// crosses into another function's scope.

		default:
			out = append(out, extractFunctionLocals(child, src)...)
		}

		hasPending = false
	}

	return out
}

// extractTypeDecl handles a `type NAME = ...;` alias declaration. Per the
// extractor's type-text rule, the detail is always the literal word "type":
// the alias's right-hand side is not a signature worth repeating in hover.
func extractTypeDecl(n cst.Node, doc string) []Symbol {
	name := n.ChildByFieldName("name")
	if !name.Valid() {
		return nil
	}
	return []Symbol{{
		Name:          name.Text(),
		Kind:          KindType,
		Range:         n.Range(),
		NameRange:     name.Range(),
		Detail:        "type",
		Documentation: doc,
	}}
}

func functionDetail(fn cst.Node) string {
	var b strings.Builder
	b.WriteString("fn(")

	params := fn.ChildByFieldName("parameters")
	if params.Valid() {
		first := true
		pc := params.ChildCount()
		for i := uint(0); i < pc; i++ {
			p := params.Child(i)
			if !p.Valid() || p.Kind() != "parameter" {
				continue
			}
			if !first {
				b.WriteString(", ")
			}
			first = false
			ptype := p.ChildByFieldName("type")
			b.WriteString(strings.TrimSpace(ptype.Text()))
		}
	}
	b.WriteString(")")

	ret := fn.ChildByFieldName("return_type")
	if ret.Valid() {
		b.WriteString(" -> ")
		b.WriteString(strings.TrimSpace(ret.Text()))
	}

	return b.String()
}

// extractDeclarators handles both param_declaration and var_declaration: a
// shared type (and, for var_declaration, storage class) prefixes one or
// more independently-named declarators.
func extractDeclarators(decl cst.Node, src []byte, kind Kind, doc string) []Symbol {
	typeNode := decl.ChildByFieldName("type")
	detail := strings.TrimSpace(typeNode.Text())
	if storage := decl.ChildByFieldName("storage"); storage.Valid() {
		detail = strings.TrimSpace(storage.Text()) + " " + detail
	}

	var out []Symbol
	n := decl.ChildCount()
	for i := uint(0); i < n; i++ {
		c := decl.Child(i)
		if !c.Valid() || c.Kind() != "declarator" {
			continue
		}
		name := c.ChildByFieldName("name")
		if !name.Valid() {
			continue
		}

		// A multi-name declaration's doc comment documents the declaration,
		// not any one name in it, but is only ever attached to the first
		// symbol produced - later siblings carry none.
		symDoc := ""
		if len(out) == 0 {
			symDoc = doc
		}

		out = append(out, Symbol{
			Name:          name.Text(),
			Kind:          kind,
			Range:         c.Range(),
			NameRange:     name.Range(),
			Detail:        detail,
			Documentation: symDoc,
		})
	}

	return out
}
