package cst

// structuralQueries holds the tree-sitter query source compiled once at
// ParserPool construction time and handed out by ParserPool.Query. The
// requires, symbols and diagnostics packages do not run these queries;
// they walk the tree by hand.
//
// The grammar node kinds referenced here (source_file, require_directive,
// string_literal, function_definition, param_declaration, var_declaration,
// type_declaration) are the ones the jasmin tree-sitter grammar binding
// exposes; symbols.go and requires.go walk the same shapes directly via
// ChildByFieldName and child iteration, which also gives them ordering,
// sibling doc comments, multi-name isolation, namespace prefix extraction
// and descent into function bodies for locals.
var structuralQueries = map[string]string{
	// requireStrings captures every string literal inside a require
	// directive, in source order, regardless of whether the directive uses
	// the single-path or multi-path form, and whether or not it carries a
	// `from NAMESPACE` prefix.
	"requireStrings": `
(require_directive
  (string_literal) @require.path)
`,

	// topLevelDecls captures the top-level declaration shapes that own
	// symbols directly: functions, single-name constant params,
	// possibly-multi-name module storage, and type aliases. Function-body
	// locals are a separate walk (symbols.extractFunctionLocals) since they
	// only make sense scoped to their enclosing function.
	"topLevelDecls": `
[
  (function_definition) @decl.function
  (param_declaration) @decl.param
  (var_declaration) @decl.var
  (type_declaration) @decl.type
]
`,
}
