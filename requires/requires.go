// Package requires resolves the string literals inside a Jasmin
// `require` directive to concrete file paths on disk.
//
// A directive comes in one of two forms:
//
//	require "FILENAME";
//	from NAMESPACE require "FILENAME";
//
// and each can carry a comma-separated list of paths instead of a single
// one; both list forms resolve through the same per-literal search.
package requires

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jasmin-lang/jasmin-lsp/cst"
)

// Path is one resolved (or unresolved) require target.
type Path struct {
	// Literal is exactly what appeared between the quotes.
	Literal string
	// Namespace is the identifier named by a `from NAMESPACE require` form,
	// or "" for the plain `require "FILENAME"` form.
	Namespace string
	// Range is the span of the string literal token, for diagnostics.
	Range cst.Range
	// Resolved is the absolute file path found on disk, or "" if nothing
	// in the search order existed.
	Resolved string
}

// Extract returns every require literal in a document in source order,
// without attempting resolution.
func Extract(tree *cst.Tree) []Path {
	root := tree.RootNode()
	if !root.Valid() {
		return nil
	}

	var out []Path
	walkRequireDirectives(root, &out)
	return out
}

func walkRequireDirectives(n cst.Node, out *[]Path) {
	if n.Kind() == "require_directive" {
		namespace := ""
		if ns := n.ChildByFieldName("namespace"); ns.Valid() {
			namespace = ns.Text()
		}

		count := n.ChildCount()
		for i := uint(0); i < count; i++ {
			c := n.Child(i)
			if !c.Valid() || c.Kind() != "string_literal" {
				continue
			}
			*out = append(*out, Path{
				Literal:   unquote(c.Text()),
				Namespace: namespace,
				Range:     c.Range(),
			})
		}
		return
	}

	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		walkRequireDirectives(n.Child(i), out)
	}
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// Resolver turns require literals into absolute paths using the search
// described in Resolve's doc comment. stat is the existence check (os.Stat
// by default; tests substitute a fake).
type Resolver struct {
	stat func(path string) bool
}

// NewResolver builds a Resolver backed by the real filesystem.
func NewResolver() *Resolver {
	return &Resolver{
		stat: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}
}

// Resolve finds the file a require literal refers to, given the absolute
// path of the file containing the directive and, for the `from NAMESPACE
// require` form, the namespace identifier (pass "" for the plain form).
//
// Plain form (namespace == ""): join literal onto the requiring file's own
// directory.
//
// Namespaced form: try, in order, the namespace directory and its
// lowercased spelling under the requiring file's directory, then under its
// parent, then under its grandparent - the sibling-namespace pattern a
// `from NAMESPACE require "F"` is meant to find:
//
//	(a) base_dir/NAMESPACE/FILENAME
//	(b) base_dir/namespace/FILENAME
//	(c) parent_dir/NAMESPACE/FILENAME
//	(d) parent_dir/namespace/FILENAME
//	(e) grandparent_dir/NAMESPACE/FILENAME
//	(f) grandparent_dir/namespace/FILENAME
//
// The first candidate that exists on disk wins. If none exists, Resolve
// still returns its first candidate as a best-effort path rather than "",
// so callers always have something to build a Location or diagnostic
// range around; every join goes through filepath.Clean so literals
// containing ".." segments behave like ordinary relative paths.
func (r *Resolver) Resolve(requiringFile, namespace, literal string) string {
	baseDir := filepath.Dir(requiringFile)

	if namespace == "" {
		return filepath.Clean(filepath.Join(baseDir, literal))
	}

	parentDir := filepath.Dir(baseDir)
	grandparentDir := filepath.Dir(parentDir)
	lower := strings.ToLower(namespace)

	candidates := []string{
		filepath.Clean(filepath.Join(baseDir, namespace, literal)),
		filepath.Clean(filepath.Join(baseDir, lower, literal)),
		filepath.Clean(filepath.Join(parentDir, namespace, literal)),
		filepath.Clean(filepath.Join(parentDir, lower, literal)),
		filepath.Clean(filepath.Join(grandparentDir, namespace, literal)),
		filepath.Clean(filepath.Join(grandparentDir, lower, literal)),
	}

	statFn := r.stat
	if statFn == nil {
		statFn = func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		}
	}

	for _, c := range candidates {
		if statFn(c) {
			return c
		}
	}

	return candidates[0]
}
