// Package consteval evaluates Jasmin `param` constant declarations,
// resolving forward and backward references between them with a bounded
// fixpoint pass instead of requiring declaration order.
package consteval

// MaxPasses bounds how many times the driver retries still-unresolved
// declarations before giving up and calling them unevaluated.
const MaxPasses = 10

// Decl is one `param <type> NAME = EXPR;` declaration's right-hand side, as
// raw expression text.
type Decl struct {
	Name string
	Expr string
}

// Result is the outcome of evaluating a set of param declarations.
type Result struct {
	// Values holds every declaration that was successfully reduced to a
	// concrete int64.
	Values map[string]int64
	// Unevaluated holds the names of declarations that never resolved
	// within MaxPasses - a malformed or non-terminating expression graph,
	// or a genuine div/mod-by-zero. These are not errors: per spec they
	// are silently left unevaluated rather than diagnosed.
	Unevaluated map[string]bool
	// ParseErrors holds a parse failure per malformed expression; these
	// are distinct from Unevaluated and are diagnosable.
	ParseErrors map[string]error
}

// Evaluate runs the fixpoint driver over decls. Declarations may reference
// each other in any order; each pass attempts every not-yet-resolved
// declaration against the constants resolved so far, so a chain of
// dependencies resolves over however many passes it takes, up to
// MaxPasses.
func Evaluate(decls []Decl) Result {
	res := Result{
		Values:      make(map[string]int64),
		Unevaluated: make(map[string]bool),
		ParseErrors: make(map[string]error),
	}

	nodes := make(map[string]node, len(decls))
	pending := make([]string, 0, len(decls))

	for _, d := range decls {
		n, err := parseExpr(d.Expr)
		if err != nil {
			res.ParseErrors[d.Name] = err
			continue
		}
		nodes[d.Name] = n
		pending = append(pending, d.Name)
	}

	for pass := 0; pass < MaxPasses && len(pending) > 0; pass++ {
		var next []string
		progressed := false

		for _, name := range pending {
			val, ok := evaluate(nodes[name], res.Values)
			if ok {
				res.Values[name] = val
				progressed = true
				continue
			}
			next = append(next, name)
		}

		pending = next
		if !progressed {
			break
		}
	}

	for _, name := range pending {
		res.Unevaluated[name] = true
	}

	return res
}
