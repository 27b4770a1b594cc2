// Package ir defines the immutable intermediate representation the
// unroller produces and the optimizer rewrites: sources, literals,
// conditions and operations over the two source kinds (scores and data
// paths). Nodes are plain value-holding structs; equality is structural,
// compared via Key(), because slice-bearing structs are not Go-comparable.
package ir

// Node is the closed marker interface every IR value implements: sources,
// literals, conditions and operations alike. Grounded on the teacher's
// ast.Expr sealed-interface convention (internal/ast/expr.go's isExpr()).
type Node interface {
	// Key returns a canonical string encoding used for structural equality
	// and as a map key (SourceTuple -> ..., reaching-definitions, etc).
	Key() string
	String() string
	isNode()
}

// Source is the subset of Node that names a location a value can be read
// from or written to: ScoreSource or DataSource.
type Source interface {
	Node
	isSource()
}
