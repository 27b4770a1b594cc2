// Package main's demo grammar: a minimal fixed-syntax subset sufficient to
// drive internal/driver end to end (SPEC_FULL.md §1 Expansion). It is not
// the bolt surface language spec.md excludes from scope — just enough to
// parse `obj["@s"] = obj["@s"] * 10 + other["temp"]`-shaped statements and
// single-level `if ... { ... }` blocks.
//
// Grounded on the teacher's grammar/lexer.go (stateful lexer rule list)
// and grammar/grammar.go (participle struct-tag grammar), scaled down; the
// Expr/Term/Factor precedence levels replace the teacher's single flat
// BinOp chain since this demo has no separate Pratt parser to resolve
// precedence afterward.
package main

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var boltLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Whitespace", `[ \t\r\n]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `[0-9]+`, nil},
		{"String", `"[^"]*"`, nil},
		{"Operator", `(\+=|-=|\*=|/=|==|!=|<=|>=|=|[+\-*/<>])`, nil},
		{"Punctuation", `[{}\[\]()]`, nil},
	},
})

// Program is a sequence of top-level statements.
type Program struct {
	Statements []*Statement `@@*`
}

// Statement is either a branch or an assignment.
type Statement struct {
	If     *IfStmt     `  @@`
	Assign *AssignStmt `| @@`
}

// IfStmt is a single-level, non-chained conditional: `if cond { body }`.
type IfStmt struct {
	Cond *Comparison  `"if" @@`
	Body []*Statement `"{" @@* "}"`
}

// AssignStmt is `ref op expr`, where op is one of the supported rebind or
// in-place compound-assignment operators.
type AssignStmt struct {
	Target *Ref   `@@`
	Op     string `@("+=" | "-=" | "*=" | "/=" | "=")`
	Value  *Expr  `@@`
}

// Comparison is `expr op expr`, the condition an IfStmt tests.
type Comparison struct {
	Left  *Expr  `@@`
	Op    string `@("==" | "!=" | "<=" | ">=" | "<" | ">")`
	Right *Expr  `@@`
}

// Expr is the lowest-precedence additive level.
type Expr struct {
	Left *Term     `@@`
	Rest []*OpTerm `@@*`
}

type OpTerm struct {
	Op   string `@("+" | "-")`
	Term *Term  `@@`
}

// Term is the multiplicative level, binding tighter than Expr.
type Term struct {
	Left *Factor     `@@`
	Rest []*OpFactor `@@*`
}

type OpFactor struct {
	Op     string  `@("*" | "/")`
	Factor *Factor `@@`
}

// Factor is a leaf: a source reference, an integer literal, or a
// parenthesized sub-expression.
type Factor struct {
	Ref    *Ref   `  @@`
	Number *int64 `| @Integer`
	Paren  *Expr  `| "(" @@ ")"`
}

// Ref is `objective["holder"]`, always a score in this demo grammar.
type Ref struct {
	Objective string `@Ident`
	Holder    string `"[" @String "]"`
}
