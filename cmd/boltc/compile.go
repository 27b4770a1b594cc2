package main

import (
	"fmt"

	"github.com/rx-modules/bolt-expr/internal/driver"
	"github.com/rx-modules/bolt-expr/internal/ir"
	"github.com/rx-modules/bolt-expr/internal/source"
)

// compiler threads the driver instance through a program's statements.
// Every Ref resolves to a Score: this demo grammar has no data-path syntax
// of its own, only the scoreboard half of the source façade.
type compiler struct {
	expr *driver.Expression
}

func (c *compiler) scoreFor(ref *Ref) source.Score {
	return source.NewScore(c.expr, unquote(ref.Holder), ref.Objective)
}

func (c *compiler) compileProgram(p *Program) error {
	for _, stmt := range p.Statements {
		if err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) compileStatement(s *Statement) error {
	switch {
	case s.If != nil:
		return c.compileIf(s.If)
	case s.Assign != nil:
		return c.compileAssign(s.Assign)
	default:
		return fmt.Errorf("empty statement")
	}
}

func (c *compiler) compileIf(s *IfStmt) error {
	cond := c.compileComparison(s.Cond)
	return source.If(c.expr, cond, func() error {
		for _, stmt := range s.Body {
			if err := c.compileStatement(stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *compiler) compileAssign(s *AssignStmt) error {
	target := c.scoreFor(s.Target)
	value := source.Wrap(c.compileExpr(s.Value))

	switch s.Op {
	case "=":
		target.Set(value)
	case "+=":
		target.IAdd(value)
	case "-=":
		target.ISub(value)
	case "*=":
		target.IMul(value)
	case "/=":
		target.IDiv(value)
	default:
		return fmt.Errorf("unsupported assignment operator %q", s.Op)
	}
	return nil
}

func (c *compiler) compileComparison(cmp *Comparison) ir.ExprNode {
	left := c.compileExpr(cmp.Left)
	right := c.compileExpr(cmp.Right)
	op, negate := conditionOp(cmp.Op)
	return ir.ConditionExpr{Op: op, Left: left, Right: right, Negate: negate}
}

func conditionOp(op string) (ir.ConditionOp, bool) {
	switch op {
	case "==":
		return ir.OpEqual, false
	case "!=":
		return ir.OpEqual, true
	case "<":
		return ir.OpLessThan, false
	case "<=":
		return ir.OpLessThanOrEqual, false
	case ">":
		return ir.OpGreaterThan, false
	case ">=":
		return ir.OpGreaterThanOrEqual, false
	default:
		panic("boltc: unreachable comparison operator " + op)
	}
}

func (c *compiler) compileExpr(e *Expr) ir.ExprNode {
	node := c.compileTerm(e.Left)
	for _, rest := range e.Rest {
		op := ir.OpAdd
		if rest.Op == "-" {
			op = ir.OpSub
		}
		node = ir.BinaryExpr{Op: op, Left: node, Right: c.compileTerm(rest.Term)}
	}
	return node
}

func (c *compiler) compileTerm(t *Term) ir.ExprNode {
	node := c.compileFactor(t.Left)
	for _, rest := range t.Rest {
		op := ir.OpMul
		if rest.Op == "/" {
			op = ir.OpDiv
		}
		node = ir.BinaryExpr{Op: op, Left: node, Right: c.compileFactor(rest.Factor)}
	}
	return node
}

func (c *compiler) compileFactor(f *Factor) ir.ExprNode {
	switch {
	case f.Ref != nil:
		return c.scoreFor(f.Ref).Expr()
	case f.Number != nil:
		return source.Int(int32(*f.Number)).Expr()
	case f.Paren != nil:
		return c.compileExpr(f.Paren)
	default:
		panic("boltc: empty factor")
	}
}

// unquote strips the surrounding double quotes the lexer's String token
// always captures along with the text.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
