// Command boltc is a demonstration harness: it compiles the tiny fixed
// surface grammar in grammar.go down to Minecraft commands through the
// real internal/driver pipeline, so the participle/color dependencies
// inherited from the teacher have a genuine caller (SPEC_FULL.md §1
// Expansion). It is not a general bolt-language front end.
//
// Grounded on the teacher's main.go: same participle.Build +
// reportParseError caret-diagnostic shape, same fatih/color usage for
// success/failure reporting.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"github.com/rx-modules/bolt-expr/internal/driver"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: boltc <file.bolt>")
		os.Exit(1)
	}

	path := os.Args[1]
	src, err := os.ReadFile(path)
	if err != nil {
		color.Red("Failed to read file: %s", err)
		os.Exit(1)
	}

	parser, err := participle.Build[Program](
		participle.Lexer(boltLexer),
		participle.Elide("Whitespace"),
	)
	if err != nil {
		color.Red("Parser build failed: %s", err)
		os.Exit(1)
	}

	program, err := parser.ParseString(path, string(src))
	if err != nil {
		reportParseError(string(src), err)
		os.Exit(1)
	}

	buf := &driver.CommandBuffer{}
	expr := driver.NewExpression(driver.DefaultConfig(), buf, nil)
	c := &compiler{expr: expr}

	if err := c.compileProgram(program); err != nil {
		color.Red("Compile error: %s", err)
		os.Exit(1)
	}

	for _, cmd := range expr.Init() {
		fmt.Println(cmd)
	}
	for _, cmd := range expr.GenerateInit() {
		fmt.Println(cmd)
	}
	for _, cmd := range buf.Commands {
		fmt.Println(cmd)
	}

	color.Green("compiled %s to %d commands", path, len(buf.Commands))
}

// reportParseError prints a friendly caret-style parse error message.
func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("Unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("Syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("Syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("-> %s\n", pe.Message())
}
