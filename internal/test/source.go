package test

import (
	"fmt"
	"math/rand"
	"strings"
)

const validTokens = "def;add;fooBar42;x;(;);,;+;-;*;/;<;0;7;123;4294967296;# a comment\n;\n"

// GetRandomTokens returns size tokens in no particular grammatical order.
func GetRandomTokens(size int) string {
	valid := strings.Split(validTokens, ";")

	var toks []string
	for len(toks) < size {
		toks = append(toks, valid[rand.Intn(len(valid))])
	}

	return strings.Join(toks, " ")
}

var operators = []string{"+", "-", "*", "/"}

// Program is a generated source text that compiles without errors.
type Program struct {
	Source string
	// Arity maps each named function to its parameter count.
	Arity map[string]int
	// Units is the number of top-level definitions and expressions.
	Units int
}

type programGen struct {
	r     *rand.Rand
	funcs []string
	arity map[string]int
}

// GetRandomProgram builds units definitions and top-level expressions. Bodies
// only reference their own parameters and functions defined before them.
func GetRandomProgram(r *rand.Rand, units int) Program {
	g := &programGen{r: r, arity: make(map[string]int)}

	var sb strings.Builder
	for i := 0; i < units; i++ {
		if i == 0 || g.r.Intn(3) != 0 {
			name := fmt.Sprintf("f%d", len(g.funcs))
			params := make([]string, g.r.Intn(4))
			for j := range params {
				params[j] = fmt.Sprintf("p%d", j)
			}

			fmt.Fprintf(&sb, "def %s(%s) %s\n", name, strings.Join(params, ", "), g.expr(params, 3))
			g.funcs = append(g.funcs, name)
			g.arity[name] = len(params)
			continue
		}

		fmt.Fprintf(&sb, "%s;\n", g.expr(nil, 3))
	}

	return Program{
		Source: sb.String(),
		Arity:  g.arity,
		Units:  units,
	}
}

func (g *programGen) expr(params []string, depth int) string {
	if depth == 0 {
		return g.leaf(params)
	}

	switch g.r.Intn(4) {
	case 0:
		return g.leaf(params)
	case 1:
		return fmt.Sprintf("(%s)", g.expr(params, depth-1))
	case 2:
		if len(g.funcs) != 0 {
			callee := g.funcs[g.r.Intn(len(g.funcs))]
			args := make([]string, g.arity[callee])
			for i := range args {
				args[i] = g.expr(params, depth-1)
			}

			return fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", "))
		}
	}

	op := operators[g.r.Intn(len(operators))]
	return fmt.Sprintf("%s %s %s", g.expr(params, depth-1), op, g.expr(params, depth-1))
}

func (g *programGen) leaf(params []string) string {
	if len(params) != 0 && g.r.Intn(2) == 0 {
		return params[g.r.Intn(len(params))]
	}

	return fmt.Sprint(g.r.Intn(1000))
}
