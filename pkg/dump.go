package toy

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders a unit or expression as an S-expression, e.g.
// (def add (a b) (+ a b)).
func Format(node interface{}) string {
	var sb strings.Builder
	format(&sb, node)

	return sb.String()
}

func format(sb *strings.Builder, node interface{}) {
	switch n := node.(type) {
	case *LiteralExpr:
		sb.WriteString(strconv.FormatInt(n.Value, 10))
	case *Identifier:
		sb.WriteString(n.Name)
	case *BinaryExpr:
		fmt.Fprintf(sb, "(%s ", n.Operation)
		format(sb, n.Op1)
		sb.WriteByte(' ')
		format(sb, n.Op2)
		sb.WriteByte(')')
	case *FuncCall:
		sb.WriteString("(call ")
		sb.WriteString(n.Name)
		for _, arg := range n.Args {
			sb.WriteByte(' ')
			format(sb, arg)
		}
		sb.WriteByte(')')
	case *FuncSignature:
		fmt.Fprintf(sb, "(extern %s (%s))", n.Name, strings.Join(n.Params, " "))
	case *FuncDecl:
		fmt.Fprintf(sb, "(def %s (%s) ", n.Signature.Name, strings.Join(n.Signature.Params, " "))
		format(sb, n.Body)
		sb.WriteByte(')')
	default:
		fmt.Fprintf(sb, "<%T>", node)
	}
}
