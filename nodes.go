package mathexpr

import "strings"

// node is a node in the abstract syntax tree of an expression.
type node struct {
	kind nodeKind

	name string
	fn   Func
	// op is the arithmetic applied by a compound assignment, or nodeNone for
	// plain assignment.
	op nodeKind

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum   // push num
	nodeStr   // push string literal name
	nodeBool  // push true or false
	nodeName  // push lookup(name)
	nodeEmpty // push empty

	nodeCall  // name is Func to call, right is link to nodeArg unless niladic
	nodeArg   // eval left, right is link to next arg
	nodeTuple // eval left, right is link to next element
	nodeChain // evaluate left and discard, then evaluate right

	nodeAssign // evaluate left, combine with name by op, store to name

	nodeNeg // evaluate left, then negate
	nodeNop // evaluate left
	nodeNot // evaluate left, then invert
	nodeAdd // evaluate left, add right
	nodeSub // evaluate left, sub right
	nodeMul // evaluate left, mul right
	nodeDiv // evaluate left, div by right
	nodeMod // evaluate left, rem by right
	nodePow // evaluate left, exp by right
	nodeEq  // evaluate left, compare right
	nodeNe
	nodeLt
	nodeLe
	nodeGt
	nodeGe
	nodeAnd // evaluate left, then right only if left is true
	nodeOr  // evaluate left, then right only if left is false
)

//go:generate go run golang.org/x/tools/cmd/stringer@v0.31.0 -type=nodeKind -trimprefix=node

// optext gives the source text of the operator for a node kind.
func optext(k nodeKind, alt bool) string {
	switch k {
	case nodeNeg, nodeSub:
		return "-"
	case nodeNop, nodeAdd:
		return "+"
	case nodeNot:
		return "!"
	case nodeMul:
		if alt {
			return "×"
		}
		return "*"
	case nodeDiv:
		if alt {
			return "÷"
		}
		return "/"
	case nodeMod:
		return "%"
	case nodePow:
		return "^"
	case nodeEq:
		return "=="
	case nodeNe:
		return "!="
	case nodeLt:
		return "<"
	case nodeLe:
		return "<="
	case nodeGt:
		return ">"
	case nodeGe:
		return ">="
	case nodeAnd:
		return "&&"
	case nodeOr:
		return "||"
	case nodeTuple:
		return ","
	case nodeChain:
		return ";"
	default:
		return ""
	}
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b, false, false)
	return b.String()
}

func (n *node) fmt(b *strings.Builder, square, alt bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
		if n.left != nil {
			n.left.fmt(b, square, alt)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b, square, alt)
		}
		b.WriteByte('$')
	case nodeNum, nodeName, nodeBool:
		b.WriteString(n.name)
	case nodeStr:
		b.WriteString(quote(n.name))
	case nodeEmpty:
		// Empty brackets.
	case nodeCall:
		b.WriteString(n.name)
		n.fmtargs(b, !square, alt)
	case nodeArg:
		// Args usually only appear inside calls, which are handled by fmtargs.
		b.WriteByte(':')
		n.left.fmt(b, !square, alt)
		if n.right != nil {
			n.right.fmt(b, !square, alt)
		}
	case nodeTuple:
		n.left.fmt(b, !square, alt)
		for n.right != nil {
			n = n.right
			b.WriteString(", ")
			n.left.fmt(b, !square, alt)
		}
	case nodeChain:
		n.left.fmt(b, !square, alt)
		b.WriteString("; ")
		n.right.fmt(b, !square, alt)
	case nodeAssign:
		b.WriteString(n.name)
		b.WriteByte(' ')
		b.WriteString(optext(n.op, false))
		b.WriteString("= ")
		n.left.fmt(b, !square, alt)
	case nodeNeg, nodeNop, nodeNot:
		b.WriteString(optext(n.kind, alt))
		n.left.fmt(b, !square, alt)
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodeMod, nodePow,
		nodeEq, nodeNe, nodeLt, nodeLe, nodeGt, nodeGe, nodeAnd, nodeOr:
		n.left.fmt(b, !square, alt)
		b.WriteByte(' ')
		b.WriteString(optext(n.kind, alt))
		b.WriteByte(' ')
		n.right.fmt(b, !square, alt)
	default:
		panic("mathexpr: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

func (n *node) fmtargs(b *strings.Builder, square, alt bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	if n.right == nil {
		// Niladic call.
		return
	}
	n = n.right
	if n.kind != nodeArg {
		b.WriteString("***")
		n.fmt(b, !square, alt)
		return
	}
	n.left.fmt(b, !square, alt)
	for n.right != nil {
		n = n.right
		if n.kind != nodeArg {
			b.WriteString("***")
			n.fmt(b, !square, alt)
			return
		}
		b.WriteString(", ")
		n.left.fmt(b, !square, alt)
	}
}
