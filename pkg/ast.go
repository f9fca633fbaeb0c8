package toy

// Expr is one of *LiteralExpr, *Identifier, *BinaryExpr or *FuncCall. The set
// is closed: lowering switches over exactly these types.
type Expr interface {
	exprNode()
	Location() *Location
}

type LiteralExpr struct {
	Loc   *Location
	Value int64
}

type Identifier struct {
	Loc  *Location
	Name string
}

type BinaryOp string

const (
	BinaryAddition       BinaryOp = "+"
	BinarySubtraction    BinaryOp = "-"
	BinaryMultiplication BinaryOp = "*"
	BinaryDivision       BinaryOp = "/"
)

type BinaryExpr struct {
	Loc       *Location
	Operation BinaryOp
	Op1       Expr
	Op2       Expr
}

type FuncCall struct {
	Loc  *Location
	Name string
	Args []Expr
}

func (*LiteralExpr) exprNode() {}
func (*Identifier) exprNode()  {}
func (*BinaryExpr) exprNode()  {}
func (*FuncCall) exprNode()    {}

func (e *LiteralExpr) Location() *Location { return e.Loc }
func (e *Identifier) Location() *Location  { return e.Loc }
func (e *BinaryExpr) Location() *Location  { return e.Loc }
func (e *FuncCall) Location() *Location    { return e.Loc }

// FuncSignature names a function and its parameters. Parameter names may
// repeat, the grammar does not forbid it.
type FuncSignature struct {
	Loc    *Location
	Name   string
	Params []string
}

type FuncDecl struct {
	Signature *FuncSignature
	Body      Expr
}

// Unit is a single top-level item: a *FuncDecl or an extern *FuncSignature.
type Unit interface{}
