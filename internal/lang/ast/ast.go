// Package ast defines the toy language's syntax tree and its evaluator.
//
// Each of the three node families (expressions, statements, declarations)
// is modeled as an interface implemented by a small set of concrete,
// tagged struct types rather than a deep class hierarchy: this avoids the
// parallel virtual-destructor hierarchy the original C++ implementation
// used. Every node owns its children by value; the tree is a forest
// rooted at Program.
package ast

import (
	"errors"
	"fmt"
	"strings"

	"github.com/antestudio/http-cgi-server/internal/lang/scope"
	"github.com/antestudio/http-cgi-server/internal/lang/token"
	"github.com/antestudio/http-cgi-server/internal/lang/value"
)

// ErrRuntime wraps the failures the evaluator raises itself while
// executing or evaluating a node: type mismatches, division by zero, and
// bad read() input. Failures reported by the scope chain (an undefined or
// already-declared variable) are returned as scope.ErrUndefined or
// scope.ErrAlreadyDeclared, not wrapped in ErrRuntime.
var ErrRuntime = errors.New("runtime error")

func runtimeError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRuntime, fmt.Sprintf(format, args...))
}

// Expression evaluates to a Value in the given scope.
type Expression interface {
	Evaluate(s *scope.Scope) (value.Value, error)
	String() string
}

// Statement executes for effect in the given scope.
type Statement interface {
	Execute(s *scope.Scope) error
	String() string
}

// Declaration binds a name in the given scope.
type Declaration interface {
	Declare(s *scope.Scope) error
	String() string
}

// ---------------------------------------------------------------------------
// Literals
// ---------------------------------------------------------------------------

type IntegerLiteral struct{ Value int64 }

func (n IntegerLiteral) Evaluate(*scope.Scope) (value.Value, error) { return value.NewInt(n.Value), nil }
func (n IntegerLiteral) String() string                            { return fmt.Sprintf("%d", n.Value) }

type RealLiteral struct{ Value float64 }

func (n RealLiteral) Evaluate(*scope.Scope) (value.Value, error) { return value.NewReal(n.Value), nil }
func (n RealLiteral) String() string                             { return fmt.Sprintf("%g", n.Value) }

type StringLiteral struct{ Value string }

func (n StringLiteral) Evaluate(*scope.Scope) (value.Value, error) {
	return value.NewString(n.Value), nil
}
func (n StringLiteral) String() string { return fmt.Sprintf("%q", n.Value) }

type BooleanLiteral struct{ Value bool }

func (n BooleanLiteral) Evaluate(*scope.Scope) (value.Value, error) {
	return value.NewBool(n.Value), nil
}
func (n BooleanLiteral) String() string { return fmt.Sprintf("%t", n.Value) }

// ---------------------------------------------------------------------------
// Identifier / EnvironmentVariable
// ---------------------------------------------------------------------------

type Identifier struct{ Name string }

func (n Identifier) Evaluate(s *scope.Scope) (value.Value, error) { return s.Get(n.Name) }
func (n Identifier) String() string                               { return n.Name }

// EnvironmentVariable reads from the process environment (not the
// scope); unset variables evaluate to the empty string.
type EnvironmentVariable struct{ Name string }

func (n EnvironmentVariable) Evaluate(s *scope.Scope) (value.Value, error) {
	return value.NewString(s.Getenv(n.Name)), nil
}
func (n EnvironmentVariable) String() string { return "$" + n.Name }

// ---------------------------------------------------------------------------
// BinaryOp / UnaryOp / Assignment
// ---------------------------------------------------------------------------

type BinaryOp struct {
	Op          token.Kind
	Left, Right Expression
}

func (n BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}

// Evaluate short-circuits and/or: the right operand is not evaluated when
// the left operand already determines the result (spec.md §9 redesign:
// the original did not short-circuit).
func (n BinaryOp) Evaluate(s *scope.Scope) (value.Value, error) {
	if n.Op == token.AND || n.Op == token.OR {
		left, err := n.Left.Evaluate(s)
		if err != nil {
			return value.Value{}, err
		}
		lb, err := left.Bool()
		if err != nil {
			return value.Value{}, runtimeError("left operand of %s must be boolean: %v", n.Op, err)
		}
		if n.Op == token.AND && !lb {
			return value.NewBool(false), nil
		}
		if n.Op == token.OR && lb {
			return value.NewBool(true), nil
		}
		right, err := n.Right.Evaluate(s)
		if err != nil {
			return value.Value{}, err
		}
		rb, err := right.Bool()
		if err != nil {
			return value.Value{}, runtimeError("right operand of %s must be boolean: %v", n.Op, err)
		}
		return value.NewBool(rb), nil
	}

	left, err := n.Left.Evaluate(s)
	if err != nil {
		return value.Value{}, err
	}
	right, err := n.Right.Evaluate(s)
	if err != nil {
		return value.Value{}, err
	}
	return evalBinary(n.Op, left, right)
}

func asFloat(v value.Value) (float64, bool) {
	switch v.Kind() {
	case value.Int:
		i, _ := v.Int()
		return float64(i), true
	case value.Real:
		r, _ := v.Real()
		return r, true
	default:
		return 0, false
	}
}

func bothNumeric(l, r value.Value) bool {
	return (l.Kind() == value.Int || l.Kind() == value.Real) &&
		(r.Kind() == value.Int || r.Kind() == value.Real)
}

func evalBinary(op token.Kind, l, r value.Value) (value.Value, error) {
	switch op {
	case token.PLUS:
		if l.Kind() == value.String && r.Kind() == value.String {
			ls, _ := l.Str()
			rs, _ := r.Str()
			return value.NewString(ls + rs), nil
		}
		return arith(op, l, r)
	case token.MINUS, token.MULTIPLY, token.DIVIDE:
		return arith(op, l, r)
	case token.MODULO:
		if l.Kind() != value.Int || r.Kind() != value.Int {
			return value.Value{}, runtimeError("%% requires two integers, got %s and %s", l.Kind(), r.Kind())
		}
		li, _ := l.Int()
		ri, _ := r.Int()
		if ri == 0 {
			return value.Value{}, runtimeError("modulo by zero")
		}
		return value.NewInt(li % ri), nil
	case token.LESS, token.GREATER, token.LESSEQUAL, token.GREATEREQUAL:
		return relational(op, l, r)
	case token.EQUAL, token.NOTEQUAL:
		return equality(op, l, r)
	default:
		return value.Value{}, runtimeError("unsupported binary operator %s", op)
	}
}

func arith(op token.Kind, l, r value.Value) (value.Value, error) {
	if !bothNumeric(l, r) {
		return value.Value{}, runtimeError("operator %s requires numeric operands, got %s and %s", op, l.Kind(), r.Kind())
	}
	if l.Kind() == value.Int && r.Kind() == value.Int {
		li, _ := l.Int()
		ri, _ := r.Int()
		switch op {
		case token.PLUS:
			return value.NewInt(li + ri), nil
		case token.MINUS:
			return value.NewInt(li - ri), nil
		case token.MULTIPLY:
			return value.NewInt(li * ri), nil
		case token.DIVIDE:
			if ri == 0 {
				return value.Value{}, runtimeError("division by zero")
			}
			return value.NewInt(li / ri), nil
		}
	}
	// INT+REAL promotes to REAL.
	lf, _ := asFloat(l)
	rf, _ := asFloat(r)
	switch op {
	case token.PLUS:
		return value.NewReal(lf + rf), nil
	case token.MINUS:
		return value.NewReal(lf - rf), nil
	case token.MULTIPLY:
		return value.NewReal(lf * rf), nil
	case token.DIVIDE:
		if rf == 0 {
			return value.Value{}, runtimeError("division by zero")
		}
		return value.NewReal(lf / rf), nil
	}
	return value.Value{}, runtimeError("unsupported arithmetic operator %s", op)
}

func relational(op token.Kind, l, r value.Value) (value.Value, error) {
	var cmp int
	switch {
	case bothNumeric(l, r):
		lf, _ := asFloat(l)
		rf, _ := asFloat(r)
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		default:
			cmp = 0
		}
	case l.Kind() == value.String && r.Kind() == value.String:
		ls, _ := l.Str()
		rs, _ := r.Str()
		cmp = strings.Compare(ls, rs)
	default:
		return value.Value{}, runtimeError("operator %s requires two numbers or two strings, got %s and %s", op, l.Kind(), r.Kind())
	}

	switch op {
	case token.LESS:
		return value.NewBool(cmp < 0), nil
	case token.GREATER:
		return value.NewBool(cmp > 0), nil
	case token.LESSEQUAL:
		return value.NewBool(cmp <= 0), nil
	case token.GREATEREQUAL:
		return value.NewBool(cmp >= 0), nil
	default:
		return value.Value{}, runtimeError("unsupported relational operator %s", op)
	}
}

func equality(op token.Kind, l, r value.Value) (value.Value, error) {
	var eq bool
	switch {
	case bothNumeric(l, r):
		lf, _ := asFloat(l)
		rf, _ := asFloat(r)
		eq = lf == rf
	case l.Kind() == value.String && r.Kind() == value.String:
		ls, _ := l.Str()
		rs, _ := r.Str()
		eq = ls == rs
	case l.Kind() == value.Boolean && r.Kind() == value.Boolean:
		lb, _ := l.Bool()
		rb, _ := r.Bool()
		eq = lb == rb
	default:
		return value.Value{}, runtimeError("operator %s requires comparable operands, got %s and %s", op, l.Kind(), r.Kind())
	}
	if op == token.NOTEQUAL {
		eq = !eq
	}
	return value.NewBool(eq), nil
}

type UnaryOp struct {
	Op   token.Kind
	Expr Expression
}

func (n UnaryOp) String() string { return fmt.Sprintf("(%s %s)", n.Op, n.Expr) }

func (n UnaryOp) Evaluate(s *scope.Scope) (value.Value, error) {
	v, err := n.Expr.Evaluate(s)
	if err != nil {
		return value.Value{}, err
	}
	switch n.Op {
	case token.MINUS:
		switch v.Kind() {
		case value.Int:
			i, _ := v.Int()
			return value.NewInt(-i), nil
		case value.Real:
			r, _ := v.Real()
			return value.NewReal(-r), nil
		default:
			return value.Value{}, runtimeError("unary - requires a number, got %s", v.Kind())
		}
	case token.NOT:
		b, err := v.Bool()
		if err != nil {
			return value.Value{}, runtimeError("unary not requires a boolean: %v", err)
		}
		return value.NewBool(!b), nil
	default:
		return value.Value{}, runtimeError("unsupported unary operator %s", n.Op)
	}
}

// Assignment evaluates its right-hand side and writes it through the
// scope chain (for Name). When Env is true nothing is written anywhere:
// the process environment is left unchanged. The result is the assigned
// value in both cases.
type Assignment struct {
	Name string
	Env  bool
	Expr Expression
}

func (n Assignment) String() string { return fmt.Sprintf("(%s = %s)", n.Name, n.Expr) }

func (n Assignment) Evaluate(s *scope.Scope) (value.Value, error) {
	v, err := n.Expr.Evaluate(s)
	if err != nil {
		return value.Value{}, err
	}
	if n.Env {
		// Environment-variable assignment is accepted by the grammar
		// (spec.md §4.I) but there is no process-environment mutation
		// surface exposed to the scope chain; this is a silent no-op
		// with no observable effect anywhere in the program. A
		// subsequent read of the same $VAR still goes through
		// EnvironmentVariable.Evaluate, which looks the name up in the
		// process environment directly and so returns the original
		// value set before the script ran, never v.
		return v, nil
	}
	if err := s.Set(n.Name, v); err != nil {
		return value.Value{}, err
	}
	return v, nil
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// CompoundStatement executes its children in a nested scope, in order.
type CompoundStatement struct{ Statements []Statement }

func (n CompoundStatement) String() string { return "{ ... }" }

func (n CompoundStatement) Execute(s *scope.Scope) error {
	child := scope.NewChild(s)
	for _, stmt := range n.Statements {
		if err := stmt.Execute(child); err != nil {
			return err
		}
	}
	return nil
}

type IfStatement struct {
	Condition  Expression
	Then, Else Statement
}

func (n IfStatement) String() string { return fmt.Sprintf("if (%s) %s", n.Condition, n.Then) }

func (n IfStatement) Execute(s *scope.Scope) error {
	cond, err := evalCondition(n.Condition, s)
	if err != nil {
		return err
	}
	if cond {
		return n.Then.Execute(s)
	}
	if n.Else != nil {
		return n.Else.Execute(s)
	}
	return nil
}

func evalCondition(e Expression, s *scope.Scope) (bool, error) {
	v, err := e.Evaluate(s)
	if err != nil {
		return false, err
	}
	b, err := v.Bool()
	if err != nil {
		return false, runtimeError("condition must be boolean, got %s", v.Kind())
	}
	return b, nil
}

type WhileStatement struct {
	Condition Expression
	Body      Statement
}

func (n WhileStatement) String() string { return fmt.Sprintf("while (%s) %s", n.Condition, n.Body) }

func (n WhileStatement) Execute(s *scope.Scope) error {
	for {
		cond, err := evalCondition(n.Condition, s)
		if err != nil {
			return err
		}
		if !cond {
			return nil
		}
		if err := n.Body.Execute(s); err != nil {
			return err
		}
	}
}

type DoWhileStatement struct {
	Condition Expression
	Body      Statement
}

func (n DoWhileStatement) String() string {
	return fmt.Sprintf("do %s while (%s)", n.Body, n.Condition)
}

func (n DoWhileStatement) Execute(s *scope.Scope) error {
	for {
		if err := n.Body.Execute(s); err != nil {
			return err
		}
		cond, err := evalCondition(n.Condition, s)
		if err != nil {
			return err
		}
		if !cond {
			return nil
		}
	}
}

// ForStatement's Init, Cond and Update are all optional; a missing Cond
// means "always true".
type ForStatement struct {
	Init, Cond, Update Expression
	Body               Statement
}

func (n ForStatement) String() string { return fmt.Sprintf("for (...) %s", n.Body) }

func (n ForStatement) Execute(s *scope.Scope) error {
	if n.Init != nil {
		if _, err := n.Init.Evaluate(s); err != nil {
			return err
		}
	}
	for {
		if n.Cond != nil {
			cond, err := evalCondition(n.Cond, s)
			if err != nil {
				return err
			}
			if !cond {
				return nil
			}
		}
		if err := n.Body.Execute(s); err != nil {
			return err
		}
		if n.Update != nil {
			if _, err := n.Update.Evaluate(s); err != nil {
				return err
			}
		}
	}
}

// WriteStatement evaluates each argument and appends its display form to
// the scope's output sink.
type WriteStatement struct{ Args []Expression }

func (n WriteStatement) String() string { return "write(...)" }

func (n WriteStatement) Execute(s *scope.Scope) error {
	for _, arg := range n.Args {
		v, err := arg.Evaluate(s)
		if err != nil {
			return err
		}
		s.Output(v.Display())
	}
	return nil
}

// ReadStatement reads a line from Input, parses it into the variable's
// current declared type, and writes it back.
type ReadStatement struct {
	VarName string
	Input   func() (string, error)
}

func (n ReadStatement) String() string { return fmt.Sprintf("read(%s)", n.VarName) }

func (n ReadStatement) Execute(s *scope.Scope) error {
	current, err := s.Get(n.VarName)
	if err != nil {
		return err
	}
	if n.Input == nil {
		return runtimeError("read(%s): no input source configured", n.VarName)
	}
	line, err := n.Input()
	if err != nil {
		return runtimeError("read(%s): %v", n.VarName, err)
	}
	v, err := value.ReadInput(current.Kind(), line)
	if err != nil {
		return runtimeError("read(%s): %v", n.VarName, err)
	}
	return s.Set(n.VarName, v)
}

// ExpressionStatement executes an expression for its side effects,
// discarding the result.
type ExpressionStatement struct{ Expr Expression }

func (n ExpressionStatement) String() string { return n.Expr.String() + ";" }

func (n ExpressionStatement) Execute(s *scope.Scope) error {
	_, err := n.Expr.Evaluate(s)
	return err
}

// ---------------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------------

// VariableDecl binds Name in the current scope. If Initializer is
// present its evaluated value must match Type for INT and STRING;
// REAL/BOOLEAN initializers pass through without an extra type check,
// matching the original's enforcement (spec.md §4.J). A missing
// initializer takes the type's zero value.
type VariableDecl struct {
	Name        string
	Type        value.Kind
	Initializer Expression
}

func (n VariableDecl) String() string {
	if n.Initializer != nil {
		return fmt.Sprintf("%s %s = %s", n.Type, n.Name, n.Initializer)
	}
	return fmt.Sprintf("%s %s", n.Type, n.Name)
}

func (n VariableDecl) Declare(s *scope.Scope) error {
	if n.Initializer == nil {
		return s.Declare(n.Name, value.ZeroValue(n.Type))
	}
	v, err := n.Initializer.Evaluate(s)
	if err != nil {
		return err
	}
	if (n.Type == value.Int || n.Type == value.String) && v.Kind() != n.Type {
		return runtimeError("variable %q declared as %s but initialized with %s", n.Name, n.Type, v.Kind())
	}
	return s.Declare(n.Name, v)
}

// ---------------------------------------------------------------------------
// Program
// ---------------------------------------------------------------------------

// Program is the root of the forest: an ordered sequence of top-level
// declarations followed by an ordered sequence of top-level statements.
type Program struct {
	Declarations []Declaration
	Statements   []Statement
}

// Run declares every top-level variable and then executes every
// statement, in order, against the given root scope.
func (p *Program) Run(root *scope.Scope) error {
	for _, d := range p.Declarations {
		if err := d.Declare(root); err != nil {
			return err
		}
	}
	for _, st := range p.Statements {
		if err := st.Execute(root); err != nil {
			return err
		}
	}
	return nil
}

func (p *Program) String() string {
	var sb strings.Builder
	sb.WriteString("program\n")
	for _, d := range p.Declarations {
		fmt.Fprintf(&sb, "  %s;\n", d)
	}
	for _, st := range p.Statements {
		fmt.Fprintf(&sb, "  %s\n", st)
	}
	return sb.String()
}
