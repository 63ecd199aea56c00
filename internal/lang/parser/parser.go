// Package parser implements a recursive-descent parser over the toy
// language's token stream, producing an ast.Program.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"

	"github.com/antestudio/http-cgi-server/internal/lang/ast"
	"github.com/antestudio/http-cgi-server/internal/lang/lexer"
	"github.com/antestudio/http-cgi-server/internal/lang/token"
	"github.com/antestudio/http-cgi-server/internal/lang/value"
)

// ErrSyntax wraps every parse failure, carrying the offending token's
// source position.
var ErrSyntax = errors.New("syntax error")

// Parser consumes a Lexer's token stream with one token of lookahead.
type Parser struct {
	lex     *lexer.Lexer
	current token.Token
	peek    token.Token

	// input, when set, backs ReadStatement.Input for every parsed read()
	// so the interpreter entry point need not walk the tree to wire it.
	input func() (string, error)
}

// New returns a Parser over src. If in is non-nil, it is used as the
// line source for every read() statement the parser produces.
func New(src string, in *bufio.Reader) *Parser {
	l := lexer.New(src)
	p := &Parser{lex: l}
	if in != nil {
		p.input = func() (string, error) {
			line, err := in.ReadString('\n')
			if err != nil && line == "" {
				return "", err
			}
			return trimNewline(line), nil
		}
	}
	p.current = l.Next()
	p.peek = l.Next()
	return p
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func (p *Parser) advance() {
	p.current = p.peek
	p.peek = p.lex.Next()
}

func (p *Parser) expect(k token.Kind) bool {
	if p.current.Kind == k {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%w at line %d, column %d: %s", ErrSyntax, p.current.Line, p.current.Column, msg)
}

// Parse consumes the full token stream and returns the resulting
// program, or the first syntax error encountered.
func Parse(src string, in *bufio.Reader) (*ast.Program, error) {
	p := New(src, in)
	return p.parseProgram()
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	if p.current.Kind == token.ERROR {
		return nil, p.errorf("%s", p.current.Lexeme)
	}
	if !p.expect(token.PROGRAM) {
		return nil, p.errorf("expected 'program'")
	}

	prog := &ast.Program{}
	for p.current.Kind != token.END_OF_FILE {
		if p.current.Kind == token.ERROR {
			return nil, p.errorf("%s", p.current.Lexeme)
		}
		if isTypeToken(p.current.Kind) {
			decls, err := p.parseDeclarations()
			if err != nil {
				return nil, err
			}
			prog.Declarations = append(prog.Declarations, decls...)
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
	}
	return prog, nil
}

func isTypeToken(k token.Kind) bool {
	switch k {
	case token.INT, token.STRING, token.BOOLEAN, token.REAL:
		return true
	default:
		return false
	}
}

func (p *Parser) parseDeclarations() ([]ast.Declaration, error) {
	var decls []ast.Declaration

	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	vars, err := p.parseVariableList(typ)
	if err != nil {
		return nil, err
	}
	decls = append(decls, vars...)

	for p.expect(token.SEMICOLON) {
		if !isTypeToken(p.current.Kind) {
			break
		}
		typ, err = p.parseType()
		if err != nil {
			return nil, err
		}
		vars, err = p.parseVariableList(typ)
		if err != nil {
			return nil, err
		}
		decls = append(decls, vars...)
	}

	return decls, nil
}

func (p *Parser) parseType() (value.Kind, error) {
	switch p.current.Kind {
	case token.INT:
		p.advance()
		return value.Int, nil
	case token.STRING:
		p.advance()
		return value.String, nil
	case token.REAL:
		p.advance()
		return value.Real, nil
	case token.BOOLEAN:
		p.advance()
		return value.Boolean, nil
	default:
		return 0, p.errorf("expected type (int, string, boolean or real)")
	}
}

func (p *Parser) parseVariableList(typ value.Kind) ([]ast.Declaration, error) {
	var vars []ast.Declaration

	v, err := p.parseVariableDecl(typ)
	if err != nil {
		return nil, err
	}
	vars = append(vars, v)

	for p.expect(token.COMMA) {
		v, err = p.parseVariableDecl(typ)
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}

	return vars, nil
}

func (p *Parser) parseVariableDecl(typ value.Kind) (ast.Declaration, error) {
	if p.current.Kind != token.IDENTIFIER {
		return nil, p.errorf("expected identifier")
	}
	name := p.current.Lexeme
	p.advance()

	var init ast.Expression
	if p.expect(token.ASSIGN) {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		init = expr
	}

	return ast.VariableDecl{Name: name, Type: typ, Initializer: init}, nil
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (ast.Expression, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if p.current.Kind == token.ASSIGN {
		ident, isIdent := left.(ast.Identifier)
		env, isEnv := left.(ast.EnvironmentVariable)
		if !isIdent && !isEnv {
			return nil, p.errorf("left side of assignment must be an identifier or an environment variable")
		}
		p.advance()
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		if isEnv {
			return ast.Assignment{Name: env.Name, Env: true, Expr: right}, nil
		}
		return ast.Assignment{Name: ident.Name, Expr: right}, nil
	}

	return left, nil
}

func (p *Parser) parseOr() (ast.Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.current.Kind == token.OR {
		op := p.current.Kind
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.current.Kind == token.AND {
		op := p.current.Kind
		p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expression, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.current.IsOneOf(token.EQUAL, token.NOTEQUAL) {
		op := p.current.Kind
		p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseRelational() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.current.IsOneOf(token.LESS, token.GREATER, token.LESSEQUAL, token.GREATEREQUAL) {
		op := p.current.Kind
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.current.IsOneOf(token.PLUS, token.MINUS) {
		op := p.current.Kind
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.current.IsOneOf(token.MULTIPLY, token.DIVIDE, token.MODULO) {
		op := p.current.Kind
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	if p.current.IsOneOf(token.MINUS, token.NOT) {
		op := p.current.Kind
		p.advance()
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.UnaryOp{Op: op, Expr: expr}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.current

	switch tok.Kind {
	case token.INTEGER:
		p.advance()
		n, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid integer literal %q: %v", tok.Lexeme, err)
		}
		return ast.IntegerLiteral{Value: n}, nil

	case token.REALNUM:
		p.advance()
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.errorf("invalid real literal %q: %v", tok.Lexeme, err)
		}
		return ast.RealLiteral{Value: f}, nil

	case token.STRINGLIT:
		p.advance()
		return ast.StringLiteral{Value: tok.Lexeme}, nil

	case token.TRUE:
		p.advance()
		return ast.BooleanLiteral{Value: true}, nil

	case token.FALSE:
		p.advance()
		return ast.BooleanLiteral{Value: false}, nil

	case token.IDENTIFIER:
		p.advance()
		return ast.Identifier{Name: tok.Lexeme}, nil

	case token.ENV_VAR:
		p.advance()
		return ast.EnvironmentVariable{Name: tok.Lexeme}, nil

	case token.LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if !p.expect(token.RPAREN) {
			return nil, p.errorf("expected ')' after expression")
		}
		return expr, nil

	case token.ERROR:
		return nil, p.errorf("%s", tok.Lexeme)

	default:
		return nil, p.errorf("unexpected token in expression: %q", tok.Lexeme)
	}
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.current.Kind {
	case token.LBRACE:
		return p.parseCompoundStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.DO:
		return p.parseDoWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.READ:
		return p.parseReadStatement()
	case token.WRITE:
		return p.parseWriteStatement()
	case token.IDENTIFIER:
		if p.peek.Kind == token.COLON {
			return p.parseLabeledStatement()
		}
		return p.parseExpressionStatement()
	case token.ERROR:
		return nil, p.errorf("%s", p.current.Lexeme)
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseCompoundStatement() (ast.Statement, error) {
	if !p.expect(token.LBRACE) {
		return nil, p.errorf("expected '{'")
	}
	var stmts []ast.Statement
	for p.current.Kind != token.RBRACE {
		if p.current.Kind == token.END_OF_FILE {
			return nil, p.errorf("expected '}' before end of file")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if !p.expect(token.RBRACE) {
		return nil, p.errorf("expected '}' after compound statement")
	}
	return ast.CompoundStatement{Statements: stmts}, nil
}

func (p *Parser) parseIfStatement() (ast.Statement, error) {
	if !p.expect(token.IF) {
		return nil, p.errorf("expected 'if'")
	}
	if !p.expect(token.LPAREN) {
		return nil, p.errorf("expected '(' after 'if'")
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.expect(token.RPAREN) {
		return nil, p.errorf("expected ')' after if condition")
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var elseBranch ast.Statement
	if p.current.Kind == token.ELSE {
		p.advance()
		elseBranch, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return ast.IfStatement{Condition: cond, Then: then, Else: elseBranch}, nil
}

func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	if !p.expect(token.WHILE) {
		return nil, p.errorf("expected 'while'")
	}
	if !p.expect(token.LPAREN) {
		return nil, p.errorf("expected '(' after 'while'")
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.expect(token.RPAREN) {
		return nil, p.errorf("expected ')' after while condition")
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return ast.WhileStatement{Condition: cond, Body: body}, nil
}

func (p *Parser) parseDoWhileStatement() (ast.Statement, error) {
	if !p.expect(token.DO) {
		return nil, p.errorf("expected 'do'")
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if !p.expect(token.WHILE) {
		return nil, p.errorf("expected 'while' after do statement")
	}
	if !p.expect(token.LPAREN) {
		return nil, p.errorf("expected '(' after 'while'")
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.expect(token.RPAREN) {
		return nil, p.errorf("expected ')' after while condition")
	}
	if !p.expect(token.SEMICOLON) {
		return nil, p.errorf("expected ';' after do-while statement")
	}
	return ast.DoWhileStatement{Condition: cond, Body: body}, nil
}

func (p *Parser) parseForStatement() (ast.Statement, error) {
	if !p.expect(token.FOR) {
		return nil, p.errorf("expected 'for'")
	}
	if !p.expect(token.LPAREN) {
		return nil, p.errorf("expected '(' after 'for'")
	}

	var init, cond, update ast.Expression
	var err error

	if p.current.Kind != token.SEMICOLON {
		init, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if !p.expect(token.SEMICOLON) {
		return nil, p.errorf("expected ';' after for init")
	}

	if p.current.Kind != token.SEMICOLON {
		cond, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if !p.expect(token.SEMICOLON) {
		return nil, p.errorf("expected ';' after for condition")
	}

	if p.current.Kind != token.RPAREN {
		update, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if !p.expect(token.RPAREN) {
		return nil, p.errorf("expected ')' after for update")
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return ast.ForStatement{Init: init, Cond: cond, Update: update, Body: body}, nil
}

func (p *Parser) parseReadStatement() (ast.Statement, error) {
	if !p.expect(token.READ) {
		return nil, p.errorf("expected 'read'")
	}
	if !p.expect(token.LPAREN) {
		return nil, p.errorf("expected '(' after 'read'")
	}
	if p.current.Kind != token.IDENTIFIER {
		return nil, p.errorf("expected identifier in read statement")
	}
	name := p.current.Lexeme
	p.advance()
	if !p.expect(token.RPAREN) {
		return nil, p.errorf("expected ')' after read variable")
	}
	if !p.expect(token.SEMICOLON) {
		return nil, p.errorf("expected ';' after read statement")
	}
	return ast.ReadStatement{VarName: name, Input: p.input}, nil
}

func (p *Parser) parseWriteStatement() (ast.Statement, error) {
	if !p.expect(token.WRITE) {
		return nil, p.errorf("expected 'write'")
	}
	if !p.expect(token.LPAREN) {
		return nil, p.errorf("expected '(' after 'write'")
	}
	args, err := p.parseExpressionList()
	if err != nil {
		return nil, err
	}
	if !p.expect(token.RPAREN) {
		return nil, p.errorf("expected ')' after write arguments")
	}
	if !p.expect(token.SEMICOLON) {
		return nil, p.errorf("expected ';' after write statement")
	}
	return ast.WriteStatement{Args: args}, nil
}

// parseLabeledStatement consumes an "identifier:" label prefix and
// discards it: the language has no goto implementation to target it.
func (p *Parser) parseLabeledStatement() (ast.Statement, error) {
	p.advance() // identifier
	p.advance() // colon
	return p.parseStatement()
}

func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.expect(token.SEMICOLON) {
		return nil, p.errorf("expected ';' after expression")
	}
	return ast.ExpressionStatement{Expr: expr}, nil
}

func (p *Parser) parseExpressionList() ([]ast.Expression, error) {
	var exprs []ast.Expression
	if p.current.Kind != token.RPAREN {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
		for p.expect(token.COMMA) {
			expr, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, expr)
		}
	}
	return exprs, nil
}
